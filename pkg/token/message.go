package token

import "fmt"

// Mode is the completion mode of a message.
type Mode int

const (
	// Sync means the message is complete as presented.
	Sync Mode = iota
	// AsyncPending means more data for the same logical unit follows later.
	AsyncPending
	// AsyncWithAccumulator means more data follows and the attached
	// accumulator delivers it.
	AsyncWithAccumulator
)

func (m Mode) String() string {
	switch m {
	case Sync:
		return "sync"
	case AsyncPending:
		return "async"
	case AsyncWithAccumulator:
		return "async+accum"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Accumulator is the handle carried by AsyncWithAccumulator messages. Output
// that continues the message's logical unit is fed to ReturnSibling.
type Accumulator interface {
	ReturnSibling(msg Message) (delivered bool, err error)
}

// Message is the unit passed between pipeline stages.
type Message struct {
	chunks ChunkChunk
	mode   Mode
	accum  Accumulator
}

// NewSync creates a complete message.
func NewSync(chunks ...*Chunk) Message {
	return Message{chunks: ChunkChunk(chunks), mode: Sync}
}

// NewPending creates a message that will be continued later.
func NewPending(chunks ...*Chunk) Message {
	return Message{chunks: ChunkChunk(chunks), mode: AsyncPending}
}

// NewWithAccumulator creates a message continued through a.
func NewWithAccumulator(a Accumulator, chunks ...*Chunk) Message {
	return Message{chunks: ChunkChunk(chunks), mode: AsyncWithAccumulator, accum: a}
}

// NewMessage creates a message from a chunk sequence. final selects between
// Sync and AsyncPending.
func NewMessage(chunks ChunkChunk, final bool) Message {
	mode := AsyncPending
	if final {
		mode = Sync
	}
	return Message{chunks: chunks, mode: mode}
}

// Chunks returns the chunk handles of the message.
func (m Message) Chunks() ChunkChunk {
	return m.chunks
}

// Tokens flattens the message into one token slice.
func (m Message) Tokens() []*Token {
	return m.chunks.Tokens()
}

// Mode returns the completion mode.
func (m Message) Mode() Mode {
	return m.mode
}

// IsFinal reports whether no more data follows for this logical unit.
func (m Message) IsFinal() bool {
	return m.mode == Sync
}

// Accumulator returns the accumulator handle of an AsyncWithAccumulator message.
func (m Message) Accumulator() (Accumulator, bool) {
	if m.mode != AsyncWithAccumulator || m.accum == nil {
		return nil, false
	}
	return m.accum, true
}

// IsEndOfInput reports whether the message ends with an EndOfInput token.
func (m Message) IsEndOfInput() bool {
	return m.chunks.IsEndOfInput()
}

// Empty reports whether the message carries no tokens.
func (m Message) Empty() bool {
	return m.chunks.Len() == 0
}

func (m Message) String() string {
	return fmt.Sprintf("Message(%s, %d chunks, %d tokens)", m.mode, len(m.chunks), m.chunks.Len())
}
