package token

import (
	"strings"

	"github.com/open-cli-collective/parsoid-go/pkg/rank"
)

// Chunk is an ordered, appendable token sequence with O(1) push and pop at
// both ends. The sequence is mutable; the tokens it holds are not.
type Chunk struct {
	buf  []*Token
	head int
	rank rank.Rank
}

// NewChunk creates a chunk holding the given token handles.
func NewChunk(toks ...*Token) *Chunk {
	buf := make([]*Token, len(toks))
	copy(buf, toks)
	return &Chunk{buf: buf}
}

// Rank returns the highest rank applied to the chunk.
func (c *Chunk) Rank() rank.Rank {
	return c.rank
}

// SetRank stamps the chunk with r.
func (c *Chunk) SetRank(r rank.Rank) {
	c.rank = r
}

// Len returns the number of tokens.
func (c *Chunk) Len() int {
	return len(c.buf) - c.head
}

// At returns the i-th token.
func (c *Chunk) At(i int) *Token {
	return c.buf[c.head+i]
}

// Tokens returns the token handles in order. The slice is a copy; the
// tokens are shared.
func (c *Chunk) Tokens() []*Token {
	out := make([]*Token, c.Len())
	copy(out, c.buf[c.head:])
	return out
}

// PushBack appends a token.
func (c *Chunk) PushBack(t *Token) {
	c.buf = append(c.buf, t)
}

// PushFront prepends a token, growing headroom when none is left.
func (c *Chunk) PushFront(t *Token) {
	if c.head == 0 {
		room := c.Len()
		if room < 4 {
			room = 4
		}
		buf := make([]*Token, room+c.Len(), room+cap(c.buf))
		copy(buf[room:], c.buf[c.head:])
		c.buf = buf
		c.head = room
	}
	c.head--
	c.buf[c.head] = t
}

// PopFront removes and returns the first token.
func (c *Chunk) PopFront() (*Token, bool) {
	if c.Len() == 0 {
		return nil, false
	}
	t := c.buf[c.head]
	c.buf[c.head] = nil
	c.head++
	return t, true
}

// PopBack removes and returns the last token.
func (c *Chunk) PopBack() (*Token, bool) {
	if c.Len() == 0 {
		return nil, false
	}
	last := len(c.buf) - 1
	t := c.buf[last]
	c.buf[last] = nil
	c.buf = c.buf[:last]
	return t, true
}

// Last returns the last token without removing it.
func (c *Chunk) Last() (*Token, bool) {
	if c.Len() == 0 {
		return nil, false
	}
	return c.buf[len(c.buf)-1], true
}

// Append adds the tokens of other to the end of c. Only handles are copied.
func (c *Chunk) Append(other *Chunk) {
	if other == nil {
		return
	}
	c.buf = append(c.buf, other.buf[other.head:]...)
}

// AppendTokens adds toks to the end of c.
func (c *Chunk) AppendTokens(toks ...*Token) {
	c.buf = append(c.buf, toks...)
}

// Clone returns a new chunk sharing the same token handles and rank.
func (c *Chunk) Clone() *Chunk {
	n := NewChunk(c.buf[c.head:]...)
	n.rank = c.rank
	return n
}

// Concat returns a new chunk holding the tokens of a followed by b. Neither
// input is modified. The result carries the lower of the two ranks.
func Concat(a, b *Chunk) *Chunk {
	n := a.Clone()
	n.Append(b)
	if rank.Less(b.rank, n.rank) {
		n.rank = b.rank
	}
	return n
}

// IsEndOfInput reports whether the chunk ends with an EndOfInput token.
func (c *Chunk) IsEndOfInput() bool {
	t, ok := c.Last()
	return ok && t.Kind() == KindEOF
}

func (c *Chunk) String() string {
	parts := make([]string, 0, c.Len())
	for _, t := range c.buf[c.head:] {
		parts = append(parts, t.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ChunkChunk is a sequence of chunk handles, concatenated without copying
// token contents.
type ChunkChunk []*Chunk

// Concat returns a new sequence holding the handles of cc followed by other.
func (cc ChunkChunk) Concat(other ChunkChunk) ChunkChunk {
	out := make(ChunkChunk, 0, len(cc)+len(other))
	out = append(out, cc...)
	return append(out, other...)
}

// Len returns the total number of tokens across all chunks.
func (cc ChunkChunk) Len() int {
	n := 0
	for _, c := range cc {
		n += c.Len()
	}
	return n
}

// Tokens flattens the sequence into one token slice.
func (cc ChunkChunk) Tokens() []*Token {
	out := make([]*Token, 0, cc.Len())
	for _, c := range cc {
		out = append(out, c.buf[c.head:]...)
	}
	return out
}

// Flatten joins all chunks into a single new chunk.
func (cc ChunkChunk) Flatten() *Chunk {
	out := NewChunk(cc.Tokens()...)
	if len(cc) > 0 {
		out.rank = cc[len(cc)-1].rank
	}
	return out
}

// IsEndOfInput reports whether the last non-empty chunk ends with EndOfInput.
func (cc ChunkChunk) IsEndOfInput() bool {
	for i := len(cc) - 1; i >= 0; i-- {
		if cc[i].Len() > 0 {
			return cc[i].IsEndOfInput()
		}
	}
	return false
}
