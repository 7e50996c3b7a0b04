package transform

import (
	"github.com/open-cli-collective/parsoid-go/pkg/accum"
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/rank"
	"github.com/open-cli-collective/parsoid-go/pkg/scope"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// AsyncManager runs handlers that may defer their output to a nested
// expansion. Output that follows a deferred token is held back by an
// accumulator until the expansion completes, so the downstream stage sees
// tokens in document order.
type AsyncManager struct {
	core
	pipeline.Emitter[token.Message]
	tail *accum.Accumulator // newest pending expansion, nil when none
}

// NewAsyncManager creates a manager whose handlers see scope s. Its
// transformers are allocated from rank.PhaseExpansion. A nil scope gets a
// fresh top-level scope.
func NewAsyncManager(s *scope.Scope) *AsyncManager {
	return &AsyncManager{core: newCore("async", rank.PhaseExpansion, s)}
}

// Receive transforms every chunk of msg. A chunk holding the end-of-input
// marker completes the stream; the manager is ready for a new input
// afterwards.
func (m *AsyncManager) Receive(msg token.Message) error {
	for _, c := range msg.Chunks() {
		if err := m.transform(c); err != nil {
			return err
		}
	}
	return nil
}

// target is where output produced now must go: the newest accumulator's
// sibling side, or the downstream stage when nothing is pending. The
// downstream receiver is resolved now, so an accumulator keeps delivering
// to the stage that was current when its input arrived.
func (m *AsyncManager) target() pipeline.Receiver[token.Message] {
	if m.tail != nil {
		return m.tail.Receiver()
	}
	if recv, ok := m.Receiver(); ok {
		return recv
	}
	return m.Emit
}

func (m *AsyncManager) transform(c *token.Chunk) error {
	final := c.IsEndOfInput()
	out := token.NewChunk()
	top := c.Rank()
	var work workStack
	work.push(c.Tokens(), c.Rank())
	for {
		tok, r, ok := work.next()
		if !ok {
			break
		}
		res, reg := m.apply(tok, r, true)
		if reg == nil {
			out.PushBack(tok)
			m.emitted(tok)
			continue
		}
		top = maxRank(top, reg.Rank)
		if res.kind != resultAsync {
			work.push(m.replacement(tok, reg, res), reg.Rank)
			continue
		}
		if err := m.deferTo(out, top, res.launch); err != nil {
			return err
		}
		out = token.NewChunk()
	}
	out.SetRank(top)
	if final {
		err := m.target()(token.NewSync(out))
		m.tail = nil
		return err
	}
	if out.Len() == 0 {
		return nil
	}
	return m.target()(token.NewPending(out))
}

// deferTo flushes the output preceding a deferred token, then chains a new
// accumulator between it and whatever follows.
func (m *AsyncManager) deferTo(before *token.Chunk, r rank.Rank, launch Launcher) error {
	recv := m.target()
	a := accum.New(recv)
	if before.Len() > 0 {
		before.SetRank(r)
		if err := recv(token.NewWithAccumulator(a, before)); err != nil {
			return err
		}
	}
	m.tail = a
	return launch(a.ReturnChild)
}
