package transform

import (
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/rank"
	"github.com/open-cli-collective/parsoid-go/pkg/scope"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// SyncManager runs handlers that rewrite tokens in place. It emits one
// message per message received, in the same mode.
type SyncManager struct {
	core
	pipeline.Emitter[token.Message]
}

// NewSyncManager creates a manager for handlers that run before template
// expansion, seeing scope s. A nil scope gets a fresh top-level scope.
func NewSyncManager(s *scope.Scope) *SyncManager {
	return &SyncManager{core: newCore("sync", rank.PhaseInput, s)}
}

// NewOutputManager creates a synchronous manager for handlers that run on
// fully expanded output. It sits after the async manager, so its
// transformers are allocated from rank.PhaseOutput.
func NewOutputManager(s *scope.Scope) *SyncManager {
	return &SyncManager{core: newCore("output", rank.PhaseOutput, s)}
}

// Receive transforms every chunk of msg and forwards the result.
func (m *SyncManager) Receive(msg token.Message) error {
	out := make(token.ChunkChunk, 0, len(msg.Chunks()))
	for _, c := range msg.Chunks() {
		out = append(out, m.Transform(c))
	}
	var next token.Message
	switch msg.Mode() {
	case token.Sync:
		next = token.NewSync(out...)
	case token.AsyncWithAccumulator:
		a, _ := msg.Accumulator()
		next = token.NewWithAccumulator(a, out...)
	default:
		next = token.NewPending(out...)
	}
	return m.Emit(next)
}

// Transform runs one chunk through the handlers. The result is stamped
// with the highest rank applied.
func (m *SyncManager) Transform(c *token.Chunk) *token.Chunk {
	out := token.NewChunk()
	top := c.Rank()
	var work workStack
	work.push(c.Tokens(), c.Rank())
	for {
		tok, r, ok := work.next()
		if !ok {
			break
		}
		res, reg := m.apply(tok, r, false)
		if reg == nil {
			out.PushBack(tok)
			m.emitted(tok)
			continue
		}
		top = maxRank(top, reg.Rank)
		work.push(m.replacement(tok, reg, res), reg.Rank)
	}
	out.SetRank(top)
	return out
}
