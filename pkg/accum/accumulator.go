// Package accum reconciles a synchronous sibling continuation with an
// asynchronous child expansion.
//
// When a handler defers part of its output, everything produced after the
// expansion point (the sibling) is fed to ReturnSibling while the nested
// expansion (the child) reports through ReturnChild. The accumulator
// delivers child content before sibling content to its bound receiver,
// whatever order the two complete in, and delivers every span once.
package accum

import (
	"errors"
	"fmt"

	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// ErrAccumulatorReuse is returned when an entry point is called after its
// side already completed. It indicates broken async bookkeeping.
var ErrAccumulatorReuse = errors.New("accumulator reused after completion")

// Accumulator buffers sibling output until the child is done.
type Accumulator struct {
	recv        pipeline.Receiver[token.Message]
	buf         token.ChunkChunk
	siblingDone bool
	childDone   bool
}

// New creates an accumulator bound to recv, the receiver that would have
// received the sibling output had no expansion been deferred.
func New(recv pipeline.Receiver[token.Message]) *Accumulator {
	return &Accumulator{recv: recv}
}

// ReturnSibling takes sibling output. The message is final once the
// sibling stream reached its end. delivered reports whether the buffered
// content went to the bound receiver during this call.
func (a *Accumulator) ReturnSibling(msg token.Message) (delivered bool, err error) {
	if a.siblingDone {
		return false, fmt.Errorf("%w: sibling already done", ErrAccumulatorReuse)
	}
	a.buf = a.buf.Concat(msg.Chunks())
	a.siblingDone = msg.IsFinal()
	if !a.childDone {
		return false, nil
	}
	if err := a.flush(); err != nil {
		return false, err
	}
	return true, nil
}

// ReturnChild takes output of the child expansion. Non-final messages come
// from deeper async levels and pass straight through; nothing of the
// sibling can precede them. A final message is delivered immediately
// together with whatever sibling output is buffered.
func (a *Accumulator) ReturnChild(msg token.Message) error {
	if a.childDone {
		return fmt.Errorf("%w: child already done", ErrAccumulatorReuse)
	}
	if !msg.IsFinal() {
		if msg.Empty() {
			return nil
		}
		return a.recv(token.NewMessage(msg.Chunks(), false))
	}
	a.childDone = true
	a.buf = msg.Chunks().Concat(a.buf)
	return a.flush()
}

// Spent reports whether both sides completed. A spent accumulator rejects
// all further calls.
func (a *Accumulator) Spent() bool {
	return a.siblingDone && a.childDone
}

// SiblingDone reports whether the final sibling message arrived.
func (a *Accumulator) SiblingDone() bool {
	return a.siblingDone
}

// ChildDone reports whether the final child message arrived.
func (a *Accumulator) ChildDone() bool {
	return a.childDone
}

// Receiver returns ReturnSibling as a plain receiver, for wiring the
// accumulator in place of a downstream stage.
func (a *Accumulator) Receiver() pipeline.Receiver[token.Message] {
	return func(msg token.Message) error {
		_, err := a.ReturnSibling(msg)
		return err
	}
}

// flush hands the buffer to the bound receiver. Only called once the child
// is done; the result is final exactly when the sibling is done too.
func (a *Accumulator) flush() error {
	out := a.buf
	a.buf = nil
	if !a.siblingDone && out.Len() == 0 {
		return nil
	}
	return a.recv(token.NewMessage(out, a.siblingDone))
}
