// Package pipeline defines the seam through which independently built
// stages are chained: a stage receives one unit at a time and emits its
// output to exactly one configured receiver.
//
// Stages do no buffering of their own. Output that cannot be emitted
// immediately goes through an accumulator so ordering stays auditable.
package pipeline

import "errors"

// ErrNoReceiverConfigured is returned when a stage emits before its
// receiver was set. It indicates a pipeline wired incorrectly.
var ErrNoReceiverConfigured = errors.New("no receiver configured")

// Receiver consumes one unit of output.
type Receiver[T any] func(T) error

// Stage is a pipeline step consuming In and emitting Out.
type Stage[In, Out any] interface {
	Receive(in In) error
	SetReceiver(r Receiver[Out])
}

// Emitter holds the receiver of a stage. Embed it to get SetReceiver and Emit.
// The zero value has no receiver.
type Emitter[T any] struct {
	recv Receiver[T]
}

// SetReceiver wires the stage output to r. A nil r unsets the receiver.
func (e *Emitter[T]) SetReceiver(r Receiver[T]) {
	e.recv = r
}

// Receiver returns the configured receiver, if any.
func (e *Emitter[T]) Receiver() (Receiver[T], bool) {
	return e.recv, e.recv != nil
}

// Emit passes v to the configured receiver.
func (e *Emitter[T]) Emit(v T) error {
	if e.recv == nil {
		return ErrNoReceiverConfigured
	}
	return e.recv(v)
}

// Connect wires the output of up into down.
func Connect[A, B, C any](up Stage[A, B], down Stage[B, C]) {
	up.SetReceiver(down.Receive)
}

// Func adapts a plain function into a Stage.
type Func[In, Out any] struct {
	Emitter[Out]
	fn func(in In, emit Receiver[Out]) error
}

// NewFunc creates a stage that calls fn for every input. fn emits through
// the supplied receiver, which fails with ErrNoReceiverConfigured until the
// stage is wired.
func NewFunc[In, Out any](fn func(in In, emit Receiver[Out]) error) *Func[In, Out] {
	return &Func[In, Out]{fn: fn}
}

// Receive implements Stage.
func (f *Func[In, Out]) Receive(in In) error {
	return f.fn(in, f.Emit)
}

// Capture is a terminal receiver that keeps the last value it was given.
type Capture[T any] struct {
	value T
	count int
}

// Receive records v.
func (c *Capture[T]) Receive(v T) error {
	c.value = v
	c.count++
	return nil
}

// Value returns the captured value and whether anything was captured.
func (c *Capture[T]) Value() (T, bool) {
	return c.value, c.count > 0
}

// Count returns how many values were received.
func (c *Capture[T]) Count() int {
	return c.count
}

// Reset forgets the captured value.
func (c *Capture[T]) Reset() {
	var zero T
	c.value = zero
	c.count = 0
}
