// Package rank defines the total order used to interleave token handlers.
//
// Ranks live in [0, 1), split into one phase per manager of a pipeline.
// Every transformer registered with a manager owns a disjoint slice
// [base, base+TransformerDelta) of the manager's phase, and every handler
// within a transformer owns a sub-slot base + k*HandlerDelta. Chunks are
// stamped with the highest rank applied to them so a later pass never
// re-runs an earlier handler on its own output, while every handler of a
// later phase still sees them.
package rank

import (
	"errors"
	"fmt"
	"math"
)

// Rank is a position in the handler order.
type Rank float64

const (
	// TransformerDelta is the width of the slice owned by one transformer.
	TransformerDelta = 0.001
	// HandlerDelta is the distance between two handlers of one transformer.
	HandlerDelta = 0.000001

	// MaxTransformers is the number of transformer slices one phase can hand out.
	MaxTransformers = 333
	// MaxHandlers is the number of handler slots within one transformer slice.
	MaxHandlers = 999

	// epsilon is well below HandlerDelta and absorbs float rounding when
	// ranks computed by different routes are compared.
	epsilon = HandlerDelta / 1000
)

// Zero is the rank of a chunk no handler has touched yet.
const Zero Rank = 0

var (
	// ErrExhausted is returned when a manager or transformer has no free slots left.
	ErrExhausted = errors.New("rank space exhausted")
	// ErrOutOfRange is returned for ranks outside [0, 1).
	ErrOutOfRange = errors.New("rank out of range")
)

// Equal reports whether two ranks denote the same slot.
func Equal(a, b Rank) bool {
	return math.Abs(float64(a-b)) < epsilon
}

// Less reports whether a sorts strictly before b.
func Less(a, b Rank) bool {
	return !Equal(a, b) && a < b
}

// After returns the rank directly after r, used for relative registration.
func After(r Rank) Rank {
	return r + HandlerDelta
}

// Validate checks that r lies in [0, 1).
func Validate(r Rank) error {
	if r < 0 || r >= 1 {
		return fmt.Errorf("%w: %v", ErrOutOfRange, float64(r))
	}
	return nil
}

// String renders the rank with enough digits to tell handler slots apart.
func (r Rank) String() string {
	return fmt.Sprintf("%.6f", float64(r))
}

// Phase is the part of rank space owned by one manager. Managers run in
// phase order and every rank of a phase is above every rank of the phases
// before it.
type Phase int

const (
	// PhaseInput holds the handlers that run before template expansion.
	PhaseInput Phase = iota
	// PhaseExpansion holds the handlers that expand templates.
	PhaseExpansion
	// PhaseOutput holds the handlers that run on fully expanded output.
	PhaseOutput

	numPhases
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseExpansion:
		return "expansion"
	case PhaseOutput:
		return "output"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Allocator hands out the transformer slices of one phase in registration
// order. The zero value allocates from PhaseInput.
type Allocator struct {
	Phase Phase
	next  int
}

// Next allocates the next transformer slice. The first slice of PhaseInput
// starts at TransformerDelta so that every handler rank is strictly above
// Zero.
func (a *Allocator) Next() (Slot, error) {
	if a.Phase < 0 || a.Phase >= numPhases {
		return Slot{}, fmt.Errorf("%w: %s", ErrOutOfRange, a.Phase)
	}
	if a.next >= MaxTransformers {
		return Slot{}, fmt.Errorf("%w: more than %d transformers in %s phase", ErrExhausted, MaxTransformers, a.Phase)
	}
	a.next++
	n := int(a.Phase)*MaxTransformers + a.next
	return Slot{Base: Rank(float64(n) * TransformerDelta)}, nil
}

// Allocated returns the number of slices handed out so far.
func (a *Allocator) Allocated() int {
	return a.next
}

// Slot is the slice of rank space owned by one transformer.
type Slot struct {
	Base Rank
}

// Handler returns the rank of the k-th handler (0-based) within the slot.
func (s Slot) Handler(k int) (Rank, error) {
	if k < 0 || k >= MaxHandlers {
		return 0, fmt.Errorf("%w: handler index %d", ErrExhausted, k)
	}
	return s.Base + Rank(float64(k)*HandlerDelta), nil
}

// Contains reports whether r falls inside the slot.
func (s Slot) Contains(r Rank) bool {
	return !Less(r, s.Base) && Less(r, s.Base+TransformerDelta)
}
