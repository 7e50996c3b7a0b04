package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_NoReceiverConfigured(t *testing.T) {
	var e Emitter[string]

	err := e.Emit("x")
	assert.True(t, errors.Is(err, ErrNoReceiverConfigured))

	_, ok := e.Receiver()
	assert.False(t, ok)
}

func TestEmitter_ForwardsToReceiver(t *testing.T) {
	var e Emitter[string]
	var got []string
	e.SetReceiver(func(s string) error {
		got = append(got, s)
		return nil
	})

	require.NoError(t, e.Emit("a"))
	require.NoError(t, e.Emit("b"))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestEmitter_PropagatesReceiverError(t *testing.T) {
	var e Emitter[int]
	boom := errors.New("boom")
	e.SetReceiver(func(int) error { return boom })

	assert.Same(t, boom, e.Emit(1))
}

func TestConnect_ChainsStages(t *testing.T) {
	upper := NewFunc(func(in string, emit Receiver[string]) error {
		return emit(strings.ToUpper(in))
	})
	length := NewFunc(func(in string, emit Receiver[int]) error {
		return emit(len(in))
	})
	var sink Capture[int]

	Connect[string, string, int](upper, length)
	length.SetReceiver(sink.Receive)

	require.NoError(t, upper.Receive("hello"))
	v, ok := sink.Value()
	require.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, 1, sink.Count())
}

func TestFunc_UnwiredStageFails(t *testing.T) {
	s := NewFunc(func(in int, emit Receiver[int]) error { return emit(in) })
	assert.True(t, errors.Is(s.Receive(1), ErrNoReceiverConfigured))
}

func TestCapture_Reset(t *testing.T) {
	var c Capture[string]
	_, ok := c.Value()
	assert.False(t, ok)

	require.NoError(t, c.Receive("x"))
	c.Reset()
	_, ok = c.Value()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Count())
}
