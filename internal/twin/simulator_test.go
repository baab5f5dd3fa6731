package twin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSimulatorApply(t *testing.T) {
	s := NewSimulator()
	assert.Equal(t, DefaultLoad, s.State().Load)
	assert.False(t, s.State().Simulating)

	state, err := s.Apply(Update{Simulating: ptr(true)})
	require.NoError(t, err)
	assert.True(t, state.Simulating)
	assert.Equal(t, DefaultLoad, state.Load)

	state, err = s.Apply(Update{Load: ptr(90)})
	require.NoError(t, err)
	assert.True(t, state.Simulating)
	assert.Equal(t, 90, state.Load)
}

func TestSimulatorRejectsOutOfRangeLoad(t *testing.T) {
	s := NewSimulator()

	for _, load := range []int{-1, 101} {
		state, err := s.Apply(Update{Load: ptr(load), Simulating: ptr(true)})
		assert.ErrorIs(t, err, ErrLoadOutOfRange)
		assert.Equal(t, DefaultLoad, state.Load)
		assert.False(t, state.Simulating)
	}
}

func TestSimulatorReset(t *testing.T) {
	s := NewSimulator()
	_, _ = s.Apply(Update{Load: ptr(10), Simulating: ptr(true)})

	state := s.Reset()
	assert.Equal(t, DefaultLoad, state.Load)
	assert.False(t, state.Simulating)
}
