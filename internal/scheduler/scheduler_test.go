package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblynch/xstate/internal/scheduler"
)

func TestScheduleBeforeInitializeRejectedWithoutDefer(t *testing.T) {
	s := scheduler.New(false)
	err := s.Schedule(func() {})
	assert.ErrorIs(t, err, scheduler.ErrNotStarted)
}

func TestDeferredEventsRunAfterInitialize(t *testing.T) {
	s := scheduler.New(true)
	var order []string

	require.NoError(t, s.Schedule(func() { order = append(order, "deferred") }))
	assert.Empty(t, order, "deferred task must not run before Initialize")

	s.Initialize(func() { order = append(order, "initial") })

	assert.Equal(t, []string{"initial", "deferred"}, order)
}

func TestReentrantScheduleRunsAfterCurrentTask(t *testing.T) {
	s := scheduler.New(true)
	var order []string

	s.Initialize(func() {
		order = append(order, "initial")
		require.NoError(t, s.Schedule(func() { order = append(order, "reentrant") }))
		order = append(order, "still-initial")
	})

	assert.Equal(t, []string{"initial", "still-initial", "reentrant"}, order)
}

func TestFIFOAcrossMultipleSchedules(t *testing.T) {
	s := scheduler.New(true)
	var order []int
	s.Initialize(func() {})

	for i := 0; i < 5; i++ {
		n := i
		require.NoError(t, s.Schedule(func() { order = append(order, n) }))
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}
