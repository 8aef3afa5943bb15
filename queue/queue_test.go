package queue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeblynch/xstate/queue"
)

func TestFIFOOrder(t *testing.T) {
	q := queue.New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	assert.Equal(t, 3, q.Len())
	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestConcurrentPushesAreAllObserved(t *testing.T) {
	q := queue.New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Push(n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, q.Len())
	seen := map[int]bool{}
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		seen[v] = true
	}
	assert.Len(t, seen, 100)
}
