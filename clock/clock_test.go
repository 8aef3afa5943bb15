package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joeblynch/xstate/clock"
)

func TestRealFiresAfterDuration(t *testing.T) {
	c := clock.NewReal()
	done := make(chan struct{})
	c.AfterFunc(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestRealStopPreventsFiring(t *testing.T) {
	c := clock.NewReal()
	fired := false
	token := c.AfterFunc(50*time.Millisecond, func() { fired = true })

	assert.True(t, c.Stop(token))
	time.Sleep(100 * time.Millisecond)

	assert.False(t, fired)
}
