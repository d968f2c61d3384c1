package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, New())
}

func TestNow(t *testing.T) {
	c := New()
	start := c.Now()
	assert.False(t, start.IsZero())
	assert.GreaterOrEqual(t, c.Since(start), time.Duration(0))
}

func TestAfterFunc(t *testing.T) {
	fired := make(chan struct{})
	timer := New().AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.False(t, timer.Stop())

	stopped := New().AfterFunc(time.Hour, func() { t.Error("stopped timer fired") })
	assert.True(t, stopped.Stop())
}

func TestTicker(t *testing.T) {
	ticker := New().NewTicker(time.Millisecond)
	defer ticker.Stop()
	select {
	case <-ticker.C():
	case <-time.After(5 * time.Second):
		t.Fatal("ticker did not tick")
	}
}
