package clock_test

import (
	"testing"
	"time"

	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	c := clock.NewFixed(at)

	assert.Equal(t, at, c.Now())

	select {
	case got := <-c.After(time.Hour):
		assert.Equal(t, at, got)
	case <-time.After(time.Second):
		t.Fatal("fixed clock After did not fire immediately")
	}
}

func TestSystemClock_After(t *testing.T) {
	c := clock.NewSystem()

	start := time.Now()
	<-c.After(10 * time.Millisecond)

	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
