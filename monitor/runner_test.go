package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRunsImmediatelyAndStops(t *testing.T) {
	gateway := baseGateway()
	f := newJobFixture(t, map[string]*fakeGateway{"base": gateway})
	f.addAlert(t, "user@example.com", 30)

	runner := NewRunner(f.job, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	// The first pass runs before the first tick
	require.Eventually(t, func() bool {
		f.notifier.mu.Lock()
		defer f.notifier.mu.Unlock()
		return len(f.notifier.sent) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop on context cancellation")
	}
}

func TestNewRunnerDefaultsInterval(t *testing.T) {
	runner := NewRunner(nil, 0, zerolog.Nop())
	assert.Equal(t, time.Minute, runner.interval)
}
