package cancellation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingSignal becomes cancelled at poll number k (1-based) and counts polls.
type countingSignal struct {
	k     int64
	polls atomic.Int64
}

func (s *countingSignal) IsCancelled() bool {
	return s.polls.Add(1) >= s.k
}

func TestBridgeForwardsExactlyOnce(t *testing.T) {
	tests := []struct {
		name string
		n    int
		k    int64
	}{
		{name: "first notification", n: 10, k: 1},
		{name: "middle notification", n: 10, k: 5},
		{name: "last notification", n: 10, k: 10},
		{name: "never", n: 10, k: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := &countingSignal{k: tt.k}
			var cancels int
			cancelledAt := -1
			notification := 0
			bridge := NewBridge(signal, func() {
				cancels++
				cancelledAt = notification
			})

			for notification = 1; notification <= tt.n; notification++ {
				bridge.ProgressChanged(entity.ProgressEvent{Description: "working"})
			}

			if tt.k > int64(tt.n) {
				assert.Zero(t, cancels)
				assert.False(t, bridge.Requested())
				return
			}
			assert.Equal(t, 1, cancels)
			assert.GreaterOrEqual(t, cancelledAt, int(tt.k))
			assert.True(t, bridge.Requested())
			assert.Equal(t, tt.k, signal.polls.Load(), "the signal is not polled after forwarding")
		})
	}
}

func TestBridgeConcurrentNotifications(t *testing.T) {
	flag := &Flag{}
	source := NewTokenSource()
	var cancels atomic.Int32
	bridge := NewBridge(flag, func() {
		cancels.Add(1)
		source.Cancel()
	})

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				if i == 7 && j == 50 {
					flag.Cancel()
				}
				bridge.ProgressChanged(entity.ProgressEvent{})
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), cancels.Load())
	assert.True(t, source.Token().IsCancellationRequested())
}

func TestBridgeWithoutCancellation(t *testing.T) {
	bridge := NewBridge(&Flag{}, func() { t.Fatal("spontaneous progress must not cancel") })
	for i := 0; i < 100; i++ {
		bridge.ProgressChanged(entity.ProgressEvent{Heartbeat: i%2 == 0})
	}
	assert.False(t, bridge.Poll())

	nilSignal := NewBridge(nil, func() { t.Fatal("nil signal must not cancel") })
	assert.False(t, nilSignal.Poll())
}

func TestTokenSource(t *testing.T) {
	source := NewTokenSource()
	token := source.Token()
	assert.False(t, token.IsCancellationRequested())

	source.Cancel()
	source.Cancel()
	assert.True(t, token.IsCancellationRequested())
	select {
	case <-token.Done():
	default:
		t.Fatal("token is not done")
	}
}

func TestWithToken(t *testing.T) {
	source := NewTokenSource()
	ctx, cancel := WithToken(context.Background(), source.Token())
	defer cancel()
	assert.NoError(t, ctx.Err())

	source.Cancel()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled")
	}

	// Cancelling the context releases the watcher without a token cancellation.
	ctx2, cancel2 := WithToken(context.Background(), NewTokenSource().Token())
	cancel2()
	<-ctx2.Done()
}

func TestSignals(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ctxSignal := FromContext(ctx)
	flag := &Flag{}
	combined := Any{nil, flag, ctxSignal}

	assert.False(t, ctxSignal.IsCancelled())
	assert.False(t, combined.IsCancelled())

	cancel()
	assert.True(t, ctxSignal.IsCancelled())
	assert.True(t, combined.IsCancelled())

	flag.Cancel()
	assert.True(t, flag.IsCancelled())
	require.True(t, Any{flag}.IsCancelled())
}
