// Package cancellation forwards the host's poll-based cancellation signal into the push-based
// token observed by the build tool client.
package cancellation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
)

// Signal is the host's poll-based cancellation primitive.
type Signal interface {
	IsCancelled() bool
}

// Token is the push-based cancellation primitive handed to the build tool client.
type Token interface {
	// Done is closed once cancellation is requested.
	Done() <-chan struct{}
	IsCancellationRequested() bool
}

// TokenSource creates a Token and requests its cancellation.
type TokenSource struct {
	once sync.Once
	done chan struct{}
}

// NewTokenSource returns a source whose token is not cancelled.
func NewTokenSource() *TokenSource {
	return &TokenSource{done: make(chan struct{})}
}

// Token returns the token controlled by this source.
func (s *TokenSource) Token() Token {
	return s
}

// Cancel requests cancellation of the token. Subsequent calls have no effect.
func (s *TokenSource) Cancel() {
	s.once.Do(func() { close(s.done) })
}

// Done implements Token.
func (s *TokenSource) Done() <-chan struct{} {
	return s.done
}

// IsCancellationRequested implements Token.
func (s *TokenSource) IsCancellationRequested() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// WithToken returns a context that is cancelled when the token is, or when parent is done.
func WithToken(parent context.Context, token Token) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-token.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Bridge is a progress listener that, on every notification, polls a host signal and forwards the first
// observed cancellation to the build tool, exactly once. It is created for a single invocation.
type Bridge struct {
	signal    Signal
	cancel    func()
	requested atomic.Bool
}

var _ entity.ProgressListener = (*Bridge)(nil)

// NewBridge returns a bridge that calls cancel when signal reports cancellation.
func NewBridge(signal Signal, cancel func()) *Bridge {
	return &Bridge{signal: signal, cancel: cancel}
}

// ProgressChanged polls the host signal unless cancellation was already forwarded.
func (b *Bridge) ProgressChanged(entity.ProgressEvent) {
	b.Poll()
}

// Poll checks the host signal once and reports whether cancellation has been forwarded.
func (b *Bridge) Poll() bool {
	if b.requested.Load() {
		return true
	}
	if b.signal == nil || !b.signal.IsCancelled() {
		return false
	}
	if b.requested.CompareAndSwap(false, true) {
		b.cancel()
	}
	return true
}

// Requested reports whether cancellation has been forwarded.
func (b *Bridge) Requested() bool {
	return b.requested.Load()
}

// Flag is a host signal raised explicitly, e.g. by a cancel request from the client.
type Flag struct {
	cancelled atomic.Bool
}

// Cancel raises the flag.
func (f *Flag) Cancel() {
	f.cancelled.Store(true)
}

// IsCancelled implements Signal.
func (f *Flag) IsCancelled() bool {
	return f.cancelled.Load()
}

// ContextSignal reports cancellation once its context is done.
type ContextSignal struct {
	ctx context.Context
}

// FromContext adapts ctx to a Signal.
func FromContext(ctx context.Context) ContextSignal {
	return ContextSignal{ctx: ctx}
}

// IsCancelled implements Signal.
func (s ContextSignal) IsCancelled() bool {
	return s.ctx.Err() != nil
}

// Any reports cancellation once any of its signals does.
type Any []Signal

// IsCancelled implements Signal.
func (a Any) IsCancelled() bool {
	for _, s := range a {
		if s != nil && s.IsCancelled() {
			return true
		}
	}
	return false
}
