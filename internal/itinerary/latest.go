package itinerary

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token identifies one issued request. Later requests get larger tokens.
type Token uint64

// Tracker issues request tokens and answers whether a token is still the newest.
// The zero value is ready to use.
type Tracker struct {
	last atomic.Uint64
}

func (t *Tracker) Begin() Token {
	return Token(t.last.Add(1))
}

// Current reports whether no request began after tok.
func (t *Tracker) Current(tok Token) bool {
	return t.last.Load() == uint64(tok)
}

// Latest runs keyed fetches where only the most recently started one may
// deliver. Starting a call cancels the context of the call before it, and a
// call that finishes after a newer one began returns ErrSuperseded no matter
// what its fetch produced. The zero value is ready to use.
type Latest[K comparable, R any] struct {
	mu         sync.Mutex
	tracker    Tracker
	cancel     context.CancelFunc
	key        K
	started    bool
	superseded atomic.Uint64
}

// Call is one request issued by Begin.
type Call struct {
	tok    Token
	cancel context.CancelFunc
}

// Begin issues the next request for key and cancels the one before it. The
// order of Begin calls decides which result is newest, so a caller that fetches
// in a goroutine must call Begin before starting it.
func (l *Latest[K, R]) Begin(ctx context.Context, key K) (context.Context, Call) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.key = key
	l.started = true
	return callCtx, Call{tok: l.tracker.Begin(), cancel: cancel}
}

// Finish releases call and passes its outcome through, or ErrSuperseded when
// another Begin happened after it.
func (l *Latest[K, R]) Finish(call Call, result R, err error) (R, error) {
	call.cancel()
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.tracker.Current(call.tok) {
		l.superseded.Add(1)
		var zero R
		return zero, ErrSuperseded
	}
	return result, err
}

// Run calls fetch for key. The error is ErrSuperseded when the result is stale.
func (l *Latest[K, R]) Run(ctx context.Context, key K, fetch func(context.Context, K) (R, error)) (R, error) {
	callCtx, call := l.Begin(ctx, key)
	result, err := fetch(callCtx, key)
	return l.Finish(call, result, err)
}

// Key returns the key of the newest call and whether any call was made.
func (l *Latest[K, R]) Key() (K, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key, l.started
}

// Superseded counts results that were dropped as stale.
func (l *Latest[K, R]) Superseded() uint64 {
	return l.superseded.Load()
}
