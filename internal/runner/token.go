package runner

import "sync"

// Token is a sticky, run-scoped cancellation signal. It is set at most once
// and cannot be unset. A single Token is shared by everything that can
// suspend during a run: the pacing wait, the inter-attempt delay, and the
// remote call itself.
type Token struct {
	once sync.Once
	done chan struct{}
}

// NewToken creates an unset cancellation token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel sets the token. Safe to call from any goroutine and idempotent.
func (t *Token) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Cancelled reports whether the token has been set.
func (t *Token) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the token is set.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
