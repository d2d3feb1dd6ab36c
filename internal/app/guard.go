package app

import "sync"

// SubmitGuard is a non-blocking boolean lock exclusive to the submission
// operation. A second concurrent submit sees TryAcquire return false and is
// dropped, never queued.
type SubmitGuard struct {
	mu   sync.Mutex
	held bool
}

func NewSubmitGuard() *SubmitGuard {
	return &SubmitGuard{}
}

// TryAcquire takes the lock if free and reports whether it succeeded.
func (g *SubmitGuard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return false
	}
	g.held = true
	return true
}

// Release frees the lock. Releasing an unheld lock is a no-op so a deferred
// Release can never leak or panic.
func (g *SubmitGuard) Release() {
	g.mu.Lock()
	g.held = false
	g.mu.Unlock()
}

// Held reports whether a submit attempt is in flight.
func (g *SubmitGuard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}
