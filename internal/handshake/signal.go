package handshake

import (
	"context"
	"sync"
)

// Signal is a manual-reset event. Once Set, every Wait returns immediately
// until Clear is called. Waiters block on a channel rather than polling.
type Signal struct {
	mu  sync.Mutex
	ch  chan struct{}
	set bool
}

// NewSignal returns a signal in the given initial state.
func NewSignal(set bool) *Signal {
	s := &Signal{ch: make(chan struct{})}
	if set {
		close(s.ch)
		s.set = true
	}
	return s
}

// Set releases current and future waiters until the next Clear.
func (s *Signal) Set() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	if s.set {
		return
	}
	close(s.ch)
	s.set = true
}

// Clear makes subsequent waiters block until the next Set.
func (s *Signal) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	if !s.set {
		return
	}
	s.ch = make(chan struct{})
	s.set = false
}

// IsSet reports the current state without blocking.
func (s *Signal) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Done returns a channel that is closed while the signal is set. The channel
// is replaced on Clear, so callers must fetch it again after each wake-up.
func (s *Signal) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return s.ch
}

// Wait blocks until the signal is set.
func (s *Signal) Wait() {
	<-s.Done()
}

// WaitContext blocks until the signal is set or ctx is done.
func (s *Signal) WaitContext(ctx context.Context) error {
	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// init lazily allocates the channel so the zero value is a cleared signal.
func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}
