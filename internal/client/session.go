// internal/client/session.go
package client

import (
	"context"
	"sync"
)

// State is the session's authentication phase.
type State int

const (
	// Unauthenticated means no valid session exists, or the last identity
	// lookup failed for any reason.
	Unauthenticated State = iota

	// Loading is the distinct initial phase before the first Refresh
	// settles. It occurs exactly once per Session; later refreshes never
	// return to it, so consumers see no loading flash on mutations.
	Loading

	// Authenticated means the last identity lookup returned a record.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is the single source of truth for "who is logged in." It is
// constructed once at process start and shared by reference with every
// consumer; views observe transitions via Subscribe rather than polling.
type Session struct {
	api *API

	mu       sync.RWMutex
	state    State
	user     *UserRecord
	inflight chan struct{}
	subs     []chan State
}

// NewSession creates a session in the Loading state. Nothing is fetched
// until the first Refresh call.
func NewSession(api *API) *Session {
	return &Session{api: api, state: Loading}
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the authenticated record, if any.
func (s *Session) User() (*UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated || s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// Subscribe returns a channel that receives the new state on every
// transition. Slow subscribers miss intermediate states rather than
// blocking the store; the latest state is always readable via State().
func (s *Session) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan State, 8)
	s.subs = append(s.subs, ch)
	return ch
}

// Refresh performs the identity lookup and settles the session state:
// success means Authenticated with the fresh record, ANY failure means
// Unauthenticated. The error is never propagated; "couldn't verify who
// you are" and "you are nobody" are deliberately indistinguishable here.
//
// Concurrent calls coalesce onto one in-flight lookup. The second caller
// waits for the first result instead of issuing a competing request
// whose stale response could land last and overwrite a fresher one.
func (s *Session) Refresh(ctx context.Context) State {
	s.mu.Lock()
	if s.inflight != nil {
		done := s.inflight
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return s.State()
	}
	done := make(chan struct{})
	s.inflight = done
	s.mu.Unlock()

	u, err := s.api.Me(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = Unauthenticated
		s.user = nil
	} else {
		s.state = Authenticated
		s.user = u
	}
	s.inflight = nil
	state := s.state
	s.notifyLocked(state)
	s.mu.Unlock()

	close(done)
	return state
}

// Clear signs the user out. The logout call's outcome is swallowed:
// leaving must always succeed locally even when the server is down or
// the cookie already expired.
func (s *Session) Clear(ctx context.Context) {
	_ = s.api.Logout(ctx)

	s.mu.Lock()
	s.state = Unauthenticated
	s.user = nil
	s.notifyLocked(Unauthenticated)
	s.mu.Unlock()
}

func (s *Session) notifyLocked(state State) {
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
		}
	}
}
