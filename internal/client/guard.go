// internal/client/guard.go
package client

// Action is what a protected view should do given the session state.
type Action int

const (
	// ShowPlaceholder renders a neutral placeholder while the initial
	// session lookup is still settling.
	ShowPlaceholder Action = iota

	// RedirectHome sends the visitor to the unauthenticated landing page.
	RedirectHome

	// RenderProtected renders the protected content.
	RenderProtected
)

// Decision is the guard's verdict for one render of a protected route.
type Decision struct {
	Action Action

	// ReplaceHistory is set on redirects so the protected route does not
	// remain reachable via back-navigation while signed out.
	ReplaceHistory bool
}

// Decide maps session state to a routing decision. It is a pure function:
// the guard holds no state of its own and two calls with the same input
// always agree.
func Decide(state State) Decision {
	switch state {
	case Loading:
		return Decision{Action: ShowPlaceholder}
	case Authenticated:
		return Decision{Action: RenderProtected}
	default:
		return Decision{Action: RedirectHome, ReplaceHistory: true}
	}
}
