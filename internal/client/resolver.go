// internal/client/resolver.go
package client

import (
	"context"
	"errors"
)

// OutcomeKind classifies a public profile resolution.
type OutcomeKind int

const (
	// NotFound means the username has no record.
	NotFound OutcomeKind = iota

	// PrivateBlocked means the record exists but is not public. Only the
	// username is disclosed.
	PrivateBlocked

	// Visible means the profile is public (or the viewer owns it) and the
	// full projection is available.
	Visible

	// TransientError means the fetch failed for reasons other than a 404.
	// The resolver never retries; a new route visit resolves again.
	TransientError
)

// Outcome is the renderable result of resolving a username.
//
// On PrivateBlocked, Profile is nil and Username is the only data carried:
// withheld fields are unrepresentable, not merely unrendered, so a server
// that over-shares cannot leak through this type.
type Outcome struct {
	Kind     OutcomeKind
	Username string
	Profile  *PublicProfileView
}

// Resolver turns a username route parameter into a renderable outcome.
type Resolver struct {
	api *API
}

func NewResolver(api *API) *Resolver {
	return &Resolver{api: api}
}

// Resolve fetches the public projection once. No automatic retry: a
// failed resolution is terminal for this route visit.
func (r *Resolver) Resolve(ctx context.Context, username string) Outcome {
	p, err := r.api.PublicProfile(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Outcome{Kind: NotFound, Username: username}
		}
		return Outcome{Kind: TransientError, Username: username}
	}

	if !p.IsPublic {
		return Outcome{Kind: PrivateBlocked, Username: p.Username}
	}

	return Outcome{Kind: Visible, Username: p.Username, Profile: p}
}
