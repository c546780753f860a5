// internal/client/reconciler.go
package client

import (
	"context"
	"regexp"
	"strings"
)

// phoneRe is the permissive phone character class: digits, spaces, plus,
// hyphen, parentheses. Empty passes (the user is clearing the field).
var phoneRe = regexp.MustCompile(`^[0-9\s()+-]*$`)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
)

// Reconciler mediates profile mutations and keeps the session consistent
// with the server. Every successful mutation is followed by a full session
// Refresh rather than a local patch: the server may normalize or sanitize
// the payload, so the local copy is provisional until re-synced.
type Reconciler struct {
	api     *API
	session *Session
}

// NewReconciler wires the mutation path to its session store.
func NewReconciler(api *API, session *Session) *Reconciler {
	return &Reconciler{api: api, session: session}
}

// UpdateProfile validates locally, dispatches the partial edit, and
// refreshes the session on success. A phone that fails the character
// class check returns a *FieldError without any network traffic.
func (r *Reconciler) UpdateProfile(ctx context.Context, edit ProfileEdit) error {
	if edit.Phone != nil && !phoneRe.MatchString(strings.TrimSpace(*edit.Phone)) {
		return &FieldError{Field: "phone", Message: "Invalid phone number"}
	}

	if _, err := r.api.UpdateProfile(ctx, edit); err != nil {
		return err
	}

	r.session.Refresh(ctx)
	return nil
}

// UpdateUsername validates length locally and skips the network entirely
// when the requested name matches the current one: re-submitting an
// unchanged username would only risk a spurious collision.
func (r *Reconciler) UpdateUsername(ctx context.Context, username string) error {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if len(normalized) < usernameMinLen || len(normalized) > usernameMaxLen {
		return &FieldError{Field: "username", Message: "username must be 3-50 characters"}
	}

	if current, ok := r.session.User(); ok && current.Username == normalized {
		return nil
	}

	if _, err := r.api.UpdateUsername(ctx, normalized); err != nil {
		return err
	}

	r.session.Refresh(ctx)
	return nil
}

// TogglePublicVisibility flips is_public with a single call. There is no
// optimistic local flip; the refreshed record carries the new value.
func (r *Reconciler) TogglePublicVisibility(ctx context.Context) error {
	if _, err := r.api.TogglePublic(ctx); err != nil {
		return err
	}

	r.session.Refresh(ctx)
	return nil
}

// DeleteAccount is terminal. After the server confirms, the session is
// cleared regardless of the logout collaborator's outcome; there is no
// account left to stay signed into.
func (r *Reconciler) DeleteAccount(ctx context.Context) error {
	if err := r.api.DeleteAccount(ctx); err != nil {
		return err
	}

	r.session.Clear(ctx)
	return nil
}
