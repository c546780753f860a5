// internal/client/errors.go
package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transport's status mapping.
var (
	// ErrUnauthenticated covers every identity failure: missing session,
	// expired cookie, deleted account. Callers never learn which.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound means the target username has no record.
	ErrNotFound = errors.New("user not found")

	// ErrTransient covers transport failures and server errors; the
	// operation may succeed if retried by the user, but the SDK never
	// retries on its own.
	ErrTransient = errors.New("service unavailable")
)

// FieldError is a local, pre-network validation failure scoped to a single
// field. It never corresponds to an HTTP exchange.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MutationError is a server-side rejection of a mutation (e.g., a username
// collision). Message carries the server's {error} payload when present,
// else a generic fallback.
type MutationError struct {
	Status  int
	Message string
}

func (e *MutationError) Error() string {
	return e.Message
}
