package ports

import (
	"context"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// StateStore defines the interface for persisting sessions.
// Implementations must return independent copies: mutating a loaded Session
// never changes what the store holds until Save is called.
type StateStore interface {
	// Save persists the session under the given session ID.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given session ID.
	// Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
