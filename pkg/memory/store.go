package memory

import (
	"context"
	"errors"
	"time"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

// Store is the session-keyed memory API. Logs live inside the session record, so
// they are persisted by whatever StateStore backs the session manager.
type Store struct {
	sessions *session.Manager
	policy   Policy
	now      func() time.Time
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) StoreOption {
	return func(s *Store) {
		s.policy = p
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a memory store over the session manager.
func NewStore(sessions *session.Manager, opts ...StoreOption) *Store {
	s := &Store{
		sessions: sessions,
		policy:   DefaultPolicy(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the active policy.
func (s *Store) Policy() Policy {
	return s.policy
}

// Save appends an exchange to the session log and trims it.
func (s *Store) Save(ctx context.Context, sessionID, userText, assistantText string) error {
	_, err := s.sessions.Update(ctx, sessionID, func(ctx context.Context, sess *domain.Session) error {
		sess.Memory, _ = s.policy.Append(sess.Memory, domain.NewMemoryEntry(userText, assistantText, s.now()))
		return nil
	})
	return err
}

// Load returns the formatted context relevant to message.
func (s *Store) Load(ctx context.Context, sessionID, message string) (string, error) {
	entries, err := s.Relevant(ctx, sessionID, message)
	if err != nil {
		return "", err
	}
	return Format(entries), nil
}

// Relevant returns the entries Load would format.
func (s *Store) Relevant(ctx context.Context, sessionID, message string) ([]domain.MemoryEntry, error) {
	entries, err := s.entries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.policy.Relevant(entries, message), nil
}

// ClearSession deletes the entire log of a session. The cart is left untouched.
func (s *Store) ClearSession(ctx context.Context, sessionID string) error {
	_, err := s.sessions.Update(ctx, sessionID, func(ctx context.Context, sess *domain.Session) error {
		sess.Memory = []domain.MemoryEntry{}
		return nil
	})
	return err
}

// Summary reports the size and time span of a session log.
func (s *Store) Summary(ctx context.Context, sessionID string) (domain.MemorySummary, error) {
	entries, err := s.entries(ctx, sessionID)
	if err != nil {
		return domain.MemorySummary{}, err
	}
	return Summarize(entries), nil
}

func (s *Store) entries(ctx context.Context, sessionID string) ([]domain.MemoryEntry, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess.Memory, nil
}
