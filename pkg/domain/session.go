package domain

import "time"

// Session owns exactly one cart and one memory log.
// Sessions are created lazily on first message and are independent of each other.
type Session struct {
	ID        string        `json:"id"`
	Cart      []CartLine    `json:"cart"`
	Memory    []MemoryEntry `json:"memory"`
	Orders    int           `json:"orders"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Sealed holds the encrypted session when an encrypting store wraps the backend.
	// It is empty on every session handed to callers.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates an empty session.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Cart:      []CartLine{},
		Memory:    []MemoryEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers cannot mutate the original through shared slices.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Cart = CloneLines(s.Cart)
	c.Memory = make([]MemoryEntry, len(s.Memory))
	copy(c.Memory, s.Memory)
	if s.Sealed != nil {
		c.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &c
}
