package cart

import (
	"context"
	"errors"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

// DefaultTaxRate is the sales tax applied to every order.
const DefaultTaxRate = 0.08

// Ledger is the per-session record of chosen items.
// Every price is read from the catalog on each call; totals are never cached.
type Ledger struct {
	catalog  ports.Catalog
	sessions *session.Manager
	taxRate  float64
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithTaxRate sets the tax rate (e.g. 0.08 for 8%).
func WithTaxRate(rate float64) Option {
	return func(l *Ledger) {
		l.taxRate = rate
	}
}

// New creates a Ledger over the catalog and session manager.
func New(catalog ports.Catalog, sessions *session.Manager, opts ...Option) *Ledger {
	l := &Ledger{
		catalog:  catalog,
		sessions: sessions,
		taxRate:  DefaultTaxRate,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TaxRate returns the configured tax rate.
func (l *Ledger) TaxRate() float64 {
	return l.taxRate
}

// Add puts quantity units of an item in the session's cart.
// Unknown items return domain.ErrItemNotFound and leave the cart untouched.
func (l *Ledger) Add(ctx context.Context, sessionID, itemKey string, quantity int) (Outcome, error) {
	var out Outcome
	_, err := l.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		outcomes, err := l.Apply(ctx, s, Add(itemKey, quantity))
		if err != nil {
			return err
		}
		out = outcomes[0]
		return nil
	})
	return out, err
}

// Remove deletes an item line. It reports false, without error, if the line was absent.
func (l *Ledger) Remove(ctx context.Context, sessionID, itemKey string) (bool, error) {
	var removed bool
	_, err := l.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		outcomes, err := l.Apply(ctx, s, Remove(itemKey))
		if err != nil {
			return err
		}
		removed = outcomes[0].Removed
		return nil
	})
	return removed, err
}

// Snapshot returns the cart lines in first-add order. Unknown sessions have an empty cart.
func (l *Ledger) Snapshot(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	s, err := l.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.CloneLines(s.Cart), nil
}

// Totals recomputes subtotal, tax and total from live catalog prices.
func (l *Ledger) Totals(ctx context.Context, sessionID string) (domain.Totals, error) {
	s, err := l.load(ctx, sessionID)
	if err != nil {
		return domain.Totals{}, err
	}
	return l.TotalsOf(ctx, s.Cart)
}

// Confirm computes the totals and clears the cart as one step.
// An empty cart returns domain.ErrEmptyCart and nothing is cleared.
func (l *Ledger) Confirm(ctx context.Context, sessionID string) (domain.Totals, error) {
	var totals domain.Totals
	_, err := l.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		outcomes, err := l.Apply(ctx, s, Confirm())
		if err != nil {
			return err
		}
		totals = outcomes[0].Totals
		return nil
	})
	return totals, err
}

func (l *Ledger) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := l.sessions.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return &domain.Session{ID: sessionID}, nil
	}
	return s, err
}
