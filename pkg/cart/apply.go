package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// PricedLine is a cart line joined with its live catalog entry.
type PricedLine struct {
	Item      domain.CatalogItem
	Quantity  int
	LineTotal domain.Money
}

// Apply runs a batch of mutations against s. The batch is validated and applied to a
// copy of the cart first; s is only modified if every mutation succeeds.
// The caller must hold the session lock.
func (l *Ledger) Apply(ctx context.Context, s *domain.Session, mutations ...Mutation) ([]Outcome, error) {
	lines := domain.CloneLines(s.Cart)
	orders := s.Orders
	outcomes := make([]Outcome, 0, len(mutations))

	for _, m := range mutations {
		out := Outcome{Mutation: m}

		switch m.Op {
		case OpAdd:
			if m.Quantity < 1 {
				return nil, fmt.Errorf("add %s: %w", m.ItemKey, domain.ErrInvalidQuantity)
			}
			item, err := l.catalog.Get(ctx, m.ItemKey)
			if err != nil {
				return nil, fmt.Errorf("add %s: %w", m.ItemKey, err)
			}
			var line domain.CartLine
			lines, line = addLine(lines, item.Key, m.Quantity)
			out.Item = item
			out.Line = line

		case OpRemove:
			lines, out.Removed = removeLine(lines, m.ItemKey)

		case OpClear:
			lines = []domain.CartLine{}

		case OpConfirm:
			priced, _, err := l.Price(ctx, lines)
			if err != nil {
				return nil, fmt.Errorf("confirm: %w", err)
			}
			// Withdrawn lines are dropped with the rest of the cart but never billed.
			if len(priced) == 0 {
				return nil, domain.ErrEmptyCart
			}
			out.Totals = l.totals(priced)
			out.Lines = linesOf(priced)
			lines = []domain.CartLine{}
			orders++

		default:
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMutation, m.Op)
		}

		outcomes = append(outcomes, out)
	}

	s.Cart = lines
	s.Orders = orders
	return outcomes, nil
}

// TotalsOf prices lines against the live catalog. Withdrawn lines are not counted.
func (l *Ledger) TotalsOf(ctx context.Context, lines []domain.CartLine) (domain.Totals, error) {
	priced, _, err := l.Price(ctx, lines)
	if err != nil {
		return domain.Totals{}, err
	}
	return l.totals(priced), nil
}

func (l *Ledger) totals(priced []PricedLine) domain.Totals {
	var subtotal domain.Money
	for _, p := range priced {
		subtotal += p.LineTotal
	}
	return domain.NewTotals(subtotal, l.taxRate)
}

// Price joins every line with its catalog entry, preserving line order.
// Lines whose item is no longer on the menu (removed, or marked unavailable) are
// returned as withdrawn instead of priced. Only catalog failures are errors.
func (l *Ledger) Price(ctx context.Context, lines []domain.CartLine) (priced []PricedLine, withdrawn []domain.CartLine, err error) {
	priced = make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		item, err := l.catalog.Get(ctx, line.ItemKey)
		if errors.Is(err, domain.ErrItemNotFound) {
			withdrawn = append(withdrawn, line)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("price %s: %w", line.ItemKey, err)
		}
		priced = append(priced, PricedLine{
			Item:      item,
			Quantity:  line.Quantity,
			LineTotal: item.Price.Mul(line.Quantity),
		})
	}
	return priced, withdrawn, nil
}

// Partition splits lines into those still on the menu and those withdrawn from it.
func (l *Ledger) Partition(ctx context.Context, lines []domain.CartLine) (live, withdrawn []domain.CartLine, err error) {
	priced, withdrawn, err := l.Price(ctx, lines)
	if err != nil {
		return nil, nil, err
	}
	return linesOf(priced), withdrawn, nil
}

func linesOf(priced []PricedLine) []domain.CartLine {
	out := make([]domain.CartLine, len(priced))
	for i, p := range priced {
		out[i] = domain.CartLine{ItemKey: p.Item.Key, Quantity: p.Quantity}
	}
	return out
}

func addLine(lines []domain.CartLine, key string, qty int) ([]domain.CartLine, domain.CartLine) {
	for i := range lines {
		if lines[i].ItemKey == key {
			lines[i].Quantity += qty
			return lines, lines[i]
		}
	}
	line := domain.CartLine{ItemKey: key, Quantity: qty}
	return append(lines, line), line
}

func removeLine(lines []domain.CartLine, key string) ([]domain.CartLine, bool) {
	for i := range lines {
		if lines[i].ItemKey == key {
			return append(lines[:i:i], lines[i+1:]...), true
		}
	}
	return lines, false
}
