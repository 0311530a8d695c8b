package cart

import (
	"context"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// ViewLine is a priced cart line as shown to clients.
type ViewLine struct {
	Key       string       `json:"key" yaml:"key"`
	Name      string       `json:"name" yaml:"name"`
	Quantity  int          `json:"quantity" yaml:"quantity"`
	UnitPrice domain.Money `json:"unit_price" yaml:"unit_price"`
	LineTotal domain.Money `json:"line_total" yaml:"line_total"`
}

// View is a session cart with live prices and totals.
type View struct {
	Items    []ViewLine   `json:"items" yaml:"items"`
	Count    int          `json:"count" yaml:"count"`
	Subtotal domain.Money `json:"subtotal" yaml:"subtotal"`
	Tax      domain.Money `json:"tax" yaml:"tax"`
	Total    domain.Money `json:"total" yaml:"total"`
	// Withdrawn lists keys still in the cart whose item is no longer on the menu.
	Withdrawn []string `json:"withdrawn,omitempty" yaml:"withdrawn,omitempty"`
}

// View prices a session's cart. Unknown sessions have an empty view.
func (l *Ledger) View(ctx context.Context, sessionID string) (View, error) {
	lines, err := l.Snapshot(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return l.ViewOf(ctx, lines)
}

// ViewOf prices lines without touching any session.
func (l *Ledger) ViewOf(ctx context.Context, lines []domain.CartLine) (View, error) {
	priced, withdrawn, err := l.Price(ctx, lines)
	if err != nil {
		return View{}, err
	}
	totals := l.totals(priced)

	v := View{
		Items:    make([]ViewLine, len(priced)),
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
	}
	for i, p := range priced {
		v.Items[i] = ViewLine{
			Key:       p.Item.Key,
			Name:      p.Item.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.Item.Price,
			LineTotal: p.LineTotal,
		}
		v.Count += p.Quantity
	}
	for _, w := range withdrawn {
		v.Withdrawn = append(v.Withdrawn, w.ItemKey)
	}
	return v, nil
}
