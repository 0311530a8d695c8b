package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
)

// ConfirmHandler places the order: it prints a receipt and asks the router to
// confirm, which totals and clears the cart in one step.
type ConfirmHandler struct{}

func (ConfirmHandler) Name() string { return HandlerConfirm }

func (ConfirmHandler) Handle(ctx context.Context, env *Env, req *Request) (Reply, error) {
	if len(req.Cart) == 0 {
		return Reply{Text: emptyCartText}, nil
	}

	priced, _, err := env.Ledger.Price(ctx, req.Cart)
	if err != nil {
		return Reply{}, err
	}
	if len(priced) == 0 {
		return Reply{Text: emptyCartText}, nil
	}
	totals, err := env.Ledger.TotalsOf(ctx, req.Cart)
	if err != nil {
		return Reply{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Order confirmed! Order #%s\n\n", orderRef(req.SessionID))
	for _, p := range priced {
		fmt.Fprintf(&b, "• %dx %s: %s\n", p.Quantity, p.Item.Name, p.LineTotal)
	}
	b.WriteString("\n")
	writeTotals(&b, totals, env.Ledger.TaxRate())
	b.WriteString("\n\nThank you! Your order is being prepared.")

	return Reply{
		Text:      b.String(),
		Mutations: []cart.Mutation{cart.Confirm()},
		Features:  []string{featureOrder},
	}, nil
}

// orderRef is the short reference printed on receipts.
func orderRef(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8]
	}
	return sessionID
}
