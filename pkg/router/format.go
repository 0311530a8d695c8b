package router

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

const (
	emptyCartText = "Your cart is empty. Add some items by saying something like 'add a latte'!"
	confirmHint   = "Say 'confirm' to place your order!"
)

// renderCart prices lines and renders them with subtotal, tax and total.
func renderCart(ctx context.Context, env *Env, lines []domain.CartLine) (string, error) {
	if len(lines) == 0 {
		return emptyCartText, nil
	}
	priced, _, err := env.Ledger.Price(ctx, lines)
	if err != nil {
		return "", err
	}
	if len(priced) == 0 {
		return emptyCartText, nil
	}
	totals, err := env.Ledger.TotalsOf(ctx, lines)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("🛒 Your cart:\n")
	for _, p := range priced {
		fmt.Fprintf(&b, "• %dx %s: %s\n", p.Quantity, p.Item.Name, p.LineTotal)
	}
	b.WriteString("\n")
	writeTotals(&b, totals, env.Ledger.TaxRate())
	return b.String(), nil
}

func writeTotals(b *strings.Builder, t domain.Totals, rate float64) {
	fmt.Fprintf(b, "Subtotal: %s\n", t.Subtotal)
	fmt.Fprintf(b, "Tax (%s%%): %s\n", strconv.FormatFloat(math.Round(rate*10000)/100, 'f', -1, 64), t.Tax)
	fmt.Fprintf(b, "Total: %s", t.Total)
}

func itemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func itemNames(items []domain.CatalogItem) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return strings.Join(names, ", ")
}

// withdrawnNotice tells the customer which cart items left the menu.
func withdrawnNotice(lines []domain.CartLine) string {
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = displayName(l.ItemKey)
	}
	verb := "is"
	if len(names) > 1 {
		verb = "are"
	}
	return fmt.Sprintf("⚠️ %s %s no longer available and was removed from your cart.", strings.Join(names, ", "), verb)
}

// displayName title-cases a catalog key for items the catalog no longer knows.
func displayName(key string) string {
	words := strings.Fields(key)
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}

func cartItemName(ctx context.Context, env *Env, key string) string {
	if it, err := env.Catalog.Get(ctx, key); err == nil {
		return it.Name
	}
	return key
}
