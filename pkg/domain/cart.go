package domain

// CartLine is one item in a cart. Quantity is always >= 1.
type CartLine struct {
	ItemKey  string `json:"item_key"`
	Quantity int    `json:"quantity"`
}

// Totals is the price breakdown of a cart.
type Totals struct {
	Subtotal Money `json:"subtotal"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

// NewTotals derives tax and total from a subtotal and a tax rate.
func NewTotals(subtotal Money, taxRate float64) Totals {
	tax := subtotal.ApplyRate(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// CloneLines returns an independent copy of lines.
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
