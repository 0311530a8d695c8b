package domain

import (
	"fmt"
	"strings"
)

// CatalogItem is a sellable item. It is immutable within a request.
type CatalogItem struct {
	// Key is the lower-cased canonical name and uniquely identifies the item.
	Key         string `json:"key"`
	Name        string `json:"name"`
	Price       Money  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Available   bool   `json:"available"`
}

// Validate checks the item invariants.
func (c CatalogItem) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("catalog item %q: empty key", c.Name)
	}
	if c.Key != NormalizeKey(c.Key) {
		return fmt.Errorf("catalog item %q: key must be normalized", c.Key)
	}
	if c.Price < 0 {
		return fmt.Errorf("catalog item %q: %w", c.Key, ErrInvalidPrice)
	}
	return nil
}

// NormalizeKey lower-cases a display name and collapses inner whitespace.
func NormalizeKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DefaultCatalog returns the house menu.
func DefaultCatalog() []CatalogItem {
	return []CatalogItem{
		{Key: "espresso", Name: "Espresso", Price: 250, Description: "Rich and bold single shot", Category: "coffee", Available: true},
		{Key: "americano", Name: "Americano", Price: 300, Description: "Espresso with hot water", Category: "coffee", Available: true},
		{Key: "latte", Name: "Latte", Price: 450, Description: "Espresso with steamed milk", Category: "coffee", Available: true},
		{Key: "cappuccino", Name: "Cappuccino", Price: 400, Description: "Espresso with foamed milk", Category: "coffee", Available: true},
		{Key: "mocha", Name: "Mocha", Price: 500, Description: "Espresso with chocolate and steamed milk", Category: "coffee", Available: true},
		{Key: "croissant", Name: "Croissant", Price: 350, Description: "Buttery, flaky pastry", Category: "pastry", Available: true},
		{Key: "blueberry muffin", Name: "Blueberry Muffin", Price: 300, Description: "Fresh baked with real blueberries", Category: "pastry", Available: true},
		{Key: "avocado toast", Name: "Avocado Toast", Price: 600, Description: "Smashed avocado on sourdough", Category: "food", Available: true},
	}
}
