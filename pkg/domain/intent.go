package domain

import (
	"fmt"
	"strings"
)

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentMenu         Intent = "MENU"         // Browsing, recommendations, default fallback
	IntentOrder        Intent = "ORDER"        // Add, remove, view cart
	IntentConfirmation Intent = "CONFIRMATION" // Place the order
	IntentGreeting     Intent = "GREETING"     // Hello / help
	IntentClarify      Intent = "CLARIFY"      // Low-confidence override
)

// Intents lists every intent in declaration order.
var Intents = []Intent{IntentMenu, IntentOrder, IntentConfirmation, IntentGreeting, IntentClarify}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}

// ParseIntent converts a case-insensitive name into an Intent.
func ParseIntent(s string) (Intent, error) {
	i := Intent(strings.ToUpper(strings.TrimSpace(s)))
	if !i.Valid() {
		return "", fmt.Errorf("unknown intent %q", s)
	}
	return i, nil
}
