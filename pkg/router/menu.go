package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/intent"
)

// categoryOrder fixes how the full menu is grouped; unknown categories follow alphabetically.
var categoryOrder = []string{"coffee", "pastry", "food"}

var categoryTerms = map[string][]string{
	"coffee": {"coffee", "coffees", "drinks", "drink"},
	"pastry": {"pastry", "pastries", "baked", "sweets"},
	"food":   {"food", "breakfast", "lunch", "eat", "savory"},
}

var (
	recommendTerms = []string{"recommend", "recommendation", "recommendations", "suggest", "suggestion", "what's good", "best", "popular", "favorite", "favourite"}
	sweetTerms     = []string{"sweet", "chocolate", "dessert", "treat"}
	strongTerms    = []string{"strong", "bold", "caffeine", "wake", "energy"}
)

// MenuHandler lists the menu, filters it by category and recommends items.
// With a Completer, open questions get a conversational answer.
type MenuHandler struct{}

func (MenuHandler) Name() string { return HandlerMenu }

func (MenuHandler) Handle(ctx context.Context, env *Env, req *Request) (Reply, error) {
	items, err := env.Catalog.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to list catalog: %w", err)
	}

	category := requestedCategory(req.Text)
	explicit := req.Text.Has("menu") || category != ""

	if !explicit {
		if out, ok := env.Complete(ctx, HandlerMenu, menuPrompt(items, req)); ok {
			return Reply{Text: out, Features: []string{"menu"}}, nil
		}
	}

	if req.Text.Has(recommendTerms...) {
		return Reply{Text: recommend(req.Text, items), Features: []string{"recommendation"}}, nil
	}
	return Reply{Text: renderMenu(items, category), Features: []string{"menu"}}, nil
}

func requestedCategory(text intent.Text) string {
	for _, c := range categoryOrder {
		if text.Has(categoryTerms[c]...) {
			return c
		}
	}
	return ""
}

// recommend picks by taste: sweet, strong, or the house favourite.
func recommend(text intent.Text, items []domain.CatalogItem) string {
	var picks []string
	switch {
	case text.Has(sweetTerms...):
		picks = []string{"mocha"}
	case text.Has(strongTerms...):
		picks = []string{"espresso", "americano"}
	default:
		picks = []string{"latte"}
	}

	byKey := make(map[string]domain.CatalogItem, len(items))
	for _, it := range items {
		byKey[it.Key] = it
	}

	var lines []string
	for _, k := range picks {
		if it, ok := byKey[k]; ok {
			lines = append(lines, fmt.Sprintf("• %s (%s): %s", it.Name, it.Price, it.Description))
		}
	}
	if len(lines) == 0 {
		return renderMenu(items, "")
	}
	return "I'd recommend:\n" + strings.Join(lines, "\n") + "\n\nJust tell me what you'd like to add!"
}

// renderMenu lists items grouped by category. A non-empty category restricts the listing.
func renderMenu(items []domain.CatalogItem, category string) string {
	groups := make(map[string][]domain.CatalogItem)
	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		groups[it.Category] = append(groups[it.Category], it)
	}
	if len(groups) == 0 {
		if category != "" {
			return fmt.Sprintf("We don't have any %s items right now. Say 'menu' to see everything.", category)
		}
		return "Our menu is empty right now. Please check back soon."
	}

	var b strings.Builder
	b.WriteString("☕ Our Menu\n")
	for _, c := range orderedCategories(groups) {
		fmt.Fprintf(&b, "\n%s:\n", titleCase(c))
		for _, it := range groups[c] {
			fmt.Fprintf(&b, "• %s: %s", it.Name, it.Price)
			if it.Description != "" {
				fmt.Fprintf(&b, " - %s", it.Description)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\nWhat would you like? Say something like 'add a latte'.")
	return b.String()
}

func orderedCategories(groups map[string][]domain.CatalogItem) []string {
	out := make([]string, 0, len(groups))
	known := make(map[string]bool, len(categoryOrder))
	for _, c := range categoryOrder {
		known[c] = true
		if _, ok := groups[c]; ok {
			out = append(out, c)
		}
	}
	var rest []string
	for c := range groups {
		if !known[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const menuPromptTemplate = `You are a friendly barista at a café. Answer the customer briefly using only this menu:
%s
Conversation so far:
%s

Customer: %s`

func menuPrompt(items []domain.CatalogItem, req *Request) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", it.Name, it.Category, it.Price, it.Description)
	}
	return fmt.Sprintf(menuPromptTemplate, b.String(), req.Context, req.Message)
}
