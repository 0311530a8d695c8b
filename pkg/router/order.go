package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/intent"
)

type actionKind int

const (
	actionAdd actionKind = iota
	actionRemove
	actionShow
	actionClear
	actionClarify
)

const (
	featureCart  = "cart_updated"
	featureOrder = "order_confirmed"
)

// orderAction is the parsed meaning of an ORDER message.
type orderAction struct {
	kind    actionKind
	items   []itemMatch
	unknown []string
}

var (
	removeTerms = []string{"remove", "delete", "take off", "drop", "cancel"}
	clearTerms  = []string{"clear", "empty my cart", "start over", "cancel"}
	showTerms   = []string{"cart", "total", "show cart", "my cart", "view cart", "my order"}
)

// OrderHandler adds, removes and lists cart items. With a Completer it first asks for
// a single action line; anything unusable falls back to the rule-based parser.
type OrderHandler struct{}

func (OrderHandler) Name() string { return HandlerOrder }

func (h OrderHandler) Handle(ctx context.Context, env *Env, req *Request) (Reply, error) {
	items, err := env.Catalog.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to list catalog: %w", err)
	}

	if action, ok := completionAction(ctx, env, req, items); ok {
		return h.execute(ctx, env, req, items, action)
	}
	return h.execute(ctx, env, req, items, ruleAction(req.Text, items))
}

// ruleAction derives the action deterministically from the message.
func ruleAction(text intent.Text, items []domain.CatalogItem) orderAction {
	matches, leftover := findItems(text.Tokens, items)

	switch {
	case text.Has(removeTerms...) && len(matches) > 0:
		return orderAction{kind: actionRemove, items: matches, unknown: leftover}
	case text.Has(clearTerms...):
		return orderAction{kind: actionClear}
	case text.Has(removeTerms...):
		return orderAction{kind: actionRemove, unknown: leftover}
	case len(matches) > 0:
		return orderAction{kind: actionAdd, items: matches, unknown: leftover}
	case text.Has(intent.ConfirmVerbs...), text.Has(showTerms...):
		return orderAction{kind: actionShow}
	}
	return orderAction{kind: actionAdd, unknown: leftover}
}

const orderPrompt = `You are the order desk of a café. Decide what the customer wants and reply with exactly one line:
ADD: <item>[, <item>...]    (prefix a number for more than one, e.g. "2 latte")
REMOVE: <item>[, <item>...]
SHOW_CART
CLARIFY

Menu items: %s
Current cart: %s

Conversation so far:
%s

Customer: %s`

// completionAction asks the Completer for an action line.
func completionAction(ctx context.Context, env *Env, req *Request, items []domain.CatalogItem) (orderAction, bool) {
	if env.Completer == nil {
		return orderAction{}, false
	}
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	current := "empty"
	if len(req.Cart) > 0 {
		parts := make([]string, len(req.Cart))
		for i, l := range req.Cart {
			parts[i] = fmt.Sprintf("%dx %s", l.Quantity, l.ItemKey)
		}
		current = strings.Join(parts, ", ")
	}

	prompt := fmt.Sprintf(orderPrompt, strings.Join(keys, ", "), current, req.Context, req.Message)
	out, ok := env.Complete(ctx, HandlerOrder, prompt)
	if !ok {
		return orderAction{}, false
	}
	_, visible, _ := env.Composer.Split(env.Composer.Strip(out))
	action, ok := parseActionLine(visible, items)
	if !ok {
		env.Logger.Debug("Unparseable order action, using rule-based fallback", "session_id", req.SessionID)
	}
	return action, ok
}

// parseActionLine reads the first recognizable action line of a completion.
func parseActionLine(text string, items []domain.CatalogItem) (orderAction, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "SHOW_CART"):
			return orderAction{kind: actionShow}, true
		case strings.HasPrefix(upper, "CLARIFY"):
			return orderAction{kind: actionClarify}, true
		case strings.HasPrefix(upper, "ADD:"):
			return namedAction(actionAdd, line[len("ADD:"):], items)
		case strings.HasPrefix(upper, "REMOVE:"):
			return namedAction(actionRemove, line[len("REMOVE:"):], items)
		}
	}
	return orderAction{}, false
}

func namedAction(kind actionKind, list string, items []domain.CatalogItem) (orderAction, bool) {
	action := orderAction{kind: kind}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m, ok := resolveName(part, items); ok {
			action.items = append(action.items, m)
		} else {
			action.unknown = append(action.unknown, part)
		}
	}
	if len(action.items) == 0 && len(action.unknown) == 0 {
		return orderAction{}, false
	}
	return action, true
}

func (h OrderHandler) execute(ctx context.Context, env *Env, req *Request, items []domain.CatalogItem, a orderAction) (Reply, error) {
	switch a.kind {
	case actionAdd:
		return h.add(ctx, env, req, items, a)
	case actionRemove:
		return h.remove(ctx, env, req, a)
	case actionClear:
		if len(req.Cart) == 0 {
			return Reply{Text: emptyCartText}, nil
		}
		return Reply{
			Text:      "🗑️ Your cart has been cleared.",
			Mutations: []cart.Mutation{cart.Clear()},
			Features:  []string{featureCart},
		}, nil
	case actionClarify:
		return Reply{Text: "Which item would you like? We have: " + itemNames(items) + "."}, nil
	}

	text, err := renderCart(ctx, env, req.Cart)
	if err != nil {
		return Reply{}, err
	}
	if len(req.Cart) > 0 {
		text += "\n\n" + confirmHint
	}
	return Reply{Text: text}, nil
}

func (OrderHandler) add(ctx context.Context, env *Env, req *Request, items []domain.CatalogItem, a orderAction) (Reply, error) {
	if len(a.items) == 0 {
		if len(a.unknown) > 0 {
			return Reply{Text: notFoundText(a.unknown, items)}, nil
		}
		if len(req.Cart) > 0 {
			text, err := renderCart(ctx, env, req.Cart)
			if err != nil {
				return Reply{}, err
			}
			return Reply{Text: "What else can I get you?\n\n" + text + "\n\n" + confirmHint}, nil
		}
		return Reply{Text: "What would you like to order? We have: " + itemNames(items) + "."}, nil
	}

	mutations := make([]cart.Mutation, len(a.items))
	for i, m := range a.items {
		mutations[i] = cart.Add(m.Item.Key, m.Quantity)
	}
	_, lines, err := env.Preview(ctx, req.Cart, mutations...)
	if err != nil {
		return Reply{}, err
	}
	totals, err := env.Ledger.TotalsOf(ctx, lines)
	if err != nil {
		return Reply{}, err
	}

	var b strings.Builder
	for _, m := range a.items {
		fmt.Fprintf(&b, "✓ Added %dx %s (%s each)\n", m.Quantity, m.Item.Name, m.Item.Price)
	}
	if len(a.unknown) > 0 {
		fmt.Fprintf(&b, "(I couldn't find %q on our menu.)\n", strings.Join(a.unknown, " "))
	}
	fmt.Fprintf(&b, "\nCart subtotal: %s (%s)\nAnything else? %s",
		totals.Subtotal, plural(itemCount(lines), "item"), confirmHint)

	return Reply{Text: b.String(), Mutations: mutations, Features: []string{featureCart}}, nil
}

func (OrderHandler) remove(ctx context.Context, env *Env, req *Request, a orderAction) (Reply, error) {
	if len(req.Cart) == 0 {
		return Reply{Text: emptyCartText}, nil
	}
	if len(a.items) == 0 {
		text, err := renderCart(ctx, env, req.Cart)
		if err != nil {
			return Reply{}, err
		}
		if len(req.Withdrawn) > 0 && withdrawnMentioned(a.unknown, req.Withdrawn) {
			return Reply{Text: text}, nil
		}
		return Reply{Text: "Which item would you like to remove?\n\n" + text}, nil
	}

	inCart := make(map[string]bool, len(req.Cart))
	for _, l := range req.Cart {
		inCart[l.ItemKey] = true
	}

	var (
		b         strings.Builder
		mutations []cart.Mutation
	)
	for _, m := range a.items {
		if !inCart[m.Item.Key] {
			fmt.Fprintf(&b, "%s isn't in your cart.\n", m.Item.Name)
			continue
		}
		mutations = append(mutations, cart.Remove(m.Item.Key))
		fmt.Fprintf(&b, "✓ Removed %s from your cart.\n", m.Item.Name)
	}

	_, lines, err := env.Preview(ctx, req.Cart, mutations...)
	if err != nil {
		return Reply{}, err
	}
	rest, err := renderCart(ctx, env, lines)
	if err != nil {
		return Reply{}, err
	}
	b.WriteString("\n")
	b.WriteString(rest)

	reply := Reply{Text: b.String(), Mutations: mutations}
	if len(mutations) > 0 {
		reply.Features = []string{featureCart}
	}
	return reply, nil
}

// withdrawnMentioned reports whether leftover words name a withdrawn cart line,
// which the router removes on its own.
func withdrawnMentioned(words []string, withdrawn []domain.CartLine) bool {
	if len(words) == 0 {
		return false
	}
	for _, l := range withdrawn {
		if _, left := findItems(words, []domain.CatalogItem{{Key: l.ItemKey}}); len(left) < len(words) {
			return true
		}
	}
	return false
}

func notFoundText(unknown []string, items []domain.CatalogItem) string {
	return fmt.Sprintf("Sorry, I couldn't find %q on our menu. We have: %s. Try something like 'add a latte'.",
		strings.Join(unknown, " "), itemNames(items))
}
