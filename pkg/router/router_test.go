package router_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	memadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/intent"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/observability"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/router"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	router   *router.Router
	sessions *session.Manager
	catalog  *memadapter.Catalog
}

func newFixture(t *testing.T, opts ...router.Option) fixture {
	t.Helper()
	catalog := memadapter.NewDefaultCatalog()
	sessions := session.NewManager(memadapter.NewStore())
	return fixture{
		router:   router.New(catalog, sessions, opts...),
		sessions: sessions,
		catalog:  catalog,
	}
}

func (f fixture) process(t *testing.T, sessionID, message string) domain.RoutingResult {
	t.Helper()
	res, err := f.router.Process(context.Background(), sessionID, message)
	require.NoError(t, err)
	return res
}

func (f fixture) session(t *testing.T, id string) *domain.Session {
	t.Helper()
	s, err := f.sessions.Load(context.Background(), id)
	require.NoError(t, err)
	return s
}

func TestProcess_AddLatte(t *testing.T) {
	f := newFixture(t)

	res := f.process(t, "s1", "add a latte")

	assert.Equal(t, domain.IntentOrder, res.Intent)
	assert.GreaterOrEqual(t, res.Confidence, 0.7)
	assert.Equal(t, []domain.CartLine{{ItemKey: "latte", Quantity: 1}}, res.CartState)
	assert.Contains(t, res.Response, "Added 1x Latte ($4.50 each)")
	assert.InDelta(t, 4.86, res.Total, 1e-9)
	assert.Equal(t, domain.TextBlock(res.Response), res.ContentBlocks[0])
	assert.Contains(t, res.ContentBlocks, domain.FeatureBlock("cart_updated"))
}

func TestProcess_ConfirmComputesTotalAndClears(t *testing.T) {
	f := newFixture(t)
	f.process(t, "order-12345678-abc", "add a latte")

	res := f.process(t, "order-12345678-abc", "confirm")

	assert.Equal(t, domain.IntentConfirmation, res.Intent)
	assert.InDelta(t, 4.86, res.Total, 1e-9)
	assert.Empty(t, res.CartState)
	assert.Contains(t, res.Response, "Order confirmed! Order #order-12")
	assert.Contains(t, res.Response, "Total: $4.86")

	s := f.session(t, "order-12345678-abc")
	assert.Empty(t, s.Cart)
	assert.Equal(t, 1, s.Orders)
}

func TestProcess_ConfirmEmptyCart(t *testing.T) {
	f := newFixture(t)

	res := f.process(t, "s1", "confirm")

	assert.Equal(t, domain.IntentConfirmation, res.Intent)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.CartState)
	assert.Contains(t, res.Response, "Your cart is empty")
	assert.Zero(t, f.session(t, "s1").Orders)
}

func TestProcess_Greeting(t *testing.T) {
	f := newFixture(t)

	res := f.process(t, "s1", "hello")

	assert.Equal(t, domain.IntentGreeting, res.Intent)
	assert.Empty(t, res.CartState)
	assert.Contains(t, res.Response, "Welcome")
}

func TestProcess_UnknownItem(t *testing.T) {
	f := newFixture(t)

	res := f.process(t, "s1", "add a unicorn-latte")

	assert.Equal(t, domain.IntentOrder, res.Intent)
	assert.Contains(t, res.Response, `couldn't find "unicorn-latte"`)
	assert.Empty(t, res.CartState)
	assert.Empty(t, f.session(t, "s1").Cart)
}

func TestProcess_LowConfidenceClarifies(t *testing.T) {
	f := newFixture(t)

	res := f.process(t, "s1", "blorp zzz")

	assert.Equal(t, domain.IntentClarify, res.Intent)
	assert.Equal(t, intent.ConfidenceFallback, res.Confidence)
	assert.Contains(t, res.Response, "Could you rephrase")
}

func TestProcess_EmptySessionID(t *testing.T) {
	f := newFixture(t)
	_, err := f.router.Process(context.Background(), "", "hello")
	assert.ErrorIs(t, err, domain.ErrEmptySessionID)
}

func TestProcess_OrderConversation(t *testing.T) {
	f := newFixture(t)

	res := f.process(t, "s1", "add 2 lattes and a blueberry muffin")
	assert.Equal(t, []domain.CartLine{
		{ItemKey: "latte", Quantity: 2},
		{ItemKey: "blueberry muffin", Quantity: 1},
	}, res.CartState)

	res = f.process(t, "s1", "I'd like two croissants")
	assert.Len(t, res.CartState, 3)

	res = f.process(t, "s1", "remove the croissant")
	assert.Contains(t, res.Response, "Removed Croissant")
	assert.Len(t, res.CartState, 2)

	res = f.process(t, "s1", "show my cart")
	assert.Contains(t, res.Response, "2x Latte: $9.00")
	assert.Contains(t, res.Response, "Subtotal: $12.00")
	assert.Contains(t, res.Response, "Tax (8%): $0.96")
	assert.InDelta(t, 12.96, res.Total, 1e-9)

	res = f.process(t, "s1", "clear my cart")
	assert.Empty(t, res.CartState)
}

func TestProcess_RemoveMissingLineIsReported(t *testing.T) {
	f := newFixture(t)
	f.process(t, "s1", "add a latte")

	res := f.process(t, "s1", "remove the mocha")

	assert.Contains(t, res.Response, "Mocha isn't in your cart.")
	assert.Equal(t, []domain.CartLine{{ItemKey: "latte", Quantity: 1}}, res.CartState)
}

func TestProcess_AffirmativeAfterPromptConfirms(t *testing.T) {
	f := newFixture(t)
	f.process(t, "s1", "add a mocha")

	res := f.process(t, "s1", "sure")

	assert.Equal(t, domain.IntentConfirmation, res.Intent)
	assert.InDelta(t, 5.40, res.Total, 1e-9)
}

func TestProcess_MenuListing(t *testing.T) {
	f := newFixture(t)

	res := f.process(t, "s1", "show me the menu")
	assert.Equal(t, domain.IntentMenu, res.Intent)
	assert.Contains(t, res.Response, "Coffee:")
	assert.Contains(t, res.Response, "• Avocado Toast: $6.00")

	res = f.process(t, "s1", "what pastries do you have")
	assert.Contains(t, res.Response, "Croissant")
	assert.NotContains(t, res.Response, "Espresso")

	res = f.process(t, "s1", "can you recommend something sweet")
	assert.Contains(t, res.Response, "Mocha ($5.00)")
}

func TestProcess_TaxRateIsConfigurable(t *testing.T) {
	f := newFixture(t, router.WithTaxRate(0.10))
	f.process(t, "s1", "add a latte")

	res := f.process(t, "s1", "confirm")
	assert.InDelta(t, 4.95, res.Total, 1e-9)
}

func TestProcess_MemoryIsSaved(t *testing.T) {
	f := newFixture(t)
	f.process(t, "s1", "hello")
	f.process(t, "s1", "add a latte")

	s := f.session(t, "s1")
	require.Len(t, s.Memory, 2)
	assert.Equal(t, "hello", s.Memory[0].UserText)
	assert.Contains(t, s.Memory[1].AssistantText, "Added 1x Latte")
}

func TestProcess_HandlerFailureKeepsCart(t *testing.T) {
	failing := router.NewHandler(router.HandlerOrder, func(ctx context.Context, env *router.Env, req *router.Request) (router.Reply, error) {
		return router.Reply{Mutations: []cart.Mutation{cart.Add("latte", 1)}}, errors.New("boom")
	})
	f := newFixture(t, router.WithHandler(domain.IntentOrder, failing))

	res := f.process(t, "s1", "add a latte")

	assert.Equal(t, domain.IntentOrder, res.Intent, "intent stays the classified one")
	assert.Equal(t, "I'm having trouble with your order. Please try again.", res.Response)
	assert.Contains(t, res.ContentBlocks, domain.ErrorBlock("handler_failure"))
	assert.Empty(t, res.CartState)

	s := f.session(t, "s1")
	assert.Empty(t, s.Cart)
	require.Len(t, s.Memory, 1, "the message is never lost")
}

func TestProcess_HandlerPanicIsRecovered(t *testing.T) {
	panicking := router.NewHandler(router.HandlerMenu, func(ctx context.Context, env *router.Env, req *router.Request) (router.Reply, error) {
		panic("nil map")
	})
	f := newFixture(t, router.WithHandler(domain.IntentMenu, panicking))

	res := f.process(t, "s1", "show me the menu")

	assert.Equal(t, domain.IntentMenu, res.Intent)
	assert.Equal(t, "I'm having trouble with the menu right now. Please try again.", res.Response)
}

func TestProcess_InvalidMutationIsNotCommitted(t *testing.T) {
	bad := router.NewHandler(router.HandlerOrder, func(ctx context.Context, env *router.Env, req *router.Request) (router.Reply, error) {
		return router.Reply{
			Text:      "done",
			Mutations: []cart.Mutation{cart.Add("latte", 1), cart.Add("unicorn latte", 1)},
		}, nil
	})
	f := newFixture(t, router.WithHandler(domain.IntentOrder, bad))

	res := f.process(t, "s1", "add a latte")

	assert.Equal(t, router.Apology(router.HandlerOrder), res.Response)
	assert.Empty(t, f.session(t, "s1").Cart)
}

func TestProcess_CancellationCommitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	canceling := router.NewHandler(router.HandlerOrder, func(ctx context.Context, env *router.Env, req *router.Request) (router.Reply, error) {
		cancel()
		return router.Reply{Text: "added", Mutations: []cart.Mutation{cart.Add("latte", 1)}}, nil
	})
	f := newFixture(t, router.WithHandler(domain.IntentOrder, canceling))

	_, err := f.router.Process(ctx, "s1", "add a latte")
	require.ErrorIs(t, err, context.Canceled)

	_, err = f.sessions.Load(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestProcess_SameSessionIsSerialized(t *testing.T) {
	f := newFixture(t)
	const n = 40

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.router.Process(context.Background(), "shared", "add a latte")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s := f.session(t, "shared")
	require.Len(t, s.Cart, 1)
	assert.Equal(t, n, s.Cart[0].Quantity, "no lost updates")
}

func TestProcess_SessionsAreIndependent(t *testing.T) {
	f := newFixture(t)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("s-%d", i)
		g.Go(func() error {
			for j := 0; j <= i%3; j++ {
				if _, err := f.router.Process(ctx, id, "add a mocha"); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < 10; i++ {
		s := f.session(t, fmt.Sprintf("s-%d", i))
		require.Len(t, s.Cart, 1)
		assert.Equal(t, i%3+1, s.Cart[0].Quantity)
	}
}

func TestProcess_CompletionOrderAction(t *testing.T) {
	completer := ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "<thinking>Two chocolate drinks.</thinking>\nADD: 2 mocha", nil
	})
	f := newFixture(t, router.WithCompleter(completer))

	res := f.process(t, "s1", "I want two chocolatey coffees")

	assert.Equal(t, []domain.CartLine{{ItemKey: "mocha", Quantity: 2}}, res.CartState)
	assert.Contains(t, res.Response, "Added 2x Mocha")
}

func TestProcess_CompletionFailureFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		completer ports.Completer
	}{
		{"error", ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("throttled")
		})},
		{"unparseable", ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
			return "I think they want coffee", nil
		})},
		{"empty", ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
			return "   ", nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, router.WithCompleter(tt.completer))

			res := f.process(t, "s1", "add a latte")

			assert.Equal(t, []domain.CartLine{{ItemKey: "latte", Quantity: 1}}, res.CartState)
			assert.Contains(t, res.Response, "Added 1x Latte")
		})
	}
}

func TestProcess_CompletionMenuAnswerWithReasoning(t *testing.T) {
	completer := ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "<thinking>They like chocolate.</thinking>\n\nTry our Mocha ($5.00)!", nil
	})
	f := newFixture(t, router.WithCompleter(completer))

	res := f.process(t, "s1", "what's good for someone who likes chocolate?")

	assert.Equal(t, domain.IntentMenu, res.Intent)
	assert.Equal(t, "Try our Mocha ($5.00)!", res.Response)
	assert.Equal(t, "They like chocolate.", res.Reasoning)
	assert.True(t, res.HasReasoning())
	assert.Equal(t, domain.ReasoningBlock("They like chocolate."), res.ContentBlocks[0])
	assert.Equal(t, "Try our Mocha ($5.00)!", f.session(t, "s1").Memory[0].AssistantText)
}

func TestProcess_Hooks(t *testing.T) {
	var (
		rules   []string
		handled []string
		commits []domain.CommitEvent
	)
	hooks := domain.LifecycleHooks{
		OnIntentClassified: func(ctx context.Context, e *domain.RouteEvent) { rules = append(rules, e.Rule) },
		OnHandlerLeave:     func(ctx context.Context, e *domain.RouteEvent) { handled = append(handled, e.Handler) },
		OnCommit:           func(ctx context.Context, e *domain.CommitEvent) { commits = append(commits, *e) },
	}
	f := newFixture(t, router.WithLifecycleHooks(hooks))

	f.process(t, "s1", "add a latte")
	f.process(t, "s1", "confirm")

	assert.Equal(t, []string{"cart-or-add", "confirm"}, rules)
	assert.Equal(t, []string{router.HandlerOrder, router.HandlerConfirm}, handled)
	require.Len(t, commits, 2)
	assert.Equal(t, map[string]int{"latte": 1}, commits[0].Diff.Cart)
	assert.Equal(t, map[string]int{"latte": 0}, commits[1].Diff.Cart)
	require.NotNil(t, commits[1].Diff.Orders)
	assert.Equal(t, 1, *commits[1].Diff.Orders)
}

func TestProcess_Metrics(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	f := newFixture(t, router.WithMetrics(m))

	f.process(t, "s1", "add a latte")
	f.process(t, "s1", "confirm")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessageCounter.WithLabelValues("ORDER", observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessageCounter.WithLabelValues("CONFIRMATION", observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirmations))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HandlerDuration))
}

func TestRoute(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		in          intent.Classification
		wantIntent  domain.Intent
		wantHandler string
	}{
		{"order", intent.Classification{Intent: domain.IntentOrder, Confidence: 0.9}, domain.IntentOrder, router.HandlerOrder},
		{"clarification overrides", intent.Classification{Intent: domain.IntentOrder, Confidence: 0.5, NeedsClarification: true}, domain.IntentClarify, router.HandlerClarify},
		{"unmapped falls back to menu", intent.Classification{Intent: domain.Intent("REFUND"), Confidence: 0.9}, domain.Intent("REFUND"), router.HandlerMenu},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, h := f.router.Route(tt.in)
			assert.Equal(t, tt.wantIntent, got)
			assert.Equal(t, tt.wantHandler, h.Name())
		})
	}
}

func TestProcess_WithdrawnItemInCart(t *testing.T) {
	withdrawLatte := func(t *testing.T, f fixture) {
		t.Helper()
		require.NoError(t, f.catalog.Set(domain.CatalogItem{
			Key: "latte", Name: "Latte", Price: 450, Category: "coffee", Available: false,
		}))
	}

	tests := []struct {
		name      string
		setup     []string
		message   string
		wantCart  []domain.CartLine
		wantTotal float64
		contains  string
	}{
		{"add another item", []string{"add a latte"}, "add a mocha", []domain.CartLine{{ItemKey: "mocha", Quantity: 1}}, 5.40, "Added 1x Mocha"},
		{"show cart", []string{"add a latte", "add a mocha"}, "show my cart", []domain.CartLine{{ItemKey: "mocha", Quantity: 1}}, 5.40, "1x Mocha"},
		{"confirm with live items", []string{"add a latte", "add a mocha"}, "confirm", []domain.CartLine{}, 5.40, "Order confirmed"},
		{"confirm with nothing left", []string{"add a latte"}, "confirm", []domain.CartLine{}, 0, "Your cart is empty"},
		{"remove the withdrawn item", []string{"add a latte"}, "remove the latte", []domain.CartLine{}, 0, "Your cart is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for _, msg := range tt.setup {
				f.process(t, "s1", msg)
			}
			withdrawLatte(t, f)

			res := f.process(t, "s1", tt.message)

			assert.NotContains(t, res.Response, "trouble")
			assert.Contains(t, res.Response, "Latte is no longer available and was removed from your cart.")
			assert.Contains(t, res.Response, tt.contains)
			assert.ElementsMatch(t, tt.wantCart, res.CartState)
			assert.InDelta(t, tt.wantTotal, res.Total, 1e-9)
			assert.ElementsMatch(t, tt.wantCart, f.session(t, "s1").Cart)
		})
	}
}
