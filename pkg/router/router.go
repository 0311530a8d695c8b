package router

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/logging"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/composer"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/intent"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/observability"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

// Router is the conversation state machine:
// START -> INTENT_CLASSIFIED -> one handler -> END, once per message.
type Router struct {
	sessions   *session.Manager
	catalog    ports.Catalog
	ledger     *cart.Ledger
	classifier *intent.Classifier
	composer   *composer.Composer
	policy     memory.Policy
	completer  ports.Completer
	handlers   map[domain.Intent]Handler

	taxRate *float64
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
	hooks   domain.LifecycleHooks
	now     func() time.Time

	env *Env
}

// Option configures the Router.
type Option func(*Router)

// WithLedger uses an existing ledger instead of creating one over the catalog.
func WithLedger(l *cart.Ledger) Option {
	return func(r *Router) { r.ledger = l }
}

// WithTaxRate sets the tax rate of the ledger the router creates.
func WithTaxRate(rate float64) Option {
	return func(r *Router) { r.taxRate = &rate }
}

// WithMemoryPolicy overrides memory.DefaultPolicy.
func WithMemoryPolicy(p memory.Policy) Option {
	return func(r *Router) { r.policy = p }
}

func WithClassifier(c *intent.Classifier) Option {
	return func(r *Router) { r.classifier = c }
}

func WithComposer(c *composer.Composer) Option {
	return func(r *Router) { r.composer = c }
}

// WithCompleter enables completion-backed answers. A nil completer disables them.
func WithCompleter(c ports.Completer) Option {
	return func(r *Router) { r.completer = c }
}

// WithHandler replaces the handler for an intent.
func WithHandler(i domain.Intent, h Handler) Option {
	return func(r *Router) { r.handlers[i] = h }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Router) { r.tracer = t }
}

// WithLifecycleHooks registers callbacks for routing events.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(r *Router) { r.hooks = h }
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// New creates a Router over a catalog and a session manager.
func New(catalog ports.Catalog, sessions *session.Manager, opts ...Option) *Router {
	r := &Router{
		sessions:   sessions,
		catalog:    catalog,
		classifier: intent.New(),
		composer:   composer.New(),
		policy:     memory.DefaultPolicy(),
		handlers:   DefaultHandlers(),
		logger:     logging.NewNop(),
		tracer:     otel.Tracer(observability.TracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ledger == nil {
		var ledgerOpts []cart.Option
		if r.taxRate != nil {
			ledgerOpts = append(ledgerOpts, cart.WithTaxRate(*r.taxRate))
		}
		r.ledger = cart.New(catalog, sessions, ledgerOpts...)
	}
	r.env = &Env{
		Catalog:   catalog,
		Ledger:    r.ledger,
		Completer: r.completer,
		Composer:  r.composer,
		Logger:    r.logger,
	}
	return r
}

// DefaultHandlers is the static intent to handler table.
func DefaultHandlers() map[domain.Intent]Handler {
	return map[domain.Intent]Handler{
		domain.IntentMenu:         MenuHandler{},
		domain.IntentOrder:        OrderHandler{},
		domain.IntentConfirmation: ConfirmHandler{},
		domain.IntentGreeting:     GreetingHandler{},
		domain.IntentClarify:      ClarifyHandler{},
	}
}

// Ledger returns the cart ledger the router applies mutations through.
func (r *Router) Ledger() *cart.Ledger { return r.ledger }

// Policy returns the memory policy.
func (r *Router) Policy() memory.Policy { return r.policy }

// Route is the transition function. Needing clarification always selects CLARIFY;
// otherwise the intent table is used and unmapped intents fall back to the menu handler.
func (r *Router) Route(c intent.Classification) (domain.Intent, Handler) {
	target := c.Intent
	if c.NeedsClarification {
		target = domain.IntentClarify
	}
	if h, ok := r.handlers[target]; ok {
		return target, h
	}
	return target, r.handlers[domain.IntentMenu]
}

// turn is what one message produced inside the session lock.
type turn struct {
	result    domain.RoutingResult
	handler   string
	outcome   string
	evicted   int
	confirmed bool
}

// Process routes one message for a session. Messages of one session are serialized;
// different sessions run in parallel.
//
// Domain failures never surface as errors: they become a RoutingResult. An error is
// returned only for an empty session id, a canceled ctx or a failing session store,
// and in those cases no change is persisted.
func (r *Router) Process(ctx context.Context, sessionID, message string) (domain.RoutingResult, error) {
	if sessionID == "" {
		return domain.RoutingResult{}, domain.ErrEmptySessionID
	}

	ctx, span := r.tracer.Start(ctx, "router.Process", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("message.length", len(message)),
	))
	defer span.End()

	var (
		t      *turn
		before *domain.Session
	)
	after, err := r.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		before = s.Clone()
		var err error
		t, err = r.step(ctx, s, message)
		return err
	})
	if err != nil {
		observability.RecordError(span, err)
		r.metrics.MessageProcessed("none", observability.OutcomeError)
		return domain.RoutingResult{}, fmt.Errorf("failed to process message: %w", err)
	}

	span.SetAttributes(
		attribute.String("intent", string(t.result.Intent)),
		attribute.Float64("confidence", t.result.Confidence),
		attribute.String("handler", t.handler),
	)
	r.metrics.MessageProcessed(string(t.result.Intent), t.outcome)
	r.metrics.MemoryEvicted(t.evicted)
	if t.confirmed {
		r.metrics.OrderConfirmed()
	}
	r.emitCommit(ctx, before, after, t.evicted)

	return t.result, nil
}

// step runs one transition on the working copy s. It returns an error only when
// nothing may be committed.
func (r *Router) step(ctx context.Context, s *domain.Session, message string) (*turn, error) {
	relevant := r.policy.Relevant(s.Memory, message)
	cls := r.classifier.Classify(message, relevant)
	target, h := r.Route(cls)

	r.emitRoute(ctx, r.hooks.OnIntentClassified, domain.EventIntentClassified, &domain.RouteEvent{
		EventBase:  domain.EventBase{SessionID: s.ID},
		Intent:     cls.Intent,
		Confidence: cls.Confidence,
		Rule:       cls.Rule,
	})

	live, withdrawn, err := r.ledger.Partition(ctx, s.Cart)
	if err != nil {
		r.logger.Warn("Failed to check cart against the menu", "session_id", s.ID, "err", err)
		live, withdrawn = domain.CloneLines(s.Cart), nil
	}

	req := &Request{
		SessionID:      s.ID,
		Message:        message,
		Text:           intent.NewText(message),
		Classification: cls,
		Cart:           live,
		Withdrawn:      withdrawn,
		History:        relevant,
		Context:        memory.Format(relevant),
	}

	r.emitRoute(ctx, r.hooks.OnHandlerEnter, domain.EventHandlerEnter, &domain.RouteEvent{
		EventBase:  domain.EventBase{SessionID: s.ID},
		Intent:     target,
		Confidence: cls.Confidence,
		Handler:    h.Name(),
	})

	start := time.Now()
	reply, herr := r.invoke(ctx, h, req)
	var outcomes []cart.Outcome
	if herr == nil && ctx.Err() == nil {
		reply = dropWithdrawn(reply, withdrawn)
		outcomes, herr = r.ledger.Apply(ctx, s, reply.Mutations...)
	}
	elapsed := time.Since(start)
	r.metrics.HandlerObserved(h.Name(), elapsed)

	r.emitRoute(ctx, r.hooks.OnHandlerLeave, domain.EventHandlerLeave, &domain.RouteEvent{
		EventBase:  domain.EventBase{SessionID: s.ID},
		Intent:     target,
		Confidence: cls.Confidence,
		Handler:    h.Name(),
		Duration:   elapsed,
		IsError:    herr != nil,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := &turn{handler: h.Name(), outcome: observability.OutcomeOK}
	text := reply.Text
	var extras []domain.ContentBlock
	if herr != nil {
		r.logger.Warn("Handler failed",
			"session_id", s.ID,
			"handler", h.Name(),
			"intent", target,
			"err", herr,
		)
		text = Apology(h.Name())
		extras = append(extras, domain.ErrorBlock("handler_failure"))
		t.outcome = observability.OutcomeFailure
	} else {
		for _, f := range reply.Features {
			extras = append(extras, domain.FeatureBlock(f))
		}
	}

	composed := r.composer.Compose(text, extras...)
	s.Memory, t.evicted = r.policy.Append(s.Memory, domain.NewMemoryEntry(message, composed.Visible, r.now()))

	total, confirmed := confirmedTotal(outcomes)
	t.confirmed = confirmed
	if !confirmed {
		totals, err := r.ledger.TotalsOf(ctx, s.Cart)
		if err != nil {
			r.logger.Warn("Failed to price cart", "session_id", s.ID, "err", err)
		}
		total = totals.Total
	}

	t.result = domain.RoutingResult{
		Response:      composed.Visible,
		ContentBlocks: composed.Blocks,
		Intent:        target,
		Confidence:    cls.Confidence,
		CartState:     domain.CloneLines(s.Cart),
		Total:         total.Float(),
		Reasoning:     composed.Reasoning,
	}
	return t, nil
}

// invoke runs the handler, converting a panic into an error.
func (r *Router) invoke(ctx context.Context, h Handler, req *Request) (reply Reply, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Recovered handler panic",
				"session_id", req.SessionID,
				"handler", h.Name(),
				"panic", p,
			)
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, h.Name(), p)
		}
	}()
	return h.Handle(ctx, r.env, req)
}

// dropWithdrawn prepends the removal of withdrawn lines to a successful reply.
func dropWithdrawn(reply Reply, withdrawn []domain.CartLine) Reply {
	if len(withdrawn) == 0 {
		return reply
	}
	mutations := make([]cart.Mutation, 0, len(withdrawn)+len(reply.Mutations))
	for _, l := range withdrawn {
		mutations = append(mutations, cart.Remove(l.ItemKey))
	}
	reply.Mutations = append(mutations, reply.Mutations...)
	reply.Text = withdrawnNotice(withdrawn) + "\n\n" + reply.Text
	if !slices.Contains(reply.Features, featureCart) {
		reply.Features = append(reply.Features, featureCart)
	}
	return reply
}

func confirmedTotal(outcomes []cart.Outcome) (domain.Money, bool) {
	for _, o := range outcomes {
		if o.Mutation.Op == cart.OpConfirm {
			return o.Totals.Total, true
		}
	}
	return 0, false
}

func (r *Router) emitRoute(ctx context.Context, hook func(context.Context, *domain.RouteEvent), typ domain.EventType, e *domain.RouteEvent) {
	if hook == nil {
		return
	}
	e.Type = typ
	e.Timestamp = r.now()
	hook(ctx, e)
}

func (r *Router) emitCommit(ctx context.Context, before, after *domain.Session, evicted int) {
	if r.hooks.OnCommit == nil {
		return
	}
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	r.hooks.OnCommit(ctx, &domain.CommitEvent{
		EventBase: domain.EventBase{
			Timestamp: r.now(),
			Type:      domain.EventSessionCommit,
			SessionID: after.ID,
		},
		Diff:    *diff,
		Evicted: evicted,
	})
}
