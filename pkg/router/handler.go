package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/composer"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/intent"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
)

// Handler names, used for logs, metrics and apologies.
const (
	HandlerMenu     = "menu"
	HandlerOrder    = "order"
	HandlerConfirm  = "confirm"
	HandlerGreeting = "greeting"
	HandlerClarify  = "clarify"
)

// ErrHandlerPanic wraps a panic recovered from a handler.
var ErrHandlerPanic = errors.New("handler panicked")

// Request is the read-only view of a session a handler works from.
type Request struct {
	SessionID      string
	Message        string
	Text           intent.Text
	Classification intent.Classification

	// Cart is a copy of the session cart in first-add order, without withdrawn lines.
	Cart []domain.CartLine
	// Withdrawn are cart lines whose item left the menu. The router removes them
	// once the handler succeeds.
	Withdrawn []domain.CartLine
	// History is the relevant memory for Message, chronological.
	History []domain.MemoryEntry
	// Context is History formatted as a transcript.
	Context string
}

// Reply is what a handler produces. Cart changes are described by Mutations and
// applied by the router after the handler returns.
type Reply struct {
	Text      string
	Mutations []cart.Mutation
	// Features are appended to the reply as feature content blocks.
	Features []string
}

// Handler produces the reply for one routed intent.
// Implementations must not mutate shared state.
type Handler interface {
	Name() string
	Handle(ctx context.Context, env *Env, req *Request) (Reply, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env *Env, req *Request) (Reply, error)

type namedHandler struct {
	name string
	fn   HandlerFunc
}

// NewHandler creates a Handler from a function.
func NewHandler(name string, fn HandlerFunc) Handler {
	return namedHandler{name: name, fn: fn}
}

func (h namedHandler) Name() string { return h.name }

func (h namedHandler) Handle(ctx context.Context, env *Env, req *Request) (Reply, error) {
	return h.fn(ctx, env, req)
}

// Env carries the collaborators handlers may read from.
type Env struct {
	Catalog ports.Catalog
	Ledger  *cart.Ledger
	// Completer is nil when completion is disabled.
	Completer ports.Completer
	Composer  *composer.Composer
	Logger    *slog.Logger
}

// Complete asks the completion service and reports whether a usable answer came back.
// Failures are logged and reported as false so callers take their rule-based path.
func (e *Env) Complete(ctx context.Context, handler, prompt string) (string, bool) {
	if e.Completer == nil {
		return "", false
	}
	out, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		e.Logger.Debug("Completion unavailable, using rule-based fallback", "handler", handler, "err", err)
		return "", false
	}
	if strings.TrimSpace(e.Composer.Strip(out)) == "" {
		e.Logger.Debug("Completion returned no text, using rule-based fallback", "handler", handler)
		return "", false
	}
	return out, true
}

// Preview applies mutations to a copy of lines and returns the outcomes and the
// resulting cart. Nothing is persisted.
func (e *Env) Preview(ctx context.Context, lines []domain.CartLine, mutations ...cart.Mutation) ([]cart.Outcome, []domain.CartLine, error) {
	scratch := &domain.Session{Cart: domain.CloneLines(lines)}
	outcomes, err := e.Ledger.Apply(ctx, scratch, mutations...)
	if err != nil {
		return nil, nil, err
	}
	return outcomes, scratch.Cart, nil
}

var apologies = map[string]string{
	HandlerMenu:    "I'm having trouble with the menu right now. Please try again.",
	HandlerOrder:   "I'm having trouble with your order. Please try again.",
	HandlerConfirm: "I'm having trouble confirming your order. Please try again.",
}

// Apology returns the text substituted for a failed handler's reply.
func Apology(handler string) string {
	if a, ok := apologies[handler]; ok {
		return a
	}
	return "I'm having trouble right now. Please try again."
}
