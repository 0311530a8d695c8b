package observability

import (
	"context"
	"log/slog"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// LogHooks returns hooks that log every router event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnIntentClassified: func(ctx context.Context, e *domain.RouteEvent) {
			logger.Debug("Intent classified", "session_id", e.SessionID, "intent", e.Intent, "confidence", e.Confidence, "rule", e.Rule)
		},
		OnHandlerEnter: func(ctx context.Context, e *domain.RouteEvent) {
			logger.Debug("Enter handler", "session_id", e.SessionID, "handler", e.Handler)
		},
		OnHandlerLeave: func(ctx context.Context, e *domain.RouteEvent) {
			logger.Debug("Leave handler", "session_id", e.SessionID, "handler", e.Handler, "duration", e.Duration, "is_error", e.IsError)
		},
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.Debug("Session committed", "session_id", e.SessionID, "cart_changes", len(e.Diff.Cart), "evicted", e.Evicted)
		},
	}
}

// CombineHooks merges several hook sets into one that calls each in order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, s := range sets {
		out.OnIntentClassified = chain(out.OnIntentClassified, s.OnIntentClassified)
		out.OnHandlerEnter = chain(out.OnHandlerEnter, s.OnHandlerEnter)
		out.OnHandlerLeave = chain(out.OnHandlerLeave, s.OnHandlerLeave)
		out.OnCommit = chain(out.OnCommit, s.OnCommit)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
