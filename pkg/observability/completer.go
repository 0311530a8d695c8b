package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/logging"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
)

// Completer wraps a ports.Completer with a span, metrics and a debug log per call.
type Completer struct {
	next     ports.Completer
	provider string
	metrics  *Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// CompleterOption configures the wrapper.
type CompleterOption func(*Completer)

func WithCompleterMetrics(m *Metrics) CompleterOption {
	return func(c *Completer) { c.metrics = m }
}

func WithCompleterTracer(t trace.Tracer) CompleterOption {
	return func(c *Completer) { c.tracer = t }
}

func WithCompleterLogger(l *slog.Logger) CompleterOption {
	return func(c *Completer) { c.logger = l }
}

// InstrumentCompleter wraps next. provider labels metrics and spans.
func InstrumentCompleter(next ports.Completer, provider string, opts ...CompleterOption) *Completer {
	c := &Completer{
		next:     next,
		provider: provider,
		tracer:   otel.Tracer(TracerName),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete implements ports.Completer.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "completion.Complete", trace.WithAttributes(
		attribute.String("completion.provider", c.provider),
		attribute.Int("completion.prompt_length", len(prompt)),
	))
	defer span.End()

	start := time.Now()
	out, err := c.next.Complete(ctx, prompt)
	elapsed := time.Since(start)

	c.metrics.CompletionObserved(c.provider, elapsed, err)
	if err != nil {
		RecordError(span, err)
		c.logger.Debug("Completion failed", "provider", c.provider, "duration", elapsed, "err", err)
		return "", err
	}
	c.logger.Debug("Completion succeeded", "provider", c.provider, "duration", elapsed)
	return out, nil
}
