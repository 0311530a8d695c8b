// Package completion adapts hosted language models to ports.Completer.
//
// Every provider takes one prompt and returns one text answer. Callers decide
// what to do with failures; the router always has a rule-based fallback.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
)

// Provider names accepted by New.
const (
	ProviderNone      = "none"
	ProviderBedrock   = "bedrock"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderCommand   = "command"
)

// Defaults applied by New.
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
	DefaultTimeout     = 20 * time.Second
)

var (
	// ErrUnknownProvider is returned by New for unsupported provider names.
	ErrUnknownProvider = errors.New("unknown completion provider")
	// ErrEmptyCompletion is returned when a provider answers without any text.
	ErrEmptyCompletion = errors.New("completion returned no text")
	// ErrMissingAPIKey is returned for providers that need a key.
	ErrMissingAPIKey = errors.New("completion provider requires an api key")
)

// Config selects and configures a provider.
type Config struct {
	Provider  string
	Model     string
	Region    string
	APIKey    string
	BaseURL   string
	MaxTokens int
	// Temperature <= 0 means DefaultTemperature. Use a small positive value,
	// such as 0.01, for near-deterministic answers.
	Temperature float64
	Timeout     time.Duration

	// Command and Args configure the command provider.
	Command string
	Args    []string
}

func (c Config) withDefaults() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// New builds the Completer for cfg.Provider. It returns (nil, nil) for "none"
// and the empty name, meaning completion is disabled.
func New(ctx context.Context, cfg Config) (ports.Completer, error) {
	cfg = cfg.withDefaults()

	var (
		c   ports.Completer
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderBedrock:
		c, err = NewBedrock(ctx, cfg)
	case ProviderOpenAI:
		c, err = NewOpenAI(cfg)
	case ProviderGemini:
		c, err = NewGemini(ctx, cfg)
	case ProviderAnthropic:
		c, err = NewAnthropic(cfg)
	case ProviderCommand:
		c, err = NewCommand(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(c, cfg.Timeout), nil
}

type timeoutCompleter struct {
	next    ports.Completer
	timeout time.Duration
}

// WithTimeout bounds every call to next by d.
func WithTimeout(next ports.Completer, d time.Duration) ports.Completer {
	if d <= 0 {
		return next
	}
	return timeoutCompleter{next: next, timeout: d}
}

func (t timeoutCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, prompt)
}

func nonEmpty(provider, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", provider, ErrEmptyCompletion)
	}
	return text, nil
}
