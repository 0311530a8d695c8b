// Package composer turns raw completion text into a visible answer, an optional
// reasoning segment and typed content blocks.
package composer

import (
	"regexp"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

const (
	DefaultOpenMarker  = "<thinking>"
	DefaultCloseMarker = "</thinking>"
)

// DefaultArtifacts match code-like fragments a misbehaving completion may echo.
var DefaultArtifacts = []*regexp.Regexp{
	regexp.MustCompile(`tool_code\s+print\([^)]*\)`),
	regexp.MustCompile(`default_api\.[a-zA-Z_]+\([^)]*\)`),
	regexp.MustCompile(`print\([^)]*\)`),
}

var blankRuns = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)

// Composed is the result of composing one raw text.
type Composed struct {
	Visible   string
	Reasoning string
	// HasReasoning distinguishes an empty reasoning segment from none at all.
	HasReasoning bool
	Blocks       []domain.ContentBlock
}

// Composer is stateless and safe for concurrent use.
type Composer struct {
	open      string
	close     string
	artifacts []*regexp.Regexp
}

// Option configures the Composer.
type Option func(*Composer)

// WithMarkers sets the reasoning delimiters.
func WithMarkers(open, close string) Option {
	return func(c *Composer) {
		c.open = open
		c.close = close
	}
}

// WithArtifacts replaces the artifact patterns removed before splitting.
func WithArtifacts(patterns ...*regexp.Regexp) Option {
	return func(c *Composer) {
		c.artifacts = patterns
	}
}

// New creates a Composer with the default markers and artifacts.
func New(opts ...Option) *Composer {
	c := &Composer{
		open:      DefaultOpenMarker,
		close:     DefaultCloseMarker,
		artifacts: DefaultArtifacts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strip removes artifacts and collapses runs of blank lines to a single one.
func (c *Composer) Strip(raw string) string {
	out := raw
	for _, re := range c.artifacts {
		out = re.ReplaceAllString(out, "")
	}
	return blankRuns.ReplaceAllString(out, "\n\n")
}

// Split separates the reasoning segment from the visible answer. Only a complete
// open/close pair splits; anything else leaves the whole text visible.
func (c *Composer) Split(text string) (reasoning, visible string, ok bool) {
	start := strings.Index(text, c.open)
	if start < 0 {
		return "", strings.TrimSpace(text), false
	}
	rest := text[start+len(c.open):]
	end := strings.Index(rest, c.close)
	if end < 0 {
		return "", strings.TrimSpace(text), false
	}
	return strings.TrimSpace(rest[:end]), strings.TrimSpace(rest[end+len(c.close):]), true
}

// Compose strips, splits and builds the content blocks: reasoning (if any), the
// visible text, then extras in the order given.
func (c *Composer) Compose(raw string, extras ...domain.ContentBlock) Composed {
	reasoning, visible, ok := c.Split(c.Strip(raw))

	blocks := make([]domain.ContentBlock, 0, len(extras)+2)
	if ok {
		blocks = append(blocks, domain.ReasoningBlock(reasoning))
	}
	blocks = append(blocks, domain.TextBlock(visible))
	blocks = append(blocks, extras...)

	return Composed{
		Visible:      visible,
		Reasoning:    reasoning,
		HasReasoning: ok,
		Blocks:       blocks,
	}
}
