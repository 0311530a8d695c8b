// Package memory implements bounded per-session conversation memory with
// recency-biased lexical retrieval and token-budgeted trimming.
package memory

import (
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// Policy holds the retrieval and trimming parameters.
type Policy struct {
	// TokenBudget is the target ceiling for the summed token count of a log.
	TokenBudget int `mapstructure:"token_budget"`
	// Floor is the minimum number of entries kept, even above budget.
	Floor int `mapstructure:"floor"`
	// Recent entries are always returned by Relevant.
	Recent int `mapstructure:"recent"`
	// Cap bounds how many entries Relevant returns.
	Cap int `mapstructure:"cap"`
	// MinOverlap is the number of distinct shared words an older entry needs.
	MinOverlap int `mapstructure:"min_overlap"`
}

// DefaultPolicy returns the standard parameters.
func DefaultPolicy() Policy {
	return Policy{
		TokenBudget: 2000,
		Floor:       5,
		Recent:      5,
		Cap:         8,
		MinOverlap:  2,
	}
}

// Append adds e to the log and trims it. It returns the new log and how many
// entries were evicted. entries is not modified.
func (p Policy) Append(entries []domain.MemoryEntry, e domain.MemoryEntry) ([]domain.MemoryEntry, int) {
	out := make([]domain.MemoryEntry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, e)
	return p.Trim(out)
}

// Trim evicts the oldest entries while the log is over budget and longer than the floor.
// The floor takes precedence over the budget.
func (p Policy) Trim(entries []domain.MemoryEntry) ([]domain.MemoryEntry, int) {
	total := 0
	for _, e := range entries {
		total += e.TokenCount
	}

	evicted := 0
	for total > p.TokenBudget && len(entries)-evicted > p.Floor {
		total -= entries[evicted].TokenCount
		evicted++
	}
	return entries[evicted:], evicted
}

// Relevant selects the context for message: the Recent newest entries unconditionally,
// plus older entries sharing at least MinOverlap distinct words with message, up to Cap.
// The result is chronological (most recent last).
func (p Policy) Relevant(entries []domain.MemoryEntry, message string) []domain.MemoryEntry {
	want := wordSet(message)
	capacity := p.Cap
	if capacity < p.Recent {
		capacity = p.Recent
	}

	picked := make([]domain.MemoryEntry, 0, capacity)
	for i := len(entries) - 1; i >= 0 && len(picked) < capacity; i-- {
		age := len(entries) - 1 - i
		e := entries[i]
		if age < p.Recent || overlap(want, wordSet(e.UserText+" "+e.AssistantText)) >= p.MinOverlap {
			picked = append(picked, e)
		}
	}

	for l, r := 0, len(picked)-1; l < r; l, r = l+1, r-1 {
		picked[l], picked[r] = picked[r], picked[l]
	}
	return picked
}

// Format renders entries as a transcript for prompts.
func Format(entries []domain.MemoryEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("User: ")
		b.WriteString(e.UserText)
		b.WriteString("\nAssistant: ")
		b.WriteString(e.AssistantText)
	}
	return b.String()
}

// Summarize reports size and time span of a log.
func Summarize(entries []domain.MemoryEntry) domain.MemorySummary {
	s := domain.MemorySummary{TotalMessages: len(entries)}
	for _, e := range entries {
		s.TotalTokens += e.TokenCount
	}
	if len(entries) > 0 {
		s.First = entries[0].Timestamp
		s.Last = entries[len(entries)-1].Timestamp
	}
	return s
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,!?;:\"'()[]")
		if f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
