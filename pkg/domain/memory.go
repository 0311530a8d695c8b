package domain

import (
	"strings"
	"time"
)

// MemoryEntry is one user/assistant exchange.
type MemoryEntry struct {
	UserText      string    `json:"user_text"`
	AssistantText string    `json:"assistant_text"`
	Timestamp     time.Time `json:"timestamp"`
	TokenCount    int       `json:"token_count"`
}

// NewMemoryEntry builds an entry whose token count is the whitespace word count of both texts.
func NewMemoryEntry(user, assistant string, at time.Time) MemoryEntry {
	return MemoryEntry{
		UserText:      user,
		AssistantText: assistant,
		Timestamp:     at,
		TokenCount:    CountTokens(user) + CountTokens(assistant),
	}
}

// CountTokens approximates tokens as whitespace-separated words.
func CountTokens(s string) int {
	return len(strings.Fields(s))
}

// MemorySummary describes a session's memory log.
type MemorySummary struct {
	TotalMessages int       `json:"total_messages"`
	TotalTokens   int       `json:"total_tokens"`
	First         time.Time `json:"first,omitempty"`
	Last          time.Time `json:"last,omitempty"`
}
