package runner

import (
	"context"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// Processor turns one customer message into a routing result.
type Processor interface {
	Process(ctx context.Context, sessionID, message string) (domain.RoutingResult, error)
}

// IOHandler defines the strategy for interacting with the customer.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// Input reads the next sanitized message. io.EOF ends the conversation.
	Input(ctx context.Context) (string, error)

	// Output presents the assistant's reply.
	Output(ctx context.Context, result domain.RoutingResult) error

	// SystemOutput presents a meta-message (errors, status) distinct from replies.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms reply text before it is written, e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)
