package ports

import (
	"context"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// Conversation is the single logical operation the core exposes to its collaborators
// (HTTP, WebSocket, MCP, CLI).
type Conversation interface {
	// Process routes one message for a session and returns the reply.
	// Only precondition violations, cancellation and infrastructure failures are returned as errors.
	Process(ctx context.Context, sessionID, message string) (domain.RoutingResult, error)
}
