package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/GenAICloudDevOps/AgenticBarista"
	"github.com/GenAICloudDevOps/AgenticBarista/internal/presentation/tui"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/runner"
)

// ChatOptions configures an interactive chat.
type ChatOptions struct {
	// SessionID resumes a session. Empty starts a new one.
	SessionID string
	// Fresh deletes the session before the first message.
	Fresh         bool
	JSON          bool
	ShowReasoning bool

	In  io.Reader
	Out io.Writer
}

// Chat runs a conversation loop over opts.In until end of input, an exit word
// or cancellation.
func Chat(ctx context.Context, a *Assistant, opts ChatOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Fresh {
		if err := a.Sessions.Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	var handler runner.IOHandler
	if opts.JSON {
		h := runner.NewJSONHandler(opts.In, opts.Out)
		h.MaxInputSize = a.Config.MaxInputSize
		handler = h
	} else {
		textOpts := []runner.TextHandlerOption{
			runner.WithReasoning(opts.ShowReasoning),
			runner.WithMaxInputSize(a.Config.MaxInputSize),
		}
		if f, ok := opts.Out.(*os.File); ok && tui.IsTerminal(f) {
			tui.PrintBanner(f, barista.Version)
			renderer, err := tui.NewRenderer(f)
			if err != nil {
				a.Logger.Warn("Markdown rendering disabled", "err", err)
			} else if renderer != nil {
				textOpts = append(textOpts, runner.WithTextHandlerRenderer(renderer))
			}
		}
		printSystemMessage(opts.Out, fmt.Sprintf("Session %s. Say 'menu' to see what we have, 'exit' to leave.", opts.SessionID))
		handler = runner.NewTextHandler(opts.In, opts.Out, textOpts...)
	}

	r := runner.NewRunner(
		runner.WithProcessor(a.Router),
		runner.WithSessionID(opts.SessionID),
		runner.WithInputHandler(handler),
		runner.WithLogger(a.Logger),
	)
	a.Logger.Debug("Chat started", "session_id", opts.SessionID, "json", opts.JSON)
	return r.Run(ctx)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, msg string) {
	fmt.Fprintf(w, ">>> %s\n", msg)
}
