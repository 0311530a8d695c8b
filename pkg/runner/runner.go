package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/internal/logging"
)

// DefaultExitWords end the conversation when sent alone.
var DefaultExitWords = []string{"exit", "quit", "/exit", "/quit", "bye!"}

// ErrNoProcessor is returned by Run when no Processor was configured.
var ErrNoProcessor = errors.New("runner has no processor")

// Runner reads messages from an IOHandler, sends them to a Processor and writes
// the replies back, until the input ends, an exit word arrives or ctx is done.
type Runner struct {
	Processor Processor
	SessionID string
	Handler   IOHandler
	Logger    *slog.Logger

	exitWords []string
}

// NewRunner creates a Runner. Without WithInputHandler it talks over stdin/stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:    logging.NewNop(),
		exitWords: DefaultExitWords,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run executes the chat loop. End of input and cancellation both end the loop
// without error. Processing failures are reported to the user and the loop continues.
func (r *Runner) Run(ctx context.Context) error {
	if r.Processor == nil {
		return ErrNoProcessor
	}

	for {
		msg, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if msg == "" {
			continue
		}
		if r.isExit(msg) {
			r.Logger.Debug("Exit requested", "session_id", r.SessionID)
			return nil
		}

		result, err := r.Processor.Process(ctx, r.SessionID, msg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.Logger.Error("Message processing failed", "session_id", r.SessionID, "err", err)
			if err := r.Handler.SystemOutput(ctx, "Sorry, something went wrong. Please try again."); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if err := r.Handler.Output(ctx, result); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

func (r *Runner) isExit(msg string) bool {
	for _, w := range r.exitWords {
		if strings.EqualFold(msg, w) {
			return true
		}
	}
	return false
}
