package runner

import "log/slog"

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithProcessor sets the component that answers messages.
func WithProcessor(p Processor) Option {
	return func(r *Runner) {
		r.Processor = p
	}
}

// WithSessionID sets the session all messages belong to.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithExitWords replaces the words that end the conversation.
func WithExitWords(words ...string) Option {
	return func(r *Runner) {
		r.exitWords = words
	}
}
