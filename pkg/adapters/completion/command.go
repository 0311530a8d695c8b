package completion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrMissingCommand is returned when the command provider has nothing to run.
var ErrMissingCommand = errors.New("command provider requires a command")

// Command completes prompts with a local executable: the prompt is written to
// its stdin and its stdout is the answer. This serves local model runners.
// The prompt never becomes part of the argument list.
type Command struct {
	command string
	args    []string
	env     []string
}

func NewCommand(cfg Config) (*Command, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, ErrMissingCommand
	}
	c := &Command{command: cfg.Command, args: cfg.Args}
	if cfg.Model != "" {
		c.env = append(c.env, "BARISTA_MODEL="+cfg.Model)
	}
	c.env = append(c.env,
		fmt.Sprintf("BARISTA_MAX_TOKENS=%d", cfg.withDefaults().MaxTokens),
	)
	return c, nil
}

func (c *Command) Complete(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, c.command, c.args...)
	cmd.Env = append(cmd.Environ(), c.env...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("command: execution failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nonEmpty("command", strings.TrimSpace(stdout.String()))
}
