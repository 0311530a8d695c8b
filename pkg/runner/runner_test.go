package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

type processorFunc func(ctx context.Context, sessionID, message string) (domain.RoutingResult, error)

func (f processorFunc) Process(ctx context.Context, sessionID, message string) (domain.RoutingResult, error) {
	return f(ctx, sessionID, message)
}

func echo(t *testing.T, wantSession string) Processor {
	return processorFunc(func(ctx context.Context, sessionID, message string) (domain.RoutingResult, error) {
		assert.Equal(t, wantSession, sessionID)
		if message == "boom" {
			return domain.RoutingResult{}, errors.New("store unavailable")
		}
		return domain.RoutingResult{Response: "echo: " + message}, nil
	})
}

func TestRunner_Run_BasicFlow(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRunner(
		WithProcessor(echo(t, "s1")),
		WithSessionID("s1"),
		WithInputHandler(NewTextHandler(strings.NewReader("hi\n\nboom\nadd a latte\nexit\nnever\n"), out, WithPrompt(""))),
	)

	require.NoError(t, r.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "echo: hi\n")
	assert.Contains(t, got, "[System] Sorry, something went wrong. Please try again.\n")
	assert.Contains(t, got, "echo: add a latte\n")
	assert.NotContains(t, got, "never")
}

func TestRunner_Run_EOF(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRunner(
		WithProcessor(echo(t, "")),
		WithInputHandler(NewJSONHandler(strings.NewReader(`{"message":"menu"}`), out)),
	)

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), `"response":"echo: menu"`)
}

func TestRunner_Run_CustomExitWords(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRunner(
		WithProcessor(echo(t, "")),
		WithExitWords("done"),
		WithInputHandler(NewTextHandler(strings.NewReader("exit\nDONE\nhi\n"), out, WithPrompt(""))),
	)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, "echo: exit\n", out.String())
}

func TestRunner_Run_NoProcessor(t *testing.T) {
	r := NewRunner(WithInputHandler(NewTextHandler(strings.NewReader(""), &bytes.Buffer{})))
	assert.ErrorIs(t, r.Run(context.Background()), ErrNoProcessor)
}
