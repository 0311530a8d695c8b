package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out,
		WithTextHandlerRenderer(func(s string) (string, error) { return "Rendered: " + s, nil }),
		WithReasoning(true),
	)

	result := domain.RoutingResult{
		Response: "Hello World",
		ContentBlocks: []domain.ContentBlock{
			domain.ReasoningBlock("customer said hi"),
			domain.TextBlock("Hello World"),
		},
	}
	require.NoError(t, handler.Output(context.Background(), result))

	assert.Equal(t, "(thinking) customer said hi\nRendered: Hello World\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  add a latte \n\x1b[2Jshow cart\n"), out)
	ctx := context.Background()

	got, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "add a latte", got)

	got, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[2Jshow cart", got, "control characters are stripped")

	_, err = handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

func TestTextHandler_InputRejectsOversize(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("this is too long\nok\n"), out, WithMaxInputSize(5), WithPrompt(""))

	got, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Contains(t, out.String(), "Please try again.")
}

func TestTextHandler_InputCanceled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
