package completion_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/completion"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
)

// fakeAPI serves body for any request and records the last request body.
func fakeAPI(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_Disabled(t *testing.T) {
	for _, p := range []string{"", "none", " NONE "} {
		c, err := completion.New(context.Background(), completion.Config{Provider: p})
		require.NoError(t, err)
		assert.Nil(t, c)
	}
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := completion.New(ctx, completion.Config{Provider: "llama"})
	assert.ErrorIs(t, err, completion.ErrUnknownProvider)

	for _, p := range []string{"openai", "gemini", "anthropic"} {
		_, err := completion.New(ctx, completion.Config{Provider: p})
		assert.ErrorIs(t, err, completion.ErrMissingAPIKey, p)
	}

	_, err = completion.New(ctx, completion.Config{Provider: "command"})
	assert.ErrorIs(t, err, completion.ErrMissingCommand)
}

func TestOpenAI_Complete(t *testing.T) {
	var seen map[string]any
	srv := fakeAPI(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
		"choices":[{"index":0,"message":{"role":"assistant","content":"ADD: latte"},"finish_reason":"stop"}]}`, &seen)

	c, err := completion.New(context.Background(), completion.Config{
		Provider: "openai", APIKey: "sk-test", BaseURL: srv.URL + "/v1", MaxTokens: 50, Temperature: 0.2,
	})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "add a latte")
	require.NoError(t, err)
	assert.Equal(t, "ADD: latte", out)
	assert.Equal(t, completion.DefaultOpenAIModel, seen["model"])
	assert.EqualValues(t, 50, seen["max_tokens"])
}

func TestNew_ZeroConfigUsesDefaults(t *testing.T) {
	var seen map[string]any
	srv := fakeAPI(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
		"choices":[{"index":0,"message":{"role":"assistant","content":"SHOW_CART"},"finish_reason":"stop"}]}`, &seen)

	c, err := completion.New(context.Background(), completion.Config{
		Provider: "openai", APIKey: "sk-test", BaseURL: srv.URL + "/v1",
	})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "show my cart")
	require.NoError(t, err)
	assert.InDelta(t, completion.DefaultTemperature, seen["temperature"], 1e-6)
	assert.EqualValues(t, completion.DefaultMaxTokens, seen["max_tokens"])
}

func TestOpenAI_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"down","type":"server_error"}}`, nil},
		{"no choices", http.StatusOK, `{"id":"c1","choices":[]}`, completion.ErrEmptyCompletion},
		{"blank text", http.StatusOK, `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"  "}}]}`, completion.ErrEmptyCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeAPI(t, tt.status, tt.body, nil)
			c, err := completion.NewOpenAI(completion.Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
			require.NoError(t, err)

			_, err = c.Complete(context.Background(), "hi")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestAnthropic_Complete(t *testing.T) {
	var seen map[string]any
	srv := fakeAPI(t, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
		"content":[{"type":"text","text":"<thinking>latte</thinking>ADD: latte"}],
		"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`, &seen)

	c, err := completion.NewAnthropic(completion.Config{APIKey: "test-key", BaseURL: srv.URL, Model: "claude-test"})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "add a latte")
	require.NoError(t, err)
	assert.Equal(t, "<thinking>latte</thinking>ADD: latte", out)
	assert.Equal(t, "claude-test", seen["model"])
}

func TestGemini_Complete(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Try the mocha."}]}}]}`, nil)

	c, err := completion.NewGemini(context.Background(), completion.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "what's good?")
	require.NoError(t, err)
	assert.Equal(t, "Try the mocha.", out)
}

func TestBedrock_Complete(t *testing.T) {
	var seen map[string]any
	srv := fakeAPI(t, http.StatusOK, `{"output":{"message":{"role":"assistant","content":[{"text":"SHOW_CART"}]}},
		"stopReason":"end_turn","usage":{"inputTokens":1,"outputTokens":1,"totalTokens":2},"metrics":{"latencyMs":5}}`, &seen)

	c, err := completion.NewBedrock(context.Background(), completion.Config{
		Region: "eu-west-1", APIKey: "AKIDEXAMPLE:secret", BaseURL: srv.URL, MaxTokens: 64,
	})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "show my cart")
	require.NoError(t, err)
	assert.Equal(t, "SHOW_CART", out)

	inference, ok := seen["inferenceConfig"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 64, inference["maxTokens"])
}

func TestCommand_Complete(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	c, err := completion.New(context.Background(), completion.Config{
		Provider: "command", Command: "sh", Args: []string{"-c", `printf 'model=%s ' "$BARISTA_MODEL"; tr a-z A-Z`}, Model: "tiny",
	})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "add a latte")
	require.NoError(t, err)
	assert.Equal(t, "model=tiny ADD A LATTE", out)

	failing, err := completion.NewCommand(completion.Config{Command: "sh", Args: []string{"-c", "echo nope >&2; exit 3"}})
	require.NoError(t, err)
	_, err = failing.Complete(context.Background(), "x")
	assert.ErrorContains(t, err, "nope")
}

func TestWithTimeout(t *testing.T) {
	slow := ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	start := time.Now()
	_, err := completion.WithTimeout(slow, 20*time.Millisecond).Complete(context.Background(), "hi")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)

	fast := ports.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return strings.ToUpper(prompt), nil
	})
	out, err := completion.WithTimeout(fast, 0).Complete(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, "OK", out)
}
