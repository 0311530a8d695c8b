package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// JSONHandler implements IOHandler over JSON lines, for scripted clients.
// Each input line is {"message": "..."}, a JSON string, or plain text.
// Each reply is one RoutingResult object per line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder

	// MaxInputSize is the sanitizer limit in bytes; zero uses the default.
	MaxInputSize int
}

type jsonInput struct {
	Message string `json:"message"`
}

type systemLine struct {
	System string `json:"system"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Input returns the next message, skipping blank lines.
// Rejected input is reported as a system line and skipped.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := h.Reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return "", err
			}
			continue
		}

		msg := decodeMessage(line)
		clean, serr := SanitizeInputLimit(msg, h.MaxInputSize)
		if serr != nil {
			if werr := h.SystemOutput(ctx, serr.Error()); werr != nil {
				return "", werr
			}
			if err != nil {
				return "", err
			}
			continue
		}
		// A final unterminated line is still delivered; EOF surfaces on the next call.
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return clean, nil
	}
}

func decodeMessage(line string) string {
	var in jsonInput
	if err := json.Unmarshal([]byte(line), &in); err == nil && in.Message != "" {
		return in.Message
	}
	var s string
	if err := json.Unmarshal([]byte(line), &s); err == nil {
		return s
	}
	return line
}

func (h *JSONHandler) Output(ctx context.Context, result domain.RoutingResult) error {
	return h.Encoder.Encode(result)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(systemLine{System: msg})
}
