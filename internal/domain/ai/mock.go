package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Mock is the canned offline assistant
type Mock struct {
	Delay  time.Duration
	Logger *zap.Logger
}

// NewMock returns a mock with the usual simulated latency
func NewMock(logger *zap.Logger) *Mock {
	return &Mock{Delay: 1500 * time.Millisecond, Logger: logger}
}

// Complete greets prompts mentioning hello and echoes everything else
func (m *Mock) Complete(ctx context.Context, prompt string) (string, error) {
	if m.Logger != nil {
		m.Logger.Debug("Mock AI received prompt", zap.String("prompt", prompt))
	}

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if strings.Contains(strings.ToLower(prompt), "hello") {
		return "Hello there! I am your AI assistant (Mock).", nil
	}
	return fmt.Sprintf(`AI Analysis Complete: Processed "%s" and found it interesting.`, prompt), nil
}

// degraded turns completion failures into text
type degraded struct {
	next   Completer
	logger *zap.Logger
}

// Degrade wraps c so failures come back as an error message instead of an
// error. Context cancellation still propagates.
func Degrade(c Completer, logger *zap.Logger) Completer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return degraded{next: c, logger: logger}
}

func (d degraded) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := d.next.Complete(ctx, prompt)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	d.logger.Warn("AI call degraded to text", zap.Error(err))
	return ErrorText(err), nil
}

// ErrorText renders a failed AI call for the chat stream
func ErrorText(err error) string {
	return "AI request failed: " + err.Error()
}
