package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

var (
	ErrInvalidLayout = errors.New("ai did not return a valid array of components")
	ErrInvalidData   = errors.New("ai returned invalid JSON")
)

// Service provides the studio's AI features
type Service struct {
	completer Completer
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
}

// NewService creates a service over c
func NewService(c Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		completer: c,
		logger:    logger,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Completer returns the underlying completer
func (s *Service) Completer() Completer { return s.completer }

// Sanitize strips unsafe markup from prose
func (s *Service) Sanitize(text string) string {
	return s.sanitizer.Sanitize(text)
}

// Chat answers a copilot message with the page components as context.
// Completion failures come back as chat text.
func (s *Service) Chat(ctx context.Context, message string, components []types.ComponentNode) (Reply, error) {
	pageContext := "No page structure context."
	if components != nil {
		if data, err := codec.MarshalIndent(components); err == nil {
			pageContext = "Current page components:\n" + string(data)
		}
	}
	prompt := fmt.Sprintf("User request: %s\n\nCurrent page context:\n%s", message, pageContext)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		s.logger.Warn("Chat completion failed", zap.Error(err))
		return Reply{Kind: ReplyChat, Text: ErrorText(err)}, nil
	}

	reply := Parse(text)
	if reply.Kind == ReplyChat {
		reply.Text = s.Sanitize(reply.Text)
	}
	return reply, nil
}

// GenerateLayout asks for a component forest
func (s *Service) GenerateLayout(ctx context.Context, request string) ([]types.ComponentNode, error) {
	text, err := s.completer.Complete(ctx, withSystem(LayoutPrompt, request))
	if err != nil {
		return nil, err
	}
	nodes, ok := ExtractForest(text)
	if !ok {
		s.logger.Warn("Layout response unusable", zap.String("response", preview(text)))
		return nil, ErrInvalidLayout
	}
	return nodes, nil
}

// GenerateData asks for state keys to merge into current
func (s *Service) GenerateData(ctx context.Context, request string, current map[string]any) (map[string]any, error) {
	state, err := codec.MarshalIndent(current)
	if err != nil {
		return nil, err
	}
	text, err := s.completer.Complete(ctx, withSystem(DataPrompt(string(state)), request))
	if err != nil {
		return nil, err
	}

	body := StripFences(text)
	var generated map[string]any
	if err := codec.Unmarshal([]byte(body), &generated); err != nil || generated == nil {
		return nil, fmt.Errorf("%w: %s...", ErrInvalidData, preview(body))
	}
	return generated, nil
}

// GenerateCode asks for raw css or javascript
func (s *Service) GenerateCode(ctx context.Context, language, request string) (string, error) {
	text, err := s.completer.Complete(ctx, withSystem(CodePrompt(language), request))
	if err != nil {
		return "", err
	}
	return StripFences(text), nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) > 50 {
		return string(r[:50])
	}
	return text
}
