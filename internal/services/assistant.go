package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/documentor/documentor-backend/internal/ai"
	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/mindmap"
)

// AssistantService fronts the AI gateway. Gateway failures surface to
// clients as generic upstream errors; provider details stay server-side.
type AssistantService struct {
	gateway ai.Gateway
}

// NewAssistantService creates an assistant service.
func NewAssistantService(gateway ai.Gateway) *AssistantService {
	return &AssistantService{gateway: gateway}
}

// Ask answers the last user turn in history, grounded in fileContent.
func (s *AssistantService) Ask(ctx context.Context, history []ai.ChatMessage, fileContent string) (string, error) {
	if len(history) == 0 {
		return "", apperr.Validation("message history is required")
	}

	answer, err := s.gateway.Answer(ctx, history, fileContent)
	if err != nil {
		logrus.WithError(err).Error("AI gateway answer failed")
		return "", apperr.Upstream(err, "failed to get response from the AI")
	}
	return answer, nil
}

// GenerateMindMap asks the gateway for a document outline and sanitizes
// the untrusted tree before returning it.
func (s *AssistantService) GenerateMindMap(ctx context.Context, documentText string) (*mindmap.Node, error) {
	if documentText == "" {
		return nil, apperr.Validation("document text is required")
	}

	raw, err := s.gateway.GenerateMindMap(ctx, documentText)
	if err != nil {
		logrus.WithError(err).Error("AI gateway mind map generation failed")
		return nil, apperr.Upstream(err, "failed to generate mind map from AI")
	}

	root := mindmap.Sanitize(raw)
	if root == nil {
		return nil, apperr.Upstream(nil, "failed to generate mind map from AI")
	}
	return root, nil
}
