// Package ai is the boundary to the third-party language-model API.
package ai

import (
	"context"
	"encoding/json"
	"strings"
)

// ChatMessage is one turn of conversation history sent to the gateway.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Gateway answers document questions and generates mind-map outlines.
type Gateway interface {
	// Answer replies to the last user turn in history, grounded in the
	// full text of the selected document.
	Answer(ctx context.Context, history []ChatMessage, fileContent string) (string, error)
	// GenerateMindMap asks for a strict-JSON hierarchical outline of the
	// document. Callers must sanitize the returned tree; the model is
	// only prompted, not schema-bound.
	GenerateMindMap(ctx context.Context, documentText string) (json.RawMessage, error)
}

// EstimateTokens approximates a token count by whitespace-separated words.
// Crude, but only used to route large documents to a large-context model.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}
