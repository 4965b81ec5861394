package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documentor/documentor-backend/internal/ai"
	"github.com/documentor/documentor-backend/internal/apperr"
)

func TestAssistant_Ask(t *testing.T) {
	env := newTestEnv(t)

	answer, err := env.svc.Assistant.Ask(context.Background(), []ai.ChatMessage{
		{Role: "user", Content: "summarize"},
	}, "hello world")
	require.NoError(t, err)
	assert.Equal(t, "A greeting.", answer)
}

func TestAssistant_AskRequiresHistory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Assistant.Ask(context.Background(), nil, "hello world")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAssistant_AskGatewayFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.Err = errStub

	_, err := env.svc.Assistant.Ask(context.Background(), []ai.ChatMessage{
		{Role: "user", Content: "summarize"},
	}, "")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, "failed to get response from the AI", apperr.Message(err))
}

func TestAssistant_GenerateMindMapSanitizes(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.MindMap_ = json.RawMessage(`{
		"text": "Doc",
		"children": [{"text": "Valid"}, {"no": "text"}]
	}`)

	root, err := env.svc.Assistant.GenerateMindMap(context.Background(), "some document")
	require.NoError(t, err)
	assert.Equal(t, "Doc", root.Text)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Valid", root.Children[0].Text)
}

func TestAssistant_GenerateMindMapUnusableTree(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.MindMap_ = json.RawMessage(`["not", "a", "tree"]`)

	_, err := env.svc.Assistant.GenerateMindMap(context.Background(), "some document")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestAssistant_GenerateMindMapRequiresText(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Assistant.GenerateMindMap(context.Background(), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
