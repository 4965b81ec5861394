package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/documentor/documentor-backend/internal/config"
)

const answerSystemPrompt = "You are a helpful AI assistant called DocuMentor. " +
	"You will answer questions based on the provided document context. " +
	"Do not mention that you are an AI. Be concise and helpful."

const mindMapPrompt = `You are an expert at structural analysis. Your task is to analyze the provided document text and convert its main ideas into a hierarchical mind map structure.
Your response MUST be ONLY a single, valid JSON object. Do not include any text, explanations, or markdown formatting.
The JSON object must have a root node with a 'text' property for the document's main topic, and a 'children' array for its main points. Each element in the 'children' array is another node object with its own 'text' and an optional 'children' property.
Here is the document text:
"""
%s
"""`

// OpenAIGateway implements Gateway against an OpenAI-compatible API.
// Documents whose estimated size exceeds the configured token limit are
// routed to the large-context model; everything else uses the default.
type OpenAIGateway struct {
	client *openai.Client
	cfg    config.AIConfig
}

// NewOpenAIGateway creates a gateway from config.
func NewOpenAIGateway(cfg config.AIConfig) (*OpenAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// Answer sends the history plus the document context and returns the reply.
func (g *OpenAIGateway) Answer(ctx context.Context, history []ChatMessage, fileContent string) (string, error) {
	model := g.cfg.Model
	if tokens := EstimateTokens(fileContent); g.cfg.TokenLimit > 0 && tokens > g.cfg.TokenLimit {
		model = g.cfg.LargeContextModel
		logrus.WithFields(logrus.Fields{
			"tokens": tokens,
			"model":  model,
		}).Info("document is large, routing to large-context model")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf("%s Here is the document content:\n\n--- DOCUMENT START ---\n%s\n--- DOCUMENT END ---",
			answerSystemPrompt, fileContent),
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateMindMap requests a strict-JSON outline of the document.
func (g *OpenAIGateway) GenerateMindMap(ctx context.Context, documentText string) (json.RawMessage, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.MindMapModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(mindMapPrompt, documentText),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	return json.RawMessage(resp.Choices[0].Message.Content), nil
}
