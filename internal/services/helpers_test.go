package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/documentor/documentor-backend/internal/ai"
	"github.com/documentor/documentor-backend/internal/repository/memory"
	"github.com/documentor/documentor-backend/internal/storage"
	"github.com/stretchr/testify/require"
)

// stubExtractor returns a fixed text, or fails when Err is set.
type stubExtractor struct {
	Text string
	Err  error
}

func (e *stubExtractor) Extract(_ context.Context, _ string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

// stubGateway answers with canned responses.
type stubGateway struct {
	Answer_  string
	MindMap_ json.RawMessage
	Err      error
}

func (g *stubGateway) Answer(_ context.Context, _ []ai.ChatMessage, _ string) (string, error) {
	if g.Err != nil {
		return "", g.Err
	}
	return g.Answer_, nil
}

func (g *stubGateway) GenerateMindMap(_ context.Context, _ string) (json.RawMessage, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return g.MindMap_, nil
}

var errStub = errors.New("stub failure")

type testEnv struct {
	svc       *Services
	extractor *stubExtractor
	gateway   *stubGateway
	store     *storage.LocalStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	extractor := &stubExtractor{Text: "hello world"}
	gateway := &stubGateway{Answer_: "A greeting.", MindMap_: json.RawMessage(`{"text":"Doc"}`)}

	svc := New(Deps{
		SessionRepo:   memory.NewSessionRepository(),
		MessageRepo:   memory.NewMessageRepository(),
		FileRepo:      memory.NewFileRepository(),
		HighlightRepo: memory.NewHighlightRepository(),
		MindMapRepo:   memory.NewMindMapRepository(),
		Gateway:       gateway,
		Extractor:     extractor,
		Store:         store,
		TempDir:       t.TempDir(),
	})

	return &testEnv{svc: svc, extractor: extractor, gateway: gateway, store: store}
}
