package services

import (
	"github.com/documentor/documentor-backend/internal/ai"
	"github.com/documentor/documentor-backend/internal/extract"
	"github.com/documentor/documentor-backend/internal/repository"
	"github.com/documentor/documentor-backend/internal/storage"
)

// Services bundles the service layer for route wiring.
type Services struct {
	Sessions    *SessionService
	Messages    *MessageService
	Ingest      *IngestService
	Annotations *AnnotationService
	Assistant   *AssistantService
}

// Deps are the collaborators the service layer is built from.
type Deps struct {
	SessionRepo   repository.SessionRepository
	MessageRepo   repository.MessageRepository
	FileRepo      repository.FileRepository
	HighlightRepo repository.HighlightRepository
	MindMapRepo   repository.MindMapRepository
	Gateway       ai.Gateway
	Extractor     extract.Extractor
	Store         storage.Store
	TempDir       string
}

// New wires up all services.
func New(d Deps) *Services {
	sessions := NewSessionService(d.SessionRepo, d.MessageRepo, d.FileRepo, d.HighlightRepo, d.MindMapRepo)
	return &Services{
		Sessions:    sessions,
		Messages:    NewMessageService(d.MessageRepo, d.SessionRepo),
		Ingest:      NewIngestService(d.FileRepo, d.SessionRepo, d.Extractor, d.Store, d.TempDir),
		Annotations: NewAnnotationService(d.HighlightRepo, d.MindMapRepo),
		Assistant:   NewAssistantService(d.Gateway),
	}
}
