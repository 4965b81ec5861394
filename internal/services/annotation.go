package services

import (
	"context"
	"encoding/json"

	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/repository"
)

// AnnotationService stores per-session derived data: highlight phrases
// and the mind-map document. Both are upsert-only, one record per
// session, and deliberately minimal — ownership lives at the HTTP
// boundary.
type AnnotationService struct {
	highlights repository.HighlightRepository
	mindmaps   repository.MindMapRepository
}

// NewAnnotationService creates an annotation service.
func NewAnnotationService(highlights repository.HighlightRepository, mindmaps repository.MindMapRepository) *AnnotationService {
	return &AnnotationService{highlights: highlights, mindmaps: mindmaps}
}

// SaveHighlights upserts the highlight phrases for a session. Idempotent.
func (s *AnnotationService) SaveHighlights(ctx context.Context, sessionID string, phrases []string) (*repository.HighlightRecord, error) {
	if sessionID == "" {
		return nil, apperr.Validation("sessionId and highlights are required")
	}

	record, err := s.highlights.Upsert(ctx, sessionID, phrases)
	if err != nil {
		return nil, apperr.Internal(err, "failed to save highlights")
	}
	return record, nil
}

// Highlights returns a session's phrases, empty when none are stored.
func (s *AnnotationService) Highlights(ctx context.Context, sessionID string) ([]string, error) {
	record, err := s.highlights.Get(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch highlights")
	}
	if record == nil {
		return []string{}, nil
	}
	return record.Highlights, nil
}

// SaveMindMap upserts a session's mind-map document. Idempotent.
func (s *AnnotationService) SaveMindMap(ctx context.Context, sessionID string, data json.RawMessage) error {
	if sessionID == "" {
		return apperr.Validation("sessionId is required")
	}
	if len(data) == 0 || string(data) == "null" {
		return apperr.Validation("mind map data is required")
	}
	if !json.Valid(data) {
		return apperr.Validation("mind map data must be valid JSON")
	}

	if err := s.mindmaps.Upsert(ctx, sessionID, data); err != nil {
		return apperr.Internal(err, "failed to save map")
	}
	return nil
}

// MindMap returns a session's mind-map document, nil when absent.
func (s *AnnotationService) MindMap(ctx context.Context, sessionID string) (json.RawMessage, error) {
	data, err := s.mindmaps.Get(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch map")
	}
	return data, nil
}
