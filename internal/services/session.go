package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/repository"
)

// DefaultSessionName names sessions created without an explicit name.
const DefaultSessionName = "Untitled Session"

// SessionService manages chat sessions and enforces per-owner access.
type SessionService struct {
	sessions   repository.SessionRepository
	messages   repository.MessageRepository
	files      repository.FileRepository
	highlights repository.HighlightRepository
	mindmaps   repository.MindMapRepository
}

// NewSessionService creates a session service. The non-session repositories
// are needed for the delete cascade.
func NewSessionService(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	files repository.FileRepository,
	highlights repository.HighlightRepository,
	mindmaps repository.MindMapRepository,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		messages:   messages,
		files:      files,
		highlights: highlights,
		mindmaps:   mindmaps,
	}
}

// Create creates a session for ownerID, defaulting the name.
func (s *SessionService) Create(ctx context.Context, ownerID, name string) (*repository.Session, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultSessionName
	}

	session := &repository.Session{
		OwnerID: ownerID,
		Name:    name,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperr.Internal(err, "failed to create session")
	}
	return session, nil
}

// ListForOwner returns only the caller's sessions.
func (s *SessionService) ListForOwner(ctx context.Context, ownerID string) ([]*repository.Session, error) {
	sessions, err := s.sessions.List(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err, "could not fetch sessions")
	}
	return sessions, nil
}

// Get returns the session if ownerID owns it, NotFound otherwise.
func (s *SessionService) Get(ctx context.Context, ownerID, id string) (*repository.Session, error) {
	session, err := s.sessions.Get(ctx, ownerID, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch session")
	}
	if session == nil {
		return nil, apperr.NotFound("chat session not found")
	}
	return session, nil
}

// GetAny returns a session regardless of owner. Internal use; callers are
// responsible for ownership checks.
func (s *SessionService) GetAny(ctx context.Context, id string) (*repository.Session, error) {
	session, err := s.sessions.GetAny(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch session")
	}
	if session == nil {
		return nil, apperr.NotFound("chat session not found")
	}
	return session, nil
}

// Rename renames an owned session. The repository folds the ownership
// check into the update statement, so an unowned id can never match.
func (s *SessionService) Rename(ctx context.Context, ownerID, id, name string) (*repository.Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("session name must not be empty")
	}

	session, err := s.sessions.Rename(ctx, ownerID, id, name)
	if err != nil {
		return nil, apperr.Internal(err, "rename failed")
	}
	if session == nil {
		return nil, apperr.NotFound("session not found")
	}
	return session, nil
}

// Delete removes an owned session and synchronously cascades its messages,
// files, highlights, and mind map. The cascade is not transactional;
// a crash mid-way leaves orphan rows, which are never listed without a
// session join and are therefore harmless.
func (s *SessionService) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.sessions.Delete(ctx, ownerID, id)
	if err != nil {
		return apperr.Internal(err, "delete failed")
	}
	if !deleted {
		return apperr.NotFound("chat not found or you don't have permission")
	}

	if err := s.messages.DeleteBySession(ctx, id); err != nil {
		return apperr.Internal(err, "failed to delete session messages")
	}
	if err := s.files.DeleteBySession(ctx, id); err != nil {
		logrus.WithError(err).WithField("session_id", id).Warn("failed to cascade file records")
	}
	if err := s.highlights.DeleteBySession(ctx, id); err != nil {
		logrus.WithError(err).WithField("session_id", id).Warn("failed to cascade highlights")
	}
	if err := s.mindmaps.DeleteBySession(ctx, id); err != nil {
		logrus.WithError(err).WithField("session_id", id).Warn("failed to cascade mind map")
	}
	return nil
}
