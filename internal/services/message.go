package services

import (
	"context"
	"time"

	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/repository"
)

// MessageService is the append-only message log per session. It performs
// no ownership checks; the HTTP boundary verifies the caller owns the
// session before invoking it.
type MessageService struct {
	messages repository.MessageRepository
	sessions repository.SessionRepository
}

// NewMessageService creates a message service.
func NewMessageService(messages repository.MessageRepository, sessions repository.SessionRepository) *MessageService {
	return &MessageService{messages: messages, sessions: sessions}
}

// Append validates and stores a message, then touches the parent
// session's updated_at.
func (s *MessageService) Append(ctx context.Context, sessionID, role, content string) (*repository.Message, error) {
	if role != repository.RoleUser && role != repository.RoleAssistant {
		return nil, apperr.Validation("role must be user or assistant")
	}
	if content == "" {
		return nil, apperr.Validation("role and content are required")
	}

	message := &repository.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, apperr.Internal(err, "failed to add message")
	}

	if err := s.sessions.Touch(ctx, sessionID, time.Now()); err != nil {
		return nil, apperr.Internal(err, "failed to touch session")
	}

	return message, nil
}

// ListForSession returns a session's messages, oldest first.
func (s *MessageService) ListForSession(ctx context.Context, sessionID string) ([]repository.Message, error) {
	messages, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch messages")
	}
	return messages, nil
}
