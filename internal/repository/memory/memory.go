// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. Tests wire these in place of PostgreSQL.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/documentor/documentor-backend/internal/repository"
)

// SessionRepository is an in-memory repository.SessionRepository.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]repository.Session
}

// NewSessionRepository creates an empty in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]repository.Session)}
}

func (r *SessionRepository) Create(_ context.Context, session *repository.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) Get(_ context.Context, ownerID, id string) (*repository.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepository) GetAny(_ context.Context, id string) (*repository.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepository) List(_ context.Context, ownerID string) ([]*repository.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := []*repository.Session{}
	for _, s := range r.sessions {
		if s.OwnerID == ownerID {
			s := s
			sessions = append(sessions, &s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (r *SessionRepository) Rename(_ context.Context, ownerID, id, name string) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, nil
	}
	s.Name = name
	s.UpdatedAt = time.Now()
	r.sessions[id] = s
	return &s, nil
}

func (r *SessionRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.UpdatedAt = at
		r.sessions[id] = s
	}
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, ownerID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

// MessageRepository is an in-memory repository.MessageRepository.
type MessageRepository struct {
	mu       sync.RWMutex
	messages map[string][]repository.Message // keyed by session id
}

// NewMessageRepository creates an empty in-memory message repository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{messages: make(map[string][]repository.Message)}
}

func (r *MessageRepository) Create(_ context.Context, message *repository.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	r.messages[message.SessionID] = append(r.messages[message.SessionID], *message)
	return nil
}

func (r *MessageRepository) ListBySession(_ context.Context, sessionID string) ([]repository.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := append([]repository.Message{}, r.messages[sessionID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func (r *MessageRepository) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, sessionID)
	return nil
}

// FileRepository is an in-memory repository.FileRepository.
type FileRepository struct {
	mu    sync.RWMutex
	files map[string]repository.File
}

// NewFileRepository creates an empty in-memory file repository.
func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[string]repository.File)}
}

func (r *FileRepository) Create(_ context.Context, file *repository.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now
	r.files[file.ID] = *file
	return nil
}

func (r *FileRepository) ListBySession(_ context.Context, ownerID, sessionID string) ([]repository.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files := []repository.File{}
	for _, f := range r.files {
		if f.SessionID == sessionID && f.OwnerID == ownerID {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
	return files, nil
}

func (r *FileRepository) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, f := range r.files {
		if f.SessionID == sessionID {
			delete(r.files, id)
		}
	}
	return nil
}

// HighlightRepository is an in-memory repository.HighlightRepository.
type HighlightRepository struct {
	mu      sync.RWMutex
	records map[string]repository.HighlightRecord
}

// NewHighlightRepository creates an empty in-memory highlight repository.
func NewHighlightRepository() *HighlightRepository {
	return &HighlightRepository{records: make(map[string]repository.HighlightRecord)}
}

func (r *HighlightRepository) Upsert(_ context.Context, sessionID string, phrases []string) (*repository.HighlightRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if phrases == nil {
		phrases = []string{}
	}
	rec := repository.HighlightRecord{
		SessionID:  sessionID,
		Highlights: append([]string{}, phrases...),
		UpdatedAt:  time.Now(),
	}
	r.records[sessionID] = rec
	return &rec, nil
}

func (r *HighlightRepository) Get(_ context.Context, sessionID string) (*repository.HighlightRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[sessionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *HighlightRepository) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, sessionID)
	return nil
}

// MindMapRepository is an in-memory repository.MindMapRepository.
type MindMapRepository struct {
	mu   sync.RWMutex
	maps map[string]json.RawMessage
}

// NewMindMapRepository creates an empty in-memory mind-map repository.
func NewMindMapRepository() *MindMapRepository {
	return &MindMapRepository{maps: make(map[string]json.RawMessage)}
}

func (r *MindMapRepository) Upsert(_ context.Context, sessionID string, data json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.maps[sessionID] = append(json.RawMessage{}, data...)
	return nil
}

func (r *MindMapRepository) Get(_ context.Context, sessionID string) (json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.maps[sessionID]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage{}, data...), nil
}

func (r *MindMapRepository) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.maps, sessionID)
	return nil
}
