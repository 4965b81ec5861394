package repository

import (
	"context"
	"encoding/json"
	"time"
)

// Session is a named container scoping one conversation, its files, and
// its derived data. OwnerID is the identity-token subject and is immutable
// after creation.
type Session struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Message is one entry in a session's append-only conversation log.
type Message struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// File is an uploaded document: its stored location plus the text
// extracted at ingestion time. Content is written once and never updated.
type File struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	Name      string    `db:"name" json:"name"`
	Size      string    `db:"size" json:"size"`
	URL       string    `db:"url" json:"url"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// HighlightRecord holds the highlight phrases for one session. One record
// per session, upsert-only.
type HighlightRecord struct {
	SessionID  string    `db:"session_id" json:"sessionId"`
	Highlights []string  `db:"highlights" json:"highlights"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Roles a message may carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionRepository defines session storage operations. Lookups that take
// an ownerID fold the ownership check into the query itself so a
// cross-tenant id can never match.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// Get retrieves a session owned by ownerID, or nil when no such
	// session exists for that owner.
	Get(ctx context.Context, ownerID, id string) (*Session, error)
	// GetAny retrieves a session by id regardless of owner. Callers must
	// enforce ownership themselves.
	GetAny(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context, ownerID string) ([]*Session, error)
	// Rename updates the name in a single owner-checked statement and
	// returns the updated row, or nil when no owned row matched.
	Rename(ctx context.Context, ownerID, id, name string) (*Session, error)
	// Touch bumps updated_at, e.g. when a message is appended.
	Touch(ctx context.Context, id string, at time.Time) error
	// Delete removes an owned session and reports whether a row matched.
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

// MessageRepository defines message storage operations.
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	ListBySession(ctx context.Context, sessionID string) ([]Message, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// FileRepository defines file-record storage operations.
type FileRepository interface {
	Create(ctx context.Context, file *File) error
	ListBySession(ctx context.Context, ownerID, sessionID string) ([]File, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// HighlightRepository stores one highlight record per session.
type HighlightRepository interface {
	// Upsert replaces the phrases for a session, creating the record on
	// first write. Idempotent.
	Upsert(ctx context.Context, sessionID string, phrases []string) (*HighlightRecord, error)
	// Get returns nil when the session has no record yet.
	Get(ctx context.Context, sessionID string) (*HighlightRecord, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// MindMapRepository stores one mind-map document per session.
type MindMapRepository interface {
	Upsert(ctx context.Context, sessionID string, data json.RawMessage) error
	// Get returns nil when the session has no mind map yet.
	Get(ctx context.Context, sessionID string) (json.RawMessage, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
