package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/documentor/documentor-backend/internal/repository"
)

// HighlightRepository implements repository.HighlightRepository using PostgreSQL
type HighlightRepository struct {
	db *sqlx.DB
}

// NewHighlightRepository creates a new PostgreSQL highlight repository
func NewHighlightRepository(db *sqlx.DB) repository.HighlightRepository {
	return &HighlightRepository{db: db}
}

type highlightRow struct {
	SessionID  string         `db:"session_id"`
	Highlights pq.StringArray `db:"highlights"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row highlightRow) record() *repository.HighlightRecord {
	return &repository.HighlightRecord{
		SessionID:  row.SessionID,
		Highlights: []string(row.Highlights),
		UpdatedAt:  row.UpdatedAt,
	}
}

// Upsert replaces the highlight phrases for a session
func (r *HighlightRepository) Upsert(ctx context.Context, sessionID string, phrases []string) (*repository.HighlightRecord, error) {
	if phrases == nil {
		phrases = []string{}
	}

	var row highlightRow
	query := `
		INSERT INTO highlights (session_id, highlights, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET highlights = EXCLUDED.highlights, updated_at = EXCLUDED.updated_at
		RETURNING session_id, highlights, updated_at
	`

	err := r.db.GetContext(ctx, &row, query, sessionID, pq.StringArray(phrases), time.Now())
	if err != nil {
		return nil, err
	}

	return row.record(), nil
}

// Get retrieves a session's highlight record, nil when absent
func (r *HighlightRepository) Get(ctx context.Context, sessionID string) (*repository.HighlightRecord, error) {
	var row highlightRow
	query := `
		SELECT session_id, highlights, updated_at
		FROM highlights
		WHERE session_id = $1
	`

	err := r.db.GetContext(ctx, &row, query, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.record(), nil
}

// DeleteBySession removes a session's highlight record
func (r *HighlightRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	query := "DELETE FROM highlights WHERE session_id = $1"
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}

// MindMapRepository implements repository.MindMapRepository using PostgreSQL
type MindMapRepository struct {
	db *sqlx.DB
}

// NewMindMapRepository creates a new PostgreSQL mind-map repository
func NewMindMapRepository(db *sqlx.DB) repository.MindMapRepository {
	return &MindMapRepository{db: db}
}

// Upsert replaces the mind-map document for a session
func (r *MindMapRepository) Upsert(ctx context.Context, sessionID string, data json.RawMessage) error {
	query := `
		INSERT INTO mindmaps (session_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, sessionID, []byte(data), time.Now())
	return err
}

// Get retrieves a session's mind-map document, nil when absent
func (r *MindMapRepository) Get(ctx context.Context, sessionID string) (json.RawMessage, error) {
	var data []byte
	query := "SELECT data FROM mindmaps WHERE session_id = $1"

	err := r.db.GetContext(ctx, &data, query, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return json.RawMessage(data), nil
}

// DeleteBySession removes a session's mind-map document
func (r *MindMapRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	query := "DELETE FROM mindmaps WHERE session_id = $1"
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}
