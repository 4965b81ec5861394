package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/documentor/documentor-backend/internal/repository"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *repository.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	query := `
		INSERT INTO sessions (id, owner_id, name, created_at, updated_at)
		VALUES (:id, :owner_id, :name, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// Get retrieves a session owned by ownerID
func (r *SessionRepository) Get(ctx context.Context, ownerID, id string) (*repository.Session, error) {
	var session repository.Session
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM sessions
		WHERE id = $1 AND owner_id = $2
	`

	err := r.db.GetContext(ctx, &session, query, id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// GetAny retrieves a session by id without an ownership filter
func (r *SessionRepository) GetAny(ctx context.Context, id string) (*repository.Session, error) {
	var session repository.Session
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// List retrieves all sessions for an owner
func (r *SessionRepository) List(ctx context.Context, ownerID string) ([]*repository.Session, error) {
	sessions := []*repository.Session{}
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM sessions
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`

	err := r.db.SelectContext(ctx, &sessions, query, ownerID)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// Rename updates the session name. Ownership is part of the WHERE clause
// so the check and the write are a single statement.
func (r *SessionRepository) Rename(ctx context.Context, ownerID, id, name string) (*repository.Session, error) {
	var session repository.Session
	query := `
		UPDATE sessions
		SET name = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
		RETURNING id, owner_id, name, created_at, updated_at
	`

	err := r.db.GetContext(ctx, &session, query, name, time.Now(), id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// Touch bumps the session's updated_at
func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := "UPDATE sessions SET updated_at = $1 WHERE id = $2"
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

// Delete deletes an owned session and reports whether a row matched
func (r *SessionRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	query := "DELETE FROM sessions WHERE id = $1 AND owner_id = $2"
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
