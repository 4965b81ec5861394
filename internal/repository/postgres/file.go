package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/documentor/documentor-backend/internal/repository"
)

// FileRepository implements repository.FileRepository using PostgreSQL
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository creates a new PostgreSQL file repository
func NewFileRepository(db *sqlx.DB) repository.FileRepository {
	return &FileRepository{db: db}
}

// Create creates a new file record
func (r *FileRepository) Create(ctx context.Context, file *repository.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now

	query := `
		INSERT INTO files (id, session_id, owner_id, name, size, url, content, created_at, updated_at)
		VALUES (:id, :session_id, :owner_id, :name, :size, :url, :content, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, file)
	return err
}

// ListBySession retrieves an owner's files for a session
func (r *FileRepository) ListBySession(ctx context.Context, ownerID, sessionID string) ([]repository.File, error) {
	files := []repository.File{}
	query := `
		SELECT id, session_id, owner_id, name, size, url, content, created_at, updated_at
		FROM files
		WHERE session_id = $1 AND owner_id = $2
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &files, query, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// DeleteBySession deletes all file records for a session
func (r *FileRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	query := "DELETE FROM files WHERE session_id = $1"
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}
