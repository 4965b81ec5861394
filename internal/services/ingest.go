package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/documentor/documentor-backend/internal/apperr"
	"github.com/documentor/documentor-backend/internal/extract"
	"github.com/documentor/documentor-backend/internal/repository"
	"github.com/documentor/documentor-backend/internal/storage"
)

// Upload is one received multipart file plus its routing information.
type Upload struct {
	OwnerID     string
	SessionID   string // optional; a session is created when absent
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// IngestService runs the upload pipeline:
// received -> stored(temp) -> extracted -> published -> persisted.
// Bytes are published before the File record is written, so a record
// returned to a client always references a retrievable URL.
type IngestService struct {
	files     repository.FileRepository
	sessions  repository.SessionRepository
	extractor extract.Extractor
	store     storage.Store
	tempDir   string
}

// NewIngestService creates the ingestion pipeline.
func NewIngestService(
	files repository.FileRepository,
	sessions repository.SessionRepository,
	extractor extract.Extractor,
	store storage.Store,
	tempDir string,
) *IngestService {
	return &IngestService{
		files:     files,
		sessions:  sessions,
		extractor: extractor,
		store:     store,
		tempDir:   tempDir,
	}
}

// Ingest validates, extracts, publishes, and persists one upload.
func (s *IngestService) Ingest(ctx context.Context, up Upload) (*repository.File, error) {
	if up.Filename == "" || up.Size == 0 {
		return nil, apperr.Validation("no file uploaded")
	}
	if !isPDF(up.Filename, up.ContentType) {
		return nil, apperr.Validation("only PDF files are supported")
	}

	// Collision-resistant stored name: two concurrent uploads of the
	// same original filename must never share a path.
	storedName := fmt.Sprintf("%d-%s-%s",
		time.Now().UnixMilli(),
		uuid.New().String()[:8],
		sanitizeFilename(up.Filename),
	)

	tempPath, err := s.storeTemp(storedName, up.Data)
	if err != nil {
		return nil, apperr.Internal(err, "server error during file processing")
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", tempPath).Warn("failed to remove temp upload")
		}
	}()

	content, err := s.extractor.Extract(ctx, tempPath)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to extract text from document")
	}

	sessionID, err := s.resolveSession(ctx, up)
	if err != nil {
		return nil, err
	}

	url, err := s.publish(ctx, storedName, tempPath, up.ContentType)
	if err != nil {
		return nil, apperr.Internal(err, "server error during file processing")
	}

	file := &repository.File{
		SessionID: sessionID,
		OwnerID:   up.OwnerID,
		Name:      up.Filename,
		Size:      fmt.Sprintf("%.2f KB", float64(up.Size)/1024),
		URL:       url,
		Content:   content,
	}
	if err := s.files.Create(ctx, file); err != nil {
		// Back out the published bytes so no unreferenced file lingers.
		if rmErr := s.store.Remove(ctx, storedName); rmErr != nil {
			logrus.WithError(rmErr).WithField("name", storedName).Warn("failed to remove published file")
		}
		return nil, apperr.Internal(err, "failed to save file record")
	}

	logrus.WithFields(logrus.Fields{
		"file_id":    file.ID,
		"session_id": sessionID,
		"name":       up.Filename,
	}).Info("file ingested")

	return file, nil
}

// ListForSession returns the caller's files for a session.
func (s *IngestService) ListForSession(ctx context.Context, ownerID, sessionID string) ([]repository.File, error) {
	files, err := s.files.ListBySession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch files")
	}
	return files, nil
}

func (s *IngestService) storeTemp(storedName string, data io.Reader) (string, error) {
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	tempPath := filepath.Join(s.tempDir, storedName)

	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, data); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return tempPath, nil
}

// resolveSession returns the target session id, creating a session named
// after the file on first upload. The legacy web client sends the literal
// strings "undefined" and "null" for a missing session id.
func (s *IngestService) resolveSession(ctx context.Context, up Upload) (string, error) {
	sessionID := up.SessionID
	if sessionID == "" || sessionID == "undefined" || sessionID == "null" {
		session := &repository.Session{
			OwnerID: up.OwnerID,
			Name:    up.Filename,
		}
		if err := s.sessions.Create(ctx, session); err != nil {
			return "", apperr.Internal(err, "failed to create session for upload")
		}
		logrus.WithField("session_id", session.ID).Info("created new session for upload")
		return session.ID, nil
	}

	session, err := s.sessions.Get(ctx, up.OwnerID, sessionID)
	if err != nil {
		return "", apperr.Internal(err, "failed to fetch session")
	}
	if session == nil {
		return "", apperr.NotFound("chat session not found")
	}
	return sessionID, nil
}

func (s *IngestService) publish(ctx context.Context, storedName, tempPath, contentType string) (string, error) {
	in, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("open temp file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat temp file: %w", err)
	}

	if contentType == "" {
		contentType = "application/pdf"
	}
	return s.store.Publish(ctx, storedName, in, info.Size(), contentType)
}

func isPDF(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return contentType == "application/pdf"
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
