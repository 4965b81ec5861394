package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documentor/documentor-backend/internal/apperr"
)

func pdfUpload(owner, sessionID, name string) Upload {
	body := "%PDF-1.4 fake body"
	return Upload{
		OwnerID:     owner,
		SessionID:   sessionID,
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Data:        strings.NewReader(body),
	}
}

func TestIngest_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.svc.Sessions.Create(ctx, "alice", "Report")
	require.NoError(t, err)

	file, err := env.svc.Ingest.Ingest(ctx, pdfUpload("alice", session.ID, "report.pdf"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", file.Content)
	assert.Equal(t, "report.pdf", file.Name)
	assert.Equal(t, session.ID, file.SessionID)
	assert.Equal(t, "alice", file.OwnerID)
	assert.True(t, strings.HasPrefix(file.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(file.URL, "-report.pdf"))

	// The published bytes must exist at the recorded path.
	published := filepath.Join(env.store.Dir(), strings.TrimPrefix(file.URL, "/uploads/"))
	_, err = os.Stat(published)
	assert.NoError(t, err)

	files, err := env.svc.Ingest.ListForSession(ctx, "alice", session.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hello world", files[0].Content)
}

func TestIngest_RejectsNonPDF(t *testing.T) {
	env := newTestEnv(t)

	up := pdfUpload("alice", "", "notes.txt")
	up.ContentType = "text/plain"
	_, err := env.svc.Ingest.Ingest(context.Background(), up)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestIngest_RejectsEmptyUpload(t *testing.T) {
	env := newTestEnv(t)

	up := pdfUpload("alice", "", "report.pdf")
	up.Size = 0
	_, err := env.svc.Ingest.Ingest(context.Background(), up)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestIngest_ExtractionFailureLeavesNoRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.svc.Sessions.Create(ctx, "alice", "Report")
	require.NoError(t, err)

	env.extractor.Err = errStub
	_, err = env.svc.Ingest.Ingest(ctx, pdfUpload("alice", session.ID, "report.pdf"))
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	files, err := env.svc.Ingest.ListForSession(ctx, "alice", session.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIngest_AutoCreatesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, missing := range []string{"", "undefined", "null"} {
		file, err := env.svc.Ingest.Ingest(ctx, pdfUpload("alice", missing, "report.pdf"))
		require.NoError(t, err)
		require.NotEmpty(t, file.SessionID)

		session, err := env.svc.Sessions.Get(ctx, "alice", file.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "report.pdf", session.Name)
	}
}

func TestIngest_RejectsUploadToUnownedSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.svc.Sessions.Create(ctx, "bob", "Bob's Notes")
	require.NoError(t, err)

	_, err = env.svc.Ingest.Ingest(ctx, pdfUpload("alice", session.ID, "report.pdf"))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestIngest_ConcurrentSameNameUploadsDoNotCollide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s1, err := env.svc.Sessions.Create(ctx, "alice", "One")
	require.NoError(t, err)
	s2, err := env.svc.Sessions.Create(ctx, "alice", "Two")
	require.NoError(t, err)

	var wg sync.WaitGroup
	urls := make([]string, 2)
	errs := make([]error, 2)
	for i, sessionID := range []string{s1.ID, s2.ID} {
		wg.Add(1)
		go func(i int, sessionID string) {
			defer wg.Done()
			file, err := env.svc.Ingest.Ingest(ctx, pdfUpload("alice", sessionID, "report.pdf"))
			errs[i] = err
			if err == nil {
				urls[i] = file.URL
			}
		}(i, sessionID)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, urls[0], urls[1])

	// Both files are independently retrievable.
	for _, url := range urls {
		_, err := os.Stat(filepath.Join(env.store.Dir(), strings.TrimPrefix(url, "/uploads/")))
		assert.NoError(t, err)
	}
}

func TestIngest_CleansTempDirOnSuccessAndFailure(t *testing.T) {
	store, err := os.MkdirTemp("", "pub")
	require.NoError(t, err)
	defer os.RemoveAll(store)

	env := newTestEnv(t)
	ctx := context.Background()

	_, err = env.svc.Ingest.Ingest(ctx, pdfUpload("alice", "", "report.pdf"))
	require.NoError(t, err)

	env.extractor.Err = errStub
	_, err = env.svc.Ingest.Ingest(ctx, pdfUpload("alice", "", "broken.pdf"))
	require.Error(t, err)

	entries, err := os.ReadDir(env.svc.Ingest.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
