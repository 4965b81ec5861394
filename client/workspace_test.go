package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documentor/documentor-backend/internal/apperr"
)

const goodToken = "token-good"

// fakeBackend scripts just enough of the HTTP API for workspace tests.
type fakeBackend struct {
	mu         sync.Mutex
	sessions   map[string]Session
	messages   map[string][]Message
	files      map[string][]File
	highlights map[string][]string

	askResponse  string
	askFail      bool
	failMessages bool
	lastAsk      struct {
		History     []ChatMessage `json:"history"`
		FileContent string        `json:"fileContent"`
	}

	// messagesGate, when non-nil, blocks GET messages until closed.
	messagesGate chan struct{}
	// messagesEntered is closed when GET messages is first reached.
	messagesEntered chan struct{}
	enteredOnce     sync.Once

	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		sessions:    map[string]Session{},
		messages:    map[string][]Message{},
		files:       map[string][]File{},
		highlights:  map[string][]string{},
		askResponse: "A greeting.",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chats", b.listSessions)
	mux.HandleFunc("POST /api/chats", b.createSession)
	mux.HandleFunc("PUT /api/chats/{id}", b.renameSession)
	mux.HandleFunc("DELETE /api/chats/{id}", b.deleteSession)
	mux.HandleFunc("GET /api/chats/{id}/messages", b.listMessages)
	mux.HandleFunc("POST /api/chats/{id}/messages", b.addMessage)
	mux.HandleFunc("GET /api/files/{id}", b.listFiles)
	mux.HandleFunc("GET /api/highlights/{id}", b.listHighlights)
	mux.HandleFunc("POST /api/highlights", b.saveHighlights)
	mux.HandleFunc("POST /api/ask", b.ask)

	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) addSession(id, name string, createdAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[id] = Session{ID: id, OwnerID: "alice", Name: name, CreatedAt: createdAt, UpdatedAt: createdAt}
}

func (b *fakeBackend) listSessions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBackend) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	if req.Name == "" {
		req.Name = "Untitled Session"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := fmt.Sprintf("s-%d", len(b.sessions)+1)
	session := Session{ID: id, OwnerID: "alice", Name: req.Name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	b.sessions[id] = session
	writeJSON(w, http.StatusCreated, session)
}

func (b *fakeBackend) renameSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	session, ok := b.sessions[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chat session not found"})
		return
	}
	session.Name = req.Name
	b.sessions[session.ID] = session
	writeJSON(w, http.StatusOK, session)
}

func (b *fakeBackend) deleteSession(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := b.sessions[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chat session not found"})
		return
	}
	delete(b.sessions, id)
	delete(b.messages, id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *fakeBackend) listMessages(w http.ResponseWriter, r *http.Request) {
	b.enteredOnce.Do(func() {
		if b.messagesEntered != nil {
			close(b.messagesEntered)
		}
	})
	if b.messagesGate != nil {
		<-b.messagesGate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failMessages {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
		return
	}
	msgs := b.messages[r.PathValue("id")]
	if msgs == nil {
		msgs = []Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (b *fakeBackend) addMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.PathValue("id")
	msg := Message{
		ID:        fmt.Sprintf("m-%d", len(b.messages[id])+1),
		SessionID: id,
		Role:      req.Role,
		Content:   req.Content,
		Timestamp: time.Now(),
	}
	b.messages[id] = append(b.messages[id], msg)
	writeJSON(w, http.StatusCreated, msg)
}

func (b *fakeBackend) listFiles(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	files := b.files[r.PathValue("id")]
	if files == nil {
		files = []File{}
	}
	writeJSON(w, http.StatusOK, map[string][]File{"files": files})
}

func (b *fakeBackend) listHighlights(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	phrases := b.highlights[r.PathValue("id")]
	if phrases == nil {
		phrases = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"highlights": phrases})
}

func (b *fakeBackend) saveHighlights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID  string   `json:"sessionId"`
		Highlights []string `json:"highlights"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.highlights[req.SessionID] = req.Highlights
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *fakeBackend) ask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	json.NewDecoder(r.Body).Decode(&b.lastAsk)
	if b.askFail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get response from the AI"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": b.askResponse})
}

func newWorkspace(t *testing.T, b *fakeBackend) *Workspace {
	t.Helper()
	w := NewWorkspace(New(b.srv.URL))
	require.NoError(t, w.SignIn(context.Background(), goodToken))
	return w
}

func TestSignInReplacesSessionsWholesale(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("old", "Old", time.Now())

	w := newWorkspace(t, b)
	require.Len(t, w.Sessions(), 1)

	b.mu.Lock()
	delete(b.sessions, "old")
	b.mu.Unlock()
	b.addSession("new", "New", time.Now())

	require.NoError(t, w.SignIn(context.Background(), goodToken))
	sessions := w.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "new", sessions[0].ID)
}

func TestSignInBadTokenLeavesStateUntouched(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())

	w := newWorkspace(t, b)
	require.Len(t, w.Sessions(), 1)

	err := w.SignIn(context.Background(), "forged")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Len(t, w.Sessions(), 1)
}

func TestSelectSessionLoadsEverything(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())
	b.mu.Lock()
	b.messages["s1"] = []Message{{ID: "m-1", SessionID: "s1", Role: "user", Content: "hi"}}
	b.files["s1"] = []File{{ID: "f-1", SessionID: "s1", Name: "report.pdf", Content: "hello world"}}
	b.highlights["s1"] = []string{"alpha"}
	b.mu.Unlock()

	w := newWorkspace(t, b)
	require.NoError(t, w.SelectSession(context.Background(), "s1"))

	assert.Equal(t, "s1", w.SelectedSession())
	require.Len(t, w.Messages(), 1)
	require.Len(t, w.Files(), 1)
	assert.Equal(t, []string{"alpha"}, w.Highlights())
	assert.Empty(t, w.LoadErrors())
}

func TestSelectSessionDegradesFailedFetch(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())
	b.mu.Lock()
	b.files["s1"] = []File{{ID: "f-1", SessionID: "s1", Name: "report.pdf"}}
	b.failMessages = true
	b.mu.Unlock()

	w := newWorkspace(t, b)
	require.NoError(t, w.SelectSession(context.Background(), "s1"))

	assert.Empty(t, w.Messages())
	assert.Len(t, w.Files(), 1)
	assert.Len(t, w.LoadErrors(), 1)
}

func TestSelectSessionUnknownID(t *testing.T) {
	b := newFakeBackend(t)
	w := newWorkspace(t, b)

	err := w.SelectSession(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStaleSelectionResponseIsDiscarded(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())
	b.mu.Lock()
	b.messages["s1"] = []Message{{ID: "m-1", SessionID: "s1", Role: "user", Content: "hi"}}
	b.mu.Unlock()
	b.messagesGate = make(chan struct{})
	b.messagesEntered = make(chan struct{})

	w := newWorkspace(t, b)

	done := make(chan error, 1)
	go func() { done <- w.SelectSession(context.Background(), "s1") }()

	<-b.messagesEntered
	w.Deselect()
	close(b.messagesGate)
	require.NoError(t, <-done)

	assert.Equal(t, "", w.SelectedSession())
	assert.Empty(t, w.Messages())
}

func TestSendMessageHappyPath(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())
	b.mu.Lock()
	b.files["s1"] = []File{{ID: "f-1", SessionID: "s1", Content: "hello world"}}
	b.mu.Unlock()

	w := newWorkspace(t, b)
	require.NoError(t, w.SelectSession(context.Background(), "s1"))
	require.NoError(t, w.SendMessage(context.Background(), "summarize"))

	local := w.Messages()
	require.Len(t, local, 2)
	assert.Equal(t, "user", local[0].Role)
	assert.Equal(t, "summarize", local[0].Content)
	assert.Equal(t, "assistant", local[1].Role)
	assert.Equal(t, "A greeting.", local[1].Content)

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.messages["s1"], 2)
	assert.Equal(t, "hello world", b.lastAsk.FileContent)
	require.NotEmpty(t, b.lastAsk.History)
	assert.Equal(t, "summarize", b.lastAsk.History[len(b.lastAsk.History)-1].Content)
}

func TestSendMessageBoundsHistoryWindow(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())
	b.mu.Lock()
	for i := 0; i < 20; i++ {
		b.messages["s1"] = append(b.messages["s1"], Message{
			ID: fmt.Sprintf("m-%d", i), SessionID: "s1", Role: "user",
			Content: fmt.Sprintf("msg %d", i), Timestamp: time.Now(),
		})
	}
	b.mu.Unlock()

	w := newWorkspace(t, b)
	require.NoError(t, w.SelectSession(context.Background(), "s1"))
	require.NoError(t, w.SendMessage(context.Background(), "latest"))

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.lastAsk.History, historyWindow)
	assert.Equal(t, "latest", b.lastAsk.History[historyWindow-1].Content)
}

func TestSendMessageFailureLeavesVisibleError(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())
	b.mu.Lock()
	b.askFail = true
	b.mu.Unlock()

	w := newWorkspace(t, b)
	require.NoError(t, w.SelectSession(context.Background(), "s1"))

	err := w.SendMessage(context.Background(), "summarize")
	require.Error(t, err)

	local := w.Messages()
	require.Len(t, local, 2)
	assert.Equal(t, "summarize", local[0].Content)
	assert.Equal(t, "assistant", local[1].Role)
	assert.Contains(t, local[1].Content, "Error:")
}

func TestRenameFailureLeavesLocalUntouched(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())

	w := newWorkspace(t, b)

	err := w.RenameSession(context.Background(), "s1", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	sessions := w.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "Report", sessions[0].Name)

	require.NoError(t, w.RenameSession(context.Background(), "s1", "Quarterly"))
	assert.Equal(t, "Quarterly", w.Sessions()[0].Name)
}

func TestDeleteSessionClearsSelection(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())

	w := newWorkspace(t, b)
	require.NoError(t, w.SelectSession(context.Background(), "s1"))
	require.NoError(t, w.DeleteSession(context.Background(), "s1"))

	assert.Empty(t, w.Sessions())
	assert.Equal(t, "", w.SelectedSession())
	assert.Empty(t, w.Messages())
}

func TestAutoSelectFiresExactlyOnce(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Older", time.Now().Add(-time.Hour))
	b.addSession("s2", "Newer", time.Now())

	w := newWorkspace(t, b)
	require.NoError(t, w.AutoSelect(context.Background()))
	assert.Equal(t, "s2", w.SelectedSession())

	w.Deselect()
	require.NoError(t, w.AutoSelect(context.Background()))
	assert.Equal(t, "", w.SelectedSession())
}

func TestSaveHighlightsConfirmBeforeApply(t *testing.T) {
	b := newFakeBackend(t)
	b.addSession("s1", "Report", time.Now())

	w := newWorkspace(t, b)
	require.NoError(t, w.SelectSession(context.Background(), "s1"))
	require.NoError(t, w.SaveHighlights(context.Background(), []string{"alpha", "beta"}))

	assert.Equal(t, []string{"alpha", "beta"}, w.Highlights())
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, []string{"alpha", "beta"}, b.highlights["s1"])
}
