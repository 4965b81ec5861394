package client

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/documentor/documentor-backend/internal/apperr"
)

// historyWindow bounds the trailing conversation slice sent with each
// question.
const historyWindow = 8

// Workspace is a client-side projection of one user's state: the session
// map plus the selected session's messages, files, and highlights. All
// methods are safe for concurrent use.
//
// Reads that fail degrade to empty slices and are recorded; writes that
// fail leave the projection untouched. Async completions only apply when
// they still target the selected session, so a selection change while a
// fetch is in flight never lets stale data through.
type Workspace struct {
	api *Client

	mu           sync.Mutex
	sessions     map[string]Session
	selectedID   string
	messages     []Message
	files        []File
	highlights   []string
	selectedFile *File
	autoSelected bool
	loadErrs     []error
}

// NewWorkspace creates an empty Workspace over the given API client.
func NewWorkspace(api *Client) *Workspace {
	return &Workspace{
		api:      api,
		sessions: make(map[string]Session),
	}
}

// SignIn authenticates the workspace and replaces the session map
// wholesale with the server's list. Nothing is merged; the server's
// answer wins.
func (w *Workspace) SignIn(ctx context.Context, token string) error {
	w.api.SetToken(token)

	sessions, err := w.api.Sessions(ctx)
	if err != nil {
		return err
	}

	replacement := make(map[string]Session, len(sessions))
	for _, s := range sessions {
		replacement[s.ID] = s
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions = replacement
	return nil
}

// Sessions returns a snapshot of the known sessions.
func (w *Workspace) Sessions() []Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		out = append(out, s)
	}
	return out
}

// SelectedSession returns the id of the selected session, empty when
// nothing is selected.
func (w *Workspace) SelectedSession() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedID
}

// Messages returns a snapshot of the selected session's conversation.
func (w *Workspace) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.messages...)
}

// Files returns a snapshot of the selected session's files.
func (w *Workspace) Files() []File {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]File(nil), w.files...)
}

// Highlights returns a snapshot of the selected session's highlights.
func (w *Workspace) Highlights() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.highlights...)
}

// LoadErrors returns the read failures recorded by the last selection.
func (w *Workspace) LoadErrors() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]error(nil), w.loadErrs...)
}

// SelectSession makes a session current and loads its files, messages,
// and highlights in parallel. A failed fetch leaves that slice empty and
// is recorded in LoadErrors without blocking the other two.
func (w *Workspace) SelectSession(ctx context.Context, id string) error {
	w.mu.Lock()
	if _, ok := w.sessions[id]; !ok {
		w.mu.Unlock()
		return apperr.NotFound("unknown session")
	}
	w.selectedID = id
	w.messages = nil
	w.files = nil
	w.highlights = nil
	w.selectedFile = nil
	w.loadErrs = nil
	w.mu.Unlock()

	var (
		files      []File
		messages   []Message
		highlights []string
		errs       []error
		errMu      sync.Mutex
	)
	record := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		got, err := w.api.Files(gctx, id)
		if err != nil {
			record(fmt.Errorf("files: %w", err))
			return nil
		}
		files = got
		return nil
	})
	g.Go(func() error {
		got, err := w.api.Messages(gctx, id)
		if err != nil {
			record(fmt.Errorf("messages: %w", err))
			return nil
		}
		messages = got
		return nil
	})
	g.Go(func() error {
		got, err := w.api.Highlights(gctx, id)
		if err != nil {
			record(fmt.Errorf("highlights: %w", err))
			return nil
		}
		highlights = got
		return nil
	})
	g.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selectedID != id {
		// Selection moved on while we were fetching.
		return nil
	}
	w.files = files
	w.messages = messages
	w.highlights = highlights
	w.loadErrs = errs
	if len(files) > 0 {
		f := files[0]
		w.selectedFile = &f
	}
	return nil
}

// Deselect clears the current selection and its loaded state.
func (w *Workspace) Deselect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selectedID = ""
	w.messages = nil
	w.files = nil
	w.highlights = nil
	w.selectedFile = nil
	w.loadErrs = nil
}

// SelectFile chooses which of the loaded files feeds the assistant.
func (w *Workspace) SelectFile(fileID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.files {
		if w.files[i].ID == fileID {
			f := w.files[i]
			w.selectedFile = &f
			return nil
		}
	}
	return apperr.NotFound("file not loaded")
}

// AutoSelect picks the most recently created session, at most once per
// Workspace lifetime. Calling it again, including after a manual
// Deselect, does nothing.
func (w *Workspace) AutoSelect(ctx context.Context) error {
	w.mu.Lock()
	if w.autoSelected {
		w.mu.Unlock()
		return nil
	}
	w.autoSelected = true

	var newest *Session
	for id := range w.sessions {
		s := w.sessions[id]
		if newest == nil || s.CreatedAt.After(newest.CreatedAt) {
			newest = &s
		}
	}
	w.mu.Unlock()

	if newest == nil {
		return nil
	}
	return w.SelectSession(ctx, newest.ID)
}

// CreateSession creates a session on the server and adds it locally.
func (w *Workspace) CreateSession(ctx context.Context, name string) (*Session, error) {
	session, err := w.api.CreateSession(ctx, name)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.sessions[session.ID] = *session
	w.mu.Unlock()
	return session, nil
}

// RenameSession renames a session, applying the change locally only
// after the server confirms it.
func (w *Workspace) RenameSession(ctx context.Context, id, name string) error {
	updated, err := w.api.RenameSession(ctx, id, name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions[updated.ID] = *updated
	return nil
}

// DeleteSession deletes a session, removing it locally only after the
// server confirms. Deleting the selected session clears the selection.
func (w *Workspace) DeleteSession(ctx context.Context, id string) error {
	if err := w.api.DeleteSession(ctx, id); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.sessions, id)
	if w.selectedID == id {
		w.selectedID = ""
		w.messages = nil
		w.files = nil
		w.highlights = nil
		w.selectedFile = nil
	}
	return nil
}

// UploadFile uploads into the selected session (or lets the server
// create one when none is selected) and refreshes local state from the
// returned record.
func (w *Workspace) UploadFile(ctx context.Context, filename string, data []byte) (*File, error) {
	w.mu.Lock()
	sessionID := w.selectedID
	w.mu.Unlock()

	file, err := w.api.UploadFile(ctx, sessionID, filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		// The server created a session for this upload; learn about it
		// but leave selection to the caller.
		if session, err := w.api.Session(ctx, file.SessionID); err == nil {
			w.mu.Lock()
			w.sessions[session.ID] = *session
			w.mu.Unlock()
		}
		return file, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selectedID == sessionID {
		w.files = append(w.files, *file)
		if w.selectedFile == nil {
			f := *file
			w.selectedFile = &f
		}
	}
	return file, nil
}

// SendMessage runs one conversational turn against the selected session.
// The user's message is appended locally before any network work, then
// saved, answered, and the answer saved and appended. A failure at any
// step appends a visible error message instead of silently dropping the
// turn.
func (w *Workspace) SendMessage(ctx context.Context, content string) error {
	w.mu.Lock()
	sessionID := w.selectedID
	if sessionID == "" {
		w.mu.Unlock()
		return apperr.Validation("no session selected")
	}
	if content == "" {
		w.mu.Unlock()
		return apperr.Validation("message content is required")
	}

	// Optimistic append, plus the history window computed from the state
	// that includes the new message.
	w.messages = append(w.messages, Message{SessionID: sessionID, Role: "user", Content: content})
	history := make([]ChatMessage, 0, historyWindow)
	start := len(w.messages) - historyWindow
	if start < 0 {
		start = 0
	}
	for _, m := range w.messages[start:] {
		history = append(history, ChatMessage{Role: m.Role, Content: m.Content})
	}
	fileContent := ""
	if w.selectedFile != nil {
		fileContent = w.selectedFile.Content
	}
	w.mu.Unlock()

	answer, err := w.exchange(ctx, sessionID, content, history, fileContent)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selectedID != sessionID {
		// The user switched sessions mid-flight; the reply belongs to a
		// conversation that is no longer on screen.
		return err
	}
	if err != nil {
		w.messages = append(w.messages, Message{
			SessionID: sessionID,
			Role:      "assistant",
			Content:   fmt.Sprintf("Error: %s", apperr.Message(err)),
		})
		return err
	}
	w.messages = append(w.messages, Message{SessionID: sessionID, Role: "assistant", Content: answer})
	return nil
}

func (w *Workspace) exchange(ctx context.Context, sessionID, content string, history []ChatMessage, fileContent string) (string, error) {
	if _, err := w.api.AddMessage(ctx, sessionID, "user", content); err != nil {
		return "", err
	}
	answer, err := w.api.Ask(ctx, history, fileContent)
	if err != nil {
		return "", err
	}
	if answer == "" {
		answer = "Sorry, I couldn't get a response."
	}
	if _, err := w.api.AddMessage(ctx, sessionID, "assistant", answer); err != nil {
		return "", err
	}
	return answer, nil
}

// SaveHighlights replaces the selected session's highlights, applying
// locally only after the server confirms.
func (w *Workspace) SaveHighlights(ctx context.Context, phrases []string) error {
	w.mu.Lock()
	sessionID := w.selectedID
	w.mu.Unlock()
	if sessionID == "" {
		return apperr.Validation("no session selected")
	}

	if err := w.api.SaveHighlights(ctx, sessionID, phrases); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selectedID == sessionID {
		w.highlights = append([]string(nil), phrases...)
	}
	return nil
}
