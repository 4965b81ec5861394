// Package client is the Go SDK for the DocuMentor backend. Client is a
// thin typed wrapper over the HTTP API; Workspace layers the in-memory
// projection and synchronization rules a UI needs on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/documentor/documentor-backend/internal/apperr"
)

// Session mirrors the server's session resource.
type Session struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message mirrors the server's message resource.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// File mirrors the server's file resource.
type File struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatMessage is one turn of conversation history sent to the assistant.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to a DocuMentor backend with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperr.Internal(err, "failed to encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Internal(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Upstream(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Upstream(err, "failed to decode response")
	}
	return nil
}

// apiError maps a non-2xx response body to the error taxonomy.
func (c *Client) apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperr.Validation("%s", msg)
	case http.StatusUnauthorized:
		return apperr.Unauthorized("%s", msg)
	case http.StatusNotFound:
		return apperr.NotFound("%s", msg)
	default:
		return apperr.Upstream(fmt.Errorf("server returned %d", resp.StatusCode), "%s", msg)
	}
}

// CreateSession creates a chat session. An empty name gets the server's
// default.
func (c *Client) CreateSession(ctx context.Context, name string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/chats", map[string]string{"name": name}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Sessions lists the caller's sessions, most recently updated first.
func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Session fetches a single session by id.
func (c *Client) Session(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+id, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RenameSession renames a session and returns the updated record.
func (c *Client) RenameSession(ctx context.Context, id, name string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPut, "/api/chats/"+id, map[string]string{"name": name}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes a session and everything attached to it.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/chats/"+id, nil, nil)
}

// AddMessage appends a message to a session's conversation.
func (c *Client) AddMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	var message Message
	err := c.do(ctx, http.MethodPost, "/api/chats/"+sessionID+"/messages",
		map[string]string{"role": role, "content": content}, &message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// Messages lists a session's messages, oldest first.
func (c *Client) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	var messages []Message
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+sessionID+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// UploadFile uploads a PDF into a session. An empty sessionID lets the
// server create a new session named after the file.
func (c *Client) UploadFile(ctx context.Context, sessionID, filename string, data io.Reader) (*File, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, apperr.Internal(err, "failed to build upload")
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, apperr.Internal(err, "failed to read upload data")
	}
	if sessionID != "" {
		if err := w.WriteField("sessionId", sessionID); err != nil {
			return nil, apperr.Internal(err, "failed to build upload")
		}
	}
	if err := w.Close(); err != nil {
		return nil, apperr.Internal(err, "failed to build upload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return nil, apperr.Internal(err, "failed to build request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var file File
	if err := c.send(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Files lists a session's files.
func (c *Client) Files(ctx context.Context, sessionID string) ([]File, error) {
	var out struct {
		Files []File `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/files/"+sessionID, nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// SaveHighlights replaces a session's highlight phrases.
func (c *Client) SaveHighlights(ctx context.Context, sessionID string, phrases []string) error {
	if phrases == nil {
		phrases = []string{}
	}
	return c.do(ctx, http.MethodPost, "/api/highlights", map[string]interface{}{
		"sessionId":  sessionID,
		"highlights": phrases,
	}, nil)
}

// Highlights fetches a session's highlight phrases.
func (c *Client) Highlights(ctx context.Context, sessionID string) ([]string, error) {
	var out struct {
		Highlights []string `json:"highlights"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/highlights/"+sessionID, nil, &out); err != nil {
		return nil, err
	}
	return out.Highlights, nil
}

// SaveMindMap replaces a session's mind-map document.
func (c *Client) SaveMindMap(ctx context.Context, sessionID string, data json.RawMessage) error {
	return c.do(ctx, http.MethodPost, "/api/mindmap/"+sessionID,
		map[string]json.RawMessage{"data": data}, nil)
}

// MindMap fetches a session's mind-map document, nil when none is saved.
func (c *Client) MindMap(ctx context.Context, sessionID string) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/mindmap/"+sessionID, nil, &data); err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

// Ask sends a question with conversation history and document text.
func (c *Client) Ask(ctx context.Context, history []ChatMessage, fileContent string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	err := c.do(ctx, http.MethodPost, "/api/ask", map[string]interface{}{
		"history":     history,
		"fileContent": fileContent,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Response, nil
}

// GenerateMindMap asks the server to build a mind map from document text.
func (c *Client) GenerateMindMap(ctx context.Context, documentText string) (json.RawMessage, error) {
	var data json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/generate-mindmap",
		map[string]string{"documentText": documentText}, &data)
	if err != nil {
		return nil, err
	}
	return data, nil
}
