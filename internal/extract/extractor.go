// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"context"
	"errors"
	"strings"
)

// ErrNoText indicates the document was readable but yielded no text.
var ErrNoText = errors.New("no text extracted from document")

// Extractor extracts the full plain text of a stored document.
type Extractor interface {
	// Extract reads a document from path and returns its text. A failure
	// means no File record may be created for the upload.
	Extract(ctx context.Context, path string) (string, error)
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
