// Package documents keeps the files attached to claims.
package documents

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// PlaceholderURL is the link recorded when document content is not retained.
const PlaceholderURL = "#"

var ErrNotFound = errors.New("document not found")

// Object is one claim attachment to store.
type Object struct {
	ClaimID     string
	Index       int
	Name        string
	ContentType string
	Content     []byte
}

// Store persists attachments and returns the link recorded on the claim.
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// Reader is implemented by stores that can serve content back.
type Reader interface {
	Get(ctx context.Context, claimID string, index int) (*Object, error)
}

// Linker is implemented by stores that hand out time-limited direct links.
type Linker interface {
	SignedURL(ctx context.Context, claimID string, index int) (string, error)
}

// DownloadPath is the API path that serves a stored attachment.
func DownloadPath(claimID string, index int) string {
	return fmt.Sprintf("/claims/%s/documents/%d", claimID, index)
}

func objectKey(claimID string, index int, name string) string {
	return fmt.Sprintf("%s/%d/%s", strings.TrimSpace(claimID), index, path.Base(strings.TrimSpace(name)))
}

func indexPrefix(claimID string, index int) string {
	return fmt.Sprintf("%s/%d/", strings.TrimSpace(claimID), index)
}

func claimPrefix(claimID string) string {
	return strings.TrimSpace(claimID) + "/"
}

// Placeholder records a stand-in link and discards the content.
type Placeholder struct{}

func (Placeholder) Put(context.Context, Object) (string, error) {
	return PlaceholderURL, nil
}
