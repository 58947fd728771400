package quotedoc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-quotedoc/internal/fileutil"
)

// DocumentStore persists documents as opaque serialized blobs keyed by id.
// No schema is enforced beyond the id/payload pair.
type DocumentStore interface {
	Load(ctx context.Context, id string) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// DraftStore persists work-in-progress documents keyed by document id.
// Drafts skip validation: an incomplete document is exactly what a draft is.
type DraftStore interface {
	SaveDraft(ctx context.Context, doc *Document) error
	LoadDraft(ctx context.Context, id string) (*Document, error)
	ClearDraft(ctx context.Context, id string) error
}

// FileStore implements DocumentStore and DraftStore with one JSON blob per
// id under dir. Writes are atomic (temp file plus rename).
type FileStore struct {
	dir string
}

// Compile-time interface implementation checks.
var (
	_ DocumentStore = (*FileStore)(nil)
	_ DraftStore    = (*FileStore)(nil)
)

// NewFileStore creates the documents and drafts directories under dir.
func NewFileStore(dir string) (*FileStore, error) {
	for _, sub := range []string{"documents", "drafts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o750); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(kind, id string) string {
	return filepath.Join(s.dir, kind, fileutil.SanitizeFilename(id)+".json")
}

// Save validates the document and writes it. Validation failures block the
// save; they never block export or preview.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	return s.write(ctx, s.path("documents", doc.ID), doc)
}

// Load reads the document with the given id.
func (s *FileStore) Load(ctx context.Context, id string) (*Document, error) {
	return s.read(ctx, s.path("documents", id), ErrDocumentNotFound)
}

// SaveDraft writes the draft without validation.
func (s *FileStore) SaveDraft(ctx context.Context, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: draft needs an id", ErrNilDocument)
	}
	return s.write(ctx, s.path("drafts", doc.ID), doc)
}

// LoadDraft reads the draft for the given document id.
func (s *FileStore) LoadDraft(ctx context.Context, id string) (*Document, error) {
	return s.read(ctx, s.path("drafts", id), ErrDraftNotFound)
}

// ClearDraft removes the draft for the given document id. Missing drafts are
// a no-op.
func (s *FileStore) ClearDraft(ctx context.Context, id string) error {
	err := os.Remove(s.path("drafts", id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}

func (s *FileStore) write(ctx context.Context, path string, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o640)
}

func (s *FileStore) read(ctx context.Context, path string, notFound error) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a sanitized id
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound
		}
		return nil, fmt.Errorf("reading document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}
