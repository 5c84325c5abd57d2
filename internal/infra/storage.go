package infra

// storage.go — blob storage for generated PDFs and evidence files.
// The store does not auto-detect resource type on delete, so callers must
// pass the type they believe the blob has and fall back across types
// (image → raw → video) until one succeeds.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resource types understood by the blob store.
const (
	RecursoImagen = "image"
	RecursoRaw    = "raw"
	RecursoVideo  = "video"
)

// UploadOptions controls where a blob lands and how it is addressed.
type UploadOptions struct {
	Folder       string
	ResourceType string // image | raw | video
	PublicID     string
}

// UploadResult identifies a stored blob.
type UploadResult struct {
	URL string
	ID  string
}

// BlobStore uploads and deletes binary blobs, returning public URLs.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error)
	Delete(ctx context.Context, id, resourceType string) error
}

// localBlobStore keeps blobs on the local filesystem under
// {baseDir}/{resourceType}/{folder}/{publicID}, served at
// {publicURL}/{resourceType}/{folder}/{publicID}.
type localBlobStore struct {
	baseDir   string
	publicURL string
}

func NewLocalBlobStore(baseDir, publicURL string) BlobStore {
	return &localBlobStore{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *localBlobStore) Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	if opts.ResourceType == "" {
		opts.ResourceType = RecursoRaw
	}
	rel := filepath.Join(opts.ResourceType, opts.Folder, opts.PublicID)
	abs := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("blob: crear directorio: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return nil, fmt.Errorf("blob: escribir %s: %w", rel, err)
	}
	return &UploadResult{
		URL: s.publicURL + "/" + filepath.ToSlash(rel),
		ID:  filepath.ToSlash(filepath.Join(opts.Folder, opts.PublicID)),
	}, nil
}

func (s *localBlobStore) Delete(ctx context.Context, id, resourceType string) error {
	abs := filepath.Join(s.baseDir, resourceType, filepath.FromSlash(id))
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("blob: %s no existe como %s", id, resourceType)
	}
	return os.Remove(abs)
}

// BorrarConFallback tries to delete a blob probing each resource type in
// order, stopping at the first success. Exhausting all types is reported but
// callers usually treat it as best-effort.
func BorrarConFallback(ctx context.Context, store BlobStore, id string) error {
	var lastErr error
	for _, tipo := range []string{RecursoImagen, RecursoRaw, RecursoVideo} {
		if err := store.Delete(ctx, id, tipo); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("blob: no se pudo borrar %s con ningun tipo: %w", id, lastErr)
}
