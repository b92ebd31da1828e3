package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalBlobStore writes uploads under a root directory, keyed as
// client-files/<client>/<onboarding>/<random>.<ext>. The random object name
// keeps portal-supplied filenames out of the filesystem.
type LocalBlobStore struct {
	root      string
	publicURL string
	logger    *slog.Logger
}

func NewLocalBlobStore(logger *slog.Logger, root, publicURL string) *LocalBlobStore {
	return &LocalBlobStore{
		root:      strings.TrimPrefix(root, "file://"),
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger.With("module", "blob_store"),
	}
}

func (s *LocalBlobStore) Put(ctx context.Context, clientID, onboardingID, filename string, content io.Reader) (*StoredObject, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	key := path.Join("client-files", clientID, onboardingID, uuid.New().String()+ext)
	target := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(file, content)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(target)

		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close upload file: %w", err)
	}

	s.logger.DebugContext(ctx, "Stored upload", "key", key, "size", written)

	return &StoredObject{
		Key:       key,
		URL:       s.publicURL + "/" + key,
		SizeBytes: written,
	}, nil
}

func (s *LocalBlobStore) Delete(_ context.Context, key string) error {
	target := filepath.Join(s.root, filepath.FromSlash(key))

	err := os.Remove(target)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}
