package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docscan-backend/internal/ingest/store"
)

// Store implements ArtifactStore on the local filesystem. Each namespace
// is a flat directory under baseDir.
type Store struct {
	baseDir string
}

// New creates a local artifact store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes the reader to disk under the namespace, overwriting any
// existing file of the same name.
func (s *Store) Save(ctx context.Context, ns store.Namespace, name string, r io.Reader) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	fullPath, err := s.resolve(ns, name)
	if err != nil {
		return 0, false, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, false, fmt.Errorf("mkdir: %w", err)
	}

	_, statErr := os.Stat(fullPath)
	overwrote := statErr == nil

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, false, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, overwrote, fmt.Errorf("write body: %w", err)
	}
	return written, overwrote, nil
}

// Open opens a stored artifact for reading.
func (s *Store) Open(ctx context.Context, ns store.Namespace, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(ns, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %s/%s: %w", ns, name, store.ErrNotExist)
		}
		return nil, err
	}
	return f, nil
}

// Stat reports metadata for a stored artifact.
func (s *Store) Stat(ctx context.Context, ns store.Namespace, name string) (store.Info, error) {
	if err := ctx.Err(); err != nil {
		return store.Info{}, err
	}

	fullPath, err := s.resolve(ns, name)
	if err != nil {
		return store.Info{}, err
	}

	fi, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return store.Info{}, fmt.Errorf("stat %s/%s: %w", ns, name, store.ErrNotExist)
		}
		return store.Info{}, err
	}
	return store.Info{
		Name:       name,
		SizeBytes:  fi.Size(),
		ModifiedAt: fi.ModTime(),
	}, nil
}

// List enumerates a namespace. A namespace that was never written to
// lists as empty rather than failing.
func (s *Store) List(ctx context.Context, ns store.Namespace) ([]store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirPath := filepath.Join(s.baseDir, string(ns))
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", ns, err)
	}

	infos := make([]store.Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// Entry disappeared between ReadDir and Info; skip it.
			continue
		}
		infos = append(infos, store.Info{
			Name:       entry.Name(),
			SizeBytes:  fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
	}
	return infos, nil
}

// Delete removes an artifact; a missing artifact is not an error.
func (s *Store) Delete(ctx context.Context, ns store.Namespace, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fullPath, err := s.resolve(ns, name)
	if err != nil {
		return false, err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove %s/%s: %w", ns, name, err)
	}
	return true, nil
}

func (s *Store) resolve(ns store.Namespace, name string) (string, error) {
	clean := filepath.Clean(name)
	if clean != name || strings.ContainsAny(name, "/\\") || strings.HasPrefix(clean, "..") || clean == "." {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.baseDir, string(ns), clean), nil
}

var _ store.ArtifactStore = (*Store)(nil)
