package store

import (
	"context"
	"errors"
	"io"
	"time"
)

// Namespace separates the two artifact families the backend owns.
type Namespace string

const (
	// NamespaceOriginals holds uploaded files keyed by document id.
	NamespaceOriginals Namespace = "originals"
	// NamespaceText holds extracted-text artifacts keyed by the derived
	// text artifact name.
	NamespaceText Namespace = "text"
)

// ErrNotExist is returned when a named artifact is absent.
var ErrNotExist = errors.New("artifact does not exist")

// Info describes a stored artifact.
type Info struct {
	Name       string
	SizeBytes  int64
	ModifiedAt time.Time
}

// ArtifactStore defines the contract for the dual-namespace artifact
// store. Names are flat within a namespace; there is no nesting.
type ArtifactStore interface {
	// Save writes the reader under name, overwriting any existing
	// artifact. It reports the byte count and whether an artifact with
	// that name already existed.
	Save(ctx context.Context, ns Namespace, name string, r io.Reader) (sizeBytes int64, overwrote bool, err error)
	Open(ctx context.Context, ns Namespace, name string) (io.ReadCloser, error)
	Stat(ctx context.Context, ns Namespace, name string) (Info, error)
	List(ctx context.Context, ns Namespace) ([]Info, error)
	// Delete removes name if present. Deleting an absent artifact is not
	// an error; the bool reports whether anything was removed.
	Delete(ctx context.Context, ns Namespace, name string) (existed bool, err error)
}
