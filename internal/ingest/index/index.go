// Package index keeps document metadata in an embedded BadgerDB store.
// The filesystem naming convention remains the externally observable
// contract; the index is the explicit id→metadata mapping behind it, so
// list and lookup paths do not have to re-derive everything from
// directory entries.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"docscan-backend/internal/shared/telemetry"
)

const docKeyPrefix = "doc:"

// ErrNotFound is returned when no record exists for a document id.
var ErrNotFound = errors.New("document record not found")

// Record is the persisted metadata for one document.
type Record struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	Category     string    `json:"category"`
	OCRApplied   bool      `json:"ocrApplied"`
	TextFile     string    `json:"textFile,omitempty"`
	Characters   int       `json:"characters"`
	OCRError     string    `json:"ocrError,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Index wraps a BadgerDB instance holding document records.
type Index struct {
	db *badger.DB
}

// badgerLoggerAdapter adapts the telemetry logger to badger.Logger.
type badgerLoggerAdapter struct{}

var _ badger.Logger = badgerLoggerAdapter{}

func (badgerLoggerAdapter) Errorf(msg string, items ...any) {
	telemetry.Error("badger", map[string]any{"detail": fmt.Sprintf(msg, items...)})
}

func (badgerLoggerAdapter) Warningf(msg string, items ...any) {
	telemetry.Warn("badger", map[string]any{"detail": fmt.Sprintf(msg, items...)})
}

func (badgerLoggerAdapter) Infof(msg string, items ...any)  {}
func (badgerLoggerAdapter) Debugf(msg string, items ...any) {}

// Open opens (or creates) the index at dirPath. An empty dirPath opens an
// in-memory index, used by tests.
func Open(dirPath string) (*Index, error) {
	var opts badger.Options
	if dirPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir index dir: %w", err)
		}
		opts = badger.DefaultOptions(dirPath)
	}
	opts.Logger = badgerLoggerAdapter{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}

// Put stores or replaces the record for a document.
func (i *Index) Put(rec Record) error {
	if rec.Filename == "" {
		return errors.New("record filename is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return i.db.Update(func(tx *badger.Txn) error {
		return tx.Set(key(rec.Filename), data)
	})
}

// Get fetches the record for a document id.
func (i *Index) Get(filename string) (Record, error) {
	var rec Record
	err := i.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key(filename))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("get %s: %w", filename, ErrNotFound)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// Delete removes the record for a document id. Missing records are not
// an error: the store, not the index, decides existence.
func (i *Index) Delete(filename string) error {
	return i.db.Update(func(tx *badger.Txn) error {
		err := tx.Delete(key(filename))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func key(filename string) []byte {
	return []byte(docKeyPrefix + filename)
}
