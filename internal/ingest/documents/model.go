package documents

import (
	"time"

	"docscan-backend/internal/ingest/classify"
)

// Document is the record of one uploaded file plus its classification and
// extraction outcome. The Filename doubles as the document id: it is the
// name of the stored original and never changes once assigned.
type Document struct {
	Filename     string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Category     classify.Category
	UploadedAt   time.Time
	Extraction   Extraction
}

// Extraction is the outcome of the OCR dispatch for one document. Applied
// and Error are independent of upload success: a failed extraction still
// leaves a fully created document behind.
type Extraction struct {
	Applied    bool
	Text       string
	TextFile   string
	Characters int
	Error      string
}

// Summary is one entry of a document listing, assembled at call time from
// the originals namespace and enriched from the index when a record exists.
type Summary struct {
	Filename   string
	MimeType   string
	SizeBytes  int64
	Category   classify.Category
	ModifiedAt time.Time
	HasText    bool
	TextFile   string
}
