package documents

import (
	"time"

	"docscan-backend/internal/ingest/classify"
)

// UploadResponse is the backend's flat upload payload. The gateway owns
// the nested external schema; these field names are the internal contract
// it translates from.
type UploadResponse struct {
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	IsImage       bool      `json:"isImage"`
	IsPDF         bool      `json:"isPdf"`
	Category      string    `json:"category"`
	OCRApplied    bool      `json:"ocrApplied"`
	ExtractedText *string   `json:"extractedText"`
	TextFile      *string   `json:"textFile"`
	Characters    int       `json:"characters"`
	OCRError      *string   `json:"ocrError"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// ListItem is one entry of the backend's file listing.
type ListItem struct {
	Filename         string    `json:"filename"`
	MimeType         string    `json:"mimeType"`
	SizeBytes        int64     `json:"sizeBytes"`
	IsImage          bool      `json:"isImage"`
	Category         string    `json:"category"`
	ModifiedAt       time.Time `json:"modifiedAt"`
	HasExtractedText bool      `json:"hasExtractedText"`
	TextFile         *string   `json:"textFile"`
}

// PreviewResponse carries a text artifact's content as structured data.
type PreviewResponse struct {
	TextFile   string `json:"textFile"`
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}

// DeleteResponse reports what a delete actually removed.
type DeleteResponse struct {
	Deleted  bool   `json:"deleted"`
	Filename string `json:"filename"`
}

func toUploadResponse(doc Document) UploadResponse {
	resp := UploadResponse{
		Filename:     doc.Filename,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		IsImage:      doc.Category == classify.CategoryImage,
		IsPDF:        doc.Category == classify.CategoryPDF,
		Category:     string(doc.Category),
		OCRApplied:   doc.Extraction.Applied,
		Characters:   doc.Extraction.Characters,
		UploadedAt:   doc.UploadedAt,
	}
	if doc.Extraction.Applied {
		resp.ExtractedText = &doc.Extraction.Text
		resp.TextFile = &doc.Extraction.TextFile
	}
	if doc.Extraction.Error != "" {
		resp.OCRError = &doc.Extraction.Error
	}
	return resp
}

func toListItem(s Summary) ListItem {
	item := ListItem{
		Filename:         s.Filename,
		MimeType:         s.MimeType,
		SizeBytes:        s.SizeBytes,
		IsImage:          s.Category == classify.CategoryImage,
		Category:         string(s.Category),
		ModifiedAt:       s.ModifiedAt,
		HasExtractedText: s.HasText,
	}
	if s.HasText {
		item.TextFile = &s.TextFile
	}
	return item
}
