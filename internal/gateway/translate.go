package gateway

import (
	"net/url"
	"time"

	"docscan-backend/internal/gateway/proxy"
)

// externalPrefix is the versioned path every synthesized link lives under.
const externalPrefix = "/v1"

// Classification describes the detected file type in the external schema.
type Classification struct {
	IsImage  bool   `json:"isImage"`
	IsPDF    bool   `json:"isPdf"`
	Category string `json:"category"`
}

// OCRResult is the nested extraction outcome in the external schema.
type OCRResult struct {
	Applied        bool    `json:"applied"`
	ExtractedText  *string `json:"extractedText"`
	TextFileID     *string `json:"textFileId"`
	CharacterCount int     `json:"characterCount"`
	Error          *string `json:"error"`
}

// Links are the derived-resource URLs synthesized purely from the
// external id; no lookup is involved.
type Links struct {
	DownloadOriginal string  `json:"downloadOriginal"`
	DownloadText     *string `json:"downloadText"`
	Delete           string  `json:"delete"`
}

// ExternalDocument is the stable outward document representation.
type ExternalDocument struct {
	ID             string         `json:"id"`
	OriginalName   string         `json:"originalName"`
	MimeType       string         `json:"mimeType"`
	SizeBytes      int64          `json:"sizeBytes"`
	Classification Classification `json:"classification"`
	OCR            OCRResult      `json:"ocr"`
	Links          Links          `json:"links"`
}

// ListOCR is the abbreviated OCR status in a list item.
type ListOCR struct {
	HasExtractedText bool    `json:"hasExtractedText"`
	TextFileID       *string `json:"textFileId"`
}

// ExternalListItem is one document in the external listing.
type ExternalListItem struct {
	ID         string    `json:"id"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	IsImage    bool      `json:"isImage"`
	UploadedAt time.Time `json:"uploadedAt"`
	OCR        ListOCR   `json:"ocr"`
	Links      Links     `json:"links"`
}

// buildLinks synthesizes resource links from an external id.
func buildLinks(id string, hasText bool) Links {
	escaped := url.PathEscape(id)
	links := Links{
		DownloadOriginal: externalPrefix + "/documents/" + escaped + "/download",
		Delete:           externalPrefix + "/documents/" + escaped,
	}
	if hasText {
		textLink := externalPrefix + "/documents/" + escaped + "/text"
		links.DownloadText = &textLink
	}
	return links
}

// translateDocument reshapes the backend's flat document into the
// external schema: internal filename becomes the external id, the flat
// OCR fields fold into a nested object, and links are synthesized.
func translateDocument(doc proxy.Document) ExternalDocument {
	return ExternalDocument{
		ID:           doc.Filename,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		Classification: Classification{
			IsImage:  doc.IsImage,
			IsPDF:    doc.IsPDF,
			Category: doc.Category,
		},
		OCR: OCRResult{
			Applied:        doc.OCRApplied,
			ExtractedText:  doc.ExtractedText,
			TextFileID:     doc.TextFile,
			CharacterCount: doc.Characters,
			Error:          doc.OCRError,
		},
		Links: buildLinks(doc.Filename, doc.OCRApplied),
	}
}

func translateListItem(item proxy.ListItem) ExternalListItem {
	return ExternalListItem{
		ID:         item.Filename,
		MimeType:   item.MimeType,
		SizeBytes:  item.SizeBytes,
		IsImage:    item.IsImage,
		UploadedAt: item.ModifiedAt,
		OCR: ListOCR{
			HasExtractedText: item.HasExtractedText,
			TextFileID:       item.TextFile,
		},
		Links: buildLinks(item.Filename, item.HasExtractedText),
	}
}
