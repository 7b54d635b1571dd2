// Package classify decides what an uploaded file is. Client-declared
// content types are unreliable, so the extension table wins, the declared
// type is only a fallback, and a byte sniff is the last resort.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Category buckets a document for the extraction pipeline.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryPDF      Category = "pdf"
	CategoryDocument Category = "document"
)

const mimePDF = "application/pdf"

// extensionMIME maps known file extensions to their MIME types.
var extensionMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
	".pdf":  mimePDF,
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".xml":  "application/xml",
	".html": "text/html",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".rtf":  "application/rtf",
	".zip":  "application/zip",
}

// rasterImageMIMEs is the fixed set of raster types the OCR worker accepts.
var rasterImageMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/bmp":  {},
	"image/tiff": {},
	"image/webp": {},
}

// DetectMIME resolves the MIME type for an upload. Extension lookup comes
// first, the client-declared type second, and a content sniff of the
// stored bytes last.
func DetectMIME(fileName, declaredType string, head []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if mime, ok := extensionMIME[ext]; ok {
		return mime
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(declaredType, ";")[0]))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	if len(head) > 0 {
		return mimetype.Detect(head).String()
	}
	return "application/octet-stream"
}

// Categorize buckets a MIME type into image, pdf, or document.
func Categorize(mimeType string) Category {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if _, ok := rasterImageMIMEs[clean]; ok {
		return CategoryImage
	}
	if clean == mimePDF {
		return CategoryPDF
	}
	return CategoryDocument
}

// OCREligible reports whether a category is dispatched to the OCR worker.
func OCREligible(category Category) bool {
	return category == CategoryImage || category == CategoryPDF
}
