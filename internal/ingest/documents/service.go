package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"docscan-backend/internal/ingest/classify"
	"docscan-backend/internal/ingest/index"
	"docscan-backend/internal/ingest/ocr"
	"docscan-backend/internal/ingest/store"
	"docscan-backend/internal/shared/naming"
	"docscan-backend/internal/shared/telemetry"
)

const sniffLen = 512

// Service owns the ingestion pipeline: persist, classify, dispatch to the
// OCR worker, and manage artifact lifecycle.
type Service struct {
	Store store.ArtifactStore
	Index *index.Index
	OCR   ocr.Extractor
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Upload persists the raw bytes first, then classifies and, for images and
// PDFs, dispatches extraction. Extraction failure is not upload failure:
// the document comes back created with the failure recorded inside it.
func (s *Service) Upload(ctx context.Context, declaredName, declaredType string, r io.Reader) (Document, error) {
	if strings.TrimSpace(declaredName) == "" {
		return Document{}, ErrNoFile
	}

	uploadedAt := s.now()
	id := naming.DocumentID(uploadedAt, declaredName)

	size, overwrote, err := s.Store.Save(ctx, store.NamespaceOriginals, id, r)
	if err != nil {
		return Document{}, fmt.Errorf("%w: persist original %s: %v", ErrUploadFailed, id, err)
	}
	if overwrote {
		// Same-millisecond, same-name collision. The contract is silent
		// overwrite; make it visible to operators at least.
		telemetry.Warn("upload.collision", map[string]any{"filename": id})
	}

	head, err := s.readHead(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("%w: read back original %s: %v", ErrUploadFailed, id, err)
	}

	mimeType := classify.DetectMIME(declaredName, declaredType, head)
	category := classify.Categorize(mimeType)

	doc := Document{
		Filename:     id,
		OriginalName: declaredName,
		MimeType:     mimeType,
		SizeBytes:    size,
		Category:     category,
		UploadedAt:   uploadedAt,
	}

	if classify.OCREligible(category) {
		doc.Extraction = s.extract(ctx, doc)
	}

	s.record(doc)
	return doc, nil
}

// extract streams the persisted original to the OCR worker and stores the
// resulting text artifact. Every failure path collapses into a non-fatal
// Extraction value; no error escapes.
func (s *Service) extract(ctx context.Context, doc Document) Extraction {
	original, err := s.Store.Open(ctx, store.NamespaceOriginals, doc.Filename)
	if err != nil {
		return Extraction{Error: fmt.Sprintf("could not reopen original for extraction: %v", err)}
	}
	defer original.Close()

	result, err := s.OCR.Extract(ctx, doc.Filename, doc.MimeType, original)
	if err != nil {
		telemetry.Warn("ocr.failed", map[string]any{
			"filename": doc.Filename,
			"category": string(doc.Category),
			"err":      err.Error(),
		})
		return Extraction{Error: err.Error()}
	}

	textFile := naming.TextArtifactID(doc.Filename)
	if _, _, err := s.Store.Save(ctx, store.NamespaceText, textFile, strings.NewReader(result.Text)); err != nil {
		return Extraction{Error: fmt.Sprintf("could not persist extracted text: %v", err)}
	}

	return Extraction{
		Applied:    true,
		Text:       result.Text,
		TextFile:   textFile,
		Characters: result.Characters,
	}
}

// record writes the metadata record. The filesystem is the source of
// truth; a failed index write degrades list enrichment, not the upload.
func (s *Service) record(doc Document) {
	if s.Index == nil {
		return
	}
	err := s.Index.Put(index.Record{
		Filename:     doc.Filename,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		Category:     string(doc.Category),
		OCRApplied:   doc.Extraction.Applied,
		TextFile:     doc.Extraction.TextFile,
		Characters:   doc.Extraction.Characters,
		OCRError:     doc.Extraction.Error,
		UploadedAt:   doc.UploadedAt,
	})
	if err != nil {
		telemetry.Warn("index.put.failed", map[string]any{"filename": doc.Filename, "err": err.Error()})
	}
}

func (s *Service) readHead(ctx context.Context, id string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, store.NamespaceOriginals, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return head[:n], nil
}

// List enumerates the originals namespace at call time, most recent
// first. Text-artifact presence is decided by the naming convention, not
// by any stored status.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	infos, err := s.Store.List(ctx, store.NamespaceOriginals)
	if err != nil {
		return nil, fmt.Errorf("list originals: %w", err)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].ModifiedAt.Equal(infos[j].ModifiedAt) {
			return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
		}
		return infos[i].Name > infos[j].Name
	})

	summaries := make([]Summary, 0, len(infos))
	for _, info := range infos {
		summary := Summary{
			Filename:   info.Name,
			SizeBytes:  info.SizeBytes,
			ModifiedAt: info.ModifiedAt,
		}

		if rec, err := s.lookup(info.Name); err == nil {
			summary.MimeType = rec.MimeType
			summary.Category = classify.Category(rec.Category)
		} else {
			summary.MimeType = classify.DetectMIME(info.Name, "", nil)
			summary.Category = classify.Categorize(summary.MimeType)
		}

		textFile := naming.TextArtifactID(info.Name)
		if _, err := s.Store.Stat(ctx, store.NamespaceText, textFile); err == nil {
			summary.HasText = true
			summary.TextFile = textFile
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) lookup(id string) (index.Record, error) {
	if s.Index == nil {
		return index.Record{}, index.ErrNotFound
	}
	return s.Index.Get(id)
}

// Download opens the stored original for streaming.
func (s *Service) Download(ctx context.Context, id string) (io.ReadCloser, store.Info, error) {
	info, err := s.Store.Stat(ctx, store.NamespaceOriginals, id)
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return nil, store.Info{}, ErrNotFound
		}
		return nil, store.Info{}, err
	}
	rc, err := s.Store.Open(ctx, store.NamespaceOriginals, id)
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return nil, store.Info{}, ErrNotFound
		}
		return nil, store.Info{}, err
	}
	return rc, info, nil
}

// DownloadText opens a text artifact for streaming.
func (s *Service) DownloadText(ctx context.Context, textFile string) (io.ReadCloser, store.Info, error) {
	info, err := s.Store.Stat(ctx, store.NamespaceText, textFile)
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return nil, store.Info{}, ErrNotFound
		}
		return nil, store.Info{}, err
	}
	rc, err := s.Store.Open(ctx, store.NamespaceText, textFile)
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return nil, store.Info{}, ErrNotFound
		}
		return nil, store.Info{}, err
	}
	return rc, info, nil
}

// PreviewText returns a text artifact's content as a string.
func (s *Service) PreviewText(ctx context.Context, textFile string) (string, error) {
	rc, _, err := s.DownloadText(ctx, textFile)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read text artifact %s: %w", textFile, err)
	}
	return string(data), nil
}

// Delete removes the original, its text artifact, and the index record.
// Already-missing artifacts are fine; only unexpected I/O errors fail.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	hadOriginal, err := s.Store.Delete(ctx, store.NamespaceOriginals, id)
	if err != nil {
		return false, fmt.Errorf("delete original %s: %w", id, err)
	}
	hadText, err := s.Store.Delete(ctx, store.NamespaceText, naming.TextArtifactID(id))
	if err != nil {
		return false, fmt.Errorf("delete text artifact for %s: %w", id, err)
	}
	if s.Index != nil {
		if err := s.Index.Delete(id); err != nil {
			telemetry.Warn("index.delete.failed", map[string]any{"filename": id, "err": err.Error()})
		}
	}
	return hadOriginal || hadText, nil
}
