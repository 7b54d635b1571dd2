package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"docscan-backend/internal/ingest/classify"
	"docscan-backend/internal/ingest/index"
	"docscan-backend/internal/ingest/ocr"
	localstore "docscan-backend/internal/ingest/store/local"
	"docscan-backend/internal/shared/naming"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(ctx context.Context, fileName, contentType string, r io.Reader) (ocr.Result, error) {
	io.Copy(io.Discard, r)
	if s.err != nil {
		return ocr.Result{}, s.err
	}
	return ocr.Result{Text: s.text, Characters: len(s.text)}, nil
}

func newTestService(t *testing.T, extractor ocr.Extractor) *Service {
	t.Helper()
	idx, err := index.Open("")
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	return &Service{
		Store: localstore.New(t.TempDir()),
		Index: idx,
		OCR:   extractor,
		Now: func() time.Time {
			calls++
			return base.Add(time.Duration(calls) * time.Second)
		},
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	svc := newTestService(t, stubExtractor{text: "irrelevant"})
	ctx := context.Background()

	payload := "the quick brown fox"
	doc, err := svc.Upload(ctx, "notes.txt", "text/plain", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	rc, info, err := svc.Download(ctx, doc.Filename)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("round trip mismatch: got %q", data)
	}
	if info.SizeBytes != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), info.SizeBytes)
	}
}

func TestUploadImageAppliesOCR(t *testing.T) {
	svc := newTestService(t, stubExtractor{text: "MILK $3.99"})
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "receipt.jpg", "image/jpeg", strings.NewReader("fake-jpeg-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if doc.Category != classify.CategoryImage {
		t.Fatalf("expected image category, got %q", doc.Category)
	}
	if !doc.Extraction.Applied {
		t.Fatal("expected extraction applied")
	}
	if doc.Extraction.Text != "MILK $3.99" {
		t.Fatalf("expected extracted text, got %q", doc.Extraction.Text)
	}
	if doc.Extraction.Characters != 10 {
		t.Fatalf("expected 10 characters, got %d", doc.Extraction.Characters)
	}

	// Derivation law: textFile == basename(id) + ".txt".
	if doc.Extraction.TextFile != naming.TextArtifactID(doc.Filename) {
		t.Fatalf("text file %q violates derivation from %q", doc.Extraction.TextFile, doc.Filename)
	}

	text, err := svc.PreviewText(ctx, doc.Extraction.TextFile)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if text != "MILK $3.99" {
		t.Fatalf("expected persisted text artifact, got %q", text)
	}
}

func TestUploadSurvivesWorkerOutage(t *testing.T) {
	svc := newTestService(t, stubExtractor{err: errors.New("ocr service unreachable: connection refused")})
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "scan.pdf", "application/pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("upload must not fail on worker outage: %v", err)
	}

	if doc.Extraction.Applied {
		t.Fatal("extraction must not be applied when the worker is down")
	}
	if doc.Extraction.Error == "" {
		t.Fatal("expected a populated extraction error")
	}

	// The original must still be downloadable.
	rc, _, err := svc.Download(ctx, doc.Filename)
	if err != nil {
		t.Fatalf("download after failed extraction: %v", err)
	}
	rc.Close()

	// And no text artifact may exist.
	if _, err := svc.PreviewText(ctx, naming.TextArtifactID(doc.Filename)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for text artifact, got %v", err)
	}
}

func TestUploadPlainDocumentSkipsOCR(t *testing.T) {
	svc := newTestService(t, stubExtractor{text: "should never be used"})
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "notes.txt", "text/plain", strings.NewReader("just notes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if doc.Category != classify.CategoryDocument {
		t.Fatalf("expected document category, got %q", doc.Category)
	}
	if doc.Extraction.Applied {
		t.Fatal("extraction must not run for plain documents")
	}
	if _, err := svc.PreviewText(ctx, naming.TextArtifactID(doc.Filename)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no text artifact, got %v", err)
	}
}

func TestUploadRejectsEmptyName(t *testing.T) {
	svc := newTestService(t, stubExtractor{})
	if _, err := svc.Upload(context.Background(), "  ", "", strings.NewReader("x")); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	svc := newTestService(t, stubExtractor{})
	ctx := context.Background()

	docA, err := svc.Upload(ctx, "a.txt", "text/plain", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("upload a: %v", err)
	}
	docB, err := svc.Upload(ctx, "b.txt", "text/plain", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("upload b: %v", err)
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(summaries))
	}
	if summaries[0].Filename != docB.Filename || summaries[1].Filename != docA.Filename {
		t.Fatalf("expected [B, A] ordering, got [%s, %s]", summaries[0].Filename, summaries[1].Filename)
	}
}

func TestListReportsTextPresenceByNaming(t *testing.T) {
	svc := newTestService(t, stubExtractor{text: "extracted"})
	ctx := context.Background()

	withText, err := svc.Upload(ctx, "receipt.jpg", "image/jpeg", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	withoutText, err := svc.Upload(ctx, "notes.txt", "text/plain", strings.NewReader("txt"))
	if err != nil {
		t.Fatalf("upload text: %v", err)
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	byName := map[string]Summary{}
	for _, s := range summaries {
		byName[s.Filename] = s
	}

	if s := byName[withText.Filename]; !s.HasText || s.TextFile != naming.TextArtifactID(withText.Filename) {
		t.Fatalf("expected text artifact for %s, got %+v", withText.Filename, s)
	}
	if s := byName[withoutText.Filename]; s.HasText {
		t.Fatalf("expected no text artifact for %s", withoutText.Filename)
	}
}

func TestDeleteRemovesBothArtifacts(t *testing.T) {
	svc := newTestService(t, stubExtractor{text: "extracted"})
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "receipt.jpg", "image/jpeg", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	deleted, err := svc.Delete(ctx, doc.Filename)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted=true")
	}

	if _, _, err := svc.Download(ctx, doc.Filename); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if _, err := svc.PreviewText(ctx, doc.Extraction.TextFile); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected text NotFound after delete, got %v", err)
	}
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	svc := newTestService(t, stubExtractor{})

	deleted, err := svc.Delete(context.Background(), "1700000000000-ghost.pdf")
	if err != nil {
		t.Fatalf("delete of missing document must not error: %v", err)
	}
	if deleted {
		t.Fatal("expected deleted=false for missing document")
	}
}
