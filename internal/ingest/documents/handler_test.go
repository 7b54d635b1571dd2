package documents

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/ingest/index"
	"docscan-backend/internal/ingest/ocr"
	localstore "docscan-backend/internal/ingest/store/local"
	"docscan-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T, extractor ocr.Extractor) *gin.Engine {
	return newTestRouterWithCap(t, extractor, 50<<20)
}

func newTestRouterWithCap(t *testing.T, extractor ocr.Extractor, maxUploadBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	idx, err := index.Open("")
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	svc := &Service{
		Store: localstore.New(t.TempDir()),
		Index: idx,
		OCR:   extractor,
		Now:   func() time.Time { return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC) },
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	NewHandler(svc, maxUploadBytes).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadHandlerReturnsFlatDocument(t *testing.T) {
	r := newTestRouter(t, stubExtractor{text: "MILK $3.99"})

	body, contentType := multipartBody(t, "document", "receipt.jpg", "fake-jpeg")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var out UploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Category != "image" || !out.IsImage || out.IsPDF {
		t.Fatalf("unexpected classification: %+v", out)
	}
	if !out.OCRApplied || out.ExtractedText == nil || *out.ExtractedText != "MILK $3.99" {
		t.Fatalf("unexpected ocr outcome: %+v", out)
	}
	if out.Characters != 10 {
		t.Fatalf("expected 10 characters, got %d", out.Characters)
	}
	if out.TextFile == nil || !strings.HasSuffix(*out.TextFile, ".txt") {
		t.Fatalf("expected text file id, got %+v", out.TextFile)
	}
}

func TestUploadHandlerRejectsOversizeBody(t *testing.T) {
	r := newTestRouterWithCap(t, stubExtractor{}, 1<<10)

	body, contentType := multipartBody(t, "document", "big.bin", strings.Repeat("x", 4<<10))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", resp.Code, resp.Body.String())
	}

	var errBody struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errBody.Error.Code != "UPLOAD_FAILED" {
		t.Fatalf("expected UPLOAD_FAILED, got %q", errBody.Error.Code)
	}
}

func TestUploadHandlerMissingFile(t *testing.T) {
	r := newTestRouter(t, stubExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=none")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "NO_FILE" {
		t.Fatalf("expected NO_FILE, got %q", body.Error.Code)
	}
}

func TestDownloadHandlerNotFound(t *testing.T) {
	r := newTestRouter(t, stubExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/files/1700000000000-ghost.pdf", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestUploadThenDownloadStreamsOriginal(t *testing.T) {
	r := newTestRouter(t, stubExtractor{})

	body, contentType := multipartBody(t, "document", "notes.txt", "hello world")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload expected 201, got %d", resp.Code)
	}

	var out UploadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/files/"+out.Filename, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("download expected 200, got %d", resp.Code)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "hello world" {
		t.Fatalf("expected original bytes, got %q", data)
	}
}

func TestDeleteHandlerIsIdempotent(t *testing.T) {
	r := newTestRouter(t, stubExtractor{})

	req := httptest.NewRequest(http.MethodDelete, "/files/1700000000000-ghost.pdf", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for missing delete, got %d", resp.Code)
	}

	var out DeleteResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Deleted {
		t.Fatal("expected deleted=false for missing document")
	}
}
