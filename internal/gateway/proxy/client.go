// Package proxy is the gateway's client for the ingestion backend. It
// speaks the backend's flat internal schema; translation into the
// external shape happens in the gateway handlers.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Document mirrors the backend's flat upload response.
type Document struct {
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

// ListItem mirrors one entry of the backend's file listing.
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

// Preview mirrors the backend's text preview response.
type Preview struct {
	TextFile   string `json:"textFile"`
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}

// DeleteResult mirrors the backend's delete response.
type DeleteResult struct {
	Deleted  bool   `json:"deleted"`
	Filename string `json:"filename"`
}

// Health mirrors the backend's health response.
type Health struct {
	Status        string `json:"status"`
	OCR           string `json:"ocr"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// BackendError is a structured failure the backend reported. Connection
// failures are ordinary wrapped errors, not BackendErrors.
type BackendError struct {
	Status  int
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error [%d] %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to the ingestion backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client. The timeout must cover a full synchronous
// upload including its OCR dispatch.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 130 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Upload forwards a multipart body untouched and decodes the created
// document.
func (c *Client) Upload(ctx context.Context, requestID, contentType string, body io.Reader) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return Document{}, c.decodeError(resp)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode upload response: %w", err)
	}
	return doc, nil
}

// List fetches all documents.
func (c *Client) List(ctx context.Context, requestID string) ([]ListItem, error) {
	resp, err := c.get(ctx, requestID, "/files")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var items []ListItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return items, nil
}

// StreamFile opens a download of the stored original. The caller owns the
// response body.
func (c *Client) StreamFile(ctx context.Context, requestID, name string) (*http.Response, error) {
	return c.stream(ctx, requestID, "/files/"+url.PathEscape(name))
}

// StreamText opens a download of a text artifact. The caller owns the
// response body.
func (c *Client) StreamText(ctx context.Context, requestID, textName string) (*http.Response, error) {
	return c.stream(ctx, requestID, "/text/"+url.PathEscape(textName))
}

// PreviewText fetches a text artifact as structured data.
func (c *Client) PreviewText(ctx context.Context, requestID, textName string) (Preview, error) {
	resp, err := c.get(ctx, requestID, "/text/"+url.PathEscape(textName)+"/preview")
	if err != nil {
		return Preview{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Preview{}, c.decodeError(resp)
	}

	var preview Preview
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		return Preview{}, fmt.Errorf("decode preview response: %w", err)
	}
	return preview, nil
}

// Delete removes a document and its text artifact.
func (c *Client) Delete(ctx context.Context, requestID, name string) (DeleteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/files/"+url.PathEscape(name), nil)
	if err != nil {
		return DeleteResult{}, err
	}
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DeleteResult{}, c.decodeError(resp)
	}

	var result DeleteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return DeleteResult{}, fmt.Errorf("decode delete response: %w", err)
	}
	return result, nil
}

// CheckHealth fetches the backend's health report.
func (c *Client) CheckHealth(ctx context.Context, requestID string) (Health, error) {
	resp, err := c.get(ctx, requestID, "/health")
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("backend health returned status %d", resp.StatusCode)
	}

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return Health{}, fmt.Errorf("decode health response: %w", err)
	}
	return health, nil
}

func (c *Client) get(ctx context.Context, requestID, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unreachable: %w", err)
	}
	return resp, nil
}

func (c *Client) stream(ctx context.Context, requestID, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unreachable: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.decodeError(resp)
	}
	return resp, nil
}

func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		return &BackendError{
			Status:  resp.StatusCode,
			Code:    envelope.Error.Code,
			Message: envelope.Error.Message,
		}
	}
	return &BackendError{
		Status:  resp.StatusCode,
		Code:    "INTERNAL_ERROR",
		Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
	}
}
