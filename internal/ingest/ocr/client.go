// Package ocr talks to the external text-extraction worker. The worker
// is assumed to be down, slow, or garbled at any time; callers decide how
// much of that to tolerate.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Result holds the worker's output for one file.
type Result struct {
	Text       string
	Characters int
}

// Client is an HTTP client for the extraction worker.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a worker client. timeout bounds a single extraction
// call end to end, body transfer included.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type workerResponse struct {
	Text       string `json:"text"`
	Filename   string `json:"filename"`
	Characters int    `json:"characters"`
	Success    bool   `json:"success"`
	Error      string `json:"error"`
}

// Extract streams a file to the worker and returns the extracted text.
func (c *Client) Extract(ctx context.Context, fileName, contentType string, r io.Reader) (Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return Result{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return Result{}, fmt.Errorf("copy file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_ = contentType // the worker classifies by filename extension

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("ocr service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out workerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("ocr service returned status %d with undecodable body", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return Result{}, fmt.Errorf("ocr service error: %s", msg)
	}

	chars := out.Characters
	if chars == 0 {
		chars = len(out.Text)
	}
	return Result{Text: out.Text, Characters: chars}, nil
}

// Health pings the worker's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ocr service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ocr service health returned status %d", resp.StatusCode)
	}
	return nil
}
