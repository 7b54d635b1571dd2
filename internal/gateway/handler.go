package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/gateway/proxy"
	"docscan-backend/internal/shared/naming"
	"docscan-backend/internal/shared/server/middleware"
	"docscan-backend/internal/shared/server/respond"
)

// Handler proxies external document routes to the ingestion backend and
// reshapes every response into the versioned external schema.
type Handler struct {
	Backend        *proxy.Client
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(backend *proxy.Client, maxUploadBytes int64) *Handler {
	return &Handler{Backend: backend, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the document routes to the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id/download", h.download)
	rg.GET("/documents/:id/text", h.downloadText)
	rg.GET("/documents/:id/text/preview", h.previewText)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	doc, err := h.Backend.Upload(c.Request.Context(), reqID, c.GetHeader("Content-Type"), c.Request.Body)
	if err != nil {
		h.backendError(c, err)
		return
	}

	c.Set("documentId", doc.Filename)
	respond.Created(c, gin.H{
		"document":  translateDocument(doc),
		"requestId": reqID,
	})
}

func (h *Handler) list(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)

	items, err := h.Backend.List(c.Request.Context(), reqID)
	if err != nil {
		h.backendError(c, err)
		return
	}

	external := make([]ExternalListItem, 0, len(items))
	for _, item := range items {
		external = append(external, translateListItem(item))
	}

	respond.OK(c, gin.H{
		"documents": external,
		"count":     len(external),
		"requestId": reqID,
	})
}

func (h *Handler) download(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)
	id := c.Param("id")

	resp, err := h.Backend.StreamFile(c.Request.Context(), reqID, id)
	if err != nil {
		h.backendError(c, err)
		return
	}
	defer resp.Body.Close()

	h.pipe(c, resp)
}

func (h *Handler) downloadText(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)
	// The external API exposes only document ids; the text artifact name
	// is re-derived here through the shared naming rule.
	textName := naming.TextArtifactID(c.Param("id"))

	resp, err := h.Backend.StreamText(c.Request.Context(), reqID, textName)
	if err != nil {
		h.backendError(c, err)
		return
	}
	defer resp.Body.Close()

	h.pipe(c, resp)
}

func (h *Handler) previewText(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)
	id := c.Param("id")
	textName := naming.TextArtifactID(id)

	preview, err := h.Backend.PreviewText(c.Request.Context(), reqID, textName)
	if err != nil {
		h.backendError(c, err)
		return
	}

	respond.OK(c, gin.H{
		"documentId":     id,
		"text":           preview.Text,
		"characterCount": preview.Characters,
		"requestId":      reqID,
	})
}

func (h *Handler) delete(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)
	id := c.Param("id")

	result, err := h.Backend.Delete(c.Request.Context(), reqID, id)
	if err != nil {
		h.backendError(c, err)
		return
	}

	respond.OK(c, gin.H{
		"deleted":    result.Deleted,
		"documentId": id,
		"requestId":  reqID,
	})
}

// Health reports gateway and backend liveness; registered outside the
// authenticated group.
func (h *Handler) Health(c *gin.Context) {
	reqID := middleware.RequestIDFromContext(c)

	status := "ok"
	backend := gin.H{"status": "ok"}
	if health, err := h.Backend.CheckHealth(c.Request.Context(), reqID); err != nil {
		status = "degraded"
		backend = gin.H{"status": "unreachable"}
	} else {
		backend = gin.H{"status": health.Status, "ocr": health.OCR}
	}

	respond.OK(c, gin.H{
		"status":    status,
		"gateway":   gin.H{"status": "ok"},
		"backend":   backend,
		"requestId": reqID,
	})
}

// backendError re-codes a backend failure into the external envelope.
// Structured backend errors pass through with their original status and
// code; transport failures become 502.
func (h *Handler) backendError(c *gin.Context, err error) {
	var berr *proxy.BackendError
	if errors.As(err, &berr) {
		respond.Error(c, berr.Status, berr.Code, berr.Message)
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeUploadFailed, "file exceeds the upload size limit")
		return
	}

	respond.Error(c, http.StatusBadGateway, respond.CodeBackendUnavailable, "document service is unavailable")
}

// pipe streams a backend response through unchanged.
func (h *Handler) pipe(c *gin.Context, resp *http.Response) {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extraHeaders := map[string]string{}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		extraHeaders["Content-Disposition"] = cd
	}
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, extraHeaders)
}
