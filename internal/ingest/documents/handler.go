package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the backend's flat routes to the router.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/upload", h.upload)
	r.GET("/files", h.list)
	r.GET("/files/:name", h.download)
	r.DELETE("/files/:name", h.delete)
	r.GET("/text/:name", h.downloadText)
	r.GET("/text/:name/preview", h.previewText)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("document")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeUploadFailed, "file exceeds the upload size limit")
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeNoFile, "no file provided in 'document' field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeNoFile, "unable to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFile):
			respond.Error(c, http.StatusBadRequest, respond.CodeNoFile, "no file provided")
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeUploadFailed, "failed to store uploaded file")
		}
		return
	}

	c.Set("documentId", doc.Filename)
	respond.Created(c, toUploadResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	summaries, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternalError, "failed to list documents")
		return
	}

	items := make([]ListItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, toListItem(s))
	}
	respond.OK(c, items)
}

func (h *Handler) download(c *gin.Context) {
	name := c.Param("name")
	rc, info, err := h.Svc.Download(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "document not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternalError, "failed to open document")
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, info.SizeBytes, "application/octet-stream", rc, nil)
}

func (h *Handler) downloadText(c *gin.Context) {
	name := c.Param("name")
	rc, info, err := h.Svc.DownloadText(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "extracted text not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternalError, "failed to open extracted text")
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, info.SizeBytes, "text/plain; charset=utf-8", rc, nil)
}

func (h *Handler) previewText(c *gin.Context) {
	name := c.Param("name")
	text, err := h.Svc.PreviewText(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "extracted text not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternalError, "failed to read extracted text")
		return
	}

	respond.OK(c, PreviewResponse{
		TextFile:   name,
		Text:       text,
		Characters: len(text),
	})
}

func (h *Handler) delete(c *gin.Context) {
	name := c.Param("name")
	deleted, err := h.Svc.Delete(c.Request.Context(), name)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternalError, "failed to delete document")
		return
	}

	respond.OK(c, DeleteResponse{Deleted: deleted, Filename: name})
}
