package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartdoc/internal/domain"
	"smartdoc/internal/service"
)

type uploadResponse struct {
	DocID   int    `json:"doc_id"`
	Message string `json:"message"`
}

type documentInfo struct {
	DocID      int    `json:"doc_id"`
	Filename   string `json:"filename"`
	TextLength int    `json:"text_length"`
	NumChunks  int    `json:"num_chunks"`
}

type summaryResponse struct {
	DocID   int    `json:"doc_id"`
	Summary string `json:"summary"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	DocID         int      `json:"doc_id"`
	Query         string   `json:"query"`
	Answer        string   `json:"answer"`
	ContextChunks []string `json:"context_chunks"`
}

type chunksResponse struct {
	DocID  int      `json:"doc_id"`
	Chunks []string `json:"chunks"`
}

func toInfo(d domain.DocumentInfo) documentInfo {
	return documentInfo{DocID: d.ID, Filename: d.Filename, TextLength: d.TextLength, NumChunks: d.ChunkCount}
}

type documentHandler struct {
	svc       DocumentService
	maxUpload int64
}

// Upload handles POST /upload with a multipart "file" field.
func (h *documentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abort(c, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		fail(c, fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidInput))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
		return
	}

	id, err := h.svc.Upload(c.Request.Context(), fh.Filename, data)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uploadResponse{DocID: id, Message: service.UploadMessage})
}

// List handles GET /documents.
func (h *documentHandler) List(c *gin.Context) {
	docs := h.svc.List()
	out := make([]documentInfo, len(docs))
	for i, d := range docs {
		out[i] = toInfo(d)
	}
	c.JSON(http.StatusOK, out)
}

// Info handles GET /document/:id.
func (h *documentHandler) Info(c *gin.Context) {
	id, ok := docID(c)
	if !ok {
		return
	}
	info, err := h.svc.Info(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInfo(info))
}

// Summary handles GET /document/:id/summary.
func (h *documentHandler) Summary(c *gin.Context) {
	id, ok := docID(c)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{DocID: id, Summary: summary})
}

// Query handles POST /document/:id/query.
func (h *documentHandler) Query(c *gin.Context) {
	id, ok := docID(c)
	if !ok {
		return
	}
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}
	ans, err := h.svc.Ask(c.Request.Context(), id, req.Query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, queryResponse{
		DocID:         ans.DocumentID,
		Query:         ans.Query,
		Answer:        ans.Answer,
		ContextChunks: ans.ContextChunks,
	})
}

// Chunks handles GET /document/:id/chunks.
func (h *documentHandler) Chunks(c *gin.Context) {
	id, ok := docID(c)
	if !ok {
		return
	}
	chunks, err := h.svc.Chunks(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chunksResponse{DocID: id, Chunks: chunks})
}

func docID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abort(c, http.StatusBadRequest, "document id must be an integer")
		return 0, false
	}
	return id, true
}
