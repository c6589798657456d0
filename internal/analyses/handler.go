package analyses

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/server/respond"
	"resume-analyzer/internal/shared/util"
)

// multipartOverhead is the allowance above the file ceiling for multipart framing.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	svc         *Service
	validator   *UploadValidator
	sampleChars int
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, validator *UploadValidator, sampleChars int) *Handler {
	if sampleChars <= 0 {
		sampleChars = DefaultContentSampleChars
	}
	return &Handler{svc: svc, validator: validator, sampleChars: sampleChars}
}

// RegisterRoutes attaches upload and result routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.GET("/result/:id", h.result)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.validator.MaxBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(c)
			return
		}
		metrics.IncUploadRejected("missing_file")
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required", nil)
		return
	}

	filename, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		h.unsupported(c)
		return
	}
	if err := h.validator.CheckName(filename); err != nil {
		h.unsupported(c)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}
	defer file.Close()

	if _, err := h.validator.CheckSize(file); err != nil {
		if errors.Is(err, ErrTooLarge) {
			h.tooLarge(c)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}

	rec, err := h.svc.Submit(c.Request.Context(), filename, data)
	if rec.ID != "" {
		c.Set("analysisId", rec.ID)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrQueueFull), errors.Is(err, ErrPoolClosed):
			c.Set("statusTransition", "->failed")
			respond.Error(c, http.StatusServiceUnavailable, "busy", "analysis capacity exhausted, retry later", nil)
		case errors.Is(err, ErrStorage):
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to store analysis", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to start analysis", nil)
		}
		return
	}

	metrics.IncUploadAccepted()
	c.Set("statusTransition", "->processing")
	respond.Accepted(c, gin.H{
		"id":       rec.ID,
		"status":   rec.Status,
		"filename": rec.OriginalFilename,
	})
}

func (h *Handler) unsupported(c *gin.Context) {
	metrics.IncUploadRejected("unsupported_format")
	allowed := h.validator.Allowed()
	respond.Error(c, http.StatusBadRequest, "unsupported_format",
		"unsupported file type; allowed: "+strings.Join(allowed, ", "),
		gin.H{"allowed": allowed})
}

func (h *Handler) tooLarge(c *gin.Context) {
	metrics.IncUploadRejected("too_large")
	respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "file exceeds the upload size limit",
		gin.H{"max_bytes": h.validator.MaxBytes()})
}

func (h *Handler) result(c *gin.Context) {
	parsed, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_id", ErrInvalidID.Error(), nil)
		return
	}
	id := parsed.String()
	c.Set("analysisId", id)

	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.OK(c, h.recordResponse(rec))
}

func (h *Handler) recordResponse(rec Record) gin.H {
	resp := gin.H{
		"id":                rec.ID,
		"original_filename": rec.OriginalFilename,
		"status":            rec.Status,
		"word_count":        rec.WordCount,
		"skills":            rec.Skills,
		"content":           nil,
		"analysis":          rec.AnalysisResult,
		"created_at":        rec.CreatedAt,
	}
	if rec.RawContent != nil {
		resp["content"] = ContentSample(*rec.RawContent, h.sampleChars)
	}
	if rec.CompletedAt != nil {
		resp["completed_at"] = rec.CompletedAt
	}
	return resp
}
