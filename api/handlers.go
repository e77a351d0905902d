package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"pdf_compressor/config"
	"pdf_compressor/pdf"
)

// ResponseWriteTimeout is how long a finished compression has to reach the client
const ResponseWriteTimeout = 30 * time.Second

// Compressor turns an uploaded document into its compressed form.
type Compressor interface {
	Compress(ctx context.Context, r io.Reader, preset pdf.Preset) (*pdf.Result, error)
}

// Handler serves the compression endpoints.
type Handler struct {
	settings        config.PdfSettings
	compressor      Compressor
	maxRequestBytes int64
	logger          *log.Logger
}

// NewHandler creates a handler. maxRequestBytes caps the request body; zero leaves it uncapped.
func NewHandler(settings config.PdfSettings, compressor Compressor, maxRequestBytes int64, logger *log.Logger) *Handler {
	return &Handler{
		settings:        settings,
		compressor:      compressor,
		maxRequestBytes: maxRequestBytes,
		logger:          logger,
	}
}

// HandleCompress validates the upload, compresses it and returns the result.
func (h *Handler) HandleCompress(c *gin.Context) {
	if h.maxRequestBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	}

	header, err := c.FormFile(FormField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondValidation(c, tooLarge(h.settings))
			return
		}
		// Anything else means there is no usable file part
		header = nil
	}

	upload := newUploadedFile(header)
	if verr := Validate(upload, h.settings); verr != nil {
		h.logger.Debug("upload rejected", "reason", verr.Reason, "request_id", requestID(c))
		respondValidation(c, verr)
		return
	}

	src, err := upload.Open()
	if err != nil {
		h.fail(c, &pdf.TempIOError{Op: "open", Path: upload.Filename, Err: err})
		return
	}
	defer src.Close()

	result, err := h.compressor.Compress(c.Request.Context(), src, h.settings.Preset)
	h.extendWriteDeadline(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondPDF(c, result.Output, CompressedPrefix+sanitizeFilename(upload.Filename))
}

// HandleTest is the liveness check.
func (h *Handler) HandleTest(c *gin.Context) {
	c.String(http.StatusOK, LivenessMessage)
}

// extendWriteDeadline restarts the write deadline once the engine is done, so
// time spent queued for an engine slot does not eat into the response write.
func (h *Handler) extendWriteDeadline(c *gin.Context) {
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(time.Now().Add(ResponseWriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("failed to extend write deadline", "error", err, "request_id", requestID(c))
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.Error("compression failed", "kind", errorKind(err), "error", err, "request_id", requestID(c))
	respondProblem(c, err)
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	// Remove directory separators and path traversal attempts
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)

	// If empty after sanitization, use default
	if filename == "" || filename == "." {
		filename = "document.pdf"
	}

	return filename
}
