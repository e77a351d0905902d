package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdf_compressor/pdf"
)

const (
	// ProblemContentType is used for RFC 7807 error bodies
	ProblemContentType = "application/problem+json"

	problemType  = "https://tools.ietf.org/html/rfc9110#section-15.6.1"
	problemTitle = "An error occurred while processing your request."
)

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Status  int    `json:"status"`
	Detail  string `json:"detail"`
	TraceID string `json:"traceId,omitempty"`
}

// respondValidation sends a rejected upload's reason as plain text.
func respondValidation(c *gin.Context, verr *ValidationError) {
	c.String(http.StatusBadRequest, verr.Reason)
}

// respondProblem sends a 500 problem body carrying the error message.
func respondProblem(c *gin.Context, err error) {
	problem := Problem{
		Type:    problemType,
		Title:   problemTitle,
		Status:  http.StatusInternalServerError,
		Detail:  fmt.Sprintf("Error: %v", err),
		TraceID: requestID(c),
	}
	c.Header("Content-Type", ProblemContentType)
	c.JSON(http.StatusInternalServerError, problem)
}

// respondPDF sends the compressed document as a download.
func respondPDF(c *gin.Context, data []byte, filename string) {
	c.Header("Content-Disposition", contentDisposition(filename))
	c.Data(http.StatusOK, pdf.MediaType, data)
}

// contentDisposition quotes plain ASCII names and falls back to the
// RFC 2231 filename* form for anything else.
func contentDisposition(filename string) string {
	for i := 0; i < len(filename); i++ {
		if b := filename[i]; b < 0x20 || b > 0x7e {
			return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
		}
	}
	return fmt.Sprintf("attachment; filename=%q", filename)
}

// errorKind names the failure class for logs.
func errorKind(err error) string {
	var engineErr *pdf.EngineError
	var ioErr *pdf.TempIOError
	switch {
	case errors.As(err, &engineErr):
		return "engine"
	case errors.As(err, &ioErr):
		return "temp_io"
	default:
		return "internal"
	}
}
