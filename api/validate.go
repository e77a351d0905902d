package api

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"pdf_compressor/config"
	"pdf_compressor/pdf"
)

// UploadedFile is the file part of a compress request.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64

	header *multipart.FileHeader
}

// newUploadedFile wraps a multipart header; a nil header gives a nil file.
func newUploadedFile(header *multipart.FileHeader) *UploadedFile {
	if header == nil {
		return nil
	}
	return &UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		header:      header,
	}
}

// Open returns the upload's content. It should only be called after validation.
func (f *UploadedFile) Open() (multipart.File, error) {
	return f.header.Open()
}

// ValidationError is the first reason an upload was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validate checks an upload against the settings. Checks run in a fixed
// order and the first failure is returned.
func Validate(file *UploadedFile, settings config.PdfSettings) *ValidationError {
	if file == nil || file.Size == 0 {
		return &ValidationError{Reason: "No file uploaded."}
	}

	if float64(file.Size) > settings.MaxSizeBytes() {
		return tooLarge(settings)
	}

	if float64(file.Size) < settings.MinSizeBytes() {
		return &ValidationError{Reason: fmt.Sprintf("File size is below the minimum of %s MB.", formatMB(settings.MinFileSizeInMB))}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !settings.AllowsExtension(ext) {
		return &ValidationError{Reason: fmt.Sprintf("File extension '%s' is not allowed.", ext)}
	}

	if file.ContentType != pdf.MediaType {
		return &ValidationError{Reason: "Only PDF files are allowed."}
	}

	return nil
}

func tooLarge(settings config.PdfSettings) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf("File size exceeds the maximum of %s MB.", formatMB(settings.MaxFileSizeInMB))}
}

// formatMB prints a size setting in its shortest form, e.g. 10 or 0.1.
func formatMB(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}
