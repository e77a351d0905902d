package api

const (
	// FormField is the multipart field carrying the upload
	FormField = "file"

	// CompressPath accepts uploads
	CompressPath = "/compress-pdf"

	// TestPath is the liveness endpoint
	TestPath = "/test"

	// LivenessMessage is the fixed /test response
	LivenessMessage = "PDF service is working!"

	// CompressedPrefix is prepended to the suggested download name
	CompressedPrefix = "compressed_"

	// RequestIDHeader carries the per-request id in both directions
	RequestIDHeader = "X-Request-ID"
)
