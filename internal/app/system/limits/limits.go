// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody is the maximum size of a JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxUploadFile is the maximum size of a single uploaded file.
	MaxUploadFile = 20 << 20 // 20 MB

	// MultipartOverhead is the allowance for multipart headers and other
	// form fields on top of MaxUploadFile.
	MultipartOverhead = 1 << 20 // 1 MB
)
