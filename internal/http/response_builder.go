package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const contentTypeJSON = "application/json; charset=utf-8"

// JSONResponseBuilder provides a fluent API for writing JSON and download
// responses with consistent headers.
type JSONResponseBuilder struct {
	statusCode  int
	contentType string
	headers     map[string]string
	body        []byte
	err         error
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode:  http.StatusOK,
		contentType: contentTypeJSON,
		headers:     make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body marshals v as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body, b.err = json.Marshal(v)
	return b
}

// Raw sends pre-rendered bytes with the given content type.
func (b *JSONResponseBuilder) Raw(contentType string, body []byte) *JSONResponseBuilder {
	b.contentType = contentType
	b.body = body
	return b
}

// Attachment marks the body as a file download.
func (b *JSONResponseBuilder) Attachment(contentType, filename string, body []byte) *JSONResponseBuilder {
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	return b.Raw(contentType, body)
}

// Error sets an error body. errorType is omitted when empty.
func (b *JSONResponseBuilder) Error(message, errorType string) *JSONResponseBuilder {
	body := map[string]string{"error": message}
	if errorType != "" {
		body["type"] = errorType
	}
	return b.Body(body)
}

// NoContent drops any body and answers 204.
func (b *JSONResponseBuilder) NoContent() *JSONResponseBuilder {
	b.statusCode = http.StatusNoContent
	b.body = nil
	return b
}

// Bytes returns the encoded body, or the marshal error.
func (b *JSONResponseBuilder) Bytes() ([]byte, error) {
	return b.body, b.err
}

// Write sends the response. A body that failed to marshal becomes a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	for k, v := range b.headers {
		h.Set(k, v)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	h.Set("Content-Type", b.contentType)
	h.Set("Content-Length", strconv.Itoa(len(b.body)))
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(b.body)
}
