package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxPeekBytes bounds how much of a request body the rate limiter will
// buffer while looking for a key field.
const maxPeekBytes = 1 << 16

// peekJSONField reads a top-level string field out of a JSON request body
// and restores the body so downstream handlers can decode it again.
// Returns "" when the body is not JSON or the field is absent.
func peekJSONField(r *http.Request, field string) string {
	if r.Body == nil {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal(buf, &payload); err != nil {
		return ""
	}

	if v, ok := payload[field].(string); ok {
		return v
	}
	return ""
}
