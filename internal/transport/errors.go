package transport

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of a failure response is kept on the error.
const maxErrorBody = 512

// StatusError is a non-2xx collector response. Body holds up to maxErrorBody
// bytes of the response text.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("collector returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("collector returned status %d: %s", e.StatusCode, e.Body)
}

func newStatusError(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}
