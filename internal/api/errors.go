package api

import (
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx backend response. Body holds the raw
// response text (FastAPI-style {"detail": ...} payloads included); when
// the server sent nothing, Error falls back to the standard reason
// phrase.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	detail := e.Body
	if detail == "" {
		detail = http.StatusText(e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, detail)
}
