package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Kind classifies a normalized backend error for callers that branch on it.
type Kind int

const (
	KindOther Kind = iota
	// KindNetwork means no response reached the client (incl. timeouts).
	KindNetwork
	KindAuthentication
	KindValidation
	KindServer
)

// Error is the uniform shape every failed backend call is normalized to.
// Status 0 means the server was never reached.
type Error struct {
	Message string
	Status  int
	Data    []byte
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *Error) Kind() Kind {
	switch {
	case e.Status == 0:
		return KindNetwork
	case e.Status == http.StatusUnauthorized:
		return KindAuthentication
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return KindValidation
	case e.Status >= 500:
		return KindServer
	}
	return KindOther
}

// AsError unwraps err into the normalized shape when possible.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Message returns the most specific message held by err.
func Message(err error) string {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

func newNetworkError(err error) *Error {
	return &Error{
		Message: fmt.Sprintf("could not reach server: %v", err),
		Status:  0,
	}
}

// newHTTPError picks the most specific message the response body offers,
// in the order the backend populates them.
func newHTTPError(status int, body []byte) *Error {
	message := "request failed"
	for _, field := range []string{"detail", "message", "error"} {
		if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.Str != "" {
			message = v.Str
			break
		}
	}
	return &Error{
		Message: message,
		Status:  status,
		Data:    body,
	}
}
