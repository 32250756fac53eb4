package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ServerError is a non-2xx response. Message is the server's machine-readable
// "message" field when present.
type ServerError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *ServerError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, msg)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsValidation reports whether err is a server-side validation failure (422).
func IsValidation(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == http.StatusUnprocessableEntity
}

// Message returns the text shown to the user for err: the server's message
// when available, otherwise a generic description.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *ServerError
	if errors.As(err, &se) {
		if msg := strings.TrimSpace(se.Message); msg != "" {
			return msg
		}
		if len(se.Fields) > 0 {
			return firstFieldMessage(se.Fields)
		}
		return http.StatusText(se.Status)
	}
	if errors.Is(err, ErrNotFound) {
		return "Record not found"
	}
	return err.Error()
}

func firstFieldMessage(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if msgs := fields[name]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "Validation failed"
}
