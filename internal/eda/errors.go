package eda

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnNotFound is matched by ColumnNotFoundError via errors.Is.
var ErrColumnNotFound = errors.New("column not found")

// maxSuggestions caps the column names carried by a ColumnNotFoundError.
const maxSuggestions = 10

// ColumnNotFoundError reports an unknown column together with some valid names.
type ColumnNotFoundError struct {
	Name      string
	Available []string
	More      bool
}

func (e *ColumnNotFoundError) Error() string {
	if e == nil {
		return ErrColumnNotFound.Error()
	}
	msg := fmt.Sprintf("column '%s' not found. Available: %s", e.Name, strings.Join(e.Available, ", "))
	if e.More {
		msg += "..."
	}
	return msg
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }

func newColumnNotFound(name string, all []string) *ColumnNotFoundError {
	e := &ColumnNotFoundError{Name: name, Available: all}
	if len(all) > maxSuggestions {
		e.Available = append([]string(nil), all[:maxSuggestions]...)
		e.More = true
	}
	return e
}
