package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyColumnName is returned when a column name is blank.
	ErrEmptyColumnName = errors.New("please provide a column name")
	// ErrNoColumns is returned when a comparison names no columns.
	ErrNoColumns = errors.New("please provide comma-separated column names")
)

// InvalidColumnsError lists every requested name that is not a dataset column.
type InvalidColumnsError struct {
	Invalid []string
}

func (e *InvalidColumnsError) Error() string {
	if e == nil {
		return "invalid columns"
	}
	return fmt.Sprintf("invalid columns: %s", strings.Join(e.Invalid, ", "))
}
