package workbook

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLocked means another process holds the workbook lock.
var ErrLocked = errors.New("workbook is locked by another run")

type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting workbook %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError is returned when row 1 of an existing sheet is not
// the expected header.
type SchemaMismatchError struct {
	Path  string
	Sheet string
	Got   []string
	Want  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("workbook %s sheet %s: header [%s] does not match [%s]",
		e.Path, e.Sheet, strings.Join(e.Got, ", "), strings.Join(e.Want, ", "))
}
