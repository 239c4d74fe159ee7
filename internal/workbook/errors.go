package workbook

import (
	"fmt"
)

// LoadError reports an input workbook that cannot be used: unreadable, or missing a
// configured sheet or column.
type LoadError struct {
	Path   string
	Sheet  string
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("load %s: sheet %q has no column %q", e.Path, e.Sheet, e.Column)
	case e.Sheet != "" && e.Err == nil:
		return fmt.Sprintf("load %s: sheet %q not found", e.Path, e.Sheet)
	case e.Sheet != "":
		return fmt.Sprintf("load %s: sheet %q: %v", e.Path, e.Sheet, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// WriteError reports a report that could not be created or saved.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
