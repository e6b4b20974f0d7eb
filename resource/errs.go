package resource

import (
	"errors"
	"fmt"
)

// ErrFormat is matched (with errors.Is) by every error reporting that input
// is not a well formed resource of the format it claims to be.
var ErrFormat = errors.New("invalid format")

// FormatError describes malformed input. Offset is the byte offset at which
// the problem was detected, or -1 when no position applies.
type FormatError struct {
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return "invalid format: " + e.Msg
	}
	return fmt.Sprintf("invalid format at offset %d: %s", e.Offset, e.Msg)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func FormatErrorf(format string, args ...any) error {
	return &FormatError{Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

func FormatErrorAt(offset int64, format string, args ...any) error {
	return &FormatError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
