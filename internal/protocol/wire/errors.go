package wire

import (
	"errors"
	"fmt"
)

var ErrInvalidUTF8 = errors.New("wire: invalid utf-8")

// ShortBufferError reports a decode that needed more bytes than remained.
type ShortBufferError struct {
	Type      string
	Expected  int
	Available int
}

func (e ShortBufferError) Error() string {
	return fmt.Sprintf(
		"wire: not enough bytes reading %s, expected %d got %d",
		e.Type,
		e.Expected,
		e.Available,
	)
}

// InvalidStringError reports string bytes that are not valid UTF-8.
// Offset is the index of the first invalid byte within the string.
type InvalidStringError struct {
	Offset int
}

func (e InvalidStringError) Error() string {
	return fmt.Sprintf("wire: invalid string: invalid utf-8 sequence at byte %d", e.Offset)
}

func (e InvalidStringError) Unwrap() error {
	return ErrInvalidUTF8
}

// ContextError names the higher-level decode step that failed.
type ContextError struct {
	Context string
	Err     error
}

func (e ContextError) Error() string {
	return fmt.Sprintf("wire: %s: %v", e.Context, e.Err)
}

func (e ContextError) Unwrap() error {
	return e.Err
}

func withContext(err error, format string, args ...any) error {
	return ContextError{Context: fmt.Sprintf(format, args...), Err: err}
}

// withType renames a short-buffer failure to the outer type being decoded.
// Counts from the innermost failure are kept.
func withType(err error, typ string) error {
	if short, ok := err.(ShortBufferError); ok {
		short.Type = typ
		return short
	}
	return err
}
