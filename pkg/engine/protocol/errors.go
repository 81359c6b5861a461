package protocol

import (
	"errors"
	"fmt"
	"io"
)

// ErrMalformedInput is returned when the peer sends something that cannot be
// parsed. The exchange is strictly lock-step, so it always ends the run.
var ErrMalformedInput = errors.New("malformed input")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// truncated reports input that ended in the middle of a message
func truncated(what string) error {
	return fmt.Errorf("%w: missing %s: %w", ErrMalformedInput, what, io.ErrUnexpectedEOF)
}
