package terminal

import (
	"io"

	"golang.org/x/term"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

type fder interface {
	Fd() uintptr
}

// IsTerminal returns true if w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// GetSize returns the width and height of the terminal behind w.
// Falls back to defaults if w is not a terminal or the size cannot be determined.
func GetSize(w io.Writer) (width, height int) {
	f, ok := w.(fder)
	if !ok {
		return DefaultWidth, DefaultHeight
	}
	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return DefaultWidth, DefaultHeight
	}
	return width, height
}

// GetWidth returns the width of the terminal behind w.
// Falls back to DefaultWidth if the width cannot be determined.
func GetWidth(w io.Writer) int {
	width, _ := GetSize(w)
	return width
}
