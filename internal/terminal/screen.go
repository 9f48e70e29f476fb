package terminal

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Screen serializes writes to the terminal so that a whole rendered line,
// including any erase sequence in front of it, reaches the output in one
// piece.
type Screen struct {
	mu sync.Mutex
	w  io.Writer
}

// NewScreen wraps w.
func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

// Print writes str with a single Write call.
func (s *Screen) Print(str string) error {
	if str == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, str)
	return err
}

// Width returns the column count of the terminal behind f, or 0 when f is
// not a terminal.
func Width(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return cols
}
