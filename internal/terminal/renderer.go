// Package terminal produces the ANSI control sequences used to draw chat
// lines and to wipe the raw input the terminal echoed.
package terminal

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// SGR is a Select Graphic Rendition parameter.
type SGR int

const (
	Reset        SGR = 0
	Bold         SGR = 1
	Black        SGR = 30
	Red          SGR = 31
	Green        SGR = 32
	Yellow       SGR = 33
	Blue         SGR = 34
	Magenta      SGR = 35
	Cyan         SGR = 36
	White        SGR = 37
	DefaultColor SGR = 39
)

// EraseMode selects which part of the line EraseLine clears.
type EraseMode int

const (
	EraseToEnd   EraseMode = 0
	EraseToStart EraseMode = 1
	EraseWhole   EraseMode = 2
)

const csi = "\x1b["

// Renderer builds control sequences. With color disabled it emits no control
// bytes at all, only the text.
type Renderer struct {
	color bool
}

// NewRenderer returns a Renderer. The color setting cannot change later.
func NewRenderer(color bool) *Renderer {
	return &Renderer{color: color}
}

// Color reports whether the renderer emits control sequences.
func (r *Renderer) Color() bool {
	return r.color
}

// SGR returns the escape sequence for code.
func (r *Renderer) SGR(code SGR) string {
	if !r.color {
		return ""
	}
	return csi + strconv.Itoa(int(code)) + "m"
}

// Style wraps text in the given codes followed by a reset.
func (r *Renderer) Style(text string, codes ...SGR) string {
	if !r.color || len(codes) == 0 {
		return text
	}
	var b strings.Builder
	for _, c := range codes {
		b.WriteString(r.SGR(c))
	}
	b.WriteString(text)
	b.WriteString(r.SGR(Reset))
	return b.String()
}

// CursorPreviousLine moves the cursor to the start of the line n lines up.
func (r *Renderer) CursorPreviousLine(n int) string {
	if !r.color || n <= 0 {
		return ""
	}
	return csi + strconv.Itoa(n) + "F"
}

// EraseLine clears part of the current line without moving the cursor.
func (r *Renderer) EraseLine(mode EraseMode) string {
	if !r.color {
		return ""
	}
	return csi + strconv.Itoa(int(mode)) + "K"
}

// Erase returns the sequence that wipes lines rows above the cursor, one
// row at a time, leaving the cursor at the start of the topmost one.
func (r *Renderer) Erase(lines int) string {
	if !r.color || lines <= 0 {
		return ""
	}
	step := r.CursorPreviousLine(1) + r.EraseLine(EraseWhole)
	return strings.Repeat(step, lines)
}

// EraseLineCount returns how many terminal rows an echoed input of inputLen
// cells occupies on a terminal width columns wide.
func EraseLineCount(inputLen, width int) int {
	if inputLen <= 0 || width <= 0 {
		return 0
	}
	return (inputLen + width - 1) / width
}

// InputCells is the number of cells the terminal used to echo line,
// including the line terminator.
func InputCells(line string) int {
	return runewidth.StringWidth(line) + 1
}
