package js

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vito/shape/pkg/printer"
)

// SyntaxError is a lexing or parsing failure at a position in the source.
type SyntaxError struct {
	Filename string
	Source   []byte
	Offset   int
	// Length is the number of bytes to underline.
	Length  int
	Message string
}

// Position returns the 1-based line and column of the error.
func (e *SyntaxError) Position() (line, col int) {
	offset := min(max(e.Offset, 0), len(e.Source))
	before := e.Source[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = offset - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return line, col
}

func (e *SyntaxError) Error() string {
	line, col := e.Position()
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, line, col, e.Message)
}

// FormatWithHighlighting renders the error with the surrounding source lines
// and the offending token underlined, using terminal colors.
func (e *SyntaxError) FormatWithHighlighting() string {
	return e.render(true)
}

// Excerpt is FormatWithHighlighting without colors.
func (e *SyntaxError) Excerpt() string {
	return e.render(false)
}

func (e *SyntaxError) render(color bool) string {
	var (
		red   = "\033[31m"
		blue  = "\033[34m"
		bold  = "\033[1m"
		reset = "\033[0m"
		dim   = "\033[2m"
	)
	if !color {
		red, blue, bold, reset, dim = "", "", "", "", ""
	}

	line, col := e.Position()
	lines := strings.Split(string(e.Source), "\n")

	var result strings.Builder
	fmt.Fprintf(&result, "%s%sError:%s %s\n", bold, red, reset, e.Message)
	fmt.Fprintf(&result, "  %s%s--> %s:%d:%d%s\n", dim, blue, e.Filename, line, col, reset)
	fmt.Fprintf(&result, " %s%s |%s\n", dim, padLeft("", 3), reset)

	first := max(1, line-2)
	last := min(len(lines), line+2)
	for i := first; i <= last; i++ {
		num := padLeft(fmt.Sprint(i), 3)
		text := strings.TrimRight(lines[i-1], "\r")
		if i != line {
			fmt.Fprintf(&result, " %s%s | %s%s\n", dim, num, text, reset)
			continue
		}
		fmt.Fprintf(&result, " %s%s%s%s | %s%s\n", dim, blue, bold, num, reset, text)
		prefix := text[:min(len(text), col-1)]
		padding := strings.Repeat(" ", 1+3+3+printer.Width(prefix))
		underline := strings.Repeat("^", max(1, e.Length))
		fmt.Fprintf(&result, "%s%s%s%s%s\n", dim, padding, red, underline, reset)
	}

	fmt.Fprintf(&result, " %s%s |%s\n", dim, padLeft("", 3), reset)
	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
