package printer

import "github.com/charmbracelet/x/ansi"

// Width returns the display width of s in terminal cells. Wide characters
// count as two columns and escape sequences count as none.
func Width(s string) int {
	return ansi.StringWidth(s)
}
