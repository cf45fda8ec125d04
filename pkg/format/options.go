package format

import (
	"fmt"

	"github.com/vito/shape/pkg/printer"
)

// IndentStyle selects the character used for indentation.
type IndentStyle string

const (
	IndentSpaces IndentStyle = "spaces"
	IndentTabs   IndentStyle = "tabs"
)

// Options configures one format invocation.
type Options struct {
	// LineWidth is the maximum line width the printer aims for.
	LineWidth int
	// IndentWidth is the number of columns per indentation level. With
	// IndentTabs it is the width a tab is assumed to take.
	IndentWidth int
	IndentStyle IndentStyle
	// TrailingCommas adds a trailing comma to lists that are printed broken.
	TrailingCommas bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		LineWidth:      printer.DefaultWidth,
		IndentWidth:    2,
		IndentStyle:    IndentSpaces,
		TrailingCommas: true,
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	if o.LineWidth <= 0 {
		return fmt.Errorf("line width must be positive, got %d", o.LineWidth)
	}
	if o.IndentWidth < 0 {
		return fmt.Errorf("indent width must not be negative, got %d", o.IndentWidth)
	}
	switch o.IndentStyle {
	case IndentSpaces, IndentTabs:
	default:
		return fmt.Errorf("unknown indent style %q (want %q or %q)", o.IndentStyle, IndentSpaces, IndentTabs)
	}
	return nil
}

// Printer converts the options for the layout printer.
func (o Options) Printer() printer.Options {
	return printer.Options{
		Width:       o.LineWidth,
		IndentWidth: o.IndentWidth,
		UseTabs:     o.IndentStyle == IndentTabs,
	}
}
