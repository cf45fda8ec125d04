// Package js formats a subset of JavaScript: declarations, functions, if
// statements and the common expression forms.
package js

import (
	"github.com/vito/shape/pkg/doc"
	"github.com/vito/shape/pkg/format"
)

// Format parses src and returns it formatted with opts.
//
// Syntax errors are returned as *SyntaxError. Defects found while
// formatting are returned as *format.DefectError along with the text, which
// should not be used in place of the source.
func Format(filename string, src []byte, opts format.Options) (string, error) {
	prog, comments, err := Parse(filename, src)
	if err != nil {
		return "", err
	}
	return format.Run(prog, src, comments, opts)
}

// Document returns the document src formats to, before printing.
func Document(filename string, src []byte, opts format.Options) (doc.Doc, error) {
	prog, comments, err := Parse(filename, src)
	if err != nil {
		return nil, err
	}
	d, f := format.Document(prog, src, comments, opts)
	return d, f.Finish()
}
