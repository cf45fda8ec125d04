package format

import (
	"github.com/vito/shape/pkg/doc"
	"github.com/vito/shape/pkg/printer"
)

// Document builds the document for root without printing it. The returned
// Formatter holds the invocation's state; call Finish on it once the document
// has been printed to collect defects.
func Document(root Node, source []byte, comments []Comment, opts Options) (doc.Doc, *Formatter) {
	f := New(source, Attach(root, source, comments), opts)
	return f.Format(root), f
}

// Run formats the tree rooted at root and prints it.
//
// The text is returned even when formatting reports defects, but callers
// should discard it: defects mean a comment was dropped or a rule built an
// inconsistent document. Defects are returned together as a *DefectError.
func Run(root Node, source []byte, comments []Comment, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	d, f := Document(root, source, comments, opts)
	out, err := printer.Print(d, opts.Printer())
	if err != nil {
		for _, e := range unwrap(err) {
			f.Defect(e)
		}
	}
	return out, f.Finish()
}

func unwrap(err error) []error {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		return multi.Unwrap()
	}
	return []error{err}
}
