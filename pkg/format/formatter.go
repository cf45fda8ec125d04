package format

import (
	"bytes"
	"strings"

	"github.com/vito/shape/pkg/doc"
)

// IgnoreDirective in a leading comment makes the node print exactly as it
// appears in the source.
const IgnoreDirective = "shape-ignore"

// Formatter is the state of one format invocation. Rules receive it in
// ToDocument and use it to format children, claim comments and allocate
// group ids. A Formatter must not be shared between invocations.
type Formatter struct {
	source   []byte
	opts     Options
	comments *Comments
	ids      doc.IDs

	claimed []bool
	defects []error
}

// New returns a Formatter over source with comments already attached.
func New(source []byte, comments *Comments, opts Options) *Formatter {
	if comments == nil {
		comments = Attach(nil, nil, nil)
	}
	return &Formatter{
		source:   source,
		opts:     opts,
		comments: comments,
		claimed:  make([]bool, comments.Len()),
	}
}

// Options returns the invocation's options.
func (f *Formatter) Options() Options {
	return f.opts
}

// Source returns the source being formatted.
func (f *Formatter) Source() []byte {
	return f.source
}

// Text returns the source text covered by span.
func (f *Formatter) Text(span Span) string {
	return string(f.source[span.Start:span.End])
}

// GroupID allocates a group id for use with doc.Group and doc.GroupBreakIf.
func (f *Formatter) GroupID(name string) doc.GroupID {
	return f.ids.New(name)
}

// TrailingComma returns a comma printed only when the group id breaks, or
// nothing when trailing commas are disabled.
func (f *Formatter) TrailingComma(id doc.GroupID) doc.Doc {
	if !f.opts.TrailingCommas {
		return doc.Empty
	}
	return doc.GroupBreakIf{ID: id, Doc: doc.Text(",")}
}

// Defect records a problem with the tree or a rule. Defects fail the
// invocation once it finishes.
func (f *Formatter) Defect(err error) {
	f.defects = append(f.defects, err)
}

// Format returns the document for n, surrounded by its comments.
func (f *Formatter) Format(n Node) doc.Doc {
	if n == nil {
		return doc.Empty
	}
	if f.ignored(n) {
		f.claimWithin(n.Span())
		return f.WithComments(n, doc.Lines(f.Text(n.Span())))
	}
	return f.WithComments(n, n.ToDocument(f))
}

// WithComments surrounds d with the leading and trailing comments of n. Rules
// that print nested nodes without calling Format on them, such as flattened
// operator chains, use it to keep those nodes' comments.
func (f *Formatter) WithComments(n Node, d doc.Doc) doc.Doc {
	a := f.comments.of(n)
	if a == nil || len(a.leading)+len(a.trailing) == 0 {
		return d
	}

	parts := make([]doc.Doc, 0, 2*len(a.leading)+1+3*len(a.trailing))
	for _, i := range a.leading {
		c := f.claim(i)
		parts = append(parts, commentText(c))
		switch {
		case c.BlankLineAfter:
			parts = append(parts, doc.HardLine, doc.HardLine)
		case c.LineTerminated || c.Kind == LineComment:
			parts = append(parts, doc.HardLine)
		default:
			parts = append(parts, doc.Space)
		}
	}
	parts = append(parts, d)
	for _, i := range a.trailing {
		c := f.claim(i)
		switch {
		case c.OwnLine:
			parts = append(parts,
				doc.LineSuffix{Doc: doc.Concat{doc.HardLine, commentText(c)}},
				doc.BreakParent)
		case c.Kind == LineComment:
			parts = append(parts,
				doc.LineSuffix{Doc: doc.Concat{doc.Space, commentText(c)}},
				doc.BreakParent)
		default:
			parts = append(parts, doc.Space, commentText(c))
		}
	}
	return doc.Concat(parts)
}

// HasComments reports whether n has leading or trailing comments.
func (f *Formatter) HasComments(n Node) bool {
	a := f.comments.of(n)
	return a != nil && len(a.leading)+len(a.trailing) > 0
}

// HasDangling reports whether n has comments that its rule must print with
// Dangling.
func (f *Formatter) HasDangling(n Node) bool {
	a := f.comments.of(n)
	return a != nil && len(a.dangling) > 0
}

// Dangling claims and returns the dangling comments of n, one per line. The
// result breaks its enclosing group when it holds a line comment or more
// than one comment.
func (f *Formatter) Dangling(n Node) doc.Doc {
	a := f.comments.of(n)
	if a == nil || len(a.dangling) == 0 {
		return doc.Empty
	}
	parts := make([]doc.Doc, 0, 2*len(a.dangling)+1)
	breaks := len(a.dangling) > 1
	for k, i := range a.dangling {
		c := f.claim(i)
		if k > 0 {
			parts = append(parts, doc.HardLine)
		}
		parts = append(parts, commentText(c))
		if c.Kind == LineComment {
			breaks = true
		}
	}
	if breaks {
		parts = append(parts, doc.BreakParent)
	}
	return doc.Concat(parts)
}

// Extent returns the span of n widened to include its leading and trailing
// comments.
func (f *Formatter) Extent(n Node) Span {
	span := n.Span()
	a := f.comments.of(n)
	if a == nil {
		return span
	}
	for _, i := range a.leading {
		span.Start = min(span.Start, f.comments.list[i].Span.Start)
	}
	for _, i := range a.trailing {
		span.End = max(span.End, f.comments.list[i].Span.End)
	}
	return span
}

// BlankLineBetween reports whether the source between the offsets from and
// to contains an empty line.
func (f *Formatter) BlankLineBetween(from, to int) bool {
	if from < 0 || to > len(f.source) || from >= to {
		return false
	}
	lines := bytes.Split(f.source[from:to], []byte("\n"))
	for i := 1; i < len(lines)-1; i++ {
		if len(bytes.TrimSpace(lines[i])) == 0 {
			return true
		}
	}
	return false
}

// Finish reports every defect of the invocation, including comments that no
// rule printed, as a *DefectError.
func (f *Formatter) Finish() error {
	defects := f.defects
	for i, claimed := range f.claimed {
		if !claimed {
			c, _ := f.comments.At(i)
			defects = append(defects, &UnconsumedCommentError{Comment: c})
		}
	}
	if len(defects) == 0 {
		return nil
	}
	return &DefectError{Defects: defects}
}

func (f *Formatter) claim(i int) Comment {
	c := f.comments.list[i]
	if f.claimed[i] {
		f.Defect(&DuplicateCommentError{Comment: c})
	}
	f.claimed[i] = true
	return c
}

func (f *Formatter) claimWithin(span Span) {
	for i, c := range f.comments.list {
		if span.Contains(c.Span) && !f.claimed[i] {
			f.claimed[i] = true
		}
	}
}

func (f *Formatter) ignored(n Node) bool {
	a := f.comments.of(n)
	if a == nil {
		return false
	}
	for _, i := range a.leading {
		if commentBody(f.comments.list[i]) == IgnoreDirective {
			return true
		}
	}
	return false
}

func commentBody(c Comment) string {
	text := c.Text
	if c.Kind == BlockComment {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	} else {
		text = strings.TrimPrefix(text, "//")
	}
	return strings.TrimSpace(text)
}

func commentText(c Comment) doc.Doc {
	if c.Kind == LineComment {
		return doc.Text(strings.TrimRight(c.Text, " \t\r"))
	}
	return doc.Lines(c.Text)
}
