package format

import (
	"fmt"
	"strings"

	"github.com/vito/shape/pkg/doc"
)

// Span is a half-open byte range [Start, End) in the source.
type Span struct {
	Start int
	End   int
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Node is implemented by every syntax node that can be formatted.
//
// ToDocument builds the node's document from its own tokens and the
// documents of its children, which it must obtain through f.Format (or
// Required and Optional) so that their comments are printed. It must not
// modify the node.
//
// Comments are keyed by node identity, so implementations must be pointer
// types.
type Node interface {
	Span() Span
	ToDocument(f *Formatter) doc.Doc
}

// Parent is a Node with children. Children are returned in source order
// without nil entries; comment attachment descends through them.
type Parent interface {
	Node
	Children() []Node
}

// Kinded nodes name themselves in error messages.
type Kinded interface {
	Kind() string
}

// KindOf returns a readable name for n's node kind.
func KindOf(n Node) string {
	if k, ok := n.(Kinded); ok {
		return k.Kind()
	}
	name := fmt.Sprintf("%T", n)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Required formats a child the grammar guarantees is present. An absent
// child is recorded as a *StructuralError and renders as nothing; the defect
// fails the whole format invocation.
func Required[N interface {
	Node
	comparable
}](f *Formatter, parent Node, child N, name string) doc.Doc {
	var zero N
	if child == zero {
		f.Defect(&StructuralError{
			Parent: KindOf(parent),
			Child:  name,
			Span:   parent.Span(),
		})
		return doc.Empty
	}
	return f.Format(child)
}

// Optional formats a child that may be absent.
func Optional[N interface {
	Node
	comparable
}](f *Formatter, child N) doc.Doc {
	var zero N
	if child == zero {
		return doc.Empty
	}
	return f.Format(child)
}
