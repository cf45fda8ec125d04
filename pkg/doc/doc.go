// Package doc defines the intermediate document that formatting rules build
// and the printer lays out.
//
// A Doc describes what to print without deciding where lines break. Rules
// compose primitives (Text, Space, the line variants) with the composite
// nodes (Concat, Indent, Group, Fill, GroupBreakIf, LineSuffix) bottom-up and
// hand the finished tree to the printer, which picks flat or broken layout
// for each Group against the configured line width.
//
// Documents are immutable once built. The printer only reads them.
package doc

// Doc is a node in a document tree.
type Doc interface {
	isDoc()
}

type empty struct{}

func (empty) isDoc() {}

// Empty renders nothing.
var Empty Doc = empty{}

// Text is literal content such as an identifier, keyword or punctuation. It
// is written verbatim and never split.
type Text string

func (Text) isDoc() {}

type space struct{}

func (space) isDoc() {}

// Space is a single space. It collapses to nothing at the start of a line.
var Space Doc = space{}

// LineKind distinguishes the line break variants.
type LineKind int

const (
	// LineSoft is a space when flat and a newline when broken.
	LineSoft LineKind = iota
	// LineSoftBreak is nothing when flat and a newline when broken.
	LineSoftBreak
	// LineHard is always a newline and breaks every enclosing group.
	LineHard
	// LineLiteral is always a newline without indentation.
	LineLiteral
)

func (k LineKind) String() string {
	switch k {
	case LineSoft:
		return "softline"
	case LineSoftBreak:
		return "softbreak"
	case LineHard:
		return "hardline"
	case LineLiteral:
		return "literalline"
	default:
		return "line?"
	}
}

// Line is a potential or forced line break.
type Line struct {
	Kind LineKind
}

func (Line) isDoc() {}

// Hard reports whether the line always breaks.
func (l Line) Hard() bool {
	return l.Kind == LineHard || l.Kind == LineLiteral
}

var (
	SoftLine    Doc = Line{Kind: LineSoft}
	SoftBreak   Doc = Line{Kind: LineSoftBreak}
	HardLine    Doc = Line{Kind: LineHard}
	LiteralLine Doc = Line{Kind: LineLiteral}
)

// Concat prints its parts in order with the surrounding indentation and mode.
type Concat []Doc

func (Concat) isDoc() {}

// Indent increases the indentation of its content by one unit. The extra
// indentation only shows after a line break inside the content.
type Indent struct {
	Doc Doc
}

func (Indent) isDoc() {}

// Group is the unit of the flat-or-broken decision. The printer decides once
// for the whole content; nested groups decide on their own afterwards.
type Group struct {
	ID  GroupID
	Doc Doc
}

func (Group) isDoc() {}

// Fill alternates content and separator items. Each separator breaks only if
// the following content does not fit on the current line.
type Fill []Doc

func (Fill) isDoc() {}

// GroupBreakIf renders its content only when the group with the given ID was
// printed broken. The group must be printed before the reference.
type GroupBreakIf struct {
	ID  GroupID
	Doc Doc
}

func (GroupBreakIf) isDoc() {}

// LineSuffix defers its content until right before the next line break, or
// the end of output. Trailing line comments use it so that punctuation
// printed after them stays on the same line as the code.
type LineSuffix struct {
	Doc Doc
}

func (LineSuffix) isDoc() {}

type breakParent struct{}

func (breakParent) isDoc() {}

// BreakParent forces every enclosing group to break. It prints nothing.
var BreakParent Doc = breakParent{}

// IsEmpty reports whether d is trivially empty. It does not descend into
// composite documents.
func IsEmpty(d Doc) bool {
	switch x := d.(type) {
	case nil, empty:
		return true
	case Text:
		return x == ""
	case Concat:
		return len(x) == 0
	case Fill:
		return len(x) == 0
	default:
		return false
	}
}
