package format

import (
	"slices"
	"sort"
)

// CommentKind distinguishes line comments from block comments.
type CommentKind int

const (
	// LineComment runs to the end of the line.
	LineComment CommentKind = iota
	// BlockComment is delimited and may span several lines.
	BlockComment
)

func (k CommentKind) String() string {
	if k == BlockComment {
		return "block"
	}
	return "line"
}

// Comment is a comment from the source along with the layout facts needed
// to print it back.
type Comment struct {
	Span Span
	Kind CommentKind
	// Text is the comment including its delimiters.
	Text string

	// OwnLine is set when only whitespace precedes the comment on its line.
	OwnLine bool
	// LineTerminated is set when only whitespace follows the comment on its
	// line.
	LineTerminated bool
	// BlankLineAfter is set when the line after the comment is blank.
	BlankLineAfter bool
}

// NewComment describes the comment at span in source.
func NewComment(source []byte, span Span, kind CommentKind) Comment {
	c := Comment{
		Span: span,
		Kind: kind,
		Text: string(source[span.Start:span.End]),
	}

	i := span.Start - 1
	for i >= 0 && isBlank(source[i]) {
		i--
	}
	c.OwnLine = i < 0 || source[i] == '\n'

	j := span.End
	for j < len(source) && isBlank(source[j]) {
		j++
	}
	c.LineTerminated = j == len(source) || source[j] == '\n'
	if c.LineTerminated && j < len(source) {
		j++
		for j < len(source) && isBlank(source[j]) {
			j++
		}
		c.BlankLineAfter = j < len(source) && source[j] == '\n'
	}
	return c
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func isSpace(b byte) bool {
	return isBlank(b) || b == '\n' || b == '\f' || b == '\v'
}

// Placement says where a comment is printed relative to its node.
type Placement int

const (
	// Leading comments print before the node.
	Leading Placement = iota
	// Trailing comments print after the node.
	Trailing
	// Dangling comments sit inside a node that has no child to attach
	// them to, such as an empty block. The node's rule prints them.
	Dangling
)

func (p Placement) String() string {
	switch p {
	case Leading:
		return "leading"
	case Trailing:
		return "trailing"
	case Dangling:
		return "dangling"
	default:
		return "placement?"
	}
}

// Attachment is the node a comment belongs to.
type Attachment struct {
	Node      Node
	Placement Placement
}

type attached struct {
	leading, trailing, dangling []int
}

// Comments is the comment table of one source file: every comment in source
// order and the node it is attached to.
type Comments struct {
	list  []Comment
	owner []Attachment
	nodes map[Node]*attached
}

// Len returns the number of comments.
func (cs *Comments) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.list)
}

// At returns the i'th comment in source order and its attachment.
func (cs *Comments) At(i int) (Comment, Attachment) {
	return cs.list[i], cs.owner[i]
}

func (cs *Comments) of(n Node) *attached {
	if cs == nil {
		return nil
	}
	return cs.nodes[n]
}

func (cs *Comments) attach(i int, n Node, p Placement) {
	cs.owner[i] = Attachment{Node: n, Placement: p}
	a := cs.nodes[n]
	if a == nil {
		a = &attached{}
		cs.nodes[n] = a
	}
	switch p {
	case Leading:
		a.leading = append(a.leading, i)
	case Trailing:
		a.trailing = append(a.trailing, i)
	case Dangling:
		a.dangling = append(a.dangling, i)
	}
}

// Attach assigns each comment to exactly one node of the tree rooted at
// root. source is the text the tree and comments were parsed from.
//
// A comment belongs to the smallest Parent whose span encloses it. A comment
// alone inside empty parentheses is dangling on that node. Otherwise, among
// the node's children it becomes:
//
//   - trailing of the preceding child when a token the rule prints itself,
//     such as an operator or keyword, sits between the comment and the
//     following child;
//   - trailing of the preceding child when it is on its own line and comes
//     after such a token, unless the token opens a bracket or separates
//     list items;
//   - leading of the following child, if there is one and the comment is on
//     its own line or code follows it on the same line;
//   - otherwise trailing of the preceding child, if there is one;
//   - otherwise leading of the following child, if there is one;
//   - otherwise dangling on the enclosing node.
//
// Comments printed after the token they followed in the source would be
// attached differently when the output is formatted again.
func Attach(root Node, source []byte, comments []Comment) *Comments {
	cs := &Comments{
		list:  slices.Clone(comments),
		owner: make([]Attachment, len(comments)),
		nodes: map[Node]*attached{},
	}
	slices.SortStableFunc(cs.list, func(a, b Comment) int {
		return a.Span.Start - b.Span.Start
	})
	for i, c := range cs.list {
		enclosing, preceding, following := locate(root, c.Span)
		prev := cs.prevToken(source, c.Span.Start)
		next := cs.nextToken(source, c.Span.End)

		tokenAfter := following != nil && next < following.Span().Start
		tokenBefore := preceding != nil && prev >= preceding.Span().End &&
			!isOpenerOrSeparator(source[prev])

		switch {
		case prev >= 0 && next < len(source) && source[prev] == '(' && source[next] == ')':
			cs.attach(i, enclosing, Dangling)
		case preceding != nil && (tokenAfter || (c.OwnLine && c.LineTerminated && tokenBefore)):
			cs.attach(i, preceding, Trailing)
		case following != nil && (c.OwnLine || !c.LineTerminated):
			cs.attach(i, following, Leading)
		case preceding != nil:
			cs.attach(i, preceding, Trailing)
		case following != nil:
			cs.attach(i, following, Leading)
		default:
			cs.attach(i, enclosing, Dangling)
		}
	}
	return cs
}

func isOpenerOrSeparator(b byte) bool {
	switch b {
	case '(', '[', '{', ',', ';':
		return true
	}
	return false
}

// nextToken returns the offset of the first byte at or after from that is
// neither whitespace nor part of a comment, or len(source).
func (cs *Comments) nextToken(source []byte, from int) int {
	pos := from
	for pos < len(source) {
		if isSpace(source[pos]) {
			pos++
			continue
		}
		k, found := slices.BinarySearchFunc(cs.list, pos, func(c Comment, pos int) int {
			return c.Span.Start - pos
		})
		if !found {
			return pos
		}
		pos = cs.list[k].Span.End
	}
	return len(source)
}

// prevToken returns the offset of the last byte before to that is neither
// whitespace nor part of a comment, or -1.
func (cs *Comments) prevToken(source []byte, to int) int {
	pos := min(to, len(source)) - 1
	for pos >= 0 {
		if isSpace(source[pos]) {
			pos--
			continue
		}
		k, found := slices.BinarySearchFunc(cs.list, pos+1, func(c Comment, end int) int {
			return c.Span.End - end
		})
		if !found {
			return pos
		}
		pos = cs.list[k].Span.Start - 1
	}
	return -1
}

// locate finds the smallest node enclosing span and its children on either
// side of it.
func locate(root Node, span Span) (enclosing, preceding, following Node) {
	enclosing = root
	for {
		p, ok := enclosing.(Parent)
		if !ok {
			return enclosing, nil, nil
		}
		children := p.Children()
		i := sort.Search(len(children), func(i int) bool {
			return children[i].Span().End > span.Start
		})
		if i < len(children) && children[i].Span().Contains(span) {
			enclosing = children[i]
			continue
		}
		if i > 0 {
			preceding = children[i-1]
		}
		if i < len(children) && children[i].Span().Start >= span.End {
			following = children[i]
		}
		return enclosing, preceding, following
	}
}
