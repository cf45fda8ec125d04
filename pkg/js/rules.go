package js

import (
	"slices"

	"github.com/vito/shape/pkg/doc"
	"github.com/vito/shape/pkg/format"
)

var (
	comma     = doc.Text(",")
	separator = doc.Concat{comma, doc.SoftLine}
)

func (n *Program) ToDocument(f *format.Formatter) doc.Doc {
	if len(n.Body) == 0 {
		if !f.HasDangling(n) {
			return doc.Empty
		}
		return doc.Concat{f.Dangling(n), doc.HardLine}
	}
	return doc.Concat{statements(f, n.Body), doc.HardLine}
}

// statements puts each statement on its own line, keeping at most one blank
// line where the source had any.
func statements(f *format.Formatter, list []Stmt) doc.Doc {
	parts := make([]doc.Doc, 0, 3*len(list))
	for i, s := range list {
		if i > 0 {
			parts = append(parts, doc.HardLine)
			if f.BlankLineBetween(f.Extent(list[i-1]).End, f.Extent(s).Start) {
				parts = append(parts, doc.HardLine)
			}
		}
		parts = append(parts, f.Format(s))
	}
	return doc.Concat(parts)
}

func (n *Block) ToDocument(f *format.Formatter) doc.Doc {
	var body doc.Doc
	switch {
	case len(n.Body) > 0:
		body = statements(f, n.Body)
	case f.HasDangling(n):
		body = f.Dangling(n)
	default:
		return doc.Text("{}")
	}
	return doc.Concat{
		doc.Text("{"),
		doc.Indent{Doc: doc.Concat{doc.HardLine, body}},
		doc.HardLine,
		doc.Text("}"),
	}
}

func (n *VarDecl) ToDocument(f *format.Formatter) doc.Doc {
	parts := doc.Concat{
		doc.Text(n.Keyword),
		doc.Space,
		format.Required(f, n, n.Name, "name"),
	}
	if n.Init != nil {
		parts = append(parts, doc.Text(" ="), assigned(f, n.Init))
	}
	return append(parts, doc.Text(";"))
}

// assigned formats the right-hand side of = so that long operator chains and
// conditionals move to their own line before breaking internally.
func assigned(f *format.Formatter, x Expr) doc.Doc {
	switch x.(type) {
	case *Binary, *Conditional:
		return doc.Group{Doc: doc.Indent{Doc: doc.Concat{doc.SoftLine, f.Format(x)}}}
	default:
		return doc.Concat{doc.Space, f.Format(x)}
	}
}

func (n *ExprStmt) ToDocument(f *format.Formatter) doc.Doc {
	return doc.Concat{format.Required(f, n, n.X, "expression"), doc.Text(";")}
}

func (n *Return) ToDocument(f *format.Formatter) doc.Doc {
	if n.Value == nil {
		return doc.Text("return;")
	}
	return doc.Concat{doc.Text("return "), f.Format(n.Value), doc.Text(";")}
}

func (n *If) ToDocument(f *format.Formatter) doc.Doc {
	parts := doc.Concat{
		doc.Text("if ("),
		format.Required(f, n, n.Test, "condition"),
		doc.Text(") "),
		format.Required(f, n, n.Then, "consequent"),
	}
	if n.Else != nil {
		parts = append(parts, doc.Text(" else "), f.Format(n.Else))
	}
	return parts
}

func (n *FuncDecl) ToDocument(f *format.Formatter) doc.Doc {
	return doc.List(
		asyncKeyword(n.Async),
		doc.Text("function "),
		format.Required(f, n, n.Name, "name"),
		params(f, n, n.Params),
		doc.Space,
		format.Required(f, n, n.Body, "body"),
	)
}

func asyncKeyword(async bool) doc.Doc {
	if !async {
		return doc.Empty
	}
	return doc.Text("async ")
}

// params formats the parameter list of fn.
func params(f *format.Formatter, fn format.Node, list []*Param) doc.Doc {
	if len(list) == 0 {
		return empty(f, fn, "(", ")", doc.SoftBreak)
	}
	items := make([]doc.Doc, len(list))
	for i, p := range list {
		items[i] = f.Format(p)
	}
	// A rest parameter must be last, so it cannot take a trailing comma.
	return delimited(f, "(", ")", items, !list[len(list)-1].Rest)
}

func (n *Param) ToDocument(f *format.Formatter) doc.Doc {
	var parts doc.Concat
	if n.Rest {
		parts = append(parts, doc.Text("..."))
	}
	parts = append(parts, format.Required(f, n, n.Name, "name"))
	if n.Default != nil {
		parts = append(parts, doc.Text(" = "), f.Format(n.Default))
	}
	return parts
}

// delimited lays out a comma-separated list between open and close, either
// on one line or with one item per line.
func delimited(f *format.Formatter, open, close string, items []doc.Doc, trailingComma bool) doc.Doc {
	id := f.GroupID(open + close)
	tail := doc.Empty
	if trailingComma {
		tail = f.TrailingComma(id)
	}
	return doc.Group{ID: id, Doc: doc.Concat{
		doc.Text(open),
		doc.Indent{Doc: doc.Concat{doc.SoftBreak, doc.Join(separator, items...)}},
		tail,
		doc.SoftBreak,
		doc.Text(close),
	}}
}

// empty prints an empty bracketed node along with any comments inside it.
func empty(f *format.Formatter, n format.Node, open, close string, line doc.Doc) doc.Doc {
	if !f.HasDangling(n) {
		return doc.Text(open + close)
	}
	return doc.Wrap(doc.Text(open), f.Dangling(n), doc.Text(close), line)
}

func (n *Ident) ToDocument(*format.Formatter) doc.Doc {
	return doc.Text(n.Name)
}

func (n *NumberLit) ToDocument(*format.Formatter) doc.Doc {
	return doc.Text(n.Raw)
}

func (n *StringLit) ToDocument(*format.Formatter) doc.Doc {
	return doc.Text(n.Raw)
}

func (n *TemplateLit) ToDocument(*format.Formatter) doc.Doc {
	return doc.Lines(n.Raw)
}

func (n *Array) ToDocument(f *format.Formatter) doc.Doc {
	if len(n.Elems) == 0 {
		return empty(f, n, "[", "]", doc.SoftBreak)
	}
	if len(n.Elems) == 1 || slices.ContainsFunc(n.Elems, isComplex) || slices.ContainsFunc(n.Elems, hasComments(f)) {
		return delimited(f, "[", "]", formatAll(f, n.Elems), true)
	}

	id := f.GroupID("[]")
	fill := make(doc.Fill, 0, 2*len(n.Elems)-1)
	for i, e := range n.Elems {
		item := f.Format(e)
		if i > 0 {
			fill = append(fill, doc.SoftLine)
		}
		if i < len(n.Elems)-1 {
			item = doc.Concat{item, comma}
		}
		fill = append(fill, item)
	}
	return doc.Group{ID: id, Doc: doc.Concat{
		doc.Text("["),
		doc.Indent{Doc: doc.Concat{doc.SoftBreak, fill}},
		f.TrailingComma(id),
		doc.SoftBreak,
		doc.Text("]"),
	}}
}

// isComplex reports whether an array element is anything other than a
// literal or a name. Arrays of only those fill lines instead of taking one
// line per element.
func isComplex(x Expr) bool {
	switch x.(type) {
	case *NumberLit, *StringLit, *Ident:
		return false
	default:
		return true
	}
}

func hasComments(f *format.Formatter) func(Expr) bool {
	return func(x Expr) bool {
		return f.HasComments(x)
	}
}

func formatAll[N format.Node](f *format.Formatter, list []N) []doc.Doc {
	out := make([]doc.Doc, len(list))
	for i, n := range list {
		out[i] = f.Format(n)
	}
	return out
}

func (n *Object) ToDocument(f *format.Formatter) doc.Doc {
	if len(n.Members) == 0 {
		return empty(f, n, "{", "}", doc.SoftLine)
	}
	id := f.GroupID("{}")
	body := doc.Concat{
		doc.Text("{"),
		doc.Indent{Doc: doc.Concat{doc.SoftLine, doc.Join(separator, formatAll(f, n.Members)...)}},
		f.TrailingComma(id),
		doc.SoftLine,
		doc.Text("}"),
	}
	if n.Multiline {
		body = append(body, doc.BreakParent)
	}
	return doc.Group{ID: id, Doc: body}
}

func (n *Property) ToDocument(f *format.Formatter) doc.Doc {
	key := format.Required(f, n, n.Key, "key")
	if n.Shorthand {
		return key
	}
	return doc.Concat{key, doc.Text(": "), format.Required(f, n, n.Value, "value")}
}

func (n *Spread) ToDocument(f *format.Formatter) doc.Doc {
	return doc.Concat{doc.Text("..."), format.Required(f, n, n.X, "argument")}
}

func (n *Call) ToDocument(f *format.Formatter) doc.Doc   { return chain(f, n) }
func (n *Member) ToDocument(f *format.Formatter) doc.Doc { return chain(f, n) }
func (n *Index) ToDocument(f *format.Formatter) doc.Doc  { return chain(f, n) }

// callsToBreak is the number of method calls from which a member chain puts
// each call on its own line when it does not fit.
const callsToBreak = 3

// chain formats a run of calls, member accesses and index expressions. The
// run is walked in a loop rather than by recursing through Format, so long
// chains do not grow the stack.
func chain(f *format.Formatter, top Expr) doc.Doc {
	var links []Expr
	head := top
walk:
	for {
		switch x := head.(type) {
		case *Call:
			links = append(links, x)
			head = x.Callee
		case *Member:
			links = append(links, x)
			head = x.Object
		case *Index:
			links = append(links, x)
			head = x.Object
		default:
			break walk
		}
	}
	slices.Reverse(links)

	headDoc := format.Required(f, links[0], head, "object")
	headParts := doc.Concat{headDoc}
	var pieces []doc.Concat
	calls := 0
	for i, link := range links {
		var suffix doc.Doc
		switch x := link.(type) {
		case *Call:
			suffix = arguments(f, x)
			if _, ok := x.Callee.(*Member); ok {
				calls++
			}
		case *Member:
			suffix = doc.Concat{doc.Text("."), format.Required(f, x, x.Property, "property")}
			pieces = append(pieces, nil)
		case *Index:
			suffix = doc.Concat{doc.Text("["), format.Required(f, x, x.Index, "index"), doc.Text("]")}
		}
		if i < len(links)-1 {
			// The outermost link's comments are printed by Format.
			suffix = f.WithComments(link, suffix)
		}
		if len(pieces) == 0 {
			headParts = append(headParts, suffix)
		} else {
			pieces[len(pieces)-1] = append(pieces[len(pieces)-1], suffix)
		}
	}

	if calls < callsToBreak {
		for _, piece := range pieces {
			headParts = append(headParts, piece...)
		}
		return headParts
	}
	rest := make(doc.Concat, 0, 2*len(pieces))
	for _, piece := range pieces {
		rest = append(rest, doc.SoftBreak, piece)
	}
	return doc.Group{Doc: doc.Concat{headParts, doc.Indent{Doc: rest}}}
}

func arguments(f *format.Formatter, call *Call) doc.Doc {
	switch {
	case len(call.Args) == 0:
		return empty(f, call, "(", ")", doc.SoftBreak)
	case len(call.Args) == 1 && huggable(f, call.Args[0]):
		return doc.Concat{doc.Text("("), f.Format(call.Args[0]), doc.Text(")")}
	default:
		return delimited(f, "(", ")", formatAll(f, call.Args), true)
	}
}

// huggable reports whether a sole argument keeps its brackets against the
// call's parentheses.
func huggable(f *format.Formatter, x Expr) bool {
	if f.HasComments(x) {
		return false
	}
	switch x := x.(type) {
	case *Object, *Array:
		return true
	case *Arrow:
		switch x.Body.(type) {
		case *Block, *Object, *Array:
			return true
		}
	}
	return false
}

func (n *Arrow) ToDocument(f *format.Formatter) doc.Doc {
	head := doc.List(asyncKeyword(n.Async), params(f, n, n.Params), doc.Text(" =>"))
	body := format.Required(f, n, n.Body, "body")
	switch n.Body.(type) {
	case *Block, *Object, *Array:
		return doc.Concat{head, doc.Space, body}
	default:
		return doc.Concat{head, doc.Group{Doc: doc.Indent{Doc: doc.Concat{doc.SoftLine, body}}}}
	}
}

// ToDocument flattens the left-nested operands of one precedence into a
// single group, breaking after each operator.
func (n *Binary) ToDocument(f *format.Formatter) doc.Doc {
	prec := binaryPrec[n.Op]
	links := []*Binary{n}
	for {
		left, ok := links[len(links)-1].Left.(*Binary)
		if !ok || binaryPrec[left.Op] != prec {
			break
		}
		links = append(links, left)
	}

	first := links[len(links)-1]
	d := format.Required(f, first, first.Left, "left operand")
	for i := len(links) - 1; i >= 0; i-- {
		b := links[i]
		d = doc.Concat{
			d,
			doc.Space,
			doc.Text(b.Op),
			doc.Indent{Doc: doc.Concat{doc.SoftLine, format.Required(f, b, b.Right, "right operand")}},
		}
		if i > 0 {
			d = f.WithComments(b, d)
		}
	}
	return doc.Group{Doc: d}
}

func (n *Unary) ToDocument(f *format.Formatter) doc.Doc {
	x := format.Required(f, n, n.X, "operand")
	if n.Op == "typeof" {
		return doc.Concat{doc.Text("typeof "), x}
	}
	if inner, ok := n.X.(*Unary); ok && (n.Op == "-" || n.Op == "+") && inner.Op == n.Op {
		// Keep "- -x" from turning into a decrement.
		return doc.Concat{doc.Text(n.Op), doc.Space, x}
	}
	return doc.Concat{doc.Text(n.Op), x}
}

func (n *Conditional) ToDocument(f *format.Formatter) doc.Doc {
	return doc.Group{Doc: doc.Concat{
		format.Required(f, n, n.Test, "condition"),
		doc.Indent{Doc: doc.Concat{
			doc.SoftLine,
			doc.Text("? "),
			format.Required(f, n, n.Cons, "consequent"),
			doc.SoftLine,
			doc.Text(": "),
			format.Required(f, n, n.Alt, "alternate"),
		}},
	}}
}

func (n *Assign) ToDocument(f *format.Formatter) doc.Doc {
	return doc.Concat{
		format.Required(f, n, n.Target, "target"),
		doc.Text(" " + n.Op),
		assigned(f, n.Value),
	}
}

func (n *Paren) ToDocument(f *format.Formatter) doc.Doc {
	return doc.Concat{doc.Text("("), format.Required(f, n, n.X, "expression"), doc.Text(")")}
}
