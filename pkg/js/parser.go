package js

import (
	"fmt"

	"github.com/vito/shape/pkg/format"
)

// MaxDepth bounds how deeply expressions and blocks may nest. Deeper input
// is rejected with a SyntaxError instead of exhausting the stack.
const MaxDepth = 10000

type parser struct {
	tokens []Token
	// closing maps the index of each opening bracket token to the index of
	// its closing token.
	closing map[int]int
	pos     int
	depth   int
}

// Parse parses src into a Program and returns its comments in source order.
// Errors are *SyntaxError.
func Parse(filename string, src []byte) (*Program, []format.Comment, error) {
	prog, comments, err := parse(src)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Filename = filename
			se.Source = src
		}
		return nil, nil, err
	}
	return prog, comments, nil
}

func parse(src []byte) (*Program, []format.Comment, error) {
	tokens, comments, err := lex(src)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{
		tokens:  tokens,
		closing: matchBrackets(tokens),
	}
	prog := &Program{Loc: Loc{Range: format.Span{Start: 0, End: len(src)}}}
	for p.tok().Kind != EOF {
		if p.tok().is(Punct, ";") {
			p.next()
			continue
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, nil, err
		}
		prog.Body = append(prog.Body, stmt)
	}
	return prog, comments, nil
}

func matchBrackets(tokens []Token) map[int]int {
	closing := map[int]int{}
	var open []int
	for i, t := range tokens {
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			open = append(open, i)
		case ")", "]", "}":
			if len(open) > 0 {
				closing[open[len(open)-1]] = i
				open = open[:len(open)-1]
			}
		}
	}
	return closing
}

func (p *parser) tok() Token {
	return p.tokens[p.pos]
}

func (p *parser) peek(n int) Token {
	return p.tokens[min(p.pos+n, len(p.tokens)-1)]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

// last returns the most recently consumed token.
func (p *parser) last() Token {
	return p.tokens[max(p.pos-1, 0)]
}

func (p *parser) errorf(t Token, msg string, args ...any) error {
	return &SyntaxError{
		Offset:  t.Span.Start,
		Length:  max(1, t.Span.End-t.Span.Start),
		Message: fmt.Sprintf(msg, args...),
	}
}

func (p *parser) unexpected(want string) error {
	return p.errorf(p.tok(), "expected %s, found %s", want, p.tok())
}

func (p *parser) expect(text string) (Token, error) {
	if !p.tok().is(Punct, text) {
		return Token{}, p.unexpected(fmt.Sprintf("%q", text))
	}
	return p.next(), nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf(p.tok(), "nesting exceeds the maximum depth of %d", MaxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) span(start int) format.Span {
	return format.Span{Start: start, End: p.last().Span.End}
}

// terminate ends a statement: an explicit semicolon, or automatic insertion
// before a line break, a closing brace or the end of the file.
func (p *parser) terminate(start int) (format.Span, error) {
	t := p.tok()
	switch {
	case t.is(Punct, ";"):
		p.next()
	case t.Kind == EOF, t.is(Punct, "}"), t.NewlineBefore:
	default:
		return format.Span{}, p.unexpected(`";"`)
	}
	return p.span(start), nil
}

func (p *parser) statement() (Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	t := p.tok()
	switch {
	case t.is(Punct, "{"):
		return p.block()
	case t.Kind == Name:
		switch t.Text {
		case "let", "const", "var":
			return p.varDecl()
		case "return":
			return p.returnStmt()
		case "if":
			return p.ifStmt()
		case "function":
			return p.funcDecl()
		case "async":
			if p.peek(1).is(Name, "function") && !p.peek(1).NewlineBefore {
				return p.funcDecl()
			}
		}
	}

	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	span, err := p.terminate(t.Span.Start)
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Loc: Loc{span}, X: x}, nil
}

func (p *parser) block() (*Block, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	b := &Block{}
	for !p.tok().is(Punct, "}") {
		if p.tok().Kind == EOF {
			return nil, p.errorf(open, "unclosed block")
		}
		if p.tok().is(Punct, ";") {
			p.next()
			continue
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		b.Body = append(b.Body, stmt)
	}
	p.next()
	b.Range = p.span(open.Span.Start)
	return b, nil
}

func (p *parser) varDecl() (*VarDecl, error) {
	kw := p.next()
	d := &VarDecl{Keyword: kw.Text}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	d.Name = name
	if p.tok().is(Punct, "=") {
		p.next()
		if d.Init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if d.Range, err = p.terminate(kw.Span.Start); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *parser) returnStmt() (*Return, error) {
	kw := p.next()
	r := &Return{}
	t := p.tok()
	if !(t.Kind == EOF || t.NewlineBefore || t.is(Punct, ";") || t.is(Punct, "}")) {
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		r.Value = x
	}
	var err error
	if r.Range, err = p.terminate(kw.Span.Start); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *parser) ifStmt() (*If, error) {
	kw := p.next()
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	if !p.tok().is(Punct, "{") {
		return nil, p.unexpected("a block")
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	n := &If{Test: test, Then: then}
	if p.tok().is(Name, "else") {
		p.next()
		switch {
		case p.tok().is(Name, "if"):
			if err := p.enter(); err != nil {
				return nil, err
			}
			n.Else, err = p.ifStmt()
			p.leave()
		case p.tok().is(Punct, "{"):
			n.Else, err = p.block()
		default:
			return nil, p.unexpected("a block or if statement")
		}
		if err != nil {
			return nil, err
		}
	}
	n.Range = p.span(kw.Span.Start)
	return n, nil
}

func (p *parser) funcDecl() (*FuncDecl, error) {
	start := p.tok().Span.Start
	fn := &FuncDecl{}
	if p.tok().is(Name, "async") {
		fn.Async = true
		p.next()
	}
	p.next()
	var err error
	if fn.Name, err = p.ident(); err != nil {
		return nil, err
	}
	if fn.Params, err = p.params(); err != nil {
		return nil, err
	}
	if !p.tok().is(Punct, "{") {
		return nil, p.unexpected("a function body")
	}
	if fn.Body, err = p.block(); err != nil {
		return nil, err
	}
	fn.Range = p.span(start)
	return fn, nil
}

func (p *parser) ident() (*Ident, error) {
	t := p.tok()
	if t.Kind != Name || keywords[t.Text] {
		return nil, p.unexpected("a name")
	}
	p.next()
	return &Ident{Loc: Loc{t.Span}, Name: t.Text}, nil
}

func (p *parser) params() ([]*Param, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var params []*Param
	for !p.tok().is(Punct, ")") {
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.tok().is(Punct, ",") {
			p.next()
		} else if !p.tok().is(Punct, ")") {
			return nil, p.unexpected(`"," or ")"`)
		}
	}
	p.next()
	return params, nil
}

func (p *parser) param() (*Param, error) {
	start := p.tok().Span.Start
	param := &Param{}
	if p.tok().is(Punct, "...") {
		param.Rest = true
		p.next()
	}
	var err error
	if param.Name, err = p.ident(); err != nil {
		return nil, err
	}
	if !param.Rest && p.tok().is(Punct, "=") {
		p.next()
		if param.Default, err = p.expression(); err != nil {
			return nil, err
		}
	}
	param.Range = p.span(start)
	return param, nil
}

func (p *parser) expression() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.atArrow() {
		return p.arrow()
	}

	start := p.tok().Span.Start
	left, err := p.conditional()
	if err != nil {
		return nil, err
	}
	if t := p.tok(); t.Kind == Punct && assignOps[t.Text] {
		switch left.(type) {
		case *Ident, *Member, *Index:
		default:
			return nil, p.errorf(t, "invalid assignment target")
		}
		p.next()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Assign{Loc: Loc{p.span(start)}, Op: t.Text, Target: left, Value: value}, nil
	}
	return left, nil
}

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true}

// atArrow reports whether an arrow function starts at the current token.
func (p *parser) atArrow() bool {
	i := p.pos
	if p.tokens[i].is(Name, "async") {
		next := p.tokens[i+1]
		if !next.NewlineBefore && (next.is(Punct, "(") || (next.Kind == Name && !keywords[next.Text])) {
			i++
		}
	}
	switch t := p.tokens[i]; {
	case t.Kind == Name && !keywords[t.Text]:
		return p.tokens[i+1].is(Punct, "=>")
	case t.is(Punct, "("):
		end, ok := p.closing[i]
		return ok && p.tokens[end+1].is(Punct, "=>")
	}
	return false
}

func (p *parser) arrow() (*Arrow, error) {
	start := p.tok().Span.Start
	fn := &Arrow{}
	if p.tok().is(Name, "async") && !p.peek(1).is(Punct, "=>") {
		fn.Async = true
		p.next()
	}
	if p.tok().Kind == Name {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		fn.Params = []*Param{{Loc: name.Loc, Name: name}}
	} else {
		params, err := p.params()
		if err != nil {
			return nil, err
		}
		fn.Params = params
	}
	if t := p.tok(); t.NewlineBefore {
		return nil, p.errorf(t, "line break before =>")
	}
	if _, err := p.expect("=>"); err != nil {
		return nil, err
	}
	var err error
	if p.tok().is(Punct, "{") {
		fn.Body, err = p.block()
	} else {
		fn.Body, err = p.expression()
	}
	if err != nil {
		return nil, err
	}
	fn.Range = p.span(start)
	return fn, nil
}

func (p *parser) conditional() (Expr, error) {
	start := p.tok().Span.Start
	test, err := p.binary(1)
	if err != nil {
		return nil, err
	}
	if !p.tok().is(Punct, "?") {
		return test, nil
	}
	p.next()
	cons, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	alt, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &Conditional{Loc: Loc{p.span(start)}, Test: test, Cons: cons, Alt: alt}, nil
}

var binaryPrec = map[string]int{
	"??": 1,
	"||": 2,
	"&&": 3,
	"==": 4, "!=": 4, "===": 4, "!==": 4,
	"<": 5, ">": 5, "<=": 5, ">=": 5,
	"+": 6, "-": 6,
	"*": 7, "/": 7, "%": 7,
}

// binary parses a left-associative operator chain by precedence climbing.
// Chains of one precedence are built in a loop, so their length does not
// count towards MaxDepth.
func (p *parser) binary(minPrec int) (Expr, error) {
	start := p.tok().Span.Start
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.tok()
		prec := binaryPrec[t.Text]
		if t.Kind != Punct || prec == 0 || prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Binary{Loc: Loc{p.span(start)}, Op: t.Text, Left: left, Right: right}
	}
}

func (p *parser) unary() (Expr, error) {
	t := p.tok()
	if t.Kind == Punct && (t.Text == "!" || t.Text == "-" || t.Text == "+") || t.is(Name, "typeof") {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Loc: Loc{p.span(t.Span.Start)}, Op: t.Text, X: x}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (Expr, error) {
	start := p.tok().Span.Start
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch t := p.tok(); {
		case t.is(Punct, "."):
			p.next()
			name := p.tok()
			if name.Kind != Name {
				return nil, p.unexpected("a property name")
			}
			p.next()
			prop := &Ident{Loc: Loc{name.Span}, Name: name.Text}
			x = &Member{Loc: Loc{p.span(start)}, Object: x, Property: prop}
		case t.is(Punct, "["):
			p.next()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &Index{Loc: Loc{p.span(start)}, Object: x, Index: index}
		case t.is(Punct, "("):
			args, err := p.elements(")")
			if err != nil {
				return nil, err
			}
			x = &Call{Loc: Loc{p.span(start)}, Callee: x, Args: args}
		default:
			return x, nil
		}
	}
}

// elements parses a comma-separated list of expressions and spreads up to
// close, starting at the opening bracket.
func (p *parser) elements(close string) ([]Expr, error) {
	p.next()
	var list []Expr
	for !p.tok().is(Punct, close) {
		if p.tok().is(Punct, ",") {
			return nil, p.errorf(p.tok(), "holes are not supported")
		}
		x, err := p.element()
		if err != nil {
			return nil, err
		}
		list = append(list, x)
		if p.tok().is(Punct, ",") {
			p.next()
		} else if !p.tok().is(Punct, close) {
			return nil, p.unexpected(fmt.Sprintf("%q or %q", ",", close))
		}
	}
	p.next()
	return list, nil
}

func (p *parser) element() (Expr, error) {
	if t := p.tok(); t.is(Punct, "...") {
		p.next()
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Spread{Loc: Loc{p.span(t.Span.Start)}, X: x}, nil
	}
	return p.expression()
}

func (p *parser) primary() (Expr, error) {
	t := p.tok()
	switch t.Kind {
	case Name:
		if keywords[t.Text] {
			return nil, p.errorf(t, "unexpected keyword %q", t.Text)
		}
		p.next()
		return &Ident{Loc: Loc{t.Span}, Name: t.Text}, nil
	case Number:
		p.next()
		return &NumberLit{Loc: Loc{t.Span}, Raw: t.Text}, nil
	case String:
		p.next()
		return &StringLit{Loc: Loc{t.Span}, Raw: t.Text}, nil
	case Template:
		p.next()
		return &TemplateLit{Loc: Loc{t.Span}, Raw: t.Text}, nil
	case Punct:
		switch t.Text {
		case "(":
			p.next()
			x, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return &Paren{Loc: Loc{p.span(t.Span.Start)}, X: x}, nil
		case "[":
			elems, err := p.elements("]")
			if err != nil {
				return nil, err
			}
			return &Array{Loc: Loc{p.span(t.Span.Start)}, Elems: elems}, nil
		case "{":
			return p.object()
		}
	}
	return nil, p.unexpected("an expression")
}

func (p *parser) object() (*Object, error) {
	open := p.next()
	obj := &Object{Multiline: p.tok().NewlineBefore && !p.tok().is(Punct, "}")}
	for !p.tok().is(Punct, "}") {
		member, err := p.objectMember()
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, member)
		if p.tok().is(Punct, ",") {
			p.next()
		} else if !p.tok().is(Punct, "}") {
			return nil, p.unexpected(`"," or "}"`)
		}
	}
	p.next()
	obj.Range = p.span(open.Span.Start)
	return obj, nil
}

func (p *parser) objectMember() (ObjectMember, error) {
	t := p.tok()
	if t.is(Punct, "...") {
		p.next()
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Spread{Loc: Loc{p.span(t.Span.Start)}, X: x}, nil
	}

	var key Expr
	switch t.Kind {
	case Name:
		key = &Ident{Loc: Loc{t.Span}, Name: t.Text}
	case String:
		key = &StringLit{Loc: Loc{t.Span}, Raw: t.Text}
	case Number:
		key = &NumberLit{Loc: Loc{t.Span}, Raw: t.Text}
	default:
		return nil, p.unexpected("a property name")
	}
	p.next()

	prop := &Property{Key: key}
	if t.Kind == Name && (p.tok().is(Punct, ",") || p.tok().is(Punct, "}")) {
		if keywords[t.Text] {
			return nil, p.errorf(t, "unexpected keyword %q", t.Text)
		}
		prop.Shorthand = true
		prop.Range = t.Span
		return prop, nil
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	prop.Value = value
	prop.Range = p.span(t.Span.Start)
	return prop, nil
}
