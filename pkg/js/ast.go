package js

import (
	"github.com/vito/shape/pkg/format"
)

// Stmt is a statement node.
type Stmt interface {
	format.Node
	stmt()
}

// Expr is an expression node.
type Expr interface {
	format.Node
	expr()
}

// ObjectMember is a property or spread inside an object literal.
type ObjectMember interface {
	format.Node
	objectMember()
}

// Loc is the source range of a node. Nodes embed it.
type Loc struct {
	Range format.Span
}

func (l *Loc) Span() format.Span {
	return l.Range
}

type Program struct {
	Loc
	Body []Stmt
}

type Block struct {
	Loc
	Body []Stmt
}

type VarDecl struct {
	Loc
	// Keyword is let, const or var.
	Keyword string
	Name    *Ident
	Init    Expr
}

type ExprStmt struct {
	Loc
	X Expr
}

type Return struct {
	Loc
	Value Expr
}

type If struct {
	Loc
	Test Expr
	Then *Block
	// Else is a *Block, an *If or nil.
	Else Stmt
}

type FuncDecl struct {
	Loc
	Async  bool
	Name   *Ident
	Params []*Param
	Body   *Block
}

type Param struct {
	Loc
	Rest    bool
	Name    *Ident
	Default Expr
}

type Ident struct {
	Loc
	Name string
}

type NumberLit struct {
	Loc
	Raw string
}

type StringLit struct {
	Loc
	Raw string
}

// TemplateLit keeps the literal's source text, substitutions included.
type TemplateLit struct {
	Loc
	Raw string
}

type Array struct {
	Loc
	Elems []Expr
}

type Object struct {
	Loc
	Members []ObjectMember
	// Multiline is set when the source put a line break after the opening
	// brace.
	Multiline bool
}

type Property struct {
	Loc
	Key       Expr
	Value     Expr
	Shorthand bool
}

type Spread struct {
	Loc
	X Expr
}

type Call struct {
	Loc
	Callee Expr
	Args   []Expr
}

type Member struct {
	Loc
	Object   Expr
	Property *Ident
}

type Index struct {
	Loc
	Object Expr
	Index  Expr
}

type Arrow struct {
	Loc
	Async  bool
	Params []*Param
	// Body is an Expr or a *Block.
	Body format.Node
}

type Binary struct {
	Loc
	Op    string
	Left  Expr
	Right Expr
}

type Unary struct {
	Loc
	Op string
	X  Expr
}

type Conditional struct {
	Loc
	Test Expr
	Cons Expr
	Alt  Expr
}

type Assign struct {
	Loc
	Op     string
	Target Expr
	Value  Expr
}

type Paren struct {
	Loc
	X Expr
}

func (*Block) stmt()    {}
func (*VarDecl) stmt()  {}
func (*ExprStmt) stmt() {}
func (*Return) stmt()   {}
func (*If) stmt()       {}
func (*FuncDecl) stmt() {}

func (*Ident) expr()       {}
func (*NumberLit) expr()   {}
func (*StringLit) expr()   {}
func (*TemplateLit) expr() {}
func (*Array) expr()       {}
func (*Object) expr()      {}
func (*Spread) expr()      {}
func (*Call) expr()        {}
func (*Member) expr()      {}
func (*Index) expr()       {}
func (*Arrow) expr()       {}
func (*Binary) expr()      {}
func (*Unary) expr()       {}
func (*Conditional) expr() {}
func (*Assign) expr()      {}
func (*Paren) expr()       {}

func (*Property) objectMember() {}
func (*Spread) objectMember()   {}

// nodes collects the non-nil nodes among ns.
func nodes[N interface {
	format.Node
	comparable
}](list []format.Node, ns ...N) []format.Node {
	var zero N
	for _, n := range ns {
		if n != zero {
			list = append(list, n)
		}
	}
	return list
}

func (n *Program) Children() []format.Node { return nodes(nil, n.Body...) }
func (n *Block) Children() []format.Node   { return nodes(nil, n.Body...) }

func (n *VarDecl) Children() []format.Node {
	return nodes(nodes(nil, n.Name), n.Init)
}

func (n *ExprStmt) Children() []format.Node { return nodes(nil, n.X) }
func (n *Return) Children() []format.Node   { return nodes(nil, n.Value) }

func (n *If) Children() []format.Node {
	list := nodes(nil, n.Test)
	list = nodes(list, n.Then)
	return nodes(list, n.Else)
}

func (n *FuncDecl) Children() []format.Node {
	list := nodes(nil, n.Name)
	list = nodes(list, n.Params...)
	return nodes(list, n.Body)
}

func (n *Param) Children() []format.Node {
	return nodes(nodes(nil, n.Name), n.Default)
}

func (n *Array) Children() []format.Node  { return nodes(nil, n.Elems...) }
func (n *Object) Children() []format.Node { return nodes(nil, n.Members...) }

func (n *Property) Children() []format.Node {
	if n.Shorthand {
		return nodes(nil, n.Key)
	}
	return nodes(nil, n.Key, n.Value)
}

func (n *Spread) Children() []format.Node { return nodes(nil, n.X) }

func (n *Call) Children() []format.Node {
	return nodes(nodes(nil, n.Callee), n.Args...)
}

func (n *Member) Children() []format.Node {
	return nodes(nodes(nil, n.Object), n.Property)
}

func (n *Index) Children() []format.Node { return nodes(nil, n.Object, n.Index) }

func (n *Arrow) Children() []format.Node {
	return nodes(nodes(nil, n.Params...), n.Body)
}

func (n *Binary) Children() []format.Node      { return nodes(nil, n.Left, n.Right) }
func (n *Unary) Children() []format.Node       { return nodes(nil, n.X) }
func (n *Conditional) Children() []format.Node { return nodes(nil, n.Test, n.Cons, n.Alt) }
func (n *Assign) Children() []format.Node      { return nodes(nil, n.Target, n.Value) }
func (n *Paren) Children() []format.Node       { return nodes(nil, n.X) }
