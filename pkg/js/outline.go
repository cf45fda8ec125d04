package js

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/vito/shape/pkg/format"
)

// Outline renders the tree under root one node per line, indented by depth.
func Outline(root format.Node) string {
	type entry struct {
		node  format.Node
		depth int
	}
	var b strings.Builder
	stack := []entry{{root, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fmt.Fprintf(&b, "%s%s %s", strings.Repeat("  ", e.depth), strcase.ToSnake(format.KindOf(e.node)), e.node.Span())
		switch x := e.node.(type) {
		case *Ident:
			fmt.Fprintf(&b, " %s", x.Name)
		case *NumberLit:
			fmt.Fprintf(&b, " %s", x.Raw)
		case *StringLit:
			fmt.Fprintf(&b, " %s", x.Raw)
		case *VarDecl:
			fmt.Fprintf(&b, " %s", x.Keyword)
		case *Binary:
			fmt.Fprintf(&b, " %s", x.Op)
		case *Unary:
			fmt.Fprintf(&b, " %s", x.Op)
		case *Assign:
			fmt.Fprintf(&b, " %s", x.Op)
		}
		b.WriteByte('\n')

		if p, ok := e.node.(format.Parent); ok {
			children := p.Children()
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, entry{children[i], e.depth + 1})
			}
		}
	}
	return b.String()
}
