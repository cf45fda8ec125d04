package doc

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders d as readable IR, one composite per line. It is meant for
// debugging rules and is not stable across versions.
func Dump(d Doc) string {
	var b strings.Builder
	dump(&b, d, 0)
	b.WriteByte('\n')
	return b.String()
}

func dump(b *strings.Builder, d Doc, depth int) {
	pad := strings.Repeat("  ", depth)
	switch x := d.(type) {
	case nil:
		b.WriteString(pad + "nil")
	case empty:
		b.WriteString(pad + "empty")
	case Text:
		b.WriteString(pad + strconv.Quote(string(x)))
	case space:
		b.WriteString(pad + "space")
	case Line:
		b.WriteString(pad + x.Kind.String())
	case breakParent:
		b.WriteString(pad + "breakParent")
	case Concat:
		dumpList(b, pad, "[", "]", x, depth)
	case Fill:
		dumpList(b, pad, "fill([", "])", x, depth)
	case Indent:
		b.WriteString(pad + "indent(\n")
		dump(b, x.Doc, depth+1)
		b.WriteString("\n" + pad + ")")
	case Group:
		if x.ID.IsZero() {
			b.WriteString(pad + "group(\n")
		} else {
			fmt.Fprintf(b, "%sgroup%s(\n", pad, x.ID)
		}
		dump(b, x.Doc, depth+1)
		b.WriteString("\n" + pad + ")")
	case GroupBreakIf:
		fmt.Fprintf(b, "%sifBreak%s(\n", pad, x.ID)
		dump(b, x.Doc, depth+1)
		b.WriteString("\n" + pad + ")")
	case LineSuffix:
		b.WriteString(pad + "lineSuffix(\n")
		dump(b, x.Doc, depth+1)
		b.WriteString("\n" + pad + ")")
	default:
		fmt.Fprintf(b, "%s<%T>", pad, d)
	}
}

func dumpList(b *strings.Builder, pad, open, close string, parts []Doc, depth int) {
	if len(parts) == 0 {
		b.WriteString(pad + open + close)
		return
	}
	b.WriteString(pad + open + "\n")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(",\n")
		}
		dump(b, part, depth+1)
	}
	b.WriteString("\n" + pad + close)
}
