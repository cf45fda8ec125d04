package printer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/shape/pkg/doc"
)

func call(ids *doc.IDs, name string, args ...doc.Doc) doc.Doc {
	id := ids.New("args")
	return doc.Concat{
		doc.Text(name),
		doc.Group{ID: id, Doc: doc.Concat{
			doc.Text("("),
			doc.Indent{Doc: doc.Concat{
				doc.SoftBreak,
				doc.Join(doc.Concat{doc.Text(","), doc.SoftLine}, args...),
			}},
			doc.GroupBreakIf{ID: id, Doc: doc.Text(",")},
			doc.SoftBreak,
			doc.Text(")"),
		}},
	}
}

func texts(ss ...string) []doc.Doc {
	out := make([]doc.Doc, len(ss))
	for i, s := range ss {
		out[i] = doc.Text(s)
	}
	return out
}

func print(t *testing.T, d doc.Doc, opts Options) string {
	t.Helper()
	out, err := Print(d, opts)
	require.NoError(t, err)
	return out
}

func TestGroupFitsAtLineStart(t *testing.T) {
	var ids doc.IDs
	d := call(&ids, "f", texts("a", "b", "c")...)
	assert.Equal(t, "f(a, b, c)", print(t, d, Options{Width: 80, IndentWidth: 2}))
}

func TestGroupBreaksNearLineEnd(t *testing.T) {
	var ids doc.IDs
	d := doc.Concat{
		doc.Text(strings.Repeat("x", 75)),
		call(&ids, "f", texts("a", "b", "c")...),
	}
	assert.Equal(t, strings.Repeat("x", 75)+"f(\n  a,\n  b,\n  c,\n)",
		print(t, d, Options{Width: 80, IndentWidth: 2}))
}

func TestGroupWidthBoundary(t *testing.T) {
	var ids doc.IDs
	d := call(&ids, "f", texts("a", "b", "c")...)
	assert.Equal(t, "f(a, b, c)", print(t, d, Options{Width: 10, IndentWidth: 2}))

	ids = doc.IDs{}
	d = call(&ids, "f", texts("a", "b", "c")...)
	assert.Equal(t, "f(\n  a,\n  b,\n  c,\n)", print(t, d, Options{Width: 9, IndentWidth: 2}))
}

func TestNestedGroupsDecideIndependently(t *testing.T) {
	var ids doc.IDs
	inner := call(&ids, "g", doc.Text("a"))
	d := call(&ids, "f", inner, doc.Text(strings.Repeat("b", 16)))
	assert.Equal(t, "f(\n  g(a),\n  bbbbbbbbbbbbbbbb,\n)", print(t, d, Options{Width: 20, IndentWidth: 2}))
}

func TestFillPacksPerLine(t *testing.T) {
	var items []doc.Doc
	for i := range 10 {
		if i > 0 {
			items = append(items, doc.SoftLine)
		}
		item := "item" + string(rune('0'+i))
		if i < 9 {
			item += ","
		}
		items = append(items, doc.Text(item))
	}

	out := print(t, doc.Fill(items), Options{Width: 20, IndentWidth: 2})
	assert.Equal(t, "item0, item1, item2,\nitem3, item4, item5,\nitem6, item7, item8,\nitem9", out)

	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 20, line)
	}
}

func TestFillFlatInsideFittingGroup(t *testing.T) {
	d := doc.Group{Doc: doc.Fill{doc.Text("a,"), doc.SoftLine, doc.Text("b")}}
	assert.Equal(t, "a, b", print(t, d, Options{Width: 20}))
}

func TestHardLineBreaksEnclosingGroups(t *testing.T) {
	d := doc.Group{Doc: doc.Concat{
		doc.Text("{"),
		doc.Group{Doc: doc.Indent{Doc: doc.Concat{
			doc.SoftLine,
			doc.Text("// c"),
			doc.HardLine,
			doc.Text("x"),
		}}},
		doc.SoftLine,
		doc.Text("}"),
	}}
	assert.Equal(t, "{\n  // c\n  x\n}", print(t, d, Options{Width: 80, IndentWidth: 2}))
}

func TestBreakParent(t *testing.T) {
	d := doc.Group{Doc: doc.Concat{doc.Text("a"), doc.SoftLine, doc.Text("b"), doc.BreakParent}}
	assert.Equal(t, "a\nb", print(t, d, Options{Width: 80}))
}

func TestGroupBreakIfFollowsReferencedGroup(t *testing.T) {
	var ids doc.IDs
	id := ids.New("list")
	list := func(width int) string {
		d := doc.Concat{
			doc.Group{ID: id, Doc: doc.Concat{
				doc.Text("["),
				doc.Indent{Doc: doc.Concat{doc.SoftBreak, doc.Text("one"), doc.Text(","), doc.SoftLine, doc.Text("two")}},
				doc.SoftBreak,
				doc.Text("]"),
			}},
			doc.GroupBreakIf{ID: id, Doc: doc.Text(" // broken")},
		}
		return print(t, d, Options{Width: width, IndentWidth: 2})
	}
	assert.Equal(t, "[one, two]", list(80))
	assert.Equal(t, "[\n  one,\n  two\n] // broken", list(5))
}

func TestDanglingGroupBreakIf(t *testing.T) {
	var ids doc.IDs
	later := ids.New("later")
	d := doc.Concat{
		doc.GroupBreakIf{ID: later, Doc: doc.Text(",")},
		doc.Group{ID: later, Doc: doc.Text("x")},
		doc.GroupBreakIf{ID: ids.New("missing"), Doc: doc.Text(",")},
	}
	out, err := Print(d, Options{Width: 80})
	require.Error(t, err)
	assert.Equal(t, "x", out)

	var dangling *DanglingGroupError
	require.True(t, errors.As(err, &dangling))
	assert.Equal(t, later, dangling.ID)
	assert.Contains(t, err.Error(), "#2(missing)")
}

func TestTrailingWhitespaceTrimmed(t *testing.T) {
	d := doc.Concat{
		doc.Text("a"), doc.Space, doc.HardLine,
		doc.Indent{Doc: doc.Concat{doc.HardLine, doc.HardLine, doc.Text("x"), doc.Space}},
	}
	assert.Equal(t, "a\n\n\n  x", print(t, d, Options{Width: 80, IndentWidth: 2}))
}

func TestTextIsNeverTrimmed(t *testing.T) {
	d := doc.Concat{doc.Text("a  "), doc.HardLine, doc.Text("b\t")}
	assert.Equal(t, "a  \nb\t", print(t, d, Options{Width: 80}))
}

func TestSpaceCollapsesAtLineStart(t *testing.T) {
	d := doc.Indent{Doc: doc.Concat{doc.Text("a"), doc.HardLine, doc.Space, doc.Text("x")}}
	assert.Equal(t, "a\n  x", print(t, d, Options{Width: 80, IndentWidth: 2}))
}

func TestLiteralLineSkipsIndentation(t *testing.T) {
	d := doc.Indent{Doc: doc.Group{Doc: doc.Concat{
		doc.Text("x ="),
		doc.SoftLine,
		doc.Text("`a"),
		doc.LiteralLine,
		doc.Text("b`"),
	}}}
	assert.Equal(t, "x =\n  `a\nb`", print(t, d, Options{Width: 80, IndentWidth: 2}))
}

func TestLineSuffixFlushesBeforeNewline(t *testing.T) {
	comment := doc.LineSuffix{Doc: doc.Concat{doc.Space, doc.Text("// c")}}
	d := doc.Concat{doc.Text("a"), comment, doc.Text(","), doc.HardLine, doc.Text("b")}
	assert.Equal(t, "a, // c\nb", print(t, d, Options{Width: 80}))

	d = doc.Concat{doc.Text("a"), comment}
	assert.Equal(t, "a // c", print(t, d, Options{Width: 80}))
}

func TestTabs(t *testing.T) {
	d := doc.Group{Doc: doc.Concat{
		doc.Text("f("),
		doc.Indent{Doc: doc.Concat{doc.SoftBreak, doc.Text("argument")}},
		doc.SoftBreak,
		doc.Text(")"),
	}}
	assert.Equal(t, "f(\n\targument\n)", print(t, d, Options{Width: 10, IndentWidth: 4, UseTabs: true}))
}

func TestWideCharactersCountDouble(t *testing.T) {
	d := doc.Group{Doc: doc.Concat{doc.Text("日本"), doc.SoftLine, doc.Text("語")}}
	assert.Equal(t, "日本 語", print(t, d, Options{Width: 7}))
	assert.Equal(t, "日本\n語", print(t, d, Options{Width: 6}))
}

func TestUnbreakableOverflowIsNotAnError(t *testing.T) {
	long := strings.Repeat("x", 100)
	d := doc.Group{Doc: doc.Concat{doc.Text(long), doc.SoftLine, doc.Text("y")}}
	assert.Equal(t, long+"\ny", print(t, d, Options{Width: 20}))
}

func TestDeeplyNestedDocument(t *testing.T) {
	const depth = 100000
	var d doc.Doc = doc.Text("x")
	for range depth {
		d = doc.Group{Doc: doc.Concat{doc.Text("("), doc.Indent{Doc: d}, doc.SoftBreak, doc.Text(")")}}
	}
	out := print(t, d, Options{Width: 80, IndentWidth: 0})
	assert.Equal(t, strings.Repeat("(", depth)+"x", out[:depth+1])
	assert.Equal(t, 2*depth+1, len(strings.ReplaceAll(out, "\n", "")))
}

func TestDeterministic(t *testing.T) {
	build := func() doc.Doc {
		var ids doc.IDs
		var args []doc.Doc
		for i := range 30 {
			args = append(args, call(&ids, "g", texts(strings.Repeat("a", i%7+1))...))
		}
		return call(&ids, "f", args...)
	}
	first := print(t, build(), Options{Width: 40, IndentWidth: 2})
	second := print(t, build(), Options{Width: 40, IndentWidth: 2})
	assert.Equal(t, first, second)
}

func TestDefaultWidth(t *testing.T) {
	d := doc.Group{Doc: doc.Concat{doc.Text(strings.Repeat("a", 79)), doc.SoftLine, doc.Text("b")}}
	assert.Equal(t, strings.Repeat("a", 79)+"\nb", print(t, d, Options{}))
}
