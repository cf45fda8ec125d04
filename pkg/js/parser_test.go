package js

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/shape/pkg/format"
)

func TestLexTokens(t *testing.T) {
	tokens, comments, err := lex([]byte("a // c\n/* d\n */ b `t ${ {x: `y`} }` 0x1F 1.5e-3 ...rest"))
	require.NoError(t, err)

	var kinds []TokenKind
	var texts []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []TokenKind{Name, Name, Template, Number, Number, Punct, Name, EOF}, kinds)
	assert.Equal(t, []string{"a", "b", "`t ${ {x: `y`} }`", "0x1F", "1.5e-3", "...", "rest", ""}, texts)
	assert.False(t, tokens[0].NewlineBefore)
	assert.True(t, tokens[1].NewlineBefore)

	require.Len(t, comments, 2)
	assert.Equal(t, "// c", comments[0].Text)
	assert.Equal(t, format.LineComment, comments[0].Kind)
	assert.Equal(t, "/* d\n */", comments[1].Text)
	assert.Equal(t, format.BlockComment, comments[1].Kind)
	assert.True(t, comments[1].OwnLine)
}

func TestLexTrimsLineComments(t *testing.T) {
	_, comments, err := lex([]byte("x // note  \t\r\ny"))
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "// note", comments[0].Text)
}

func TestAutomaticSemicolons(t *testing.T) {
	prog, _, err := Parse("test.js", []byte("a\nb()\nlet c = 1; d;;\nfunction f() { return }"))
	require.NoError(t, err)
	require.Len(t, prog.Body, 5)
	assert.IsType(t, &ExprStmt{}, prog.Body[0])
	assert.IsType(t, &ExprStmt{}, prog.Body[1])
	assert.IsType(t, &VarDecl{}, prog.Body[2])
	assert.IsType(t, &ExprStmt{}, prog.Body[3])
	assert.IsType(t, &FuncDecl{}, prog.Body[4])
}

func TestParseArrows(t *testing.T) {
	prog, _, err := Parse("test.js", []byte("f(x => x, async (a, ...b) => {}, (c) => ({}))"))
	require.NoError(t, err)

	call := prog.Body[0].(*ExprStmt).X.(*Call)
	require.Len(t, call.Args, 3)

	first := call.Args[0].(*Arrow)
	assert.False(t, first.Async)
	require.Len(t, first.Params, 1)
	assert.Equal(t, "x", first.Params[0].Name.Name)

	second := call.Args[1].(*Arrow)
	assert.True(t, second.Async)
	require.Len(t, second.Params, 2)
	assert.True(t, second.Params[1].Rest)
	assert.IsType(t, &Block{}, second.Body)

	third := call.Args[2].(*Arrow)
	assert.IsType(t, &Paren{}, third.Body)
}

func TestParsePrecedence(t *testing.T) {
	prog, _, err := Parse("test.js", []byte("a || b && c + d * e"))
	require.NoError(t, err)

	or := prog.Body[0].(*ExprStmt).X.(*Binary)
	assert.Equal(t, "||", or.Op)
	and := or.Right.(*Binary)
	assert.Equal(t, "&&", and.Op)
	plus := and.Right.(*Binary)
	assert.Equal(t, "+", plus.Op)
	times := plus.Right.(*Binary)
	assert.Equal(t, "*", times.Op)
}

func TestOutline(t *testing.T) {
	prog, _, err := Parse("test.js", []byte("let x = a + 1"))
	require.NoError(t, err)
	assert.Equal(t, `program 0..13
  var_decl 0..13 let
    ident 4..5 x
    binary 8..13 +
      ident 8..9 a
      number_lit 12..13 1
`, Outline(prog))
}

func TestSyntaxErrors(t *testing.T) {
	for _, tt := range []struct {
		src     string
		message string
	}{
		{"let a = 1 let b = 2", `test.js:1:11: expected ";", found "let"`},
		{"let s = 'abc", "test.js:1:9: unterminated string"},
		{"x = @", "test.js:1:5: unexpected character '@'"},
		{"f(,)", "test.js:1:3: holes are not supported"},
		{"1 = 2", "test.js:1:3: invalid assignment target"},
		{"let f = x\n=> 1", "test.js:2:1: line break before =>"},
		{"/* open", "test.js:1:1: unterminated block comment"},
		{"let t = `a ${b}", "test.js:1:9: unterminated template literal"},
		{"if (a) b()", `test.js:1:8: expected a block, found "b"`},
	} {
		t.Run(tt.src, func(t *testing.T) {
			_, _, err := Parse("test.js", []byte(tt.src))
			var syntax *SyntaxError
			require.True(t, errors.As(err, &syntax), "%v", err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestExcerpt(t *testing.T) {
	_, _, err := Parse("test.js", []byte("let a = 1 let b = 2"))
	var syntax *SyntaxError
	require.True(t, errors.As(err, &syntax))

	assert.Equal(t, "Error: expected \";\", found \"let\"\n"+
		"  --> test.js:1:11\n"+
		"     |\n"+
		"   1 | let a = 1 let b = 2\n"+
		strings.Repeat(" ", 17)+"^^^\n"+
		"     |\n", syntax.Excerpt())

	highlighted := syntax.FormatWithHighlighting()
	assert.Contains(t, highlighted, "\033[31m")
	assert.Contains(t, highlighted, "let a = 1 let b = 2")
}

func TestExcerptContext(t *testing.T) {
	src := "one()\ntwo()\nthree(\nfour()\nfive()\nsix()"
	_, _, err := Parse("ctx.js", []byte(src))
	var syntax *SyntaxError
	require.True(t, errors.As(err, &syntax))

	excerpt := syntax.Excerpt()
	assert.Contains(t, excerpt, "--> ctx.js:5:1")
	assert.NotContains(t, excerpt, "two()")
	assert.Contains(t, excerpt, "   3 | three(")
	assert.Contains(t, excerpt, "   5 | five()")
	assert.Contains(t, excerpt, "   6 | six()")
}

func TestMaxDepth(t *testing.T) {
	src := strings.Repeat("(", 2*MaxDepth) + "x" + strings.Repeat(")", 2*MaxDepth)
	_, _, err := Parse("deep.js", []byte(src))
	var syntax *SyntaxError
	require.True(t, errors.As(err, &syntax))
	assert.Contains(t, syntax.Message, "maximum depth")

	src = strings.Repeat("[", 2*MaxDepth) + strings.Repeat("]", 2*MaxDepth)
	_, _, err = Parse("deep.js", []byte(src))
	require.ErrorAs(t, err, &syntax)
}

func TestLongRightNestedChains(t *testing.T) {
	const links = 5000
	for _, src := range []string{
		strings.Repeat("a ? b : ", links) + "c",
		strings.Repeat("a = ", links) + "b",
	} {
		prog, _, err := Parse("chain.js", []byte(src))
		require.NoError(t, err)
		require.Len(t, prog.Body, 1)
	}
}

func TestCommentsInSourceOrder(t *testing.T) {
	_, comments, err := Parse("test.js", []byte("/* a */ x // b\n// c\ny /* d */"))
	require.NoError(t, err)
	var texts []string
	for _, c := range comments {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"/* a */", "// b", "// c", "/* d */"}, texts)
}
