package js

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/vito/shape/pkg/format"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type FormatSuite struct{}

func TestFormat(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatSuite{})
}

type formatCase struct {
	name     string
	input    string
	expected string
}

// runCases formats each input and checks that formatting the result again
// changes nothing.
func runCases(ctx context.Context, t *testctx.T, opts format.Options, tests []formatCase) {
	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			out, err := Format("test.js", []byte(tt.input), opts)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)

			again, err := Format("test.js", []byte(out), opts)
			require.NoError(t, err)
			require.Equal(t, out, again, "formatting is not idempotent")
		})
	}
}

func (FormatSuite) TestStatements(ctx context.Context, t *testctx.T) {
	runCases(ctx, t, format.DefaultOptions(), []formatCase{
		{
			name:     "declaration gets spacing and a semicolon",
			input:    "let x=1",
			expected: "let x = 1;\n",
		},
		{
			name:     "operators are spaced",
			input:    "const   a = b+c*d",
			expected: "const a = b + c * d;\n",
		},
		{
			name:     "statements on one line are split",
			input:    "let n = - -x; let m = !y; let k = typeof z",
			expected: "let n = - -x;\nlet m = !y;\nlet k = typeof z;\n",
		},
		{
			name:     "blank lines collapse to one",
			input:    "a()\n\n\n\nb()",
			expected: "a();\n\nb();\n",
		},
		{
			name:     "if else chain",
			input:    "if (a) { b() } else if (c) { d() } else { e() }",
			expected: "if (a) {\n  b();\n} else if (c) {\n  d();\n} else {\n  e();\n}\n",
		},
		{
			name:     "bare return",
			input:    "function f() { return }",
			expected: "function f() {\n  return;\n}\n",
		},
		{
			name:     "async function",
			input:    "async function load(url, retries = 3) { return await(url) }",
			expected: "async function load(url, retries = 3) {\n  return await(url);\n}\n",
		},
		{
			name:     "assignment operators",
			input:    "x+=1\nobj.count = obj.count + 1",
			expected: "x += 1;\nobj.count = obj.count + 1;\n",
		},
		{
			name:     "parentheses are kept",
			input:    "let z = (a + b) * c",
			expected: "let z = (a + b) * c;\n",
		},
		{
			name:     "index expressions",
			input:    "a[0][i+1]",
			expected: "a[0][i + 1];\n",
		},
		{
			name:     "string quotes are left alone",
			input:    `let s = 'single'; let d = "double"`,
			expected: "let s = 'single';\nlet d = \"double\";\n",
		},
		{
			name:     "empty file",
			input:    "\n\n",
			expected: "",
		},
	})
}

func (FormatSuite) TestLists(ctx context.Context, t *testctx.T) {
	runCases(ctx, t, format.DefaultOptions(), []formatCase{
		{
			name:     "call that fits stays flat",
			input:    "foo(a,b,  c)",
			expected: "foo(a, b, c);\n",
		},
		{
			name:  "call that does not fit puts each argument on its own line",
			input: "someFunction(argumentNumberOne, argumentNumberTwo, argumentNumberThree, argumentNumberFour)",
			expected: `someFunction(
  argumentNumberOne,
  argumentNumberTwo,
  argumentNumberThree,
  argumentNumberFour,
);
`,
		},
		{
			name:  "rest parameter takes no trailing comma",
			input: "function withRest(firstParameterName, secondParameterName, ...remainingParameters) {}",
			expected: `function withRest(
  firstParameterName,
  secondParameterName,
  ...remainingParameters
) {}
`,
		},
		{
			name:     "empty literals",
			input:    "f({}, [])",
			expected: "f({}, []);\n",
		},
		{
			name:     "object on one line gets inner spaces",
			input:    "let o = {a:1,...rest}",
			expected: "let o = { a: 1, ...rest };\n",
		},
		{
			name:     "object with a line break after the brace stays broken",
			input:    "let o = {\n a: 1, b}",
			expected: "let o = {\n  a: 1,\n  b,\n};\n",
		},
		{
			name:  "short literals fill lines",
			input: "const primes = [2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97]",
			expected: `const primes = [
  2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
  73, 79, 83, 89, 97,
];
`,
		},
		{
			name:     "sole function argument hugs the parentheses",
			input:    "items.forEach((item) => { console.log(item) })",
			expected: "items.forEach((item) => {\n  console.log(item);\n});\n",
		},
	})
}

func (FormatSuite) TestExpressions(ctx context.Context, t *testctx.T) {
	runCases(ctx, t, format.DefaultOptions(), []formatCase{
		{
			name:     "arrow parameters are parenthesized",
			input:    "const f = x => x * 2",
			expected: "const f = (x) => x * 2;\n",
		},
		{
			name:     "async arrow with a block body",
			input:    "const g = async (a, b) => { return a }",
			expected: "const g = async (a, b) => {\n  return a;\n};\n",
		},
		{
			name:     "short member chain stays flat",
			input:    "a.b().c().d()",
			expected: "a.b().c().d();\n",
		},
		{
			name:  "long member chain breaks before each call",
			input: "promise.then(handleResult).then(processTheNextThing).catch(reportTheFailure).finally(cleanUp)",
			expected: `promise
  .then(handleResult)
  .then(processTheNextThing)
  .catch(reportTheFailure)
  .finally(cleanUp);
`,
		},
		{
			name:  "initializer moves to the next line",
			input: "const total = firstValue + secondValue + thirdValue + fourthValue + fifthValue + sixthValue",
			expected: `const total =
  firstValue + secondValue + thirdValue + fourthValue + fifthValue + sixthValue;
`,
		},
		{
			name:  "conditional that fits on the next line",
			input: "const message = isEnabled ? computeTheEnabledMessage(user) : computeTheDisabledMessage(user)",
			expected: `const message =
  isEnabled ? computeTheEnabledMessage(user) : computeTheDisabledMessage(user);
`,
		},
		{
			name:  "conditional that does not fit breaks before each branch",
			input: "const message = isEnabled ? computeTheEnabledMessageForUser(user) : computeTheDisabledMessageForUser(user)",
			expected: `const message =
  isEnabled
    ? computeTheEnabledMessageForUser(user)
    : computeTheDisabledMessageForUser(user);
`,
		},
		{
			name:  "operator chain breaks after each operator",
			input: "if (someCondition && anotherCondition && yetAnotherCondition && theFinalConditionHere) {}",
			expected: `if (someCondition &&
  anotherCondition &&
  yetAnotherCondition &&
  theFinalConditionHere) {}
`,
		},
		{
			name:     "template literal keeps its lines",
			input:    "function f() {\n    return `a\n  b ${c}`\n}",
			expected: "function f() {\n  return `a\n  b ${c}`;\n}\n",
		},
	})
}

func (FormatSuite) TestOptions(ctx context.Context, t *testctx.T) {
	t.Run("tabs", func(ctx context.Context, t *testctx.T) {
		opts := format.DefaultOptions()
		opts.IndentStyle = format.IndentTabs
		runCases(ctx, t, opts, []formatCase{{
			name:     "block",
			input:    "function f() { return 1 }",
			expected: "function f() {\n\treturn 1;\n}\n",
		}})
	})

	t.Run("no trailing commas", func(ctx context.Context, t *testctx.T) {
		opts := format.DefaultOptions()
		opts.TrailingCommas = false
		runCases(ctx, t, opts, []formatCase{{
			name:  "broken call",
			input: "someFunction(argumentNumberOne, argumentNumberTwo, argumentNumberThree, argumentNumberFour)",
			expected: `someFunction(
  argumentNumberOne,
  argumentNumberTwo,
  argumentNumberThree,
  argumentNumberFour
);
`,
		}})
	})

	t.Run("narrow", func(ctx context.Context, t *testctx.T) {
		opts := format.DefaultOptions()
		opts.LineWidth = 10
		opts.IndentWidth = 4
		runCases(ctx, t, opts, []formatCase{{
			name:     "broken call",
			input:    "call(first, second)",
			expected: "call(\n    first,\n    second,\n);\n",
		}})
	})

	t.Run("invalid", func(ctx context.Context, t *testctx.T) {
		_, err := Format("test.js", []byte("x"), format.Options{LineWidth: -1})
		require.Error(t, err)
	})
}

func (FormatSuite) TestComments(ctx context.Context, t *testctx.T) {
	runCases(ctx, t, format.DefaultOptions(), []formatCase{
		{
			name:     "comment only file",
			input:    "// just a note",
			expected: "// just a note\n",
		},
		{
			name:     "dangling comment in an empty object",
			input:    "let o = { /* none */ }",
			expected: "let o = { /* none */ };\n",
		},
		{
			name:     "dangling line comment in an empty array",
			input:    "let a = [ // none\n]",
			expected: "let a = [\n  // none\n];\n",
		},
		{
			name:     "trailing comment stays after the comma",
			input:    "call(a, // first\n  b)",
			expected: "call(\n  a, // first\n  b,\n);\n",
		},
		{
			name:     "comment at the end of a block",
			input:    "if (x) {\n  y()\n  // done\n}",
			expected: "if (x) {\n  y();\n  // done\n}\n",
		},
		{
			name:     "comment with a blank line after it",
			input:    "// header\n\nlet x = 1",
			expected: "// header\n\nlet x = 1;\n",
		},
		{
			name:     "comment inside an operator chain",
			input:    "let total = a + // first\n  b + c",
			expected: "let total =\n  a + // first\n    b +\n    c;\n",
		},
		{
			name:     "ignored statement keeps its layout",
			input:    "// shape-ignore\nconst matrix = [1,0,\n                0,1]\nlet y=2",
			expected: "// shape-ignore\nconst matrix = [1,0,\n                0,1]\nlet y = 2;\n",
		},
		{
			name:     "own line comment before the conditional operator",
			input:    "let m = a\n// c\n? b\n: d",
			expected: "let m =\n  a\n  // c\n    ? b\n    : d;\n",
		},
		{
			name:     "own line comment before a member dot",
			input:    "a\n// c\n.b()",
			expected: "a.b();\n// c\n",
		},
		{
			name:     "own line comment after a member dot",
			input:    "a.\n// c\nb()",
			expected: "a.b();\n// c\n",
		},
		{
			name:     "own line comment before else",
			input:    "if (a) {\n}\n// c\nelse {\n}",
			expected: "if (a) {} else {}\n// c\n",
		},
		{
			name:     "own line comment before a property colon",
			input:    "let o = {\n  a\n  // c\n  : 1\n}",
			expected: "let o = {\n  a: 1,\n  // c\n};\n",
		},
		{
			name:     "own line comment after an assignment operator",
			input:    "let x =\n// c\n1",
			expected: "let x = 1;\n// c\n",
		},
		{
			name:     "comment inside empty call parens",
			input:    "f(/* c */)",
			expected: "f(/* c */);\n",
		},
		{
			name:     "several comments inside empty call parens",
			input:    "return_value(/* a */ /* b */)",
			expected: "return_value(\n  /* a */\n  /* b */\n);\n",
		},
		{
			name:     "comment inside empty function params",
			input:    "function f(/* c */) {}",
			expected: "function f(/* c */) {}\n",
		},
		{
			name:     "comment inside empty arrow params",
			input:    "let g = (/* c */) => 1",
			expected: "let g = (/* c */) => 1;\n",
		},
	})
}

func (FormatSuite) TestGolden(ctx context.Context, t *testctx.T) {
	for _, name := range []string{"comments", "program"} {
		t.Run(name, func(ctx context.Context, t *testctx.T) {
			src, err := os.ReadFile("testdata/" + name + ".js")
			require.NoError(t, err)

			out, err := Format(name+".js", src, format.DefaultOptions())
			require.NoError(t, err)
			golden.Assert(t, out, name+".golden")

			again, err := Format(name+".js", []byte(out), format.DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, out, again)
		})
	}
}

func (FormatSuite) TestEveryCommentPrintedOnce(ctx context.Context, t *testctx.T) {
	src := `// a
let x = [1, /* b */ 2] // c
function f(/* d */ p) {
  // e
  return p /* f */
}
const o = {
  k: v, // g
  // h
}
`
	out, err := Format("test.js", []byte(src), format.DefaultOptions())
	require.NoError(t, err)
	for _, c := range []string{"// a", "/* b */", "// c", "/* d */", "// e", "/* f */", "// g", "// h"} {
		assert.Equal(t, 1, strings.Count(out, c), "%s in:\n%s", c, out)
	}
}

func (FormatSuite) TestDeepOperatorChain(ctx context.Context, t *testctx.T) {
	const terms = 100000
	src := strings.Repeat("a + ", terms-1) + "a"

	out, err := Format("deep.js", []byte(src), format.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "a +\n"+strings.Repeat("  a +\n", terms-2)+"  a;\n", out)
}

func (FormatSuite) TestNestedParens(ctx context.Context, t *testctx.T) {
	src := strings.Repeat("(", 500) + "x" + strings.Repeat(")", 500)
	out, err := Format("nested.js", []byte(src), format.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, src+";\n", out)
}

func (FormatSuite) TestStructuralDefect(ctx context.Context, t *testctx.T) {
	prog := &Program{Body: []Stmt{&ExprStmt{}}}
	_, err := format.Run(prog, nil, nil, format.DefaultOptions())

	var structural *format.StructuralError
	require.ErrorAs(t, err, &structural)
	require.Equal(t, "ExprStmt", structural.Parent)
	require.Equal(t, "expression", structural.Child)
}

func (FormatSuite) TestDocument(ctx context.Context, t *testctx.T) {
	d, err := Document("test.js", []byte("f(a)"), format.DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, d)

	_, err = Document("test.js", []byte("f("), format.DefaultOptions())
	var syntax *SyntaxError
	require.ErrorAs(t, err, &syntax)
}
