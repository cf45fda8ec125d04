package js

import (
	"fmt"

	"github.com/vito/shape/pkg/format"
)

// TokenKind classifies a token.
type TokenKind int

const (
	EOF TokenKind = iota
	Name
	Number
	String
	Template
	Punct
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Name:
		return "name"
	case Number:
		return "number"
	case String:
		return "string"
	case Template:
		return "template literal"
	case Punct:
		return "punctuation"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexical token. Comments and whitespace are not tokens.
type Token struct {
	Kind TokenKind
	Text string
	Span format.Span
	// NewlineBefore is set when a line break separates the token from the
	// previous one.
	NewlineBefore bool
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%q", t.Text)
}

func (t Token) is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

var keywords = map[string]bool{
	"const":    true,
	"else":     true,
	"function": true,
	"if":       true,
	"let":      true,
	"return":   true,
	"typeof":   true,
	"var":      true,
}

// punctuators in order of decreasing length, so the first match is the
// longest.
var punctuators = []string{
	"===", "!==", "...",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "+=", "-=", "*=", "/=",
	"(", ")", "[", "]", "{", "}", ",", ";", ":", ".", "?",
	"=", "<", ">", "+", "-", "*", "/", "%", "!",
}
