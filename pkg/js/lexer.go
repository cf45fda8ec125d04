package js

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vito/shape/pkg/format"
)

type lexer struct {
	src []byte
	pos int

	tokens   []Token
	comments []format.Comment
	newline  bool
}

// lex splits src into tokens, ending with an EOF token, and collects its
// comments.
func lex(src []byte) ([]Token, []format.Comment, error) {
	l := &lexer{src: src}
	for {
		if err := l.skip(); err != nil {
			return nil, nil, err
		}
		if l.pos >= len(l.src) {
			l.emit(EOF, l.pos)
			return l.tokens, l.comments, nil
		}
		if err := l.token(); err != nil {
			return nil, nil, err
		}
	}
}

func (l *lexer) emit(kind TokenKind, start int) {
	l.tokens = append(l.tokens, Token{
		Kind:          kind,
		Text:          string(l.src[start:l.pos]),
		Span:          format.Span{Start: start, End: l.pos},
		NewlineBefore: l.newline,
	})
	l.newline = false
}

func (l *lexer) errorf(pos int, msg string, args ...any) error {
	return &SyntaxError{
		Offset:  pos,
		Length:  1,
		Message: fmt.Sprintf(msg, args...),
	}
}

// skip consumes whitespace and comments.
func (l *lexer) skip() error {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == '\n':
			l.newline = true
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case l.hasPrefix("//"):
			start := l.pos
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			l.comment(start, format.LineComment)
		case l.hasPrefix("/*"):
			start := l.pos
			end := strings.Index(string(l.src[start+2:]), "*/")
			if end < 0 {
				return l.errorf(start, "unterminated block comment")
			}
			l.pos = start + 2 + end + 2
			if strings.Contains(string(l.src[start:l.pos]), "\n") {
				l.newline = true
			}
			l.comment(start, format.BlockComment)
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) comment(start int, kind format.CommentKind) {
	end := l.pos
	if kind == format.LineComment {
		for end > start && (l.src[end-1] == '\r' || l.src[end-1] == ' ' || l.src[end-1] == '\t') {
			end--
		}
	}
	l.comments = append(l.comments, format.NewComment(l.src, format.Span{Start: start, End: end}, kind))
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(string(l.src[l.pos:min(len(l.src), l.pos+len(s))]), s)
}

func (l *lexer) token() error {
	start := l.pos
	c := l.src[l.pos]
	switch {
	case isIdentStart(l.peekRune()):
		for l.pos < len(l.src) && isIdentPart(l.peekRune()) {
			_, size := utf8.DecodeRune(l.src[l.pos:])
			l.pos += size
		}
		l.emit(Name, start)
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		l.number()
		l.emit(Number, start)
	case c == '"' || c == '\'':
		if err := l.str(c); err != nil {
			return err
		}
		l.emit(String, start)
	case c == '`':
		if err := l.template(0); err != nil {
			return err
		}
		l.emit(Template, start)
	default:
		for _, p := range punctuators {
			if l.hasPrefix(p) {
				l.pos += len(p)
				l.emit(Punct, start)
				return nil
			}
		}
		r := l.peekRune()
		return l.errorf(start, "unexpected character %q", r)
	}
	return nil
}

func (l *lexer) peekRune() rune {
	r, _ := utf8.DecodeRune(l.src[l.pos:])
	return r
}

func (l *lexer) number() {
	hex := l.hasPrefix("0x") || l.hasPrefix("0X")
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c) || c == '.' || c == '_' || isLetter(c):
			l.pos++
			if !hex && (c == 'e' || c == 'E') && l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) str(quote byte) error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case '\n':
			return l.errorf(start, "unterminated string")
		case quote:
			l.pos++
			return nil
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated string")
}

// template consumes a template literal, skipping over the expressions in
// its substitutions.
func (l *lexer) template(depth int) error {
	if depth > MaxDepth {
		return l.errorf(l.pos, "template literals nested too deeply")
	}
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '\\':
			l.pos += 2
		case l.src[l.pos] == '`':
			l.pos++
			return nil
		case l.hasPrefix("${"):
			l.pos += 2
			if err := l.substitution(depth); err != nil {
				return err
			}
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated template literal")
}

func (l *lexer) substitution(depth int) error {
	start := l.pos
	braces := 1
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; c {
		case '{':
			braces++
			l.pos++
		case '}':
			braces--
			l.pos++
			if braces == 0 {
				return nil
			}
		case '"', '\'':
			if err := l.str(c); err != nil {
				return err
			}
		case '`':
			if err := l.template(depth + 1); err != nil {
				return err
			}
		default:
			l.pos++
		}
	}
	return l.errorf(start, "unterminated template substitution")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
