package doc

import "strings"

// List concatenates docs, dropping trivially empty ones.
func List(docs ...Doc) Doc {
	out := make(Concat, 0, len(docs))
	for _, d := range docs {
		if IsEmpty(d) {
			continue
		}
		out = append(out, d)
	}
	switch len(out) {
	case 0:
		return Empty
	case 1:
		return out[0]
	default:
		return out
	}
}

// Join places sep between each of docs.
func Join(sep Doc, docs ...Doc) Doc {
	switch len(docs) {
	case 0:
		return Empty
	case 1:
		return docs[0]
	}
	out := make(Concat, 0, len(docs)*2-1)
	for i, d := range docs {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, d)
	}
	return out
}

// Wrap groups body between open and close, indenting the body when the group
// breaks. line separates the delimiters from the body.
func Wrap(open, body, close, line Doc) Doc {
	return Group{
		Doc: Concat{
			open,
			Indent{Doc: Concat{line, body}},
			line,
			close,
		},
	}
}

// Lines splits multi-line text into Text segments joined by LiteralLine, so
// that pre-formatted content keeps its own indentation. The segments keep
// every byte of text, including the \r of CRLF line endings.
func Lines(text string) Doc {
	if !strings.Contains(text, "\n") {
		return Text(text)
	}
	segments := strings.Split(text, "\n")
	out := make(Concat, 0, len(segments)*2-1)
	for i, seg := range segments {
		if i > 0 {
			out = append(out, LiteralLine)
		}
		if seg != "" {
			out = append(out, Text(seg))
		}
	}
	return out
}
