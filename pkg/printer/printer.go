// Package printer lays out a doc.Doc within a line width.
//
// The printer walks the document once with an explicit command stack, so the
// depth of the document never grows the Go stack. Each Group is decided the
// first time it is reached: if its content fits flat in what is left of the
// current line it prints flat, otherwise it breaks. The decision is recorded
// against the group's id before the content is printed, which is what
// GroupBreakIf reads.
package printer

import (
	"errors"
	"strings"

	"github.com/vito/shape/pkg/doc"
)

// DefaultWidth is used when Options.Width is not positive.
const DefaultWidth = 80

// Options controls layout.
type Options struct {
	// Width is the maximum line width in columns.
	Width int
	// IndentWidth is the number of columns per indentation level. When
	// UseTabs is set it is the display width of one tab.
	IndentWidth int
	// UseTabs indents with one tab per level instead of spaces.
	UseTabs bool
}

type mode int

const (
	modeBreak mode = iota
	modeFlat
)

func (m mode) String() string {
	if m == modeFlat {
		return "flat"
	}
	return "break"
}

type command struct {
	indent int
	mode   mode
	doc    doc.Doc

	// fill is set when the command resumes a Fill at index at.
	fill doc.Fill
	at   int
}

type printer struct {
	opts Options

	out []byte
	col int
	// trim counts the bytes at the end of out written by Space or
	// indentation; they are dropped when the line ends.
	trim      int
	lineStart bool

	stack  []command
	suffix []command
	modes  map[doc.GroupID]mode
	errs   []error

	fitsFrames [][]doc.Doc
}

// Print renders d. The returned text is complete even when an error is
// returned; errors report defects in the document itself, such as a
// GroupBreakIf that refers to a group which was never printed.
func Print(d doc.Doc, opts Options) (string, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.IndentWidth < 0 {
		opts.IndentWidth = 0
	}
	p := &printer{
		opts:      opts,
		modes:     map[doc.GroupID]mode{},
		lineStart: true,
	}
	p.run(command{mode: modeBreak, doc: d})
	p.out = p.out[:len(p.out)-p.trim]
	return string(p.out), errors.Join(p.errs...)
}

func (p *printer) push(cmd command) {
	p.stack = append(p.stack, cmd)
}

func (p *printer) pushAll(indent int, m mode, parts []doc.Doc) {
	for i := len(parts) - 1; i >= 0; i-- {
		p.push(command{indent: indent, mode: m, doc: parts[i]})
	}
}

func (p *printer) run(root command) {
	p.push(root)
	for {
		for len(p.stack) > 0 {
			cmd := p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.step(cmd)
		}
		if len(p.suffix) == 0 {
			return
		}
		p.flushSuffix()
	}
}

func (p *printer) flushSuffix() {
	for i := len(p.suffix) - 1; i >= 0; i-- {
		p.push(p.suffix[i])
	}
	p.suffix = p.suffix[:0]
}

func (p *printer) step(cmd command) {
	if cmd.fill != nil {
		p.stepFill(cmd)
		return
	}

	switch d := cmd.doc.(type) {
	case nil:
	case doc.Text:
		p.text(string(d))
	case doc.Line:
		if cmd.mode == modeFlat && !d.Hard() {
			if d.Kind == doc.LineSoft {
				p.space()
			}
			return
		}
		if len(p.suffix) > 0 {
			// Deferred content goes before the newline.
			p.push(cmd)
			p.flushSuffix()
			return
		}
		if d.Kind == doc.LineLiteral {
			p.newline(-1)
		} else {
			p.newline(cmd.indent)
		}
	case doc.Concat:
		p.pushAll(cmd.indent, cmd.mode, d)
	case doc.Indent:
		p.push(command{indent: cmd.indent + 1, mode: cmd.mode, doc: d.Doc})
	case doc.Group:
		m := modeFlat
		if cmd.mode == modeBreak && !p.fits(d.Doc, p.opts.Width-p.col) {
			m = modeBreak
		}
		if !d.ID.IsZero() {
			p.modes[d.ID] = m
		}
		p.push(command{indent: cmd.indent, mode: m, doc: d.Doc})
	case doc.Fill:
		if cmd.mode == modeFlat {
			p.pushAll(cmd.indent, modeFlat, d)
			return
		}
		if len(d) > 0 {
			p.push(command{indent: cmd.indent, mode: modeBreak, fill: d})
		}
	case doc.GroupBreakIf:
		m, ok := p.modes[d.ID]
		if !ok {
			p.errs = append(p.errs, &DanglingGroupError{ID: d.ID})
			return
		}
		if m == modeBreak {
			p.push(command{indent: cmd.indent, mode: cmd.mode, doc: d.Doc})
		}
	case doc.LineSuffix:
		p.suffix = append(p.suffix, command{indent: cmd.indent, mode: cmd.mode, doc: d.Doc})
	default:
		switch cmd.doc {
		case doc.Space:
			p.space()
		case doc.Empty, doc.BreakParent:
		}
	}
}

// stepFill prints one item of a broken Fill. Content items print flat when
// they fit. A separator prints flat when it and the following content fit on
// the rest of the line.
func (p *printer) stepFill(cmd command) {
	parts, i := cmd.fill, cmd.at
	item := parts[i]

	if i%2 == 0 {
		if i+1 < len(parts) {
			p.push(command{indent: cmd.indent, mode: modeBreak, fill: parts, at: i + 1})
		}
		m := modeBreak
		if p.fits(item, p.opts.Width-p.col) {
			m = modeFlat
		}
		p.push(command{indent: cmd.indent, mode: m, doc: item})
		return
	}

	if i+1 >= len(parts) {
		// A trailing separator with nothing after it.
		p.push(command{indent: cmd.indent, mode: modeFlat, doc: item})
		return
	}
	p.push(command{indent: cmd.indent, mode: modeBreak, fill: parts, at: i + 1})
	m := modeBreak
	// A pending line suffix has to end the line before the next item.
	if len(p.suffix) == 0 && p.fits(doc.Concat{item, parts[i+1]}, p.opts.Width-p.col) {
		m = modeFlat
	}
	p.push(command{indent: cmd.indent, mode: m, doc: item})
}

// fits reports whether d, printed flat, takes at most rem columns. Any hard
// break inside d means it cannot be printed flat.
func (p *printer) fits(d doc.Doc, rem int) bool {
	if rem < 0 {
		return false
	}
	frames := append(p.fitsFrames[:0], []doc.Doc{d})
	defer func() {
		p.fitsFrames = frames[:0]
	}()

	for len(frames) > 0 {
		top := len(frames) - 1
		if len(frames[top]) == 0 {
			frames = frames[:top]
			continue
		}
		cur := frames[top][0]
		frames[top] = frames[top][1:]

		switch x := cur.(type) {
		case nil:
		case doc.Text:
			if strings.Contains(string(x), "\n") {
				return false
			}
			rem -= Width(string(x))
		case doc.Line:
			switch x.Kind {
			case doc.LineSoft:
				rem--
			case doc.LineSoftBreak:
			default:
				return false
			}
		case doc.Concat:
			frames = append(frames, x)
		case doc.Fill:
			frames = append(frames, x)
		case doc.Indent:
			frames = append(frames, []doc.Doc{x.Doc})
		case doc.Group:
			frames = append(frames, []doc.Doc{x.Doc})
		case doc.GroupBreakIf:
			if m, ok := p.modes[x.ID]; ok && m == modeBreak {
				frames = append(frames, []doc.Doc{x.Doc})
			}
		case doc.LineSuffix:
		default:
			switch cur {
			case doc.Space:
				rem--
			case doc.BreakParent:
				return false
			}
		}
		if rem < 0 {
			return false
		}
	}
	return true
}

func (p *printer) text(s string) {
	if s == "" {
		return
	}
	p.out = append(p.out, s...)
	p.trim = 0
	p.lineStart = false
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.col = Width(s[i+1:])
	} else {
		p.col += Width(s)
	}
}

func (p *printer) space() {
	if p.lineStart {
		return
	}
	p.out = append(p.out, ' ')
	p.trim++
	p.col++
}

// newline ends the current line and indents the next one. A negative indent
// starts the next line at column zero.
func (p *printer) newline(indent int) {
	p.out = p.out[:len(p.out)-p.trim]
	p.out = append(p.out, '\n')
	p.trim = 0
	p.col = 0
	p.lineStart = true
	if indent <= 0 {
		return
	}
	if p.opts.UseTabs {
		for range indent {
			p.out = append(p.out, '\t')
		}
		p.trim += indent
	} else {
		n := indent * p.opts.IndentWidth
		for range n {
			p.out = append(p.out, ' ')
		}
		p.trim += n
	}
	p.col = indent * p.opts.IndentWidth
}
