package format

import (
	"fmt"
	"strings"
)

// StructuralError means a rule found a child missing that the grammar
// guarantees. It indicates a parser bug, not a problem with the input.
type StructuralError struct {
	Parent string
	Child  string
	Span   Span
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s at %s: missing required %s", e.Parent, e.Span, e.Child)
}

// UnconsumedCommentError reports a comment that no rule printed.
type UnconsumedCommentError struct {
	Comment Comment
}

func (e *UnconsumedCommentError) Error() string {
	return fmt.Sprintf("comment at %s was never printed: %q", e.Comment.Span, e.Comment.Text)
}

// DuplicateCommentError reports a comment printed more than once.
type DuplicateCommentError struct {
	Comment Comment
}

func (e *DuplicateCommentError) Error() string {
	return fmt.Sprintf("comment at %s was printed more than once: %q", e.Comment.Span, e.Comment.Text)
}

// DefectError collects every defect found during one format invocation.
type DefectError struct {
	Defects []error
}

func (e *DefectError) Error() string {
	if len(e.Defects) == 1 {
		return "formatting defect: " + e.Defects[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d formatting defects:", len(e.Defects))
	for _, d := range e.Defects {
		b.WriteString("\n  ")
		b.WriteString(d.Error())
	}
	return b.String()
}

func (e *DefectError) Unwrap() []error {
	return e.Defects
}
