package doc

import "fmt"

// GroupID identifies a Group so that GroupBreakIf can refer to its printed
// mode. The zero value means "no id".
type GroupID struct {
	n    uint32
	name string
}

// IsZero reports whether id is unset.
func (id GroupID) IsZero() bool {
	return id.n == 0
}

// Name returns the debugging name given at allocation.
func (id GroupID) Name() string {
	return id.name
}

func (id GroupID) String() string {
	if id.IsZero() {
		return "#none"
	}
	if id.name == "" {
		return fmt.Sprintf("#%d", id.n)
	}
	return fmt.Sprintf("#%d(%s)", id.n, id.name)
}

// IDs allocates group ids. Each format invocation owns one; ids from
// different allocators must not be mixed in one document.
type IDs struct {
	next uint32
}

// New allocates a fresh id. The name only shows up in dumps and errors.
func (a *IDs) New(name string) GroupID {
	a.next++
	return GroupID{n: a.next, name: name}
}
