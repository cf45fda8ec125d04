package printer

import (
	"fmt"

	"github.com/vito/shape/pkg/doc"
)

// DanglingGroupError is reported when a GroupBreakIf refers to a group that
// has not been printed yet, or that does not exist in the document. It always
// points at a bug in the rule that built the document.
type DanglingGroupError struct {
	ID doc.GroupID
}

func (e *DanglingGroupError) Error() string {
	return fmt.Sprintf("group break reference to unresolved group %s", e.ID)
}
