package dagview

import (
	"github.com/msto63/paramval/pkg/engine"
)

// Message types for tea.Cmd async operations

// evaluatedMsg carries the results of evaluating the roots and the
// selected node at the entered point
type evaluatedMsg struct {
	point    string
	roots    []*engine.Result
	selected *engine.Result
	err      error
}
