package core

// journal collects undo steps for an operation that mutates state in several places.
// revert applies them newest first; commit forgets them.
type journal struct {
	undo []func()
}

func (j *journal) append(fn func()) {
	if fn != nil {
		j.undo = append(j.undo, fn)
	}
}

func (j *journal) revert() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

func (j *journal) commit() {
	j.undo = nil
}
