package chain

// Journal records undo actions for every state write made inside an atomic
// unit. Reverting to a mark replays the undo actions in reverse order, which
// restores every tracked field, map entry and slice to its value at the mark.
type Journal struct {
	entries []func()
}

// Append registers an undo action for a write that has already happened.
func (j *Journal) Append(undo func()) {
	j.entries = append(j.entries, undo)
}

// Mark returns the current position of the journal.
func (j *Journal) Mark() int {
	return len(j.entries)
}

// RevertTo undoes every write recorded after mark.
func (j *Journal) RevertTo(mark int) {
	for i := len(j.entries) - 1; i >= mark; i-- {
		j.entries[i]()
		j.entries[i] = nil
	}
	j.entries = j.entries[:mark]
}

// Len returns the number of recorded undo actions.
func (j *Journal) Len() int {
	return len(j.entries)
}

func (j *Journal) reset() {
	clear(j.entries)
	j.entries = j.entries[:0]
}

// Set assigns v to *p and records the previous value.
func Set[T any](j *Journal, p *T, v T) {
	old := *p
	*p = v
	j.Append(func() { *p = old })
}

// SetMap assigns m[k] = v and records whether k existed before.
func SetMap[K comparable, V any](j *Journal, m map[K]V, k K, v V) {
	old, existed := m[k]
	m[k] = v
	j.Append(func() {
		if existed {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

// DeleteMap removes k from m and records the removed value.
func DeleteMap[K comparable, V any](j *Journal, m map[K]V, k K) {
	old, existed := m[k]
	if !existed {
		return
	}
	delete(m, k)
	j.Append(func() { m[k] = old })
}

// Push appends v to *s and records the previous length.
func Push[T any](j *Journal, s *[]T, v T) {
	n := len(*s)
	*s = append(*s, v)
	j.Append(func() {
		var zero T
		(*s)[n] = zero
		*s = (*s)[:n]
	})
}
