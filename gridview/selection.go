package gridview

// selectionModel holds the selected indexes of a grid. Every mutation runs
// inside a gesture; a gesture that touched the selection compares it with
// the snapshot taken at its start to decide whether observers are told.
type selectionModel struct {
	indexes *IndexSet

	// original is the selection when the current gesture started, touched
	// the indexes toggled since. Inverted operations compute
	// original XOR touched so that they do not depend on drag direction.
	original *IndexSet
	touched  *IndexSet

	anchor int // origin of shift ranges
	cursor int // last index reached with the keyboard or a click

	inGesture bool
	changed   bool // a mutation ran during the current gesture
}

func newSelectionModel() *selectionModel {
	return &selectionModel{
		indexes:  &IndexSet{},
		original: &IndexSet{},
		touched:  &IndexSet{},
		anchor:   -1,
		cursor:   -1,
	}
}

// beginGesture snapshots the selection. It returns false when a gesture is
// already running, in which case the caller must not end it.
func (m *selectionModel) beginGesture() bool {
	if m.inGesture {
		return false
	}
	m.inGesture = true
	m.changed = false
	m.original = m.indexes.Clone()
	m.touched = &IndexSet{}
	return true
}

// endGesture closes the gesture and reports whether the selection differs
// from the snapshot.
func (m *selectionModel) endGesture() bool {
	if !m.inGesture {
		return false
	}
	m.inGesture = false
	if !m.changed {
		return false
	}
	m.changed = false
	return !m.original.Equal(m.indexes)
}

func (m *selectionModel) contains(index int) bool {
	return m.indexes.Contains(index)
}

func (m *selectionModel) selectOnly(index, count int) {
	if index < 0 || index >= count {
		return
	}
	m.indexes = NewIndexSet(index)
	m.changed = true
	m.anchor = index
	m.cursor = index
}

func (m *selectionModel) add(index, count int) {
	if index < 0 || index >= count {
		return
	}
	if m.indexes.Add(index) {
		m.changed = true
	}
	m.cursor = index
	if m.anchor < 0 {
		m.anchor = index
	}
}

func (m *selectionModel) remove(index int) {
	if m.indexes.Remove(index) {
		m.changed = true
	}
}

func (m *selectionModel) selectAll(count int) {
	m.indexes = NewIndexSetInRange(0, count)
	m.changed = true
}

func (m *selectionModel) clear() {
	if m.indexes.Clear() {
		m.changed = true
	}
}

// set replaces the selection, dropping indexes outside [0, count).
func (m *selectionModel) set(indexes *IndexSet, count int) {
	next := &IndexSet{}
	indexes.EachRange(func(start, end int) bool {
		next.AddRange(max(start, 0), min(end, count))
		return end < count
	})
	m.indexes = next
	m.changed = true
}

// extend selects the contiguous range between the anchor and index.
func (m *selectionModel) extend(index, count int) {
	if index < 0 || index >= count {
		return
	}
	if m.anchor < 0 || m.anchor >= count {
		m.anchor = 0
	}
	start, end := min(m.anchor, index), max(m.anchor, index)
	m.indexes = NewIndexSetInRange(start, end+1)
	m.changed = true
	m.cursor = index
}

// toggle flips the membership of indexes against the gesture snapshot.
// Toggling the same indexes twice within one gesture restores the snapshot.
func (m *selectionModel) toggle(indexes *IndexSet, count int) {
	indexes.Each(func(i int) bool {
		if i < 0 || i >= count {
			return true
		}
		if !m.touched.Remove(i) {
			m.touched.Add(i)
		}
		return true
	})
	m.indexes = m.original.Xor(m.touched)
	m.changed = true
	if last := indexes.Last(); last >= 0 && last < count {
		m.anchor = last
		m.cursor = last
	}
}

// sweep applies a rubber band. A plain sweep replaces the selection with the
// swept indexes, an inverted one XORs them with the snapshot and an
// additive one adds them to it.
func (m *selectionModel) sweep(swept *IndexSet, inverted, additive bool) {
	switch {
	case inverted:
		m.touched = swept.Clone()
		m.indexes = m.original.Xor(swept)
	case additive:
		m.indexes = m.original.Union(swept)
	default:
		m.indexes = swept.Clone()
	}
	m.changed = true
}

// move shifts the keyboard cursor by delta, clamped to [0, count). A plain
// move selects only the new cursor, an extending move selects the range
// from the anchor.
func (m *selectionModel) move(delta int, extend bool, count int) int {
	if count <= 0 {
		return -1
	}
	start := m.cursor
	if start < 0 || start >= count {
		start = m.indexes.First()
	}

	target := 0
	if start >= 0 {
		target = min(max(start+delta, 0), count-1)
	}

	if !extend {
		m.selectOnly(target, count)
		return target
	}
	if m.anchor < 0 || m.anchor >= count {
		m.anchor = max(start, 0)
	}
	m.indexes = NewIndexSetInRange(min(m.anchor, target), max(m.anchor, target)+1)
	m.changed = true
	m.cursor = target
	return target
}

// purge drops indexes >= count after a reload. The gesture snapshot is
// purged too so that a reload never reads as a user change.
func (m *selectionModel) purge(count int) {
	m.indexes.RemoveFrom(count)
	m.original.RemoveFrom(count)
	m.touched.RemoveFrom(count)
	if m.anchor >= count {
		m.anchor = -1
	}
	if m.cursor >= count {
		m.cursor = -1
	}
}
