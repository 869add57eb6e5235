package gridview

import (
	"sort"
)

// cellHandle addresses a slot in the cell arena. Handles are stable for the
// lifetime of the cache because cells are never destroyed.
type cellHandle int

type slotState int

const (
	slotFree slotState = iota
	slotVisible
	slotCheckedOut
)

type cellSlot struct {
	cell    Cell
	reuseID string
	index   int
	state   slotState
}

// cellCache owns every cell of a grid. A cell is either bound to a visible
// index or parked in the reuse pool; while the data source is producing a
// cell, the dequeued candidates are briefly checked out.
type cellCache struct {
	slots      []cellSlot
	handles    map[Cell]cellHandle
	visible    map[int]cellHandle
	free       map[string][]cellHandle
	checkedOut []cellHandle

	// counters, read by tests
	created  int
	attached int
	detached int
}

func newCellCache() *cellCache {
	return &cellCache{
		handles: make(map[Cell]cellHandle),
		visible: make(map[int]cellHandle),
		free:    make(map[string][]cellHandle),
	}
}

// dequeue pops a pooled cell with a matching reuse identifier.
func (c *cellCache) dequeue(reuseID string) Cell {
	pool := c.free[reuseID]
	if len(pool) == 0 {
		return nil
	}
	h := pool[len(pool)-1]
	c.free[reuseID] = pool[:len(pool)-1]

	slot := &c.slots[h]
	slot.state = slotCheckedOut
	c.checkedOut = append(c.checkedOut, h)

	if r, ok := slot.cell.(ReusableCell); ok {
		r.PrepareForReuse()
	}
	return slot.cell
}

// adopt finds or creates the slot for a cell handed back by the data source.
// It returns false when the cell is already bound to another index.
func (c *cellCache) adopt(cell Cell) (cellHandle, bool) {
	h, known := c.handles[cell]
	if !known {
		h = cellHandle(len(c.slots))
		c.slots = append(c.slots, cellSlot{cell: cell, reuseID: cell.ReuseIdentifier(), index: -1, state: slotCheckedOut})
		c.handles[cell] = h
		c.created++
		return h, true
	}

	slot := &c.slots[h]
	switch slot.state {
	case slotVisible:
		return h, false
	case slotFree:
		// Handed back without going through dequeue.
		c.removeFree(h)
	case slotCheckedOut:
		c.removeCheckedOut(h)
	}
	slot.state = slotCheckedOut
	return h, true
}

func (c *cellCache) removeFree(h cellHandle) {
	id := c.slots[h].reuseID
	pool := c.free[id]
	for i, candidate := range pool {
		if candidate == h {
			c.free[id] = append(pool[:i], pool[i+1:]...)
			return
		}
	}
}

func (c *cellCache) removeCheckedOut(h cellHandle) {
	for i, candidate := range c.checkedOut {
		if candidate == h {
			c.checkedOut = append(c.checkedOut[:i], c.checkedOut[i+1:]...)
			return
		}
	}
}

// returnCheckedOut puts candidates the data source dequeued but did not use
// back into the pool.
func (c *cellCache) returnCheckedOut() {
	for _, h := range c.checkedOut {
		slot := &c.slots[h]
		slot.state = slotFree
		slot.index = -1
		c.free[slot.reuseID] = append(c.free[slot.reuseID], h)
	}
	c.checkedOut = c.checkedOut[:0]
}

// bind asks produce for a cell for index and records it as visible. A nil
// cell leaves the slot empty.
func (c *cellCache) bind(index int, produce func(int) Cell) Cell {
	cell := produce(index)
	defer c.returnCheckedOut()
	if cell == nil {
		return nil
	}

	h, ok := c.adopt(cell)
	if !ok {
		return nil
	}
	slot := &c.slots[h]
	slot.state = slotVisible
	slot.index = index
	c.visible[index] = h
	c.attached++
	return cell
}

// detach moves the cell bound to index into the reuse pool.
func (c *cellCache) detach(index int, onDetach func(int, Cell)) {
	h, ok := c.visible[index]
	if !ok {
		return
	}
	delete(c.visible, index)

	slot := &c.slots[h]
	cell := slot.cell
	slot.state = slotFree
	slot.index = -1
	c.free[slot.reuseID] = append(c.free[slot.reuseID], h)
	c.detached++

	if onDetach != nil {
		onDetach(index, cell)
	}
}

// cellForIndex returns the cell bound to index. When none is bound and
// makeIfAbsent is set, a cell is produced and bound.
func (c *cellCache) cellForIndex(index int, makeIfAbsent bool, produce func(int) Cell) Cell {
	if h, ok := c.visible[index]; ok {
		return c.slots[h].cell
	}
	if !makeIfAbsent {
		return nil
	}
	return c.bind(index, produce)
}

// reconcile makes the visible set equal to [first, last]. Indexes that left
// the range are detached first so their cells can serve the new ones. It
// returns the number of indexes the data source produced no cell for.
func (c *cellCache) reconcile(first, last int, produce func(int) Cell, onDetach func(int, Cell)) int {
	var leaving []int
	for index := range c.visible {
		if index < first || index > last {
			leaving = append(leaving, index)
		}
	}
	sort.Ints(leaving)
	for _, index := range leaving {
		c.detach(index, onDetach)
	}

	missing := 0
	for index := first; index <= last; index++ {
		if _, ok := c.visible[index]; ok {
			continue
		}
		if c.bind(index, produce) == nil {
			missing++
		}
	}
	return missing
}

// detachAll moves every visible cell into the pool.
func (c *cellCache) detachAll(onDetach func(int, Cell)) {
	for _, index := range c.visibleIndexes().Indexes() {
		c.detach(index, onDetach)
	}
}

// rebind refreshes the content of the visible indexes in set in place.
func (c *cellCache) rebind(set *IndexSet, produce func(int) Cell, onDetach func(int, Cell)) {
	set.Each(func(index int) bool {
		if _, ok := c.visible[index]; ok {
			c.detach(index, onDetach)
			c.bind(index, produce)
		}
		return true
	})
}

func (c *cellCache) visibleIndexes() *IndexSet {
	out := &IndexSet{}
	for index := range c.visible {
		out.Add(index)
	}
	return out
}

// visibleCells returns the bound cells ordered by index.
func (c *cellCache) visibleCells() []Cell {
	indexes := c.visibleIndexes().Indexes()
	out := make([]Cell, 0, len(indexes))
	for _, index := range indexes {
		out = append(out, c.slots[c.visible[index]].cell)
	}
	return out
}

// eachVisible calls fn for each bound cell in no particular order.
func (c *cellCache) eachVisible(fn func(index int, cell Cell)) {
	for index, h := range c.visible {
		fn(index, c.slots[h].cell)
	}
}

// indexForCell returns the index a cell is bound to, or -1.
func (c *cellCache) indexForCell(cell Cell) int {
	h, ok := c.handles[cell]
	if !ok || c.slots[h].state != slotVisible {
		return -1
	}
	return c.slots[h].index
}

func (c *cellCache) poolSize(reuseID string) int {
	return len(c.free[reuseID])
}

func (c *cellCache) visibleCount() int {
	return len(c.visible)
}
