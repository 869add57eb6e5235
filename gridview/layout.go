package gridview

import (
	"math"

	"fyne.io/fyne/v2"
)

// layoutMetrics is the derived geometry of the grid. It is a pure function of
// the view size, item size, spacing and item count.
type layoutMetrics struct {
	columns       int
	rows          int
	count         int
	cellSize      fyne.Size
	columnSpacing float32
	rowSpacing    float32
	contentHeight float32
}

func computeLayout(view, item fyne.Size, minColumnSpacing, rowSpacing float32, count int) layoutMetrics {
	m := layoutMetrics{
		columns:       1,
		count:         max(count, 0),
		cellSize:      item,
		columnSpacing: minColumnSpacing,
		rowSpacing:    rowSpacing,
	}

	if step := item.Width + minColumnSpacing; step > 0 {
		cols := int(math.Floor(float64((view.Width + minColumnSpacing) / step)))
		m.columns = max(1, cols)
	}

	// Stretch the gaps so that the columns fill the full width. The spacing
	// only ever grows from the minimum.
	if m.columns > 1 {
		spacing := (view.Width - float32(m.columns)*item.Width) / float32(m.columns-1)
		m.columnSpacing = max(spacing, minColumnSpacing)
	}

	if m.count == 0 {
		return m
	}
	m.rows = (m.count + m.columns - 1) / m.columns
	m.contentHeight = float32(m.rows)*(item.Height+rowSpacing) - rowSpacing
	return m
}

func (m layoutMetrics) columnStep() float32 {
	return m.cellSize.Width + m.columnSpacing
}

func (m layoutMetrics) rowStep() float32 {
	return m.cellSize.Height + m.rowSpacing
}

// cellFrame returns the rectangle of the cell at index. It does not check
// that index is in range.
func (m layoutMetrics) cellFrame(index int) Rect {
	row := index / m.columns
	col := index % m.columns
	return Rect{
		Position: fyne.NewPos(float32(col)*m.columnStep(), float32(row)*m.rowStep()),
		Size:     m.cellSize,
	}
}

// indexAtPoint returns the index of the cell under p, or -1 when p falls
// between cells or outside the grid.
func (m layoutMetrics) indexAtPoint(p fyne.Position) int {
	if m.count == 0 || p.X < 0 || p.Y < 0 || m.columnStep() <= 0 || m.rowStep() <= 0 {
		return -1
	}
	col := int(p.X / m.columnStep())
	row := int(p.Y / m.rowStep())
	if col >= m.columns {
		return -1
	}
	index := row*m.columns + col
	if index >= m.count {
		return -1
	}
	if !m.cellFrame(index).Contains(p) {
		return -1
	}
	return index
}

// indexesInRect returns every index whose frame intersects r, one run per
// row the rectangle touches.
func (m layoutMetrics) indexesInRect(r Rect) *IndexSet {
	out := &IndexSet{}
	if m.count == 0 || m.columnStep() <= 0 || m.rowStep() <= 0 {
		return out
	}

	br := r.Max()
	startRow := max(int(r.Position.Y/m.rowStep()), 0)
	endRow := min(int(br.Y/m.rowStep()), m.rows-1)
	startCol := max(int(r.Position.X/m.columnStep()), 0)
	endCol := min(int(br.X/m.columnStep()), m.columns-1)

	// Only the outer row and column can fall into a gap; everything between
	// them intersects.
	colHit := func(col int) bool {
		x := float32(col) * m.columnStep()
		return x < br.X && x+m.cellSize.Width > r.Position.X
	}
	rowHit := func(row int) bool {
		y := float32(row) * m.rowStep()
		return y < br.Y && y+m.cellSize.Height > r.Position.Y
	}
	if startCol <= endCol && !colHit(startCol) {
		startCol++
	}
	if startCol <= endCol && !colHit(endCol) {
		endCol--
	}
	if startRow <= endRow && !rowHit(startRow) {
		startRow++
	}
	if startRow <= endRow && !rowHit(endRow) {
		endRow--
	}
	if startCol > endCol {
		return out
	}

	for row := startRow; row <= endRow; row++ {
		first := row*m.columns + startCol
		out.AddRange(first, min(row*m.columns+endCol+1, m.count))
	}
	return out
}

// visibleRange returns the first and last index of the cells intersecting the
// viewport [top, top+height) plus one row of slack below it. last < first
// when nothing is visible.
func (m layoutMetrics) visibleRange(top, height float32) (first, last int) {
	step := float64(m.rowStep())
	if m.count == 0 || height <= 0 || step <= 0 {
		return 0, -1
	}

	bottom := float64(top) + float64(height) + step
	firstRow := int(math.Floor((float64(top)-float64(m.cellSize.Height))/step)) + 1
	lastRow := int(math.Ceil(bottom/step)) - 1

	firstRow = max(firstRow, 0)
	lastRow = min(lastRow, m.rows-1)
	if lastRow < firstRow {
		return 0, -1
	}

	first = firstRow * m.columns
	last = min(lastRow*m.columns+m.columns-1, m.count-1)
	return first, last
}

// gridLayout caches layoutMetrics and recomputes them lazily. Setters only
// mark the cache dirty so that a burst of changes costs one recomputation on
// the next display pass.
type gridLayout struct {
	itemSize         fyne.Size
	minColumnSpacing float32
	rowSpacing       float32
	viewSize         fyne.Size
	itemCount        int

	dirty   bool
	metrics layoutMetrics
}

func newGridLayout() *gridLayout {
	return &gridLayout{
		itemSize: fyne.NewSize(defaultItemWidth, defaultItemHeight),
		dirty:    true,
	}
}

func (l *gridLayout) setItemSize(s fyne.Size) bool {
	if l.itemSize == s {
		return false
	}
	l.itemSize = s
	l.dirty = true
	return true
}

func (l *gridLayout) setMinimumColumnSpacing(s float32) bool {
	if l.minColumnSpacing == s {
		return false
	}
	l.minColumnSpacing = s
	l.dirty = true
	return true
}

func (l *gridLayout) setRowSpacing(s float32) bool {
	if l.rowSpacing == s {
		return false
	}
	l.rowSpacing = s
	l.dirty = true
	return true
}

func (l *gridLayout) setViewSize(s fyne.Size) bool {
	if l.viewSize == s {
		return false
	}
	l.viewSize = s
	l.dirty = true
	return true
}

func (l *gridLayout) setItemCount(n int) bool {
	if l.itemCount == n {
		return false
	}
	l.itemCount = n
	l.dirty = true
	return true
}

func (l *gridLayout) invalidate() {
	l.dirty = true
}

// update recomputes the metrics when any input changed and reports whether it
// did so.
func (l *gridLayout) update() bool {
	if !l.dirty {
		return false
	}
	l.metrics = computeLayout(l.viewSize, l.itemSize, l.minColumnSpacing, l.rowSpacing, l.itemCount)
	l.dirty = false
	return true
}
