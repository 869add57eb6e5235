package gridview

import (
	"fyne.io/fyne/v2"
)

const (
	defaultItemWidth  = 250
	defaultItemHeight = 250

	// dragThreshold is how far the pointer must travel from an armed cell
	// before a drag session starts.
	dragThreshold = 4

	doubleClickFallback = 300 // milliseconds, used when no driver is available
)

// DragOperation describes what a drop would do with the dragged items.
type DragOperation int

const (
	// DragOperationNone means the target refuses the drop.
	DragOperationNone DragOperation = iota
	// DragOperationCopy copies the dragged items.
	DragOperationCopy
	// DragOperationLink links the dragged items.
	DragOperationLink
	// DragOperationMove moves the dragged items.
	DragOperationMove
)

func (o DragOperation) String() string {
	switch o {
	case DragOperationCopy:
		return "copy"
	case DragOperationLink:
		return "link"
	case DragOperationMove:
		return "move"
	default:
		return "none"
	}
}

// Cell is a renderable unit of the grid. A cell is bound to one item index
// while visible and parked in the reuse pool otherwise.
type Cell interface {
	fyne.CanvasObject

	// ReuseIdentifier names the structural kind of the cell. Pooled cells are
	// handed back by DequeueReusableCell only for a matching identifier.
	ReuseIdentifier() string
}

// SelectableCell is implemented by cells that draw their own selection state.
type SelectableCell interface {
	SetSelected(selected bool)
}

// ReusableCell is implemented by cells that want to reset content when they
// leave the reuse pool.
type ReusableCell interface {
	PrepareForReuse()
}

// TitledCell is implemented by cells with an editable title. The field
// editor reads and writes the title through it.
type TitledCell interface {
	Title() string
	SetTitle(title string)
}

// DropTarget is implemented by cells that take part in drag and drop.
// A cell that does not implement it is transparent to drops and the grid
// itself becomes the target.
type DropTarget interface {
	DraggingEntered(info *DraggingInfo) DragOperation
	DraggingUpdated(info *DraggingInfo) DragOperation
	DraggingExited(info *DraggingInfo)
	PerformDrop(info *DraggingInfo) bool
}

// DraggingInfo describes a drag session in progress.
type DraggingInfo struct {
	// Source is the grid the drag started from, nil for drops coming from
	// outside the application.
	Source *GridView
	// SourceIndexes holds the selection at the time the drag started.
	SourceIndexes *IndexSet
	// Payloads holds one entry per source index that had a representation.
	Payloads []any
	// URIs holds the dropped resources of an external drop.
	URIs []fyne.URI
	// Location is the pointer position in content coordinates.
	Location fyne.Position
	// Operation is the last operation reported by the current target.
	Operation DragOperation
}

// Rect is an axis aligned rectangle in content coordinates.
type Rect struct {
	Position fyne.Position
	Size     fyne.Size
}

// NewRect returns a rectangle at x, y with the given width and height.
func NewRect(x, y, width, height float32) Rect {
	return Rect{Position: fyne.NewPos(x, y), Size: fyne.NewSize(width, height)}
}

// rectFromPoints returns the normalized rectangle spanned by two corners.
func rectFromPoints(a, b fyne.Position) Rect {
	tl := fyne.NewPos(min(a.X, b.X), min(a.Y, b.Y))
	br := fyne.NewPos(max(a.X, b.X), max(a.Y, b.Y))
	return Rect{Position: tl, Size: fyne.NewSize(br.X-tl.X, br.Y-tl.Y)}
}

// Max returns the bottom right corner.
func (r Rect) Max() fyne.Position {
	return r.Position.Add(fyne.NewPos(r.Size.Width, r.Size.Height))
}

// Intersects reports whether the two rectangles overlap. Touching edges do
// not count.
func (r Rect) Intersects(o Rect) bool {
	rm, om := r.Max(), o.Max()
	return r.Position.X < om.X && rm.X > o.Position.X &&
		r.Position.Y < om.Y && rm.Y > o.Position.Y
}

// Contains reports whether p lies inside the rectangle. The right and bottom
// edges are exclusive.
func (r Rect) Contains(p fyne.Position) bool {
	m := r.Max()
	return p.X >= r.Position.X && p.X < m.X && p.Y >= r.Position.Y && p.Y < m.Y
}
