package gridview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// gridContent is the scrolled surface holding the visible cells, the rubber
// band and the field editor. Pointer events arrive here in content
// coordinates and are handed to the grid.
type gridContent struct {
	widget.BaseWidget
	grid *GridView
}

var (
	_ desktop.Mouseable      = (*gridContent)(nil)
	_ fyne.Draggable         = (*gridContent)(nil)
	_ fyne.SecondaryTappable = (*gridContent)(nil)
)

func newGridContent(g *GridView) *gridContent {
	c := &gridContent{grid: g}
	c.ExtendBaseWidget(c)
	return c
}

func (c *gridContent) CreateRenderer() fyne.WidgetRenderer {
	r := &gridContentRenderer{content: c}
	r.rebuild()
	return r
}

func (c *gridContent) MouseDown(e *desktop.MouseEvent) {
	g := c.grid
	g.DismissMenu()
	g.focus()
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	g.pointerDown(e.Position, e.Modifier)
}

func (c *gridContent) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.grid.pointerUp()
}

func (c *gridContent) Dragged(e *fyne.DragEvent) {
	c.grid.pointerDragged(e.Position)
}

func (c *gridContent) DragEnd() {
	c.grid.pointerDragEnd()
}

func (c *gridContent) TappedSecondary(e *fyne.PointEvent) {
	c.grid.showContextMenu(e.Position)
}

// gridContentRenderer draws the bound cells in index order, then the rubber
// band and the field editor on top. Cells are positioned by the grid's
// display pass, so Layout has nothing to do.
type gridContentRenderer struct {
	content *gridContent
	objects []fyne.CanvasObject
}

func (r *gridContentRenderer) rebuild() {
	g := r.content.grid
	cells := g.cells.visibleCells()

	objects := make([]fyne.CanvasObject, 0, len(cells)+2)
	for _, cell := range cells {
		objects = append(objects, cell)
	}
	objects = append(objects, g.box.rect, g.editor.entry)
	r.objects = objects
}

func (r *gridContentRenderer) Layout(fyne.Size) {}

// MinSize has no width so that the grid can shrink to a single column
// narrower than an item.
func (r *gridContentRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, r.content.grid.layout.metrics.contentHeight)
}

func (r *gridContentRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.content)
}

func (r *gridContentRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *gridContentRenderer) Destroy() {}
