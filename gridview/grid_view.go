package gridview

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var (
	errInvalidItemSize  = errors.New("invalid item size")
	errInvalidSpacing   = errors.New("invalid spacing")
	errIndexOutOfRange  = errors.New("index out of range")
	errInteractiveLayer = errors.New("foreground object handles input")
)

const zoomLevelKeySuffix = ".zoomLevel"

// GridView displays the items of a DataSource as a scrollable grid. Only the
// cells intersecting the viewport exist at any time; cells scrolled away are
// kept in a reuse pool and handed back through DequeueReusableCell.
//
// All methods must be called on the Fyne UI goroutine.
type GridView struct {
	widget.BaseWidget

	provider   itemProvider
	layout     *gridLayout
	cells      *cellCache
	selection  *selectionModel
	drag       *dragMachine
	editor     *fieldEditor
	blank      blankState
	box        *selectionBox
	autoScroll autoScroller
	press      pressState

	content           *gridContent
	scroll            *container.Scroll
	zoomOverlay       *zoomScrollOverlay
	dragIndicator     *canvas.Rectangle
	placeholderHolder *fyne.Container
	foreground        fyne.CanvasObject
	background        fyne.CanvasObject
	stack             *fyne.Container
	root              *rootDropTarget
	activeMenu        *widget.PopUp

	baseItemSize fyne.Size
	zoomLevel    int
	prefsKey     string

	// Reloads requested while a callback is running or while a display
	// pass is in progress are recorded here and resolved afterwards.
	needsReload   bool
	pendingRebind *IndexSet
	inDisplayPass bool
	calloutDepth  int

	lastClick      time.Time
	lastClickIndex int
}

// NewGridView creates a grid showing the items of source. source may be nil
// and set later with SetDataSource.
func NewGridView(source DataSource) *GridView {
	g := &GridView{
		layout:         newGridLayout(),
		cells:          newCellCache(),
		selection:      newSelectionModel(),
		box:            newSelectionBox(),
		baseItemSize:   fyne.NewSize(defaultItemWidth, defaultItemHeight),
		zoomLevel:      defaultZoomLevelIndex,
		pendingRebind:  &IndexSet{},
		lastClickIndex: -1,
	}
	g.provider.grid = g
	g.root = &rootDropTarget{grid: g}
	g.drag = newDragMachine(g.resolveDragTarget)
	g.editor = newFieldEditor(func() { g.EndEditing(true) }, func() { g.EndEditing(false) })
	g.press.index = -1

	g.content = newGridContent(g)
	g.scroll = container.NewVScroll(g.content)
	g.scroll.OnScrolled = func(fyne.Position) { g.scrolled() }
	g.zoomOverlay = newZoomScrollOverlay(g.adjustZoom)

	g.dragIndicator = canvas.NewRectangle(color.Transparent)
	g.dragIndicator.StrokeColor = theme.Color(theme.ColorNamePrimary)
	g.dragIndicator.StrokeWidth = 3
	g.dragIndicator.Hide()

	g.placeholderHolder = container.NewCenter()
	g.placeholderHolder.Hide()
	g.stack = container.New(&resizeLayout{internal: layout.NewStackLayout(), onResize: g.resized})

	g.ExtendBaseWidget(g)
	g.syncLayers()
	g.SetDataSource(source)
	return g
}

func (g *GridView) CreateRenderer() fyne.WidgetRenderer {
	g.ExtendBaseWidget(g)
	return widget.NewSimpleRenderer(g.stack)
}

// Resize lays the visible cells out for the new size right away.
func (g *GridView) Resize(size fyne.Size) {
	if size == g.Size() {
		return
	}
	g.BaseWidget.Resize(size)
	g.displayPass()
}

// SetDataSource attaches a data source and reloads all items.
func (g *GridView) SetDataSource(source DataSource) {
	g.EndEditing(false)
	if g.blank.shown() {
		g.blank.hide(g.scroll)
		g.syncLayers()
	}
	g.provider.setSource(source)
	g.ReloadData()
}

// SetDelegate attaches the object receiving selection, double click and drop
// notifications. It may implement any subset of SelectionObserver,
// DoubleClickHandler, DropValidator, DragUpdateHandler and DropAcceptor.
func (g *GridView) SetDelegate(delegate any) {
	g.provider.setDelegate(delegate)
}

// SetItemSize sets the size of every cell at zoom level 1.0. Sizes that are
// not positive in both dimensions are rejected.
func (g *GridView) SetItemSize(size fyne.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		fyne.LogError("grid view: item size rejected", fmt.Errorf("%w: %vx%v", errInvalidItemSize, size.Width, size.Height))
		return
	}
	if g.baseItemSize == size {
		return
	}
	g.baseItemSize = size
	g.displayPass()
}

// ItemSize returns the configured item size before zooming.
func (g *GridView) ItemSize() fyne.Size {
	return g.baseItemSize
}

// SetMinimumColumnSpacing sets the smallest horizontal gap between cells.
// The actual gap grows so that the columns fill the width.
func (g *GridView) SetMinimumColumnSpacing(spacing float32) {
	if spacing < 0 {
		fyne.LogError("grid view: column spacing rejected", fmt.Errorf("%w: %v", errInvalidSpacing, spacing))
		return
	}
	if g.layout.setMinimumColumnSpacing(spacing) {
		g.displayPass()
	}
}

// SetRowSpacing sets the vertical gap between rows.
func (g *GridView) SetRowSpacing(spacing float32) {
	if spacing < 0 {
		fyne.LogError("grid view: row spacing rejected", fmt.Errorf("%w: %v", errInvalidSpacing, spacing))
		return
	}
	if g.layout.setRowSpacing(spacing) {
		g.displayPass()
	}
}

// SetForegroundLayer shows obj above the cells. The layer never receives
// input, so objects that would take pointer, scroll or keyboard events are
// rejected. Only containers are searched; a plain widget's own renderer
// objects are not inspected.
func (g *GridView) SetForegroundLayer(obj fyne.CanvasObject) {
	if obj != nil && receivesInput(obj) {
		fyne.LogError("grid view: foreground layer rejected", errInteractiveLayer)
		return
	}
	g.foreground = obj
	g.syncLayers()
}

// SetBackgroundLayer shows obj below the cells.
func (g *GridView) SetBackgroundLayer(obj fyne.CanvasObject) {
	g.background = obj
	g.syncLayers()
}

// Columns returns the number of columns of the current layout.
func (g *GridView) Columns() int {
	return g.layout.metrics.columns
}

// Rows returns the number of rows of the current layout.
func (g *GridView) Rows() int {
	return g.layout.metrics.rows
}

// ReloadData discards every visible cell and asks the data source for the
// item count again. Selected indexes beyond the new count are dropped
// without a selection change notification. Called from inside a data source
// or delegate callback, the reload runs once that callback returned.
func (g *GridView) ReloadData() {
	g.needsReload = true
	if g.calloutDepth > 0 || g.inDisplayPass {
		return
	}
	g.displayPass()
}

// ReloadCellsAtIndexes asks the data source again for the visible cells in
// indexes. Indexes that are not visible are ignored.
func (g *GridView) ReloadCellsAtIndexes(indexes *IndexSet) {
	indexes.Each(func(i int) bool {
		if i >= 0 && i < g.layout.itemCount {
			g.pendingRebind.Add(i)
		}
		return true
	})
	if g.pendingRebind.Len() == 0 || g.calloutDepth > 0 || g.inDisplayPass {
		return
	}
	g.displayPass()
}

// callout runs a data source or delegate callback. Reloads requested while
// any callout is on the stack are resolved when the outermost one returns.
func (g *GridView) callout(fn func()) {
	g.calloutDepth++
	defer func() {
		g.calloutDepth--
		if g.calloutDepth > 0 || g.inDisplayPass {
			return
		}
		if g.needsReload || g.pendingRebind.Len() > 0 {
			g.displayPass()
		}
	}()
	fn()
}

// displayPass brings the visible cells in line with the data and geometry.
// A reload requested by a callback during the pass causes one more round.
func (g *GridView) displayPass() {
	if g.inDisplayPass {
		return
	}
	g.inDisplayPass = true
	defer func() { g.inDisplayPass = false }()

	for range 2 {
		g.resolveReloads()
		g.layoutPass()
		if !g.needsReload && g.pendingRebind.Len() == 0 {
			break
		}
	}
}

func (g *GridView) resolveReloads() {
	if g.needsReload {
		g.needsReload = false
		g.pendingRebind.Clear()
		g.EndEditing(true)

		g.cells.detachAll(g.cellDetached)
		count := g.provider.count()
		g.layout.setItemCount(count)
		g.layout.invalidate()
		g.selection.purge(count)
		return
	}

	if g.pendingRebind.Len() == 0 {
		return
	}
	set := g.pendingRebind.Clone()
	g.pendingRebind.Clear()
	if g.editor.active() && set.Contains(g.editor.index) {
		g.EndEditing(true)
	}
	g.cells.rebind(set, g.makeCell, g.cellDetached)
}

func (g *GridView) layoutPass() {
	size := g.Size()
	g.layout.setViewSize(size)
	g.layout.setItemSize(g.effectiveItemSize())
	if g.layout.update() {
		g.scroll.Refresh()
	}
	if g.updateBlankState() {
		g.syncLayers()
		g.scroll.Refresh()
	}

	m := g.layout.metrics
	first, last := m.visibleRange(g.scroll.Offset.Y, size.Height)
	if g.editor.active() && (g.editor.index < first || g.editor.index > last) {
		g.EndEditing(true)
	}
	if missing := g.cells.reconcile(first, last, g.makeCell, g.cellDetached); missing > 0 {
		fyne.LogError("grid view: data source returned no cell", fmt.Errorf("%d of %d visible items", missing, last-first+1))
	}

	g.positionCells()
	if g.editor.active() {
		g.editor.place(m.cellFrame(g.editor.index))
	}
	g.content.Refresh()
}

func (g *GridView) effectiveItemSize() fyne.Size {
	s := g.zoomScale()
	return fyne.NewSize(g.baseItemSize.Width*s, g.baseItemSize.Height*s)
}

func (g *GridView) makeCell(index int) Cell {
	return g.provider.cell(index)
}

func (g *GridView) cellDetached(_ int, cell Cell) {
	if s, ok := cell.(SelectableCell); ok {
		s.SetSelected(false)
	}
}

func (g *GridView) positionCells() {
	m := g.layout.metrics
	g.cells.eachVisible(func(index int, cell Cell) {
		f := m.cellFrame(index)
		cell.Move(f.Position)
		cell.Resize(f.Size)
		if s, ok := cell.(SelectableCell); ok {
			s.SetSelected(g.selection.contains(index))
		}
	})
}

// refreshSelection pushes the selection state to the visible cells.
func (g *GridView) refreshSelection() {
	g.cells.eachVisible(func(index int, cell Cell) {
		if s, ok := cell.(SelectableCell); ok {
			s.SetSelected(g.selection.contains(index))
		}
	})
}

func (g *GridView) scrolled() {
	if g.inDisplayPass {
		return
	}
	g.displayPass()
}

func (g *GridView) resized() {
	g.DismissMenu()
	g.displayPass()
}

// syncLayers rebuilds the render tree from the current layers. The zoom
// overlay sits right above the content so that it only competes with the
// scroller for scroll events.
func (g *GridView) syncLayers() {
	if g.blank.shown() {
		g.placeholderHolder.Objects = []fyne.CanvasObject{g.blank.view}
		g.placeholderHolder.Show()
	} else {
		g.placeholderHolder.Objects = nil
		g.placeholderHolder.Hide()
	}

	var objects []fyne.CanvasObject
	for _, l := range g.layers() {
		switch l.kind {
		case layerPlaceholder:
			objects = append(objects, g.placeholderHolder)
		case layerContent:
			objects = append(objects, l.object, g.zoomOverlay)
		default:
			objects = append(objects, l.object)
		}
	}
	g.stack.Objects = objects
	g.stack.Refresh()
}

func (g *GridView) canvas() fyne.Canvas {
	app := fyne.CurrentApp()
	if app == nil {
		return nil
	}
	return app.Driver().CanvasForObject(g)
}

func (g *GridView) maxScrollOffset() float32 {
	return max(g.layout.metrics.contentHeight-g.Size().Height, 0)
}

// ScrollToOffset scrolls vertically to y, clamped to the content.
func (g *GridView) ScrollToOffset(y float32) {
	y = min(max(y, 0), g.maxScrollOffset())
	if g.scroll.Offset.Y == y {
		return
	}
	g.scroll.Offset = fyne.NewPos(0, y)
	g.scroll.Refresh()
	g.displayPass()
}

// ScrollToIndex scrolls the least distance that makes the cell at index
// fully visible.
func (g *GridView) ScrollToIndex(index int) {
	if index < 0 || index >= g.layout.itemCount {
		return
	}
	g.layout.update()
	f := g.layout.metrics.cellFrame(index)
	top := g.scroll.Offset.Y
	height := g.Size().Height

	switch {
	case f.Position.Y < top:
		g.ScrollToOffset(f.Position.Y)
	case f.Position.Y+f.Size.Height > top+height:
		g.ScrollToOffset(f.Position.Y + f.Size.Height - height)
	}
}

// withGesture runs a selection change as one gesture unless a gesture is
// already running, in which case the running one reports it.
func (g *GridView) withGesture(fn func()) {
	owns := g.selection.beginGesture()
	fn()
	if owns {
		g.finishGesture()
		return
	}
	g.refreshSelection()
}

func (g *GridView) finishGesture() {
	changed := g.selection.endGesture()
	g.refreshSelection()
	if changed {
		g.provider.selectionChanged()
	}
}

// SelectAll selects every item.
func (g *GridView) SelectAll() {
	g.withGesture(func() { g.selection.selectAll(g.layout.itemCount) })
}

// DeselectAll clears the selection.
func (g *GridView) DeselectAll() {
	g.withGesture(g.selection.clear)
}

// SelectCellAtIndex adds index to the selection.
func (g *GridView) SelectCellAtIndex(index int) {
	g.withGesture(func() { g.selection.add(index, g.layout.itemCount) })
}

// DeselectCellAtIndex removes index from the selection.
func (g *GridView) DeselectCellAtIndex(index int) {
	g.withGesture(func() { g.selection.remove(index) })
}

// SetSelectionIndexes replaces the selection. Indexes out of range are
// ignored.
func (g *GridView) SetSelectionIndexes(indexes *IndexSet) {
	g.withGesture(func() { g.selection.set(indexes, g.layout.itemCount) })
}

// IndexForSelectedCell returns the lowest selected index, or -1.
func (g *GridView) IndexForSelectedCell() int {
	return g.selection.indexes.First()
}

// IndexesForSelectedCells returns a copy of the selection.
func (g *GridView) IndexesForSelectedCells() *IndexSet {
	return g.selection.indexes.Clone()
}

// NumberOfItems returns the item count reported by the data source at the
// last reload.
func (g *GridView) NumberOfItems() int {
	return g.layout.itemCount
}

// IndexForCellAtPoint returns the index of the cell under p, in content
// coordinates, or -1 when p is between cells.
func (g *GridView) IndexForCellAtPoint(p fyne.Position) int {
	g.layout.update()
	return g.layout.metrics.indexAtPoint(p)
}

// IndexesForCellsInRect returns the indexes of all cells intersecting r.
func (g *GridView) IndexesForCellsInRect(r Rect) *IndexSet {
	g.layout.update()
	return g.layout.metrics.indexesInRect(r)
}

// RectForCellAtIndex returns the frame of the cell at index in content
// coordinates, or an empty Rect when index is out of range.
func (g *GridView) RectForCellAtIndex(index int) Rect {
	if index < 0 || index >= g.layout.itemCount {
		return Rect{}
	}
	g.layout.update()
	return g.layout.metrics.cellFrame(index)
}

// VisibleCells returns the bound cells ordered by index.
func (g *GridView) VisibleCells() []Cell {
	return g.cells.visibleCells()
}

// IndexesForVisibleCells returns the indexes that currently have a cell.
func (g *GridView) IndexesForVisibleCells() *IndexSet {
	return g.cells.visibleIndexes()
}

// IndexForCell returns the index cell is bound to, or -1.
func (g *GridView) IndexForCell(cell Cell) int {
	return g.cells.indexForCell(cell)
}

// CellForItemAtIndex returns the cell bound to index. When there is none and
// makeIfNecessary is set, the data source is asked for one; that cell is
// released by the next display pass if index is not visible.
func (g *GridView) CellForItemAtIndex(index int, makeIfNecessary bool) Cell {
	if index < 0 || index >= g.layout.itemCount {
		return nil
	}
	cell := g.cells.cellForIndex(index, makeIfNecessary, g.makeCell)
	if cell != nil && makeIfNecessary {
		f := g.layout.metrics.cellFrame(index)
		cell.Move(f.Position)
		cell.Resize(f.Size)
	}
	return cell
}

// DequeueReusableCell returns a pooled cell with the given reuse identifier,
// or nil when the pool has none. Data sources call it from CellForItem.
func (g *GridView) DequeueReusableCell(reuseID string) Cell {
	return g.cells.dequeue(reuseID)
}

// ShowMenu shows menu at pos relative to obj.
func (g *GridView) ShowMenu(menu *fyne.Menu, pos fyne.Position, obj fyne.CanvasObject) {
	g.DismissMenu()

	c := g.canvas()
	if c == nil {
		return
	}
	m := widget.NewMenu(menu)
	m.OnDismiss = g.DismissMenu

	absPos := fyne.CurrentApp().Driver().AbsolutePositionForObject(obj).Add(pos)
	g.activeMenu = widget.NewPopUp(m, c)
	g.activeMenu.ShowAtPosition(absPos)
}

// DismissMenu hides the context menu if one is showing.
func (g *GridView) DismissMenu() {
	if g.activeMenu != nil {
		g.activeMenu.Hide()
		g.activeMenu = nil
	}
}
