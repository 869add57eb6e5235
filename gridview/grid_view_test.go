package gridview

import (
	"fmt"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
)

type fakeSource struct {
	count int
	made  int
}

func (s *fakeSource) NumberOfItems(*GridView) int {
	return s.count
}

func (s *fakeSource) CellForItem(g *GridView, index int) Cell {
	c, _ := g.DequeueReusableCell(LabelCellReuseID).(*LabelCell)
	if c == nil {
		c = NewLabelCell("")
		s.made++
	}
	c.SetTitle(fmt.Sprintf("item %d", index))
	return c
}

func (s *fakeSource) PasteboardPayload(_ *GridView, index int) any {
	return fmt.Sprintf("item %d", index)
}

type placeholderSource struct {
	fakeSource
	view fyne.CanvasObject
}

func (s *placeholderSource) ViewForNoItems(*GridView) fyne.CanvasObject {
	return s.view
}

type recordingDelegate struct {
	selectionChanges int
	doubleClicks     []int
	op               DragOperation
	accepted         []*DraggingInfo
	onAccept         func(info *DraggingInfo)
}

func (d *recordingDelegate) SelectionChanged(*GridView) {
	d.selectionChanges++
}

func (d *recordingDelegate) DoubleClicked(_ *GridView, index int) {
	d.doubleClicks = append(d.doubleClicks, index)
}

func (d *recordingDelegate) ValidateDrop(*GridView, *DraggingInfo) DragOperation {
	return d.op
}

func (d *recordingDelegate) AcceptDrop(_ *GridView, info *DraggingInfo) bool {
	d.accepted = append(d.accepted, info)
	if d.onAccept != nil {
		d.onAccept(info)
	}
	return true
}

// newTestGrid returns an 800x600 grid with 250x250 items and 10 units of
// minimum spacing: three columns, 25 units apart, rows 260 units apart.
func newTestGrid(t *testing.T, source DataSource) (*GridView, *recordingDelegate) {
	t.Helper()
	g := NewGridView(source)
	d := &recordingDelegate{}
	g.SetDelegate(d)
	g.SetMinimumColumnSpacing(10)
	g.SetRowSpacing(10)
	g.Resize(fyne.NewSize(800, 600))
	return g, d
}

func cellCenter(g *GridView, index int) fyne.Position {
	f := g.RectForCellAtIndex(index)
	return f.Position.Add(fyne.NewPos(f.Size.Width/2, f.Size.Height/2))
}

func click(g *GridView, p fyne.Position, mods fyne.KeyModifier) {
	g.pointerDown(p, mods)
	g.pointerUp()
}

func TestGridView_BindsVisibleCellsOnly(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := &fakeSource{count: 1000}
	g, _ := newTestGrid(t, src)

	if g.Columns() != 3 {
		t.Fatalf("expected 3 columns, got %d", g.Columns())
	}
	// Rows 0..2 are in view, row 3 is the slack below.
	if got, want := g.IndexesForVisibleCells().String(), NewIndexSetInRange(0, 12).String(); got != want {
		t.Fatalf("expected visible %s, got %s", want, got)
	}
	if src.made != 12 {
		t.Fatalf("expected 12 cells to be made, got %d", src.made)
	}
	if got := g.RectForCellAtIndex(4); got != NewRect(275, 260, 250, 250) {
		t.Fatalf("unexpected frame for index 4: %v", got)
	}
}

func TestGridView_ScrollingReusesCells(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := &fakeSource{count: 1000}
	g, _ := newTestGrid(t, src)

	g.ScrollToOffset(260)
	if g.scroll.Offset.Y != 260 {
		t.Fatalf("expected offset 260, got %v", g.scroll.Offset.Y)
	}
	if got, want := g.IndexesForVisibleCells().String(), NewIndexSetInRange(3, 15).String(); got != want {
		t.Fatalf("expected visible %s, got %s", want, got)
	}
	if src.made != 12 {
		t.Fatalf("scrolling one row should reuse cells, %d were made", src.made)
	}
	if g.cells.detached != 3 {
		t.Fatalf("expected 3 detached cells, got %d", g.cells.detached)
	}

	for _, cell := range g.VisibleCells() {
		index := g.IndexForCell(cell)
		if got, want := cell.(*LabelCell).Title(), fmt.Sprintf("item %d", index); got != want {
			t.Fatalf("cell at %d shows %q", index, got)
		}
		if cell.Position() != g.RectForCellAtIndex(index).Position {
			t.Fatalf("cell at %d is not at its frame", index)
		}
	}
}

func TestGridView_ReloadPurgesSelectionSilently(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := &fakeSource{count: 10}
	g, d := newTestGrid(t, src)
	g.SetSelectionIndexes(NewIndexSet(7, 8, 9))
	d.selectionChanges = 0

	src.count = 5
	g.ReloadData()

	if n := g.IndexesForSelectedCells().Len(); n != 0 {
		t.Fatalf("expected an empty selection, got %s", g.IndexesForSelectedCells())
	}
	if d.selectionChanges != 0 {
		t.Fatalf("a reload must not report a selection change, got %d", d.selectionChanges)
	}
	if g.NumberOfItems() != 5 {
		t.Fatalf("expected 5 items, got %d", g.NumberOfItems())
	}
}

func TestGridView_PlaceholderWhileEmpty(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := &placeholderSource{view: widget.NewLabel("Nothing here")}
	g, _ := newTestGrid(t, src)

	if !g.blank.shown() || !g.placeholderHolder.Visible() {
		t.Fatal("expected the placeholder to show for an empty grid")
	}
	if g.scroll.Direction != container.ScrollNone {
		t.Fatalf("expected scrolling to be disabled, got %v", g.scroll.Direction)
	}

	src.count = 5
	g.ReloadData()

	if g.blank.shown() || g.placeholderHolder.Visible() {
		t.Fatal("expected the placeholder to hide once items exist")
	}
	if g.scroll.Direction != container.ScrollVerticalOnly {
		t.Fatalf("expected vertical scrolling to be restored, got %v", g.scroll.Direction)
	}
	if g.IndexesForVisibleCells().Len() != 5 {
		t.Fatalf("expected 5 visible cells, got %d", g.IndexesForVisibleCells().Len())
	}
}

func TestGridView_ReloadInsideCallbackIsDeferred(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := &fakeSource{count: 10}
	g, d := newTestGrid(t, src)
	d.op = DragOperationCopy

	seen := -1
	d.onAccept = func(*DraggingInfo) {
		src.count = 20
		g.ReloadData()
		seen = g.NumberOfItems()
	}

	uris := []fyne.URI{storage.NewFileURI("/tmp/dropped.png")}
	if !g.dropExternal(fyne.NewPos(400, 560), uris) {
		t.Fatal("expected the drop to be accepted")
	}
	if seen != 10 {
		t.Fatalf("the reload ran inside the callback, saw %d items", seen)
	}
	if g.NumberOfItems() != 20 {
		t.Fatalf("expected the reload to run after the callback, got %d items", g.NumberOfItems())
	}
	if got := d.accepted[0].URIs; len(got) != 1 || got[0].Path() != "/tmp/dropped.png" {
		t.Fatalf("unexpected dropped URIs %v", got)
	}
}

func TestGridView_ClickSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, d := newTestGrid(t, &fakeSource{count: 30})

	click(g, cellCenter(g, 0), 0)
	if got := g.IndexesForSelectedCells().String(); got != "{0}" {
		t.Fatalf("expected {0}, got %s", got)
	}

	click(g, cellCenter(g, 4), fyne.KeyModifierShift)
	if got := g.IndexesForSelectedCells().String(); got != "{0,1,2,3,4}" {
		t.Fatalf("expected a range to 4, got %s", got)
	}

	click(g, cellCenter(g, 2), fyne.KeyModifierControl)
	if got := g.IndexesForSelectedCells().String(); got != "{0,1,3,4}" {
		t.Fatalf("expected 2 toggled off, got %s", got)
	}

	// A plain click on a selected item collapses the selection to it.
	click(g, cellCenter(g, 3), 0)
	if got := g.IndexesForSelectedCells().String(); got != "{3}" {
		t.Fatalf("expected {3}, got %s", got)
	}

	click(g, fyne.NewPos(262, 10), 0)
	if n := g.IndexesForSelectedCells().Len(); n != 0 {
		t.Fatalf("clicking the background should clear the selection, got %d", n)
	}
	if d.selectionChanges != 5 {
		t.Fatalf("expected one notification per click, got %d", d.selectionChanges)
	}

	for _, cell := range g.VisibleCells() {
		if cell.(*LabelCell).Selected() {
			t.Fatalf("cell %d still draws as selected", g.IndexForCell(cell))
		}
	}
}

func TestGridView_DoubleClick(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, d := newTestGrid(t, &fakeSource{count: 30})
	click(g, cellCenter(g, 2), 0)
	click(g, cellCenter(g, 2), 0)

	if len(d.doubleClicks) != 1 || d.doubleClicks[0] != 2 {
		t.Fatalf("expected one double click on 2, got %v", d.doubleClicks)
	}
}

func TestGridView_RubberBandReportsOnce(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, d := newTestGrid(t, &fakeSource{count: 30})

	g.pointerDown(fyne.NewPos(10, 255), 0)
	g.pointerDragged(fyne.NewPos(300, 300))
	g.pointerDragged(fyne.NewPos(600, 400))
	g.pointerDragged(fyne.NewPos(700, 500))
	if !g.box.active {
		t.Fatal("expected a rubber band while dragging over the background")
	}
	g.pointerUp()
	g.pointerDragEnd()

	if got := g.IndexesForSelectedCells().String(); got != "{3,4,5}" {
		t.Fatalf("expected the second row, got %s", got)
	}
	if d.selectionChanges != 1 {
		t.Fatalf("expected one notification for the whole band, got %d", d.selectionChanges)
	}
	if g.box.active || g.box.rect.Visible() {
		t.Fatal("expected the rubber band to be gone")
	}
}

func TestGridView_DragSelectionOntoGrid(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, d := newTestGrid(t, &fakeSource{count: 30})
	d.op = DragOperationMove
	g.SetSelectionIndexes(NewIndexSet(0, 1))

	g.pointerDown(cellCenter(g, 0), 0)
	g.pointerDragged(cellCenter(g, 0).Add(fyne.NewPos(2, 0)))
	if g.drag.dragging() {
		t.Fatal("the drag should not start within the threshold")
	}
	g.pointerDragged(cellCenter(g, 4))
	if !g.drag.dragging() {
		t.Fatal("expected a drag session past the threshold")
	}
	if !g.dragIndicator.Visible() {
		t.Fatal("expected the grid to show it accepts the drop")
	}
	g.pointerDragEnd()

	if len(d.accepted) != 1 {
		t.Fatalf("expected one accepted drop, got %d", len(d.accepted))
	}
	info := d.accepted[0]
	if info.Source != g || info.SourceIndexes.String() != "{0,1}" {
		t.Fatalf("unexpected drag source %v %s", info.Source, info.SourceIndexes)
	}
	if len(info.Payloads) != 2 || info.Payloads[1] != "item 1" {
		t.Fatalf("unexpected payloads %v", info.Payloads)
	}
	if g.dragIndicator.Visible() {
		t.Fatal("expected the drag indicator to hide after the drop")
	}
	if got := g.IndexesForSelectedCells().String(); got != "{0,1}" {
		t.Fatalf("a drag must not collapse the selection, got %s", got)
	}
}

func TestGridView_EscapeCancelsDrag(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, d := newTestGrid(t, &fakeSource{count: 30})
	d.op = DragOperationCopy

	g.pointerDown(cellCenter(g, 0), 0)
	g.pointerDragged(cellCenter(g, 1))
	g.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	g.pointerDragEnd()

	if g.drag.state != dragIdle {
		t.Fatalf("expected idle, got %s", g.drag.state)
	}
	if len(d.accepted) != 0 {
		t.Fatal("a cancelled drag must not drop")
	}
}

func TestGridView_ArrowKeysMoveSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, _ := newTestGrid(t, &fakeSource{count: 7})
	g.SelectCellAtIndex(0)

	g.TypedKey(&fyne.KeyEvent{Name: fyne.KeyRight})
	if got := g.IndexForSelectedCell(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	g.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	if got := g.IndexForSelectedCell(); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	g.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	if got := g.IndexForSelectedCell(); got != 6 {
		t.Fatalf("expected the move to clamp at 6, got %d", got)
	}

	g.TypedShortcut(&fyne.ShortcutSelectAll{})
	if n := g.IndexesForSelectedCells().Len(); n != 7 {
		t.Fatalf("expected all 7 items selected, got %d", n)
	}
}

func TestGridView_CommandsIgnoreOutOfRange(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, d := newTestGrid(t, &fakeSource{count: 3})
	g.SelectCellAtIndex(5)
	g.DeselectCellAtIndex(-1)
	g.ScrollToIndex(99)
	g.BeginEditing(42)

	if g.IndexForSelectedCell() != -1 {
		t.Fatalf("expected no selection, got %d", g.IndexForSelectedCell())
	}
	if d.selectionChanges != 0 {
		t.Fatalf("expected no notifications, got %d", d.selectionChanges)
	}
	if g.RectForCellAtIndex(3) != (Rect{}) {
		t.Fatal("expected an empty rect out of range")
	}
	if g.CellForItemAtIndex(3, true) != nil {
		t.Fatal("expected no cell out of range")
	}
}

func TestGridView_RejectsInvalidItemSize(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, _ := newTestGrid(t, &fakeSource{count: 3})
	g.SetItemSize(fyne.NewSize(0, 100))
	if g.ItemSize() != fyne.NewSize(defaultItemWidth, defaultItemHeight) {
		t.Fatalf("expected the default item size to stay, got %v", g.ItemSize())
	}

	g.SetItemSize(fyne.NewSize(100, 100))
	if g.Columns() != 7 {
		t.Fatalf("expected 7 columns of 100, got %d", g.Columns())
	}
}

func TestGridView_ReloadCellsAtIndexes(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := &fakeSource{count: 6}
	g, _ := newTestGrid(t, src)

	cell := g.CellForItemAtIndex(1, false).(*LabelCell)
	cell.SetTitle("stale")
	g.ReloadCellsAtIndexes(NewIndexSet(1))

	if got := g.CellForItemAtIndex(1, false).(*LabelCell).Title(); got != "item 1" {
		t.Fatalf("expected the cell to be refreshed, got %q", got)
	}
	if src.made != 6 {
		t.Fatalf("expected the refreshed cell to come from the pool, %d made", src.made)
	}
}

func TestGridView_LayersHitTesting(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, _ := newTestGrid(t, &fakeSource{count: 3})
	g.SetForegroundLayer(canvas.NewRectangle(color.Transparent))
	if g.foreground == nil {
		t.Fatal("expected a plain canvas object to be accepted as foreground")
	}

	l, ok := hitTest(g.layers(), fyne.NewPos(10, 10), g.Size())
	if !ok || l.kind != layerContent {
		t.Fatalf("expected the content layer under the foreground, got %v", l.kind)
	}
	if _, ok := hitTest(g.layers(), fyne.NewPos(900, 10), g.Size()); ok {
		t.Fatal("expected no layer outside the grid")
	}
	if target := g.resolveDragTarget(cellCenter(g, 0)); target.index != -1 || target.target != DropTarget(g.root) {
		t.Fatalf("cells without drop support should resolve to the grid, got %d", target.index)
	}
}

func TestGridView_ForegroundRejectsInputObjects(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, _ := newTestGrid(t, &fakeSource{count: 3})
	decoration := canvas.NewRectangle(color.Transparent)
	g.SetForegroundLayer(decoration)

	g.SetForegroundLayer(widget.NewButton("tap me", func() {}))
	if g.foreground != decoration {
		t.Fatal("expected a button to be refused as foreground")
	}
	g.SetForegroundLayer(container.NewVBox(canvas.NewRectangle(color.Black), widget.NewEntry()))
	if g.foreground != decoration {
		t.Fatal("expected a container holding an entry to be refused as foreground")
	}

	g.SetForegroundLayer(nil)
	if g.foreground != nil {
		t.Fatal("expected nil to remove the foreground")
	}
}

func TestGridView_SelectAllOnLargeCollection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	const count = 50_000_000
	g, d := newTestGrid(t, &fakeSource{count: count})

	g.SelectAll()
	if n := g.IndexesForSelectedCells().Len(); n != count {
		t.Fatalf("expected %d selected items, got %d", count, n)
	}
	if runs := g.selection.indexes.runs.Size(); runs != 1 {
		t.Fatalf("expected the whole selection to be one run, got %d", runs)
	}

	g.DeselectCellAtIndex(0)
	g.DeselectCellAtIndex(count / 2)
	sel := g.IndexesForSelectedCells()
	if sel.Len() != count-2 || sel.Contains(0) || sel.Contains(count/2) || !sel.Contains(count-1) {
		t.Fatalf("unexpected selection after deselecting, %d items", sel.Len())
	}
	if runs := sel.runs.Size(); runs != 2 {
		t.Fatalf("expected deselecting to split the run, got %d runs", runs)
	}
	if g.IndexForSelectedCell() != 1 {
		t.Fatalf("expected 1 as the first selected index, got %d", g.IndexForSelectedCell())
	}
	if d.selectionChanges != 3 {
		t.Fatalf("expected one notification per command, got %d", d.selectionChanges)
	}
}

func TestGridView_SwappingSourceReplacesPlaceholder(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	first := widget.NewLabel("first is empty")
	g, _ := newTestGrid(t, &placeholderSource{view: first})
	if g.blank.view != first {
		t.Fatal("expected the first placeholder to show")
	}

	second := widget.NewLabel("second is empty")
	g.SetDataSource(&placeholderSource{view: second})
	if g.blank.view != second {
		t.Fatal("expected the new source's placeholder after the swap")
	}
	if first.Visible() {
		t.Fatal("expected the old placeholder to be hidden")
	}
	if len(g.placeholderHolder.Objects) != 1 || g.placeholderHolder.Objects[0] != second {
		t.Fatal("expected only the new placeholder in the render tree")
	}

	g.SetDataSource(&fakeSource{})
	if g.blank.shown() || g.placeholderHolder.Visible() {
		t.Fatal("expected no placeholder for a source without one")
	}
	if g.scroll.Direction != container.ScrollVerticalOnly {
		t.Fatalf("expected vertical scrolling to be restored, got %v", g.scroll.Direction)
	}
}

func TestGridView_InvertedRubberBandTwiceRestores(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g, d := newTestGrid(t, &fakeSource{count: 30})
	click(g, cellCenter(g, 0), 0)
	click(g, cellCenter(g, 4), fyne.KeyModifierControl)
	if got := g.IndexesForSelectedCells().String(); got != "{0,4}" {
		t.Fatalf("expected {0,4} to start with, got %s", got)
	}

	band := func() {
		g.pointerDown(fyne.NewPos(10, 255), fyne.KeyModifierControl)
		g.pointerDragged(fyne.NewPos(300, 300))
		g.pointerDragged(fyne.NewPos(700, 500))
		g.pointerUp()
		g.pointerDragEnd()
	}

	band()
	if got := g.IndexesForSelectedCells().String(); got != "{0,3,5}" {
		t.Fatalf("expected the band to flip the second row, got %s", got)
	}
	band()
	if got := g.IndexesForSelectedCells().String(); got != "{0,4}" {
		t.Fatalf("expected a second band over the same row to restore {0,4}, got %s", got)
	}
	if d.selectionChanges != 4 {
		t.Fatalf("expected one notification per gesture, got %d", d.selectionChanges)
	}
}
