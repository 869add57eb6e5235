package gridview

import (
	"time"

	"fyne.io/fyne/v2"
)

// toggleModifiers flip single items in and out of the selection: Control on
// Linux and Windows, Command on macOS.
const toggleModifiers = fyne.KeyModifierControl | fyne.KeyModifierSuper

// pressState describes the primary button press in progress.
type pressState struct {
	active   bool
	index    int
	point    fyne.Position
	modifier fyne.KeyModifier

	// collapse is set for a plain press on a selected cell. The selection
	// collapses to that cell on release unless a drag started.
	collapse bool
	// ownsGesture is set when the press opened the selection gesture.
	ownsGesture bool
}

func (g *GridView) focus() {
	if c := g.canvas(); c != nil {
		c.Focus(g)
	}
}

func (g *GridView) pointerDown(p fyne.Position, mods fyne.KeyModifier) {
	if g.press.active {
		g.finishPress()
	}
	g.EndEditing(true)

	index := g.layout.metrics.indexAtPoint(p)
	g.press = pressState{
		active:      true,
		index:       index,
		point:       p,
		modifier:    mods,
		ownsGesture: g.selection.beginGesture(),
	}

	count := g.layout.itemCount
	switch {
	case index < 0:
		if mods&(toggleModifiers|fyne.KeyModifierShift) == 0 {
			g.selection.clear()
		}
	case mods&toggleModifiers != 0:
		g.selection.toggle(NewIndexSet(index), count)
	case mods&fyne.KeyModifierShift != 0:
		g.selection.extend(index, count)
	case g.selection.contains(index):
		g.press.collapse = true
		g.drag.arm(p, index)
	default:
		g.selection.selectOnly(index, count)
		g.drag.arm(p, index)
	}
	g.refreshSelection()
}

func (g *GridView) pointerDragged(p fyne.Position) {
	if !g.press.active {
		g.pointerDown(p, currentModifiers())
	}

	if g.drag.state != dragIdle {
		if g.drag.move(p, g.startDragSession) {
			g.press.collapse = false
			g.updateDragIndicator()
			g.updateAutoScroll(p.Subtract(g.scroll.Offset))
		}
		return
	}

	if !g.box.active {
		g.box.begin(g.press.point)
	}
	g.updateBand(p)
	g.updateAutoScroll(p.Subtract(g.scroll.Offset))
}

// updateBand applies the rubber band ending at p to the selection.
func (g *GridView) updateBand(p fyne.Position) {
	r := g.box.update(p)
	swept := g.layout.metrics.indexesInRect(r)
	mods := g.press.modifier
	g.selection.sweep(swept, mods&toggleModifiers != 0, mods&fyne.KeyModifierShift != 0)
	g.refreshSelection()
	g.content.Refresh()
}

// pointerUp handles the release of a click. Releases ending a rubber band
// or a drag are left to pointerDragEnd, which may arrive after this.
func (g *GridView) pointerUp() {
	if !g.press.active || g.box.active || g.drag.dragging() {
		return
	}
	g.drag.disarm()

	index := g.press.index
	plain := g.press.modifier&(toggleModifiers|fyne.KeyModifierShift) == 0
	if g.press.collapse && index >= 0 {
		g.selection.selectOnly(index, g.layout.itemCount)
	}
	g.finishPress()

	if index >= 0 && plain {
		g.detectDoubleClick(index)
	}
}

func (g *GridView) pointerDragEnd() {
	g.autoScroll.halt()

	switch {
	case g.box.active:
		g.box.end()
		g.content.Refresh()
	case g.drag.dragging():
		local := g.drag.ctx.lastPoint.Subtract(g.scroll.Offset)
		size := g.Size()
		if NewRect(0, 0, size.Width, size.Height).Contains(local) {
			g.drag.drop()
		} else {
			g.drag.cancel()
		}
		g.updateDragIndicator()
	default:
		g.drag.disarm()
	}

	g.press.collapse = false
	g.finishPress()
}

func (g *GridView) finishPress() {
	if !g.press.active {
		return
	}
	owns := g.press.ownsGesture
	g.press = pressState{index: -1}
	if owns {
		g.finishGesture()
	} else {
		g.refreshSelection()
	}
}

func (g *GridView) detectDoubleClick(index int) {
	now := time.Now()
	if index == g.lastClickIndex && now.Sub(g.lastClick) < doubleTapDelay() {
		g.lastClick = time.Time{}
		g.lastClickIndex = -1
		g.provider.doubleClicked(index)
		return
	}
	g.lastClick = now
	g.lastClickIndex = index
}

func doubleTapDelay() time.Duration {
	if app := fyne.CurrentApp(); app != nil {
		if d := app.Driver().DoubleTapDelay(); d > 0 {
			return d
		}
	}
	return doubleClickFallback * time.Millisecond
}

// startDragSession captures the selection and the payloads of the dragged
// items when the pointer leaves the drag threshold.
func (g *GridView) startDragSession() *DraggingInfo {
	indexes := g.selection.indexes.Clone()
	info := &DraggingInfo{Source: g, SourceIndexes: indexes}
	indexes.Each(func(i int) bool {
		if p := g.provider.payload(i); p != nil {
			info.Payloads = append(info.Payloads, p)
		}
		return true
	})
	return info
}

// updateDragIndicator outlines the whole grid while it is the drop target
// and accepts the drop.
func (g *GridView) updateDragIndicator() {
	show := g.drag.currentTarget() == -1 && g.drag.ctx.lastOperation != DragOperationNone
	if show == g.dragIndicator.Visible() {
		return
	}
	if show {
		g.dragIndicator.Show()
	} else {
		g.dragIndicator.Hide()
	}
	g.dragIndicator.Refresh()
}

// showContextMenu asks the data source for a menu for the items under p. A
// click on an unselected item selects it first.
func (g *GridView) showContextMenu(p fyne.Position) {
	g.DismissMenu()
	g.EndEditing(true)

	if index := g.layout.metrics.indexAtPoint(p); index >= 0 && !g.selection.contains(index) {
		g.withGesture(func() { g.selection.selectOnly(index, g.layout.itemCount) })
	}
	menu := g.provider.menu(g.selection.indexes.Clone())
	if menu == nil {
		return
	}
	g.ShowMenu(menu, p, g.content)
}

func (g *GridView) FocusGained() {}
func (g *GridView) FocusLost()   {}

func (g *GridView) TypedRune(rune) {}

func (g *GridView) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyEscape:
		if g.drag.dragging() {
			g.cancelDrag()
			return
		}
		g.EndEditing(false)
	case fyne.KeyReturn, fyne.KeyEnter:
		index := g.selection.cursor
		if !g.selection.contains(index) {
			index = g.selection.indexes.First()
		}
		g.BeginEditing(index)
	case fyne.KeyLeft:
		g.moveCursor(-1)
	case fyne.KeyRight:
		g.moveCursor(1)
	case fyne.KeyUp:
		g.moveCursor(-g.layout.metrics.columns)
	case fyne.KeyDown:
		g.moveCursor(g.layout.metrics.columns)
	case fyne.KeyHome:
		g.moveCursor(-g.layout.itemCount)
	case fyne.KeyEnd:
		g.moveCursor(g.layout.itemCount)
	}
}

func (g *GridView) TypedShortcut(s fyne.Shortcut) {
	if _, ok := s.(*fyne.ShortcutSelectAll); ok {
		g.SelectAll()
	}
}

func (g *GridView) moveCursor(delta int) {
	extend := currentModifiers()&fyne.KeyModifierShift != 0
	target := -1
	g.withGesture(func() {
		target = g.selection.move(delta, extend, g.layout.itemCount)
	})
	if target >= 0 {
		g.ScrollToIndex(target)
	}
}

func (g *GridView) cancelDrag() {
	g.autoScroll.halt()
	g.drag.cancel()
	g.updateDragIndicator()
	g.finishPress()
}

// HandleDroppedURIs runs a drop coming from outside the application, as
// reported by fyne.Window.SetOnDropped. pos is in canvas coordinates. It
// reports whether the drop was accepted.
func (g *GridView) HandleDroppedURIs(pos fyne.Position, uris []fyne.URI) bool {
	if g.drag.dragging() || len(uris) == 0 {
		return false
	}
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	local := pos.Subtract(app.Driver().AbsolutePositionForObject(g))
	size := g.Size()
	if !NewRect(0, 0, size.Width, size.Height).Contains(local) {
		return false
	}
	return g.dropExternal(local.Add(g.scroll.Offset), uris)
}

// dropExternal runs a one shot drag session at content position p.
func (g *GridView) dropExternal(p fyne.Position, uris []fyne.URI) bool {
	info := &DraggingInfo{URIs: uris, SourceIndexes: &IndexSet{}}
	g.drag.begin(info, p)
	g.drag.update(p)
	accepted := g.drag.drop()
	g.updateDragIndicator()
	return accepted
}

// rootDropTarget answers drags over the grid itself through the delegate.
type rootDropTarget struct {
	grid *GridView
}

func (r *rootDropTarget) DraggingEntered(info *DraggingInfo) DragOperation {
	return r.grid.provider.validateDrop(info)
}

func (r *rootDropTarget) DraggingUpdated(info *DraggingInfo) DragOperation {
	return r.grid.provider.draggingUpdated(info)
}

func (r *rootDropTarget) DraggingExited(*DraggingInfo) {}

func (r *rootDropTarget) PerformDrop(info *DraggingInfo) bool {
	return r.grid.provider.acceptDrop(info)
}
