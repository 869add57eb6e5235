package gridview

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// DataSource supplies the items of a GridView.
type DataSource interface {
	NumberOfItems(g *GridView) int
	// CellForItem returns the cell for index, normally obtained through
	// g.DequeueReusableCell and configured for the item. Cells must be
	// pointer types.
	CellForItem(g *GridView, index int) Cell
}

// PlaceholderSource is implemented by data sources that provide a view for
// the empty grid.
type PlaceholderSource interface {
	ViewForNoItems(g *GridView) fyne.CanvasObject
}

// EditingBeginner is told before the field editor opens on an item.
type EditingBeginner interface {
	WillBeginEditing(g *GridView, index int)
}

// EditingEnder is told after the field editor closed on an item.
type EditingEnder interface {
	DidEndEditing(g *GridView, index int)
}

// PasteboardSource gives the payload dragged for an item. Returning nil
// leaves the item out of the drag.
type PasteboardSource interface {
	PasteboardPayload(g *GridView, index int) any
}

// MenuSource gives the context menu for a set of items. Returning nil shows
// no menu.
type MenuSource interface {
	MenuForItems(g *GridView, indexes *IndexSet) *fyne.Menu
}

// SelectionObserver is told once per gesture that changed the selection.
type SelectionObserver interface {
	SelectionChanged(g *GridView)
}

// DoubleClickHandler is told about double clicks on items.
type DoubleClickHandler interface {
	DoubleClicked(g *GridView, index int)
}

// DropValidator decides the operation when a drag enters the grid itself.
type DropValidator interface {
	ValidateDrop(g *GridView, info *DraggingInfo) DragOperation
}

// DragUpdateHandler decides the operation while a drag moves over the grid.
type DragUpdateHandler interface {
	DraggingUpdated(g *GridView, info *DraggingInfo) DragOperation
}

// DropAcceptor performs a drop on the grid itself.
type DropAcceptor interface {
	AcceptDrop(g *GridView, info *DraggingInfo) bool
}

type dataSourceCaps struct {
	placeholder      bool
	willBeginEditing bool
	didEndEditing    bool
	pasteboard       bool
	menu             bool
}

type delegateCaps struct {
	selectionChanged bool
	doubleClicked    bool
	validateDrop     bool
	draggingUpdated  bool
	acceptDrop       bool
}

func probeDataSource(source DataSource) dataSourceCaps {
	var caps dataSourceCaps
	if source == nil {
		return caps
	}
	_, caps.placeholder = source.(PlaceholderSource)
	_, caps.willBeginEditing = source.(EditingBeginner)
	_, caps.didEndEditing = source.(EditingEnder)
	_, caps.pasteboard = source.(PasteboardSource)
	_, caps.menu = source.(MenuSource)
	return caps
}

func probeDelegate(delegate any) delegateCaps {
	var caps delegateCaps
	if delegate == nil {
		return caps
	}
	_, caps.selectionChanged = delegate.(SelectionObserver)
	_, caps.doubleClicked = delegate.(DoubleClickHandler)
	_, caps.validateDrop = delegate.(DropValidator)
	_, caps.draggingUpdated = delegate.(DragUpdateHandler)
	_, caps.acceptDrop = delegate.(DropAcceptor)
	return caps
}

// itemProvider wraps the data source and delegate of a grid. Capabilities
// are probed once when either is attached; every call goes through the
// grid's callout guard so that reloads requested from a callback are
// deferred.
type itemProvider struct {
	grid *GridView

	source     DataSource
	sourceCaps dataSourceCaps

	delegate     any
	delegateCaps delegateCaps
}

func (p *itemProvider) setSource(source DataSource) {
	p.source = source
	p.sourceCaps = probeDataSource(source)
}

func (p *itemProvider) setDelegate(delegate any) {
	p.delegate = delegate
	p.delegateCaps = probeDelegate(delegate)
}

func (p *itemProvider) count() int {
	if p.source == nil {
		return 0
	}
	var n int
	p.grid.callout(func() {
		n = p.source.NumberOfItems(p.grid)
	})
	if n < 0 {
		fyne.LogError("grid view: data source reported a negative item count", fmt.Errorf("%w: %d", errIndexOutOfRange, n))
		return 0
	}
	return n
}

func (p *itemProvider) cell(index int) Cell {
	if p.source == nil {
		return nil
	}
	var c Cell
	p.grid.callout(func() {
		c = p.source.CellForItem(p.grid, index)
	})
	return c
}

func (p *itemProvider) placeholder() fyne.CanvasObject {
	if !p.sourceCaps.placeholder {
		return nil
	}
	var view fyne.CanvasObject
	p.grid.callout(func() {
		view = p.source.(PlaceholderSource).ViewForNoItems(p.grid)
	})
	return view
}

func (p *itemProvider) willBeginEditing(index int) {
	if !p.sourceCaps.willBeginEditing {
		return
	}
	p.grid.callout(func() {
		p.source.(EditingBeginner).WillBeginEditing(p.grid, index)
	})
}

func (p *itemProvider) didEndEditing(index int) {
	if !p.sourceCaps.didEndEditing {
		return
	}
	p.grid.callout(func() {
		p.source.(EditingEnder).DidEndEditing(p.grid, index)
	})
}

func (p *itemProvider) payload(index int) any {
	if !p.sourceCaps.pasteboard {
		return nil
	}
	var payload any
	p.grid.callout(func() {
		payload = p.source.(PasteboardSource).PasteboardPayload(p.grid, index)
	})
	return payload
}

func (p *itemProvider) menu(indexes *IndexSet) *fyne.Menu {
	if !p.sourceCaps.menu {
		return nil
	}
	var m *fyne.Menu
	p.grid.callout(func() {
		m = p.source.(MenuSource).MenuForItems(p.grid, indexes)
	})
	return m
}

func (p *itemProvider) selectionChanged() {
	if !p.delegateCaps.selectionChanged {
		return
	}
	p.grid.callout(func() {
		p.delegate.(SelectionObserver).SelectionChanged(p.grid)
	})
}

func (p *itemProvider) doubleClicked(index int) {
	if !p.delegateCaps.doubleClicked {
		return
	}
	p.grid.callout(func() {
		p.delegate.(DoubleClickHandler).DoubleClicked(p.grid, index)
	})
}

func (p *itemProvider) validateDrop(info *DraggingInfo) DragOperation {
	if !p.delegateCaps.validateDrop {
		return DragOperationNone
	}
	op := DragOperationNone
	p.grid.callout(func() {
		op = p.delegate.(DropValidator).ValidateDrop(p.grid, info)
	})
	return op
}

// draggingUpdated falls back to the operation already reported when the
// delegate does not follow drag movement.
func (p *itemProvider) draggingUpdated(info *DraggingInfo) DragOperation {
	if !p.delegateCaps.draggingUpdated {
		return info.Operation
	}
	op := DragOperationNone
	p.grid.callout(func() {
		op = p.delegate.(DragUpdateHandler).DraggingUpdated(p.grid, info)
	})
	return op
}

func (p *itemProvider) acceptDrop(info *DraggingInfo) bool {
	if !p.delegateCaps.acceptDrop {
		return false
	}
	accepted := false
	p.grid.callout(func() {
		accepted = p.delegate.(DropAcceptor).AcceptDrop(p.grid, info)
	})
	return accepted
}
