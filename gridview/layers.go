package gridview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

type layerKind int

const (
	layerBackground layerKind = iota
	layerContent
	layerDragIndicator
	layerForeground
	layerPlaceholder
)

// layer is one entry of the grid's render tree, bottom first. Decorative
// layers are marked non-interactive and are skipped by hitTest whatever
// objects they hold.
type layer struct {
	kind        layerKind
	object      fyne.CanvasObject
	interactive bool
}

// hitTest returns the topmost interactive, visible layer under p. All layers
// span the whole grid so bounds is the only geometry needed.
func hitTest(layers []layer, p fyne.Position, bounds fyne.Size) (layer, bool) {
	if !NewRect(0, 0, bounds.Width, bounds.Height).Contains(p) {
		return layer{}, false
	}
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if !l.interactive || l.object == nil || !l.object.Visible() {
			continue
		}
		return l, true
	}
	return layer{}, false
}

// layers returns the render tree in paint order.
func (g *GridView) layers() []layer {
	ls := make([]layer, 0, 5)
	if g.background != nil {
		ls = append(ls, layer{kind: layerBackground, object: g.background})
	}
	ls = append(ls, layer{kind: layerContent, object: g.scroll, interactive: true})
	ls = append(ls, layer{kind: layerDragIndicator, object: g.dragIndicator})
	if g.foreground != nil {
		ls = append(ls, layer{kind: layerForeground, object: g.foreground})
	}
	if g.blank.shown() {
		ls = append(ls, layer{kind: layerPlaceholder, object: g.blank.view, interactive: true})
	}
	return ls
}

// resolveDragTarget maps a content position to the most specific drop
// target: a visible cell implementing DropTarget, else the grid itself.
func (g *GridView) resolveDragTarget(p fyne.Position) dragTarget {
	view := p.Subtract(g.scroll.Offset)
	if l, ok := hitTest(g.layers(), view, g.Size()); ok && l.kind == layerContent {
		if index := g.layout.metrics.indexAtPoint(p); index >= 0 {
			if t, ok := g.cells.cellForIndex(index, false, nil).(DropTarget); ok {
				return dragTarget{index: index, target: t}
			}
		}
	}
	return dragTarget{index: -1, target: g.root}
}

// receivesInput reports whether obj, or anything in the containers below
// it, is a target of Fyne's event dispatch.
func receivesInput(obj fyne.CanvasObject) bool {
	switch obj.(type) {
	case fyne.Tappable, fyne.SecondaryTappable, fyne.DoubleTappable,
		fyne.Draggable, fyne.Scrollable, fyne.Focusable,
		desktop.Mouseable, desktop.Hoverable:
		return true
	}
	if c, ok := obj.(*fyne.Container); ok {
		for _, child := range c.Objects {
			if receivesInput(child) {
				return true
			}
		}
	}
	return false
}
