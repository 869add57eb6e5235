package gridview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// blankState swaps a placeholder view in while the grid is empty. Scrolling
// is switched off for as long as the placeholder shows and the previous
// direction is restored afterwards.
type blankState struct {
	view              fyne.CanvasObject
	previousDirection container.ScrollDirection
}

func (b *blankState) shown() bool {
	return b.view != nil
}

func (b *blankState) show(view fyne.CanvasObject, scroll *container.Scroll) {
	if view == nil || b.view != nil {
		return
	}
	b.view = view
	b.previousDirection = scroll.Direction
	scroll.Direction = container.ScrollNone
	scroll.Offset = fyne.NewPos(0, 0)
	view.Show()
}

func (b *blankState) hide(scroll *container.Scroll) {
	if b.view == nil {
		return
	}
	b.view.Hide()
	b.view = nil
	scroll.Direction = b.previousDirection
}

// updateBlankState shows or hides the placeholder to match the item count.
func (g *GridView) updateBlankState() bool {
	empty := g.layout.itemCount == 0
	switch {
	case empty && !g.blank.shown() && g.provider.sourceCaps.placeholder:
		g.blank.show(g.provider.placeholder(), g.scroll)
		return g.blank.shown()
	case !empty && g.blank.shown():
		g.blank.hide(g.scroll)
		return true
	}
	return false
}
