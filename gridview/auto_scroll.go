package gridview

import (
	"time"

	"fyne.io/fyne/v2"
)

// autoScroller scrolls the grid while a rubber band or a drag is held near
// the top or bottom edge of the viewport.
type autoScroller struct {
	ticker *time.Ticker
	stop   chan struct{}
	dir    int
	step   float32

	// viewport is the last pointer position relative to the viewport.
	viewport fyne.Position
}

func (a *autoScroller) running() bool {
	return a.ticker != nil
}

func (a *autoScroller) halt() {
	if a.ticker == nil {
		return
	}
	a.ticker.Stop()
	a.ticker = nil
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
	a.dir = 0
	a.step = 0
}

func (a *autoScroller) start(tick func()) {
	if a.ticker != nil {
		return
	}
	a.ticker = time.NewTicker(30 * time.Millisecond)
	a.stop = make(chan struct{})

	stop := a.stop
	ticker := a.ticker
	go func() {
		for {
			select {
			case <-ticker.C:
				fyne.Do(tick)
			case <-stop:
				return
			}
		}
	}()
}

// updateAutoScroll starts, adjusts or stops auto scrolling for a pointer at
// viewport coordinates.
func (g *GridView) updateAutoScroll(viewport fyne.Position) {
	a := &g.autoScroll
	a.viewport = viewport

	size := g.scroll.Size()
	zone := min(size.Height*0.15, 48)
	if zone <= 0 {
		a.halt()
		return
	}

	var dir int
	var intensity float32
	if viewport.Y < zone {
		dir = -1
		intensity = (zone - viewport.Y) / zone
	} else if viewport.Y > size.Height-zone {
		dir = 1
		intensity = (viewport.Y - (size.Height - zone)) / zone
	}
	intensity = min(intensity, 1)

	if dir == 0 || intensity <= 0 {
		a.halt()
		return
	}

	maxStep := min(max(g.layout.metrics.cellSize.Height*0.5, 12), 80)
	a.dir = dir
	a.step = intensity * maxStep
	a.start(g.autoScrollTick)
}

func (g *GridView) autoScrollTick() {
	a := &g.autoScroll
	if (!g.box.active && !g.drag.dragging()) || a.dir == 0 || a.step <= 0 {
		a.halt()
		return
	}

	offset := g.scroll.Offset.Y
	maxOffset := g.maxScrollOffset()
	if maxOffset <= 0 {
		a.halt()
		return
	}

	next := min(max(offset+float32(a.dir)*a.step, 0), maxOffset)
	if next == offset {
		a.halt()
		return
	}
	g.ScrollToOffset(next)

	// The pointer has not moved but the content under it has.
	content := a.viewport.Add(g.scroll.Offset)
	if g.box.active {
		g.updateBand(content)
	} else {
		g.drag.update(content)
		g.updateDragIndicator()
	}
}
