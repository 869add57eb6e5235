package gridview

import (
	"time"

	"fyne.io/fyne/v2"
)

// resizeLayout wraps a layout and reports real size changes. Bursts, such as
// a window being dragged larger, are coalesced into at most one callback per
// interval.
type resizeLayout struct {
	internal fyne.Layout
	onResize func()

	lastSize  fyne.Size
	lastFired time.Time
	timer     *time.Timer
}

func (r *resizeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	r.internal.Layout(objects, size)
	if r.onResize == nil {
		return
	}

	// Layouts also run for reasons other than a resize.
	if abs32(size.Width-r.lastSize.Width) < 0.5 && abs32(size.Height-r.lastSize.Height) < 0.5 {
		return
	}
	r.lastSize = size
	r.scheduleResize()
}

func (r *resizeLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return r.internal.MinSize(objects)
}

func (r *resizeLayout) scheduleResize() {
	// The callback runs outside of the layout pass so that it may change
	// the UI.
	const minInterval = 60 * time.Millisecond

	now := time.Now()
	elapsed := now.Sub(r.lastFired)
	if elapsed >= minInterval {
		r.lastFired = now
		fyne.Do(r.onResize)
		return
	}

	delay := max(minInterval-elapsed, 0)
	if r.timer == nil {
		r.timer = time.AfterFunc(delay, func() {
			fyne.Do(func() {
				r.timer = nil
				r.lastFired = time.Now()
				if r.onResize != nil {
					r.onResize()
				}
			})
		})
		return
	}
	r.timer.Reset(delay)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
