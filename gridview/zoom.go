package gridview

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var zoomLevels = []float32{
	0.5,
	0.75,
	1.0,
	1.25,
	1.5,
	2.0,
}

const defaultZoomLevelIndex = 2 // 1.0

func clampZoomLevelIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(zoomLevels) {
		return len(zoomLevels) - 1
	}
	return i
}

// currentModifiers returns the keyboard modifiers held right now, or 0 when
// the driver cannot tell.
func currentModifiers() fyne.KeyModifier {
	app := fyne.CurrentApp()
	if app == nil {
		return 0
	}
	d, ok := app.Driver().(desktop.Driver)
	if !ok {
		return 0
	}
	return d.CurrentKeyModifiers()
}

func isZoomModifierActive() bool {
	mods := currentModifiers()
	if mods&fyne.KeyModifierControl != 0 {
		return true
	}
	// Command+scroll on macOS.
	return mods&fyne.KeyModifierShortcutDefault != 0
}

// zoomScrollOverlay sits above the scroller and only claims scroll events
// while the zoom modifier is held.
type zoomScrollOverlay struct {
	widget.BaseWidget
	onStep func(steps int)
	accDY  float32
}

func newZoomScrollOverlay(onStep func(steps int)) *zoomScrollOverlay {
	z := &zoomScrollOverlay{onStep: onStep}
	z.ExtendBaseWidget(z)
	return z
}

func (z *zoomScrollOverlay) Visible() bool {
	if !z.BaseWidget.Visible() {
		return false
	}
	return isZoomModifierActive()
}

func (z *zoomScrollOverlay) Scrolled(e *fyne.ScrollEvent) {
	if z.onStep == nil {
		return
	}
	if steps := z.accumulate(e.Scrolled.DY); steps != 0 {
		z.onStep(steps)
	}
}

// accumulate converts scroll deltas into whole zoom steps. A mouse wheel
// notch is about 40 units; smaller touchpad deltas add up.
func (z *zoomScrollOverlay) accumulate(dy float32) int {
	const notch = float32(40)

	if math.IsNaN(float64(dy)) || math.IsInf(float64(dy), 0) {
		return 0
	}
	z.accDY += dy

	var steps int
	for z.accDY >= notch {
		steps++
		z.accDY -= notch
	}
	for z.accDY <= -notch {
		steps--
		z.accDY += notch
	}
	return steps
}

func (z *zoomScrollOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &zoomScrollOverlayRenderer{}
}

var _ fyne.Scrollable = (*zoomScrollOverlay)(nil)

type zoomScrollOverlayRenderer struct{}

func (r *zoomScrollOverlayRenderer) Layout(fyne.Size) {}
func (r *zoomScrollOverlayRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}
func (r *zoomScrollOverlayRenderer) Refresh()                     {}
func (r *zoomScrollOverlayRenderer) Objects() []fyne.CanvasObject { return nil }
func (r *zoomScrollOverlayRenderer) Destroy()                     {}

// zoomScale returns the factor applied to the configured item size.
func (g *GridView) zoomScale() float32 {
	return zoomLevels[clampZoomLevelIndex(g.zoomLevel)]
}

// ZoomLevel returns the index into the zoom steps.
func (g *GridView) ZoomLevel() int {
	return g.zoomLevel
}

// SetZoomLevel selects a zoom step, clamped to the available steps. The level
// is stored in the app preferences when a preferences key is set.
func (g *GridView) SetZoomLevel(level int) {
	level = clampZoomLevelIndex(level)
	if g.zoomLevel == level {
		return
	}
	g.zoomLevel = level
	if g.prefsKey != "" {
		if app := fyne.CurrentApp(); app != nil {
			app.Preferences().SetInt(g.prefsKey+zoomLevelKeySuffix, level)
		}
	}
	g.displayPass()
}

func (g *GridView) adjustZoom(steps int) {
	if steps == 0 {
		return
	}
	g.SetZoomLevel(g.zoomLevel + steps)
}

// SetPreferencesKey makes the grid remember its zoom level under key and
// restores a previously stored level.
func (g *GridView) SetPreferencesKey(key string) {
	g.prefsKey = key
	if key == "" {
		return
	}
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	level := app.Preferences().IntWithFallback(key+zoomLevelKeySuffix, g.zoomLevel)
	g.zoomLevel = clampZoomLevelIndex(level)
	g.displayPass()
}
