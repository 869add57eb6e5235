package gridview

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
)

// selectionBox is the rubber band drawn while sweeping over the grid. Its
// corners are kept in content coordinates so it stays anchored while the
// grid auto-scrolls.
type selectionBox struct {
	rect *canvas.Rectangle

	startPos fyne.Position
	curPos   fyne.Position
	active   bool
}

func newSelectionBox() *selectionBox {
	b := &selectionBox{rect: canvas.NewRectangle(color.Transparent)}
	b.rect.StrokeColor = theme.Color(theme.ColorNamePrimary)
	b.rect.StrokeWidth = 2

	r, g, bl, _ := theme.Color(theme.ColorNameFocus).RGBA()
	b.rect.FillColor = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: 64}
	b.rect.Hide()
	return b
}

func (b *selectionBox) begin(start fyne.Position) {
	b.active = true
	b.startPos = start
	b.curPos = start
	b.rect.Show()
}

func (b *selectionBox) update(cur fyne.Position) Rect {
	b.curPos = cur
	r := b.bounds()
	b.rect.Move(r.Position)
	b.rect.Resize(r.Size)
	return r
}

func (b *selectionBox) end() {
	if !b.active {
		return
	}
	b.active = false
	b.rect.Hide()
	b.rect.Refresh()
}

func (b *selectionBox) bounds() Rect {
	return rectFromPoints(b.startPos, b.curPos)
}
