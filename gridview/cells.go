package gridview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// LabelCellReuseID is the reuse identifier of cells made by NewLabelCell
// without an explicit identifier.
const LabelCellReuseID = "label"

// LabelCell is a ready-made cell showing an optional icon above a title.
// It draws its own selection and its title can be edited in place.
type LabelCell struct {
	widget.BaseWidget

	reuseID  string
	selected bool

	bg    *canvas.Rectangle
	icon  *widget.Icon
	label *widget.Label
}

var (
	_ Cell           = (*LabelCell)(nil)
	_ SelectableCell = (*LabelCell)(nil)
	_ TitledCell     = (*LabelCell)(nil)
	_ ReusableCell   = (*LabelCell)(nil)
)

// NewLabelCell creates a cell with the given reuse identifier, or
// LabelCellReuseID when reuseID is empty.
func NewLabelCell(reuseID string) *LabelCell {
	if reuseID == "" {
		reuseID = LabelCellReuseID
	}
	c := &LabelCell{
		reuseID: reuseID,
		bg:      canvas.NewRectangle(theme.Color(theme.ColorNameSelection)),
		icon:    widget.NewIcon(nil),
		label:   widget.NewLabel(""),
	}
	c.bg.CornerRadius = theme.InputRadiusSize()
	c.bg.Hide()
	c.icon.Hide()
	c.label.Alignment = fyne.TextAlignCenter
	c.label.Truncation = fyne.TextTruncateEllipsis
	c.ExtendBaseWidget(c)
	return c
}

func (c *LabelCell) ReuseIdentifier() string {
	return c.reuseID
}

func (c *LabelCell) Title() string {
	return c.label.Text
}

func (c *LabelCell) SetTitle(title string) {
	c.label.SetText(title)
}

// SetIcon shows res above the title; nil hides the icon.
func (c *LabelCell) SetIcon(res fyne.Resource) {
	c.icon.SetResource(res)
	if res == nil {
		c.icon.Hide()
	} else {
		c.icon.Show()
	}
	c.Refresh()
}

func (c *LabelCell) Selected() bool {
	return c.selected
}

func (c *LabelCell) SetSelected(selected bool) {
	if c.selected == selected {
		return
	}
	c.selected = selected
	if selected {
		c.bg.Show()
	} else {
		c.bg.Hide()
	}
	c.bg.Refresh()
}

func (c *LabelCell) PrepareForReuse() {
	c.SetSelected(false)
	c.SetIcon(nil)
	c.label.SetText("")
}

func (c *LabelCell) CreateRenderer() fyne.WidgetRenderer {
	return &labelCellRenderer{cell: c}
}

type labelCellRenderer struct {
	cell *LabelCell
}

func (r *labelCellRenderer) Layout(size fyne.Size) {
	c := r.cell
	c.bg.Resize(size)

	labelHeight := min(c.label.MinSize().Height, size.Height)
	c.label.Resize(fyne.NewSize(size.Width, labelHeight))
	c.label.Move(fyne.NewPos(0, size.Height-labelHeight))

	pad := theme.Padding()
	side := max(min(size.Width, size.Height-labelHeight)-pad*2, 0)
	c.icon.Resize(fyne.NewSquareSize(side))
	c.icon.Move(fyne.NewPos((size.Width-side)/2, pad))
}

func (r *labelCellRenderer) MinSize() fyne.Size {
	return r.cell.label.MinSize()
}

func (r *labelCellRenderer) Refresh() {
	r.cell.bg.FillColor = theme.Color(theme.ColorNameSelection)
	r.cell.bg.Refresh()
	r.cell.icon.Refresh()
	r.cell.label.Refresh()
}

func (r *labelCellRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.cell.bg, r.cell.icon, r.cell.label}
}

func (r *labelCellRenderer) Destroy() {}
