package gridview

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ImageCellReuseID is the reuse identifier of cells made by NewImageCell.
const ImageCellReuseID = "image"

// thumbnailDelay postpones loading so that cells flying past during a fast
// scroll do not queue work.
const thumbnailDelay = 200 * time.Millisecond

// ImageCell shows the thumbnail of a local image file above its name. Until
// the thumbnail is ready, or for files that have none, an icon is shown.
type ImageCell struct {
	widget.BaseWidget

	loader   *ThumbnailLoader
	selected bool

	bg        *canvas.Rectangle
	icon      *widget.Icon
	thumbnail *canvas.Image
	label     *widget.Label

	currentPath string
	loadTimer   *time.Timer
}

var (
	_ Cell           = (*ImageCell)(nil)
	_ SelectableCell = (*ImageCell)(nil)
	_ TitledCell     = (*ImageCell)(nil)
	_ ReusableCell   = (*ImageCell)(nil)
)

// NewImageCell creates an image cell loading thumbnails through loader.
func NewImageCell(loader *ThumbnailLoader) *ImageCell {
	c := &ImageCell{
		loader:    loader,
		bg:        canvas.NewRectangle(theme.Color(theme.ColorNameSelection)),
		icon:      widget.NewIcon(theme.FileImageIcon()),
		thumbnail: canvas.NewImageFromImage(nil),
		label:     widget.NewLabel(""),
	}
	c.bg.CornerRadius = theme.InputRadiusSize()
	c.bg.Hide()
	c.thumbnail.FillMode = canvas.ImageFillContain
	c.thumbnail.Hide()
	c.label.Alignment = fyne.TextAlignCenter
	c.label.Truncation = fyne.TextTruncateEllipsis
	c.ExtendBaseWidget(c)
	return c
}

func (c *ImageCell) ReuseIdentifier() string {
	return ImageCellReuseID
}

func (c *ImageCell) Title() string {
	return c.label.Text
}

func (c *ImageCell) SetTitle(title string) {
	c.label.SetText(title)
}

// SetResource shows res instead of a thumbnail, as used for folders.
func (c *ImageCell) SetResource(res fyne.Resource) {
	c.cancelLoad()
	c.currentPath = ""
	c.icon.SetResource(res)
	c.showThumbnail(nil)
}

// SetURI shows the name of u and starts loading its thumbnail.
func (c *ImageCell) SetURI(u fyne.URI) {
	c.label.SetText(u.Name())
	if c.currentPath == u.Path() {
		return
	}
	c.cancelLoad()
	c.currentPath = u.Path()
	c.icon.SetResource(theme.FileImageIcon())

	if c.loader == nil {
		c.showThumbnail(nil)
		return
	}
	if img := c.loader.Cached(u.Path()); img != nil {
		c.showThumbnail(img)
		return
	}
	c.showThumbnail(nil)

	path := u.Path()
	c.loadTimer = time.AfterFunc(thumbnailDelay, func() {
		c.loader.Load(u, func(img image.Image, err error) {
			fyne.Do(func() {
				c.thumbnailLoaded(path, img, err)
			})
		})
	})
}

// thumbnailLoaded shows a finished thumbnail unless the cell has been bound
// to another file since the request was made.
func (c *ImageCell) thumbnailLoaded(path string, img image.Image, err error) {
	if c.currentPath != path || err != nil {
		return
	}
	c.showThumbnail(img)
}

func (c *ImageCell) showThumbnail(img image.Image) {
	c.thumbnail.Image = img
	if img == nil {
		c.thumbnail.Hide()
		c.icon.Show()
	} else {
		c.icon.Hide()
		c.thumbnail.Show()
	}
	c.thumbnail.Refresh()
}

func (c *ImageCell) cancelLoad() {
	if c.loadTimer != nil {
		c.loadTimer.Stop()
		c.loadTimer = nil
	}
}

func (c *ImageCell) SetSelected(selected bool) {
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

func (c *ImageCell) PrepareForReuse() {
	c.cancelLoad()
	c.currentPath = ""
	c.SetSelected(false)
	c.label.SetText("")
	c.icon.SetResource(theme.FileImageIcon())
	c.showThumbnail(nil)
}

func (c *ImageCell) CreateRenderer() fyne.WidgetRenderer {
	return &imageCellRenderer{cell: c}
}

type imageCellRenderer struct {
	cell *ImageCell
}

func (r *imageCellRenderer) Layout(size fyne.Size) {
	c := r.cell
	c.bg.Resize(size)

	labelHeight := min(c.label.MinSize().Height, size.Height)
	c.label.Resize(fyne.NewSize(size.Width, labelHeight))
	c.label.Move(fyne.NewPos(0, size.Height-labelHeight))

	pad := theme.Padding()
	side := max(min(size.Width, size.Height-labelHeight)-pad*2, 0)
	pos := fyne.NewPos((size.Width-side)/2, pad)
	c.icon.Resize(fyne.NewSquareSize(side))
	c.icon.Move(pos)
	c.thumbnail.Resize(fyne.NewSquareSize(side))
	c.thumbnail.Move(pos)
}

func (r *imageCellRenderer) MinSize() fyne.Size {
	return r.cell.label.MinSize()
}

func (r *imageCellRenderer) Refresh() {
	r.cell.bg.FillColor = theme.Color(theme.ColorNameSelection)
	r.cell.bg.Refresh()
	r.cell.icon.Refresh()
	r.cell.thumbnail.Refresh()
	r.cell.label.Refresh()
}

func (r *imageCellRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.cell.bg, r.cell.icon, r.cell.thumbnail, r.cell.label}
}

func (r *imageCellRenderer) Destroy() {
	r.cell.cancelLoad()
}
