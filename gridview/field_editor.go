package gridview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// editorEntry is the text field of the field editor. Escape cancels the
// edit instead of reaching the grid.
type editorEntry struct {
	widget.Entry
	onCancel func()
}

func newEditorEntry() *editorEntry {
	e := &editorEntry{}
	e.ExtendBaseWidget(e)
	return e
}

func (e *editorEntry) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape && e.onCancel != nil {
		e.onCancel()
		return
	}
	e.Entry.TypedKey(ev)
}

// fieldEditor is the single text overlay used to rename items. It is
// attached to at most one index at a time.
type fieldEditor struct {
	entry *editorEntry
	index int
}

func newFieldEditor(onCommit, onCancel func()) *fieldEditor {
	f := &fieldEditor{entry: newEditorEntry(), index: -1}
	f.entry.OnSubmitted = func(string) { onCommit() }
	f.entry.onCancel = onCancel
	f.entry.Hide()
	return f
}

func (f *fieldEditor) active() bool {
	return f.index >= 0
}

func (f *fieldEditor) open(index int, text string) {
	f.index = index
	f.entry.SetText(text)
	f.entry.Show()
}

// close detaches the editor and returns the index it was on and the text.
func (f *fieldEditor) close() (int, string) {
	index, text := f.index, f.entry.Text
	f.index = -1
	f.entry.Hide()
	return index, text
}

// place positions the entry along the bottom edge of frame.
func (f *fieldEditor) place(frame Rect) {
	h := min(f.entry.MinSize().Height, frame.Size.Height)
	f.entry.Resize(fyne.NewSize(frame.Size.Width, h))
	f.entry.Move(fyne.NewPos(frame.Position.X, frame.Position.Y+frame.Size.Height-h))
}

// BeginEditing opens the field editor on index. An edit already running is
// committed first. Nothing happens for indexes out of range.
func (g *GridView) BeginEditing(index int) {
	if index < 0 || index >= g.layout.itemCount {
		return
	}
	if g.editor.active() {
		g.EndEditing(true)
	}

	cell := g.cells.cellForIndex(index, false, nil)
	if cell == nil {
		g.ScrollToIndex(index)
		cell = g.cells.cellForIndex(index, false, nil)
		if cell == nil {
			return
		}
	}

	g.provider.willBeginEditing(index)

	text := ""
	if t, ok := cell.(TitledCell); ok {
		text = t.Title()
	}
	g.editor.open(index, text)
	g.editor.place(g.layout.metrics.cellFrame(index))
	g.content.Refresh()

	if c := g.canvas(); c != nil {
		c.Focus(g.editor.entry)
	}
}

// EndEditing closes the field editor. When commit is set and the edited
// cell has a title, the entered text is written back to it.
func (g *GridView) EndEditing(commit bool) {
	if !g.editor.active() {
		return
	}
	index, text := g.editor.close()
	if commit {
		if t, ok := g.cells.cellForIndex(index, false, nil).(TitledCell); ok {
			t.SetTitle(text)
		}
	}
	g.provider.didEndEditing(index)
	g.content.Refresh()
}

// EditingIndex returns the index being edited, or -1.
func (g *GridView) EditingIndex() int {
	return g.editor.index
}
