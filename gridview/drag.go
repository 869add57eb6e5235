package gridview

import (
	"math"

	"fyne.io/fyne/v2"
)

type dragState int

const (
	dragIdle dragState = iota
	dragArmed
	dragDragging
)

func (s dragState) String() string {
	switch s {
	case dragArmed:
		return "armed"
	case dragDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// dragTarget is the object a drag is currently over. index is -1 for the
// root of the grid.
type dragTarget struct {
	index  int
	target DropTarget
}

// dragContext lives from the start of a drag session until it ends.
type dragContext struct {
	info          *DraggingInfo
	current       dragTarget
	previous      dragTarget
	hasCurrent    bool
	lastOperation DragOperation
	initialPoint  fyne.Position
	lastPoint     fyne.Position
	updated       bool
}

// dragMachine tracks drag sessions. It only knows targets through resolve,
// which maps a content position to the most specific target under it.
type dragMachine struct {
	state    dragState
	armPoint fyne.Position
	armIndex int
	ctx      *dragContext

	resolve func(p fyne.Position) dragTarget
}

func newDragMachine(resolve func(p fyne.Position) dragTarget) *dragMachine {
	return &dragMachine{resolve: resolve, armIndex: -1}
}

// arm records a press on a selected cell. It has no effect while a session
// is running.
func (d *dragMachine) arm(p fyne.Position, index int) {
	if d.state == dragDragging {
		return
	}
	d.state = dragArmed
	d.armPoint = p
	d.armIndex = index
}

func (d *dragMachine) disarm() {
	if d.state == dragArmed {
		d.reset()
	}
}

// move feeds a pointer position while armed or dragging. When the pointer
// leaves the threshold around the arm point, start is asked for the session
// info and the session begins. It reports whether a session is running.
func (d *dragMachine) move(p fyne.Position, start func() *DraggingInfo) bool {
	switch d.state {
	case dragArmed:
		dx, dy := float64(p.X-d.armPoint.X), float64(p.Y-d.armPoint.Y)
		if math.Hypot(dx, dy) < dragThreshold {
			return false
		}
		d.begin(start(), d.armPoint)
		d.update(p)
		return true
	case dragDragging:
		d.update(p)
		return true
	}
	return false
}

// begin starts a session directly, used for drops from outside the grid.
func (d *dragMachine) begin(info *DraggingInfo, initial fyne.Position) {
	if info == nil {
		info = &DraggingInfo{}
	}
	if info.SourceIndexes == nil {
		info.SourceIndexes = &IndexSet{}
	}
	d.state = dragDragging
	d.ctx = &dragContext{info: info, initialPoint: initial}
}

// update resolves the target under p. Exited and entered are sent only when
// the target changes, repeated events at the same point are dropped.
func (d *dragMachine) update(p fyne.Position) DragOperation {
	if d.state != dragDragging {
		return DragOperationNone
	}
	ctx := d.ctx
	if ctx.updated && p == ctx.lastPoint {
		return ctx.lastOperation
	}
	ctx.updated = true
	ctx.lastPoint = p
	ctx.info.Location = p

	target := d.resolve(p)
	var op DragOperation
	if !ctx.hasCurrent || target != ctx.current {
		if ctx.hasCurrent {
			ctx.current.target.DraggingExited(ctx.info)
		}
		ctx.previous = ctx.current
		ctx.current = target
		ctx.hasCurrent = true
		op = target.target.DraggingEntered(ctx.info)
	} else {
		op = target.target.DraggingUpdated(ctx.info)
	}

	ctx.lastOperation = op
	ctx.info.Operation = op
	return op
}

// drop ends the session on the current target. A target that reported no
// operation is treated as a cancel.
func (d *dragMachine) drop() bool {
	if d.state != dragDragging {
		d.reset()
		return false
	}
	ctx := d.ctx
	if !ctx.hasCurrent || ctx.lastOperation == DragOperationNone {
		d.cancel()
		return false
	}
	accepted := ctx.current.target.PerformDrop(ctx.info)
	d.reset()
	return accepted
}

// cancel returns to idle. The only notification is the final exited.
func (d *dragMachine) cancel() {
	if d.state == dragDragging && d.ctx.hasCurrent {
		d.ctx.current.target.DraggingExited(d.ctx.info)
	}
	d.reset()
}

func (d *dragMachine) reset() {
	d.state = dragIdle
	d.ctx = nil
	d.armIndex = -1
}

func (d *dragMachine) dragging() bool {
	return d.state == dragDragging
}

// currentTarget returns the index of the current target, -1 for the root
// and -2 when there is no session.
func (d *dragMachine) currentTarget() int {
	if d.state != dragDragging || !d.ctx.hasCurrent {
		return -2
	}
	return d.ctx.current.index
}
