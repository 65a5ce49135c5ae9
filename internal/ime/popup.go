package ime

import (
	"slices"

	"github.com/bnema/wayime/internal/signal"
)

// Popup is an input method popup surface anchored to the text cursor of
// Parent.
type Popup struct {
	Handle PopupSurface
	Parent Surface

	destroy signal.Listener
}

// PopupTracker keeps the input method's popup surfaces and their cursor
// anchor.
type PopupTracker struct {
	Added   signal.Signal[*Popup]
	Removed signal.Signal[*Popup]

	popups []*Popup
}

// Add starts tracking handle, sends it rect and notifies Added.
func (t *PopupTracker) Add(handle PopupSurface, parent Surface, rect Rect) *Popup {
	p := &Popup{Handle: handle, Parent: parent}
	t.popups = append(t.popups, p)
	p.destroy = handle.Events().Destroy.Connect(func(struct{}) { t.Remove(handle) })

	handle.SendCursorRect(rect)
	t.Added.Emit(p)
	return p
}

// Remove stops tracking handle and notifies Removed. Unknown handles are
// ignored.
func (t *PopupTracker) Remove(handle PopupSurface) {
	i := slices.IndexFunc(t.popups, func(p *Popup) bool { return p.Handle == handle })
	if i < 0 {
		return
	}

	p := t.popups[i]
	t.popups = slices.Delete(t.popups, i, i+1)
	p.destroy.Disconnect()
	t.Removed.Emit(p)
}

// Clear stops tracking every popup, notifying Removed for each.
func (t *PopupTracker) Clear() {
	for len(t.popups) > 0 {
		t.Remove(t.popups[len(t.popups)-1].Handle)
	}
}

// Broadcast sends rect to every tracked popup.
func (t *PopupTracker) Broadcast(rect Rect) {
	for _, p := range t.popups {
		p.Handle.SendCursorRect(rect)
	}
}

// Popups returns the tracked popups in creation order.
func (t *PopupTracker) Popups() []*Popup {
	return slices.Clone(t.popups)
}

func (t *PopupTracker) Len() int {
	return len(t.popups)
}
