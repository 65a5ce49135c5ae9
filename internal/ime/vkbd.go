package ime

import (
	"slices"

	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/signal"
)

// VirtualKeyboardRegistry tracks virtual keyboards and keeps them
// attached to the seat while they live.
type VirtualKeyboardRegistry struct {
	seat      Seat
	keyboards []*virtualKeyboard
}

type virtualKeyboard struct {
	vk      VirtualKeyboard
	destroy signal.Listener
}

// Add attaches vk's device to the seat and tracks it until it is
// destroyed.
func (r *VirtualKeyboardRegistry) Add(vk VirtualKeyboard) {
	if r.index(vk) >= 0 {
		return
	}

	entry := &virtualKeyboard{vk: vk}
	r.keyboards = append(r.keyboards, entry)
	r.seat.AttachInputDevice(vk.Keyboard())
	entry.destroy = vk.Events().Destroy.Connect(func(struct{}) { r.Remove(vk) })

	logger.Debug("Virtual keyboard added", "keyboard", vk.Keyboard().Name(), "client", vk.Client().Name())
}

// Remove detaches vk from the seat. Keyboards that were never added are
// ignored.
func (r *VirtualKeyboardRegistry) Remove(vk VirtualKeyboard) {
	i := r.index(vk)
	if i < 0 {
		return
	}

	entry := r.keyboards[i]
	r.keyboards = slices.Delete(r.keyboards, i, i+1)
	entry.destroy.Disconnect()
	r.seat.DetachInputDevice(vk.Keyboard())

	logger.Debug("Virtual keyboard removed", "keyboard", vk.Keyboard().Name())
}

// Keyboards returns the tracked virtual keyboards in creation order.
func (r *VirtualKeyboardRegistry) Keyboards() []VirtualKeyboard {
	out := make([]VirtualKeyboard, len(r.keyboards))
	for i, e := range r.keyboards {
		out[i] = e.vk
	}
	return out
}

func (r *VirtualKeyboardRegistry) Len() int {
	return len(r.keyboards)
}

// OwnedBy reports whether kb is the device of a tracked virtual keyboard
// created by client.
func (r *VirtualKeyboardRegistry) OwnedBy(kb Keyboard, client Client) bool {
	origin := kb.Origin()
	if !origin.Virtual || origin.Client != client {
		return false
	}
	for _, e := range r.keyboards {
		if e.vk.Keyboard() == kb && e.vk.Client() == client {
			return true
		}
	}
	return false
}

func (r *VirtualKeyboardRegistry) index(vk VirtualKeyboard) int {
	return slices.IndexFunc(r.keyboards, func(e *virtualKeyboard) bool { return e.vk == vk })
}
