package protocols

import (
	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/seat"
)

// VirtualKeyboardV1 is a zwp_virtual_keyboard_v1 object. Its keys enter
// the seat like those of any other keyboard device.
type VirtualKeyboardV1 struct {
	id     string
	client *Client
	seat   *seat.Seat
	device *seat.Device
	events ime.VirtualKeyboardEvents

	destroyed bool
}

var _ ime.VirtualKeyboard = (*VirtualKeyboardV1)(nil)

func NewVirtualKeyboardV1(id string, client *Client, s *seat.Seat) *VirtualKeyboardV1 {
	return &VirtualKeyboardV1{
		id:     id,
		client: client,
		seat:   s,
		device: seat.NewVirtualKeyboard(id, client),
	}
}

func (v *VirtualKeyboardV1) String() string {
	return v.id
}

func (v *VirtualKeyboardV1) Key(timeMsec, key uint32, state ime.KeyState) {
	if v.destroyed {
		return
	}
	v.seat.NotifyKey(v.device, ime.KeyEvent{TimeMsec: timeMsec, Key: key, State: state})
}

func (v *VirtualKeyboardV1) Modifiers(mods ime.Modifiers) {
	if v.destroyed {
		return
	}
	v.seat.NotifyModifiers(v.device, mods)
}

func (v *VirtualKeyboardV1) Destroy() {
	if v.destroyed {
		return
	}
	v.events.Destroy.Emit(struct{}{})
	v.destroyed = true
}

func (v *VirtualKeyboardV1) Events() *ime.VirtualKeyboardEvents {
	return &v.events
}

func (v *VirtualKeyboardV1) Client() ime.Client {
	return v.client
}

func (v *VirtualKeyboardV1) Keyboard() ime.Keyboard {
	return v.device
}
