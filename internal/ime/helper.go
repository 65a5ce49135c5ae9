package ime

import (
	"fmt"

	"github.com/bnema/wayime/internal/signal"
)

// Helper wires the text-input, input-method and virtual-keyboard
// managers of one seat together. The protocol layer hands it every new
// object; the helper keeps focus, the input method session, the keyboard
// grab and the popups consistent from then on.
type Helper struct {
	seat       Seat
	textInputs *TextInputRegistry
	focus      *FocusCoordinator
	session    *InputMethodSession
	grabs      *KeyboardGrabBridge
	popups     *PopupTracker
	keyboards  *VirtualKeyboardRegistry

	seatListeners signal.Group
}

// NewHelper creates the helper for seat and starts following its
// keyboard focus.
func NewHelper(seat Seat) *Helper {
	h := &Helper{
		seat:      seat,
		focus:     &FocusCoordinator{seat: seat},
		session:   &InputMethodSession{seat: seat},
		grabs:     &KeyboardGrabBridge{seat: seat},
		popups:    &PopupTracker{},
		keyboards: &VirtualKeyboardRegistry{seat: seat},
	}
	h.textInputs = newTextInputRegistry(seat, h.focus)

	h.focus.registry = h.textInputs
	h.focus.session = h.session
	h.focus.popups = h.popups

	h.session.focus = h.focus
	h.session.grabs = h.grabs
	h.session.popups = h.popups

	h.grabs.keyboards = h.keyboards
	h.grabs.session = h.session

	h.seatListeners.Add(seat.Events().KeyboardFocusChanged.Connect(func(Surface) {
		h.focus.ResendKeyboardFocus()
	}))

	return h
}

// Close stops following the seat. Objects already handed to the helper
// keep their connections until they are destroyed.
func (h *Helper) Close() {
	h.seatListeners.Disconnect()
}

func (h *Helper) Seat() Seat {
	return h.seat
}

// HandleNewTextInput is called by the text-input managers of every
// protocol version.
func (h *Helper) HandleNewTextInput(ti TextInput) {
	h.textInputs.Register(ti)
}

// HandleNewInputMethod is called by the input-method manager.
func (h *Helper) HandleNewInputMethod(im InputMethod) {
	h.session.Bind(im)
}

// HandleNewVirtualKeyboard is called by the virtual-keyboard manager.
func (h *Helper) HandleNewVirtualKeyboard(vk VirtualKeyboard) {
	h.keyboards.Add(vk)
}

func (h *Helper) FocusedTextInput() TextInput {
	return h.focus.Focused()
}

func (h *Helper) InputMethod() InputMethod {
	return h.session.Bound()
}

func (h *Helper) ActiveKeyboardGrab() KeyboardGrab {
	return h.grabs.Active()
}

func (h *Helper) VirtualKeyboards() []VirtualKeyboard {
	return h.keyboards.Keyboards()
}

func (h *Helper) TextInputs() *TextInputRegistry {
	return h.textInputs
}

// Popups exposes the popup tracker so callers can observe popups being
// added and removed.
func (h *Helper) Popups() *PopupTracker {
	return h.popups
}

// Snapshot is a printable summary of a helper's state.
type Snapshot struct {
	Seat             string
	KeyboardFocus    string
	Keyboard         string
	TextInputs       int
	FocusedTextInput string
	InputMethod      string
	KeyboardGrab     string
	Popups           int
	VirtualKeyboards int
}

func (h *Helper) Snapshot() Snapshot {
	snap := Snapshot{
		Seat:             h.seat.Name(),
		TextInputs:       h.textInputs.Len(),
		FocusedTextInput: describe(h.focus.Focused()),
		InputMethod:      describe(h.session.Bound()),
		KeyboardGrab:     describe(h.grabs.Active()),
		Popups:           h.popups.Len(),
		VirtualKeyboards: h.keyboards.Len(),
	}
	if s := h.seat.KeyboardFocusSurface(); s != nil {
		snap.KeyboardFocus = describe(s)
	}
	if kb := h.seat.Keyboard(); kb != nil {
		snap.Keyboard = kb.Name()
	}

	return snap
}

func describe(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
