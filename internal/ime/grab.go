package ime

import (
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/signal"
)

// KeyboardGrabBridge installs the input method's keyboard grab as the
// seat's key event sink. At most one grab is active per seat.
type KeyboardGrabBridge struct {
	seat      Seat
	keyboards *VirtualKeyboardRegistry
	session   *InputMethodSession

	active *activeGrab
}

type activeGrab struct {
	grab      KeyboardGrab
	listeners signal.Group
}

// interceptor is what the seat calls while a grab is installed. It
// carries exactly the bridge and the grab it serves.
type interceptor struct {
	bridge *KeyboardGrabBridge
	grab   KeyboardGrab
}

func (i *interceptor) Key(src Keyboard, ev KeyEvent) {
	if i.bridge.selfGenerated(src, i.grab) {
		i.bridge.seat.DefaultKeyboardGrab().Key(src, ev)
		return
	}
	i.grab.SendKey(ev)
}

func (i *interceptor) Modifiers(src Keyboard, mods Modifiers) {
	if i.bridge.selfGenerated(src, i.grab) {
		i.bridge.seat.DefaultKeyboardGrab().Modifiers(src, mods)
		return
	}
	i.grab.SendModifiers(mods)
}

// Active returns the active grab, or nil.
func (b *KeyboardGrabBridge) Active() KeyboardGrab {
	if b.active == nil {
		return nil
	}
	return b.active.grab
}

// Install makes grab the seat's keyboard grab, tearing down any grab
// that is already active. Grabs of an input method that is not bound are
// ignored.
func (b *KeyboardGrabBridge) Install(grab KeyboardGrab) {
	if im := grab.InputMethod(); im == nil || b.session.Bound() != im {
		logger.Debug("Ignoring keyboard grab of stale input method", "grab", grab)
		return
	}

	if b.active != nil {
		b.end(b.active)
		b.active = nil
	}

	a := &activeGrab{grab: grab}
	b.active = a

	b.setKeyboard(grab, b.seat.Keyboard())
	a.listeners.Add(b.seat.Events().KeyboardChanged.Connect(func(kb Keyboard) {
		b.setKeyboard(grab, kb)
	}))
	b.seat.KeyboardStartGrab(&interceptor{bridge: b, grab: grab})
	a.listeners.Add(grab.Events().Destroy.Connect(func(struct{}) { b.Remove(grab) }))

	logger.Debug("Keyboard grab installed", "grab", grab, "seat", b.seat.Name())
}

// Remove ends grab if it is the active grab.
func (b *KeyboardGrabBridge) Remove(grab KeyboardGrab) {
	if b.active == nil || b.active.grab != grab {
		return
	}
	b.end(b.active)
	b.active = nil
	logger.Debug("Keyboard grab removed", "grab", grab, "seat", b.seat.Name())
}

// Release ends the active grab if it belongs to im.
func (b *KeyboardGrabBridge) Release(im InputMethod) {
	if b.active == nil || b.active.grab.InputMethod() != im {
		return
	}
	b.Remove(b.active.grab)
}

// end restores the keyboard's modifier state and native key handling.
func (b *KeyboardGrabBridge) end(a *activeGrab) {
	a.listeners.Disconnect()
	if kb := a.grab.Keyboard(); kb != nil {
		b.seat.KeyboardSendModifiers(kb.Modifiers())
	}
	b.seat.KeyboardEndGrab()
}

// setKeyboard points grab at kb, except when kb is a virtual keyboard of
// the grabbing client: the input method must not receive the keymap of
// its own synthetic device.
func (b *KeyboardGrabBridge) setKeyboard(grab KeyboardGrab, kb Keyboard) {
	if kb == nil {
		grab.SetKeyboard(nil)
		return
	}
	if origin := kb.Origin(); origin.Virtual && origin.Client == grab.Client() {
		return
	}
	grab.SetKeyboard(kb)
}

func (b *KeyboardGrabBridge) selfGenerated(src Keyboard, grab KeyboardGrab) bool {
	return src != nil && b.keyboards.OwnedBy(src, grab.Client())
}
