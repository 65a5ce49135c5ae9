package ime

import (
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/signal"
)

// InputMethodSession holds the seat's single bound input method.
type InputMethodSession struct {
	seat   Seat
	focus  *FocusCoordinator
	grabs  *KeyboardGrabBridge
	popups *PopupTracker

	bound     InputMethod
	listeners signal.Group
}

// Bound returns the bound input method, or nil.
func (s *InputMethodSession) Bound() InputMethod {
	return s.bound
}

// Bind makes im the seat's input method. If one is already bound, im is
// sent unavailable and the existing binding is left alone. Input methods
// created for another seat are ignored.
func (s *InputMethodSession) Bind(im InputMethod) bool {
	if !sameSeat(im.Seat(), s.seat) {
		logger.Debug("Ignoring input method for another seat", "input_method", im, "seat", s.seat.Name())
		return false
	}
	if s.bound != nil {
		logger.Warn("Ignoring second input method on the same seat", "input_method", im, "bound", s.bound)
		im.SendUnavailable()
		return false
	}

	s.bound = im
	ev := im.Events()
	s.listeners.Add(ev.Commit.Connect(func(struct{}) { s.committed() }))
	s.listeners.Add(ev.NewKeyboardGrab.Connect(func(grab KeyboardGrab) { s.grabs.Install(grab) }))
	s.listeners.Add(ev.NewPopupSurface.Connect(func(popup PopupSurface) { s.newPopup(popup) }))
	s.listeners.Add(ev.Destroy.Connect(func(struct{}) { s.Unbind(im) }))

	logger.Info("Input method bound", "input_method", im, "seat", s.seat.Name())

	// Give the new input method a chance to see the current focus.
	s.focus.ResendKeyboardFocus()
	return true
}

// Unbind clears the binding if im is the bound input method, drops its
// keyboard grab and popups, and tells the focused text input that the
// input method left.
func (s *InputMethodSession) Unbind(im InputMethod) {
	if im == nil || s.bound != im {
		return
	}

	s.listeners.Disconnect()
	s.grabs.Release(im)
	s.popups.Clear()
	s.bound = nil
	logger.Info("Input method unbound", "input_method", im, "seat", s.seat.Name())

	s.focus.notifyLeave()
}

// committed forwards the bound input method's content to the focused
// text input. Content with no focused text input is dropped.
func (s *InputMethodSession) committed() {
	im := s.bound
	if im == nil {
		panic("ime: input method commit without a bound input method")
	}

	ti := s.focus.Focused()
	if ti == nil {
		logger.Debug("Dropping input method commit without focused text input", "input_method", im)
		return
	}
	ti.HandleIMCommitted(im)
}

func (s *InputMethodSession) newPopup(popup PopupSurface) {
	ti := s.focus.Focused()
	if ti == nil {
		logger.Debug("Refusing popup surface without focused text input", "popup", popup)
		return
	}
	s.popups.Add(popup, ti.FocusedSurface(), ti.CursorRect())
}
