package ime

import (
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/signal"
)

// FocusCoordinator owns the seat's focused text input. Focus only moves
// through Enable, Disable and the destroy handling of the registry.
type FocusCoordinator struct {
	seat     Seat
	registry *TextInputRegistry
	session  *InputMethodSession
	popups   *PopupTracker

	focused TextInput
	commit  signal.Listener
}

// Focused returns the focused text input, or nil.
func (f *FocusCoordinator) Focused() TextInput {
	return f.focused
}

// Enable moves focus to ti. The previous holder, if any, is deactivated
// on the input method and sent leave first.
func (f *FocusCoordinator) Enable(ti TextInput) {
	prev := f.focused
	if prev == ti {
		return
	}

	im := f.session.Bound()
	if prev != nil {
		if im != nil {
			im.SendDeactivate()
			im.SendDone()
		}
		prev.SendLeave()
	}

	f.setFocused(ti)
	logger.Debug("Text input focused", "text_input", ti, "previous", prev)

	if im != nil {
		im.SendActivate()
		im.SendDone()
	}
}

// Disable clears focus if ti holds it. Disabling any other text input is
// a no-op: an enable from another client may already have moved focus.
func (f *FocusCoordinator) Disable(ti TextInput) {
	if ti == nil || f.focused != ti {
		return
	}

	if im := f.session.Bound(); im != nil {
		im.SendDeactivate()
		im.SendDone()
	}
	f.setFocused(nil)
	logger.Debug("Text input unfocused", "text_input", ti)
}

// ResendKeyboardFocus sends leave to the focused text input and enter to
// every text input of the client owning the seat's keyboard focus.
func (f *FocusCoordinator) ResendKeyboardFocus() {
	f.notifyLeave()

	surface := f.seat.KeyboardFocusSurface()
	if surface == nil {
		return
	}
	for ti := range f.registry.MatchingClient(surface.Client()) {
		ti.SendEnter(surface)
	}
}

func (f *FocusCoordinator) notifyLeave() {
	if f.focused != nil {
		f.focused.SendLeave()
	}
}

// committed pushes the focused text input's state to the input method.
func (f *FocusCoordinator) committed(ti TextInput) {
	if ti != f.focused {
		panic("ime: commit delivered for a text input that is not focused")
	}

	if im := f.session.Bound(); im != nil {
		features := ti.Features()
		if features.Has(FeatureSurroundingText) {
			im.SendSurroundingText(ti.SurroundingText())
		}
		im.SendTextChangeCause(ti.TextChangeCause())
		if features.Has(FeatureContentType) {
			im.SendContentType(ti.ContentType())
		}
		im.SendDone()
	}
	f.popups.Broadcast(ti.CursorRect())
}

func (f *FocusCoordinator) setFocused(ti TextInput) {
	if f.focused == ti {
		return
	}
	if f.commit != nil {
		f.commit.Disconnect()
		f.commit = nil
	}

	f.focused = ti
	if ti == nil {
		return
	}

	f.popups.Broadcast(ti.CursorRect())
	f.commit = ti.Events().Commit.Connect(func(struct{}) { f.committed(ti) })
}
