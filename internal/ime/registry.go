package ime

import (
	"iter"
	"slices"

	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/signal"
)

// TextInputRegistry tracks every live text input, whatever seat it was
// created for. It holds no ownership; entries leave the registry when the
// text input announces its destruction.
type TextInputRegistry struct {
	seat    Seat
	focus   *FocusCoordinator
	entries []*textInputEntry
}

type textInputEntry struct {
	ti        TextInput
	listeners signal.Group
	connected bool
}

func newTextInputRegistry(seat Seat, focus *FocusCoordinator) *TextInputRegistry {
	return &TextInputRegistry{seat: seat, focus: focus}
}

// Register starts tracking ti. It returns false if ti was already
// registered.
func (r *TextInputRegistry) Register(ti TextInput) bool {
	if r.find(ti) != nil {
		return false
	}

	e := &textInputEntry{ti: ti}
	r.entries = append(r.entries, e)

	ev := ti.Events()
	e.listeners.Add(ev.Destroy.Connect(func(struct{}) {
		r.remove(e)
		r.focus.Disable(ti)
		e.listeners.Disconnect()
		logger.Debug("Text input destroyed", "text_input", ti)
	}))

	// A text input may ask for focus on a seat it was not created for
	// (text-input-v1 binds its seat on activate), so this is observed
	// for every text input.
	e.listeners.Add(ev.RequestFocus.Connect(func(struct{}) {
		if !sameSeat(ti.Seat(), r.seat) {
			return
		}
		r.connect(e)
		if surface := r.seat.KeyboardFocusSurface(); surface != nil {
			ti.SendEnter(surface)
		}
	}))

	if sameSeat(ti.Seat(), r.seat) {
		r.connect(e)
	}

	logger.Debug("Text input registered", "text_input", ti, "version", ti.Version())
	return true
}

// Contains reports whether ti is registered.
func (r *TextInputRegistry) Contains(ti TextInput) bool {
	return r.find(ti) != nil
}

func (r *TextInputRegistry) Len() int {
	return len(r.entries)
}

// All yields every registered text input in registration order.
func (r *TextInputRegistry) All() iter.Seq[TextInput] {
	return r.filter(func(TextInput) bool { return true })
}

// MatchingClient yields the registered text inputs owned by client, in
// registration order. The sequence may be iterated more than once.
func (r *TextInputRegistry) MatchingClient(client Client) iter.Seq[TextInput] {
	return r.filter(func(ti TextInput) bool { return ti.Client() == client })
}

func (r *TextInputRegistry) filter(keep func(TextInput) bool) iter.Seq[TextInput] {
	return func(yield func(TextInput) bool) {
		for _, e := range slices.Clone(r.entries) {
			if !keep(e.ti) {
				continue
			}
			if !yield(e.ti) {
				return
			}
		}
	}
}

// connect routes enable, disable and leave requests of e to the focus
// coordinator. It happens at most once per text input.
func (r *TextInputRegistry) connect(e *textInputEntry) {
	if e.connected {
		return
	}
	e.connected = true

	ti := e.ti
	ev := ti.Events()
	e.listeners.Add(ev.Enable.Connect(func(struct{}) { r.focus.Enable(ti) }))
	e.listeners.Add(ev.Disable.Connect(func(struct{}) { r.focus.Disable(ti) }))
	e.listeners.Add(ev.RequestLeave.Connect(func(struct{}) { ti.SendLeave() }))
}

func (r *TextInputRegistry) find(ti TextInput) *textInputEntry {
	for _, e := range r.entries {
		if e.ti == ti {
			return e
		}
	}
	return nil
}

func (r *TextInputRegistry) remove(target *textInputEntry) {
	r.entries = slices.DeleteFunc(r.entries, func(e *textInputEntry) bool { return e == target })
}
