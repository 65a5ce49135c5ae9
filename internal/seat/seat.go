// Package seat implements an in-memory seat: keyboard devices, keyboard
// focus and the keyboard grab stack.
package seat

import (
	"slices"

	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/transcript"
)

// KeySink receives the key events that reach the seat's default grab.
type KeySink interface {
	Key(ev ime.KeyEvent) error
	Close() error
}

// Seat groups keyboard devices and the keyboard focus. It satisfies
// ime.Seat.
type Seat struct {
	name   string
	events ime.SeatEvents
	out    *transcript.Transcript

	focus    ime.Surface
	keyboard ime.Keyboard
	devices  []ime.Keyboard

	def  *defaultGrab
	grab ime.KeyboardGrabHandler
	sink KeySink
}

var _ ime.Seat = (*Seat)(nil)

// New creates a seat that records the events it delivers to clients in
// out.
func New(name string, out *transcript.Transcript) *Seat {
	s := &Seat{name: name, out: out}
	s.def = &defaultGrab{seat: s}
	return s
}

// SetKeySink sets where keys reaching the default grab are mirrored. A
// nil sink disables mirroring.
func (s *Seat) SetKeySink(sink KeySink) {
	s.sink = sink
}

func (s *Seat) Name() string {
	return s.name
}

func (s *Seat) Events() *ime.SeatEvents {
	return &s.events
}

func (s *Seat) KeyboardFocusSurface() ime.Surface {
	return s.focus
}

func (s *Seat) Keyboard() ime.Keyboard {
	return s.keyboard
}

// Devices returns the attached keyboard devices in attach order.
func (s *Seat) Devices() []ime.Keyboard {
	return slices.Clone(s.devices)
}

// SetKeyboardFocus moves keyboard focus to surface, or clears it when
// surface is nil.
func (s *Seat) SetKeyboardFocus(surface ime.Surface) {
	if s.focus == surface {
		return
	}
	if s.focus != nil {
		s.out.Record(keyboardObject(s.focus.Client()), "leave")
	}
	s.focus = surface
	if surface != nil {
		s.out.Record(keyboardObject(surface.Client()), "enter", surface)
	}
	s.events.KeyboardFocusChanged.Emit(surface)
}

// SetKeyboard makes kb the seat's active keyboard.
func (s *Seat) SetKeyboard(kb ime.Keyboard) {
	if s.keyboard == kb {
		return
	}
	s.keyboard = kb
	s.events.KeyboardChanged.Emit(kb)
}

func (s *Seat) AttachInputDevice(kb ime.Keyboard) {
	if slices.Contains(s.devices, kb) {
		return
	}
	s.devices = append(s.devices, kb)
	logger.Debug("Input device attached", "seat", s.name, "device", kb.Name())
}

func (s *Seat) DetachInputDevice(kb ime.Keyboard) {
	i := slices.Index(s.devices, kb)
	if i < 0 {
		return
	}
	s.devices = slices.Delete(s.devices, i, i+1)
	if s.keyboard == kb {
		s.SetKeyboard(nil)
	}
	logger.Debug("Input device detached", "seat", s.name, "device", kb.Name())
}

// NotifyKey delivers a key event from src through the current grab.
func (s *Seat) NotifyKey(src ime.Keyboard, ev ime.KeyEvent) {
	s.SetKeyboard(src)
	s.currentGrab().Key(src, ev)
}

// NotifyModifiers updates src's modifier state and delivers it through
// the current grab.
func (s *Seat) NotifyModifiers(src ime.Keyboard, mods ime.Modifiers) {
	if d, ok := src.(*Device); ok {
		d.mods = mods
	}
	s.SetKeyboard(src)
	s.currentGrab().Modifiers(src, mods)
}

func (s *Seat) DefaultKeyboardGrab() ime.KeyboardGrabHandler {
	return s.def
}

func (s *Seat) KeyboardStartGrab(h ime.KeyboardGrabHandler) {
	s.grab = h
	logger.Debug("Keyboard grab started", "seat", s.name)
}

func (s *Seat) KeyboardEndGrab() {
	s.grab = nil
	logger.Debug("Keyboard grab ended", "seat", s.name)
}

// Grabbed reports whether a grab other than the default one is
// installed.
func (s *Seat) Grabbed() bool {
	return s.grab != nil
}

func (s *Seat) KeyboardSendModifiers(mods ime.Modifiers) {
	if s.focus == nil {
		return
	}
	s.out.Record(keyboardObject(s.focus.Client()), "modifiers",
		mods.Depressed, mods.Latched, mods.Locked, mods.Group)
}

func (s *Seat) currentGrab() ime.KeyboardGrabHandler {
	if s.grab != nil {
		return s.grab
	}
	return s.def
}

// defaultGrab delivers key events to the client owning keyboard focus.
type defaultGrab struct {
	seat *Seat
}

func (g *defaultGrab) Key(src ime.Keyboard, ev ime.KeyEvent) {
	s := g.seat
	if s.sink != nil {
		if err := s.sink.Key(ev); err != nil {
			logger.Warn("Key sink failed", "seat", s.name, "error", err)
		}
	}
	if s.focus == nil {
		return
	}
	s.out.Record(keyboardObject(s.focus.Client()), "key", ev.Key, ev.State)
}

func (g *defaultGrab) Modifiers(src ime.Keyboard, mods ime.Modifiers) {
	g.seat.KeyboardSendModifiers(mods)
}

func keyboardObject(client ime.Client) string {
	return "wl_keyboard[" + client.Name() + "]"
}
