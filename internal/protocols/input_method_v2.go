package protocols

import (
	"fmt"

	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/transcript"
)

// InputMethodV2 is a zwp_input_method_v2 object.
type InputMethodV2 struct {
	id     string
	client *Client
	seat   ime.Seat
	out    *transcript.Transcript
	events ime.InputMethodEvents

	pending   ime.InputMethodState
	current   ime.InputMethodState
	serial    uint32
	committed uint32

	grab   *KeyboardGrabV2
	popups []*PopupSurfaceV2

	unavailable bool
	destroyed   bool
}

var _ ime.InputMethod = (*InputMethodV2)(nil)

func NewInputMethodV2(id string, client *Client, seat ime.Seat, out *transcript.Transcript) *InputMethodV2 {
	return &InputMethodV2{id: id, client: client, seat: seat, out: out}
}

func (m *InputMethodV2) String() string {
	return m.id
}

func (m *InputMethodV2) CommitString(text string) {
	m.pending.CommitText = text
}

func (m *InputMethodV2) SetPreeditString(text string, cursorBegin, cursorEnd int32) {
	m.pending.Preedit = ime.Preedit{Text: text, CursorBegin: cursorBegin, CursorEnd: cursorEnd}
}

func (m *InputMethodV2) DeleteSurroundingText(before, after uint32) {
	m.pending.DeleteSurrounding = ime.DeleteSurrounding{Before: before, After: after}
}

// Commit applies the pending content under serial, the number of done
// events the input method had seen. Commits from an unavailable input
// method are ignored.
func (m *InputMethodV2) Commit(serial uint32) {
	if m.destroyed || m.unavailable {
		return
	}
	m.committed = serial
	m.current = m.pending
	m.pending = ime.InputMethodState{}
	m.events.Commit.Emit(struct{}{})
}

// GrabKeyboard creates a keyboard grab named id.
func (m *InputMethodV2) GrabKeyboard(id string) *KeyboardGrabV2 {
	g := &KeyboardGrabV2{id: id, im: m, out: m.out}
	if m.destroyed || m.unavailable {
		return g
	}
	m.grab = g
	m.events.NewKeyboardGrab.Emit(g)
	return g
}

// GetInputPopupSurface creates a popup surface named id drawing into
// surface.
func (m *InputMethodV2) GetInputPopupSurface(id string, surface *Surface) *PopupSurfaceV2 {
	p := &PopupSurfaceV2{id: id, surface: surface, out: m.out}
	if m.destroyed || m.unavailable {
		return p
	}
	m.popups = append(m.popups, p)
	m.events.NewPopupSurface.Emit(p)
	return p
}

// Destroy destroys the popups and the keyboard grab of the input method
// before announcing its own destruction.
func (m *InputMethodV2) Destroy() {
	if m.destroyed {
		return
	}
	for _, p := range m.popups {
		p.Destroy()
	}
	m.popups = nil
	if m.grab != nil {
		m.grab.Release()
		m.grab = nil
	}
	m.events.Destroy.Emit(struct{}{})
	m.destroyed = true
}

func (m *InputMethodV2) Events() *ime.InputMethodEvents {
	return &m.events
}

func (m *InputMethodV2) Client() ime.Client {
	return m.client
}

func (m *InputMethodV2) Seat() ime.Seat {
	return m.seat
}

func (m *InputMethodV2) Current() ime.InputMethodState {
	return m.current
}

// Unavailable reports whether the compositor rejected this input method.
func (m *InputMethodV2) Unavailable() bool {
	return m.unavailable
}

// Serial is the number of done events sent so far.
func (m *InputMethodV2) Serial() uint32 {
	return m.serial
}

// CommittedSerial is the serial of the last applied commit.
func (m *InputMethodV2) CommittedSerial() uint32 {
	return m.committed
}

func (m *InputMethodV2) SendActivate() {
	m.send("activate")
}

func (m *InputMethodV2) SendDeactivate() {
	m.send("deactivate")
}

func (m *InputMethodV2) SendDone() {
	m.serial++
	m.send("done")
}

func (m *InputMethodV2) SendSurroundingText(st ime.SurroundingText) {
	m.send("surrounding_text", fmt.Sprintf("%q", st.Text), st.Cursor, st.Anchor)
}

func (m *InputMethodV2) SendTextChangeCause(cause ime.ChangeCause) {
	m.send("text_change_cause", uint32(cause))
}

func (m *InputMethodV2) SendContentType(ct ime.ContentType) {
	m.send("content_type", ct.Hints, ct.Purpose)
}

func (m *InputMethodV2) SendUnavailable() {
	m.send("unavailable")
	m.unavailable = true
}

func (m *InputMethodV2) send(event string, args ...any) {
	if m.destroyed {
		return
	}
	m.out.Record(m.id, event, args...)
}

// KeyboardGrabV2 is a zwp_input_method_keyboard_grab_v2 object.
type KeyboardGrabV2 struct {
	id     string
	im     *InputMethodV2
	out    *transcript.Transcript
	events ime.KeyboardGrabEvents

	keyboard ime.Keyboard
	released bool
}

var _ ime.KeyboardGrab = (*KeyboardGrabV2)(nil)

func (g *KeyboardGrabV2) String() string {
	return g.id
}

func (g *KeyboardGrabV2) Release() {
	if g.released {
		return
	}
	g.events.Destroy.Emit(struct{}{})
	g.released = true
}

func (g *KeyboardGrabV2) Events() *ime.KeyboardGrabEvents {
	return &g.events
}

func (g *KeyboardGrabV2) Client() ime.Client {
	return g.im.Client()
}

func (g *KeyboardGrabV2) InputMethod() ime.InputMethod {
	return g.im
}

func (g *KeyboardGrabV2) Keyboard() ime.Keyboard {
	return g.keyboard
}

// SetKeyboard sends the keymap and modifier state of kb when the grab
// switches to it.
func (g *KeyboardGrabV2) SetKeyboard(kb ime.Keyboard) {
	if g.keyboard == kb {
		return
	}
	g.keyboard = kb
	if kb == nil || g.released {
		return
	}
	g.out.Record(g.id, "keymap", kb.Name())
	g.SendModifiers(kb.Modifiers())
}

func (g *KeyboardGrabV2) SendKey(ev ime.KeyEvent) {
	if g.released {
		return
	}
	g.out.Record(g.id, "key", ev.TimeMsec, ev.Key, ev.State)
}

func (g *KeyboardGrabV2) SendModifiers(mods ime.Modifiers) {
	if g.released {
		return
	}
	g.out.Record(g.id, "modifiers", mods.Depressed, mods.Latched, mods.Locked, mods.Group)
}

// PopupSurfaceV2 is a zwp_input_popup_surface_v2 object.
type PopupSurfaceV2 struct {
	id      string
	surface *Surface
	out     *transcript.Transcript
	events  ime.PopupSurfaceEvents

	rect      ime.Rect
	destroyed bool
}

var _ ime.PopupSurface = (*PopupSurfaceV2)(nil)

func (p *PopupSurfaceV2) String() string {
	return p.id
}

func (p *PopupSurfaceV2) Surface() *Surface {
	return p.surface
}

// CursorRect is the last rectangle sent to the popup.
func (p *PopupSurfaceV2) CursorRect() ime.Rect {
	return p.rect
}

func (p *PopupSurfaceV2) Destroy() {
	if p.destroyed {
		return
	}
	p.events.Destroy.Emit(struct{}{})
	p.destroyed = true
}

func (p *PopupSurfaceV2) Events() *ime.PopupSurfaceEvents {
	return &p.events
}

func (p *PopupSurfaceV2) SendCursorRect(r ime.Rect) {
	if p.destroyed {
		return
	}
	p.rect = r
	p.out.Record(p.id, "text_input_rectangle", r.X, r.Y, r.W, r.H)
}
