package ime

import "fmt"

// callLog records outgoing calls of every fake in order.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) reset() {
	l.calls = nil
}

type fakeClient struct{ name string }

func (c *fakeClient) Name() string { return c.name }

type fakeSurface struct {
	name   string
	client Client
}

func (s *fakeSurface) Client() Client  { return s.client }
func (s *fakeSurface) String() string { return s.name }

type fakeKeyboard struct {
	name   string
	origin DeviceOrigin
	mods   Modifiers
}

func (k *fakeKeyboard) Name() string         { return k.name }
func (k *fakeKeyboard) Origin() DeviceOrigin { return k.origin }
func (k *fakeKeyboard) Modifiers() Modifiers { return k.mods }

type fakeDefaultGrab struct{ log *callLog }

func (g *fakeDefaultGrab) Key(src Keyboard, ev KeyEvent) {
	g.log.add("default.key %s %d", src.Name(), ev.Key)
}

func (g *fakeDefaultGrab) Modifiers(src Keyboard, mods Modifiers) {
	g.log.add("default.modifiers %s %d", src.Name(), mods.Depressed)
}

type fakeSeat struct {
	name     string
	log      *callLog
	events   SeatEvents
	focus    Surface
	keyboard Keyboard
	devices  []Keyboard
	def      *fakeDefaultGrab
	grab     KeyboardGrabHandler
}

func newFakeSeat(log *callLog) *fakeSeat {
	return &fakeSeat{name: "seat0", log: log, def: &fakeDefaultGrab{log: log}}
}

func (s *fakeSeat) Name() string                  { return s.name }
func (s *fakeSeat) Events() *SeatEvents           { return &s.events }
func (s *fakeSeat) KeyboardFocusSurface() Surface { return s.focus }
func (s *fakeSeat) Keyboard() Keyboard            { return s.keyboard }

func (s *fakeSeat) AttachInputDevice(kb Keyboard) {
	s.devices = append(s.devices, kb)
	s.log.add("seat.attach %s", kb.Name())
}

func (s *fakeSeat) DetachInputDevice(kb Keyboard) {
	for i, d := range s.devices {
		if d == kb {
			s.devices = append(s.devices[:i], s.devices[i+1:]...)
			break
		}
	}
	s.log.add("seat.detach %s", kb.Name())
}

func (s *fakeSeat) DefaultKeyboardGrab() KeyboardGrabHandler { return s.def }

func (s *fakeSeat) KeyboardStartGrab(h KeyboardGrabHandler) {
	s.grab = h
	s.log.add("seat.start_grab")
}

func (s *fakeSeat) KeyboardEndGrab() {
	s.grab = nil
	s.log.add("seat.end_grab")
}

func (s *fakeSeat) KeyboardSendModifiers(mods Modifiers) {
	s.log.add("seat.send_modifiers %d", mods.Depressed)
}

// key delivers an event the way a seat does: through the installed grab,
// or the default path without one.
func (s *fakeSeat) key(src Keyboard, key uint32) {
	h := s.grab
	if h == nil {
		h = s.def
	}
	h.Key(src, KeyEvent{Key: key, State: KeyPressed})
}

func (s *fakeSeat) modifiers(src Keyboard, depressed uint32) {
	h := s.grab
	if h == nil {
		h = s.def
	}
	h.Modifiers(src, Modifiers{Depressed: depressed})
}

func (s *fakeSeat) setFocus(surface Surface) {
	s.focus = surface
	s.events.KeyboardFocusChanged.Emit(surface)
}

func (s *fakeSeat) setKeyboard(kb Keyboard) {
	s.keyboard = kb
	s.events.KeyboardChanged.Emit(kb)
}

type fakeTextInput struct {
	name     string
	log      *callLog
	events   TextInputEvents
	version  Version
	client   Client
	seat     Seat
	focused  Surface
	features Features
	text     SurroundingText
	cause    ChangeCause
	content  ContentType
	rect     Rect
}

func (t *fakeTextInput) String() string                   { return t.name }
func (t *fakeTextInput) Events() *TextInputEvents         { return &t.events }
func (t *fakeTextInput) Version() Version                 { return t.version }
func (t *fakeTextInput) Client() Client                   { return t.client }
func (t *fakeTextInput) Seat() Seat                       { return t.seat }
func (t *fakeTextInput) FocusedSurface() Surface          { return t.focused }
func (t *fakeTextInput) SurroundingText() SurroundingText { return t.text }
func (t *fakeTextInput) TextChangeCause() ChangeCause     { return t.cause }
func (t *fakeTextInput) ContentType() ContentType         { return t.content }
func (t *fakeTextInput) CursorRect() Rect                 { return t.rect }
func (t *fakeTextInput) Features() Features               { return t.features }

func (t *fakeTextInput) SendEnter(s Surface) {
	t.focused = s
	t.log.add("%s.enter %v", t.name, s)
}

func (t *fakeTextInput) SendLeave() {
	t.focused = nil
	t.log.add("%s.leave", t.name)
}

func (t *fakeTextInput) HandleIMCommitted(im InputMethod) {
	t.log.add("%s.im_commit %q", t.name, im.Current().CommitText)
}

type fakeInputMethod struct {
	name    string
	log     *callLog
	events  InputMethodEvents
	client  Client
	seat    Seat
	current InputMethodState
}

func (m *fakeInputMethod) String() string              { return m.name }
func (m *fakeInputMethod) Events() *InputMethodEvents  { return &m.events }
func (m *fakeInputMethod) Client() Client              { return m.client }
func (m *fakeInputMethod) Seat() Seat                  { return m.seat }
func (m *fakeInputMethod) Current() InputMethodState   { return m.current }
func (m *fakeInputMethod) SendActivate()               { m.log.add("%s.activate", m.name) }
func (m *fakeInputMethod) SendDeactivate()             { m.log.add("%s.deactivate", m.name) }
func (m *fakeInputMethod) SendDone()                   { m.log.add("%s.done", m.name) }
func (m *fakeInputMethod) SendUnavailable()            { m.log.add("%s.unavailable", m.name) }
func (m *fakeInputMethod) SendTextChangeCause(c ChangeCause) {
	m.log.add("%s.text_change_cause %d", m.name, c)
}

func (m *fakeInputMethod) SendSurroundingText(st SurroundingText) {
	m.log.add("%s.surrounding_text %q %d %d", m.name, st.Text, st.Cursor, st.Anchor)
}

func (m *fakeInputMethod) SendContentType(ct ContentType) {
	m.log.add("%s.content_type %d %d", m.name, ct.Hints, ct.Purpose)
}

type fakeGrab struct {
	name     string
	log      *callLog
	events   KeyboardGrabEvents
	im       InputMethod
	keyboard Keyboard
}

func (g *fakeGrab) String() string               { return g.name }
func (g *fakeGrab) Events() *KeyboardGrabEvents  { return &g.events }
func (g *fakeGrab) Client() Client               { return g.im.Client() }
func (g *fakeGrab) InputMethod() InputMethod     { return g.im }
func (g *fakeGrab) Keyboard() Keyboard           { return g.keyboard }

func (g *fakeGrab) SetKeyboard(kb Keyboard) {
	g.keyboard = kb
	if kb == nil {
		g.log.add("%s.set_keyboard nil", g.name)
		return
	}
	g.log.add("%s.set_keyboard %s", g.name, kb.Name())
}

func (g *fakeGrab) SendKey(ev KeyEvent) {
	g.log.add("%s.key %d", g.name, ev.Key)
}

func (g *fakeGrab) SendModifiers(mods Modifiers) {
	g.log.add("%s.modifiers %d", g.name, mods.Depressed)
}

type fakePopup struct {
	name   string
	log    *callLog
	events PopupSurfaceEvents
}

func (p *fakePopup) String() string               { return p.name }
func (p *fakePopup) Events() *PopupSurfaceEvents  { return &p.events }

func (p *fakePopup) SendCursorRect(r Rect) {
	p.log.add("%s.cursor_rect %v", p.name, r)
}

type fakeVirtualKeyboard struct {
	events   VirtualKeyboardEvents
	client   Client
	keyboard *fakeKeyboard
}

func newFakeVirtualKeyboard(name string, client Client) *fakeVirtualKeyboard {
	return &fakeVirtualKeyboard{
		client: client,
		keyboard: &fakeKeyboard{
			name:   name,
			origin: DeviceOrigin{Virtual: true, Client: client},
		},
	}
}

func (v *fakeVirtualKeyboard) Events() *VirtualKeyboardEvents { return &v.events }
func (v *fakeVirtualKeyboard) Client() Client                 { return v.client }
func (v *fakeVirtualKeyboard) Keyboard() Keyboard             { return v.keyboard }

// fixture is a helper on a fake seat with two text-input clients and an
// input method client.
type fixture struct {
	log    *callLog
	seat   *fakeSeat
	helper *Helper

	clientA, clientB, imClient *fakeClient
	surfaceA, surfaceB         *fakeSurface
}

func newFixture() *fixture {
	log := &callLog{}
	seat := newFakeSeat(log)
	f := &fixture{
		log:      log,
		seat:     seat,
		helper:   NewHelper(seat),
		clientA:  &fakeClient{name: "a"},
		clientB:  &fakeClient{name: "b"},
		imClient: &fakeClient{name: "osk"},
	}
	f.surfaceA = &fakeSurface{name: "surface-a", client: f.clientA}
	f.surfaceB = &fakeSurface{name: "surface-b", client: f.clientB}
	return f
}

func (f *fixture) textInput(name string, client Client) *fakeTextInput {
	ti := &fakeTextInput{name: name, log: f.log, version: V3, client: client, seat: f.seat}
	f.helper.HandleNewTextInput(ti)
	return ti
}

func (f *fixture) inputMethod(name string) *fakeInputMethod {
	im := &fakeInputMethod{name: name, log: f.log, client: f.imClient, seat: f.seat}
	f.helper.HandleNewInputMethod(im)
	return im
}

func (f *fixture) grab(name string, im *fakeInputMethod) *fakeGrab {
	g := &fakeGrab{name: name, log: f.log, im: im}
	im.events.NewKeyboardGrab.Emit(g)
	return g
}

func (f *fixture) popup(name string, im *fakeInputMethod) *fakePopup {
	p := &fakePopup{name: name, log: f.log}
	im.events.NewPopupSurface.Emit(p)
	return p
}
