package seat

import (
	"errors"
	"testing"

	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct{ name string }

func (c *testClient) Name() string { return c.name }

type testSurface struct{ client ime.Client }

func (s *testSurface) Client() ime.Client { return s.client }
func (s *testSurface) String() string     { return "surface@" + s.client.Name() }

type recordingSink struct {
	keys []uint32
	err  error
}

func (r *recordingSink) Key(ev ime.KeyEvent) error {
	r.keys = append(r.keys, ev.Key)
	return r.err
}

func (r *recordingSink) Close() error { return nil }

type recordingGrab struct {
	keys []string
}

func (g *recordingGrab) Key(src ime.Keyboard, ev ime.KeyEvent) {
	g.keys = append(g.keys, src.Name())
}

func (g *recordingGrab) Modifiers(src ime.Keyboard, mods ime.Modifiers) {}

func TestKeyboardFocus(t *testing.T) {
	out := transcript.New()
	s := New("seat0", out)
	a := &testSurface{client: &testClient{name: "a"}}
	b := &testSurface{client: &testClient{name: "b"}}

	var changes []ime.Surface
	s.Events().KeyboardFocusChanged.Connect(func(surface ime.Surface) { changes = append(changes, surface) })

	s.SetKeyboardFocus(a)
	s.SetKeyboardFocus(a)
	s.SetKeyboardFocus(b)
	s.SetKeyboardFocus(nil)

	assert.Len(t, changes, 3)
	assert.Nil(t, s.KeyboardFocusSurface())
	assert.Equal(t, []string{
		"wl_keyboard[a].enter(surface@a)",
		"wl_keyboard[a].leave",
		"wl_keyboard[b].enter(surface@b)",
		"wl_keyboard[b].leave",
	}, out.Lines())
}

func TestNotifyKeyUsesDefaultGrab(t *testing.T) {
	out := transcript.New()
	s := New("seat0", out)
	sink := &recordingSink{}
	s.SetKeySink(sink)
	kbd := NewPhysicalKeyboard("kbd0")
	s.AttachInputDevice(kbd)

	var changed []ime.Keyboard
	s.Events().KeyboardChanged.Connect(func(kb ime.Keyboard) { changed = append(changed, kb) })

	// No focus: the key is mirrored but not delivered to a client.
	s.NotifyKey(kbd, ime.KeyEvent{Key: 30, State: ime.KeyPressed})
	assert.Equal(t, 0, out.Len())

	s.SetKeyboardFocus(&testSurface{client: &testClient{name: "a"}})
	s.NotifyKey(kbd, ime.KeyEvent{Key: 31, State: ime.KeyReleased})

	assert.Equal(t, []uint32{30, 31}, sink.keys)
	assert.Equal(t, "wl_keyboard[a].key(31, released)", out.Lines()[1])
	assert.Equal(t, []ime.Keyboard{kbd}, changed)
	assert.Equal(t, ime.Keyboard(kbd), s.Keyboard())
}

func TestSinkErrorDoesNotBlockDelivery(t *testing.T) {
	out := transcript.New()
	s := New("seat0", out)
	s.SetKeySink(&recordingSink{err: errors.New("closed")})
	s.SetKeyboardFocus(&testSurface{client: &testClient{name: "a"}})

	s.NotifyKey(NewPhysicalKeyboard("kbd0"), ime.KeyEvent{Key: 1, State: ime.KeyPressed})
	assert.Equal(t, 2, out.Len())
}

func TestGrabInterceptsKeys(t *testing.T) {
	s := New("seat0", transcript.New())
	kbd := NewPhysicalKeyboard("kbd0")
	grab := &recordingGrab{}

	s.KeyboardStartGrab(grab)
	require.True(t, s.Grabbed())
	s.NotifyKey(kbd, ime.KeyEvent{Key: 1})

	s.KeyboardEndGrab()
	assert.False(t, s.Grabbed())
	s.NotifyKey(kbd, ime.KeyEvent{Key: 2})

	assert.Equal(t, []string{"kbd0"}, grab.keys)
}

func TestNotifyModifiersUpdatesDevice(t *testing.T) {
	out := transcript.New()
	s := New("seat0", out)
	s.SetKeyboardFocus(&testSurface{client: &testClient{name: "a"}})
	kbd := NewPhysicalKeyboard("kbd0")

	s.NotifyModifiers(kbd, ime.Modifiers{Depressed: 4, Locked: 2})
	assert.Equal(t, ime.Modifiers{Depressed: 4, Locked: 2}, kbd.Modifiers())
	assert.Equal(t, "wl_keyboard[a].modifiers(4, 0, 2, 0)", out.Lines()[1])
}

func TestDetachActiveKeyboard(t *testing.T) {
	s := New("seat0", transcript.New())
	client := &testClient{name: "osk"}
	vk := NewVirtualKeyboard("vk1", client)
	s.AttachInputDevice(vk)
	s.AttachInputDevice(vk)
	s.SetKeyboard(vk)

	assert.Len(t, s.Devices(), 1)
	assert.Equal(t, ime.DeviceOrigin{Virtual: true, Client: client}, vk.Origin())

	s.DetachInputDevice(vk)
	s.DetachInputDevice(vk)
	assert.Empty(t, s.Devices())
	assert.Nil(t, s.Keyboard())
}
