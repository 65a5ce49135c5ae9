package ime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopupRefusedWithoutFocus(t *testing.T) {
	f := newFixture()
	im := f.inputMethod("im")
	f.log.reset()

	f.popup("popup", im)
	assert.Empty(t, f.log.calls)
	assert.Equal(t, 0, f.helper.Popups().Len())
}

func TestPopupLifecycle(t *testing.T) {
	f := newFixture()
	im := f.inputMethod("im")
	ta := f.textInput("ta", f.clientA)
	ta.rect = Rect{X: 10, Y: 20, W: 1, H: 16}
	ta.focused = f.surfaceA
	ta.events.Enable.Emit(emit)

	var added, removed []*Popup
	f.helper.Popups().Added.Connect(func(p *Popup) { added = append(added, p) })
	f.helper.Popups().Removed.Connect(func(p *Popup) { removed = append(removed, p) })
	f.log.reset()

	p := f.popup("popup", im)
	assert.Equal(t, []string{"popup.cursor_rect 10,20 1x16"}, f.log.calls)
	require.Len(t, added, 1)
	assert.Equal(t, PopupSurface(p), added[0].Handle)
	assert.Equal(t, Surface(f.surfaceA), added[0].Parent)

	f.log.reset()
	ta.rect = Rect{X: 30, Y: 20, W: 1, H: 16}
	ta.events.Commit.Emit(emit)
	assert.Contains(t, f.log.calls, "popup.cursor_rect 30,20 1x16")

	p.events.Destroy.Emit(emit)
	require.Len(t, removed, 1)
	assert.Equal(t, 0, f.helper.Popups().Len())

	f.log.reset()
	ta.events.Commit.Emit(emit)
	for _, call := range f.log.calls {
		assert.NotContains(t, call, "popup.")
	}
}

func TestPopupFollowsFocusChange(t *testing.T) {
	f := newFixture()
	im := f.inputMethod("im")
	ta := f.textInput("ta", f.clientA)
	tb := f.textInput("tb", f.clientB)
	tb.rect = Rect{X: 1, Y: 2, W: 3, H: 4}
	ta.events.Enable.Emit(emit)
	f.popup("popup", im)
	f.log.reset()

	tb.events.Enable.Emit(emit)
	assert.Contains(t, f.log.calls, "popup.cursor_rect 1,2 3x4")
}

func TestPopupTrackerRemoveUnknown(t *testing.T) {
	log := &callLog{}
	var tracker PopupTracker
	tracker.Remove(&fakePopup{name: "ghost", log: log})

	p := &fakePopup{name: "p", log: log}
	tracker.Add(p, nil, Rect{})
	tracker.Remove(p)
	tracker.Remove(p)
	assert.Equal(t, 0, tracker.Len())
	assert.Equal(t, 0, p.events.Destroy.Len())
}

func TestPopupBroadcast(t *testing.T) {
	log := &callLog{}
	var tracker PopupTracker
	tracker.Add(&fakePopup{name: "p1", log: log}, nil, Rect{})
	tracker.Add(&fakePopup{name: "p2", log: log}, nil, Rect{})
	log.reset()

	tracker.Broadcast(Rect{X: 5, Y: 6, W: 7, H: 8})
	assert.Equal(t, []string{"p1.cursor_rect 5,6 7x8", "p2.cursor_rect 5,6 7x8"}, log.calls)
	assert.Len(t, tracker.Popups(), 2)
}
