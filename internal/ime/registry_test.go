package ime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterTwiceIsNoop(t *testing.T) {
	f := newFixture()
	ta := f.textInput("ta", f.clientA)

	assert.False(t, f.helper.TextInputs().Register(ta))
	assert.Equal(t, 1, f.helper.TextInputs().Len())

	// Enable must still be handled exactly once.
	f.inputMethod("im")
	f.log.reset()
	ta.events.Enable.Emit(emit)
	assert.Equal(t, []string{"im.activate", "im.done"}, f.log.calls)
}

func TestDestroyFocusedTextInput(t *testing.T) {
	f := newFixture()
	f.inputMethod("im")
	ta := f.textInput("ta", f.clientA)
	ta.events.Enable.Emit(emit)
	f.log.reset()

	ta.events.Destroy.Emit(emit)
	assert.Equal(t, []string{"im.deactivate", "im.done"}, f.log.calls)
	assert.Nil(t, f.helper.FocusedTextInput())
	assert.False(t, f.helper.TextInputs().Contains(ta))

	// Nothing observes the destroyed object any more.
	assert.Equal(t, 0, ta.events.Enable.Len())
	assert.Equal(t, 0, ta.events.Commit.Len())
	assert.Equal(t, 0, ta.events.Destroy.Len())
}

func TestDestroyUnfocusedTextInput(t *testing.T) {
	f := newFixture()
	f.inputMethod("im")
	ta := f.textInput("ta", f.clientA)
	tb := f.textInput("tb", f.clientB)
	ta.events.Enable.Emit(emit)
	f.log.reset()

	tb.events.Destroy.Emit(emit)
	assert.Empty(t, f.log.calls)
	assert.Equal(t, TextInput(ta), f.helper.FocusedTextInput())
	assert.Equal(t, 1, f.helper.TextInputs().Len())
}

func TestTextInputOfOtherSeatConnectsOnRequestFocus(t *testing.T) {
	f := newFixture()
	f.inputMethod("im")
	f.seat.focus = f.surfaceA

	// Bound to no seat yet, like text-input-v1 before activate.
	ti := &fakeTextInput{name: "v1", log: f.log, version: V1, client: f.clientA}
	f.helper.HandleNewTextInput(ti)
	f.log.reset()

	ti.events.Enable.Emit(emit)
	assert.Empty(t, f.log.calls)

	ti.seat = f.seat
	ti.events.RequestFocus.Emit(emit)
	assert.Equal(t, []string{"v1.enter surface-a"}, f.log.calls)

	f.log.reset()
	ti.events.Enable.Emit(emit)
	assert.Equal(t, []string{"im.activate", "im.done"}, f.log.calls)

	// Requesting focus again does not connect twice.
	ti.events.RequestFocus.Emit(emit)
	ti.events.Disable.Emit(emit)
	f.log.reset()
	ti.events.Enable.Emit(emit)
	assert.Equal(t, []string{"im.activate", "im.done"}, f.log.calls)
}

func TestRequestFocusFromOtherSeatIgnored(t *testing.T) {
	f := newFixture()
	other := newFakeSeat(f.log)
	other.name = "seat1"
	f.seat.focus = f.surfaceA

	ti := &fakeTextInput{name: "v1", log: f.log, version: V1, client: f.clientA, seat: other}
	f.helper.HandleNewTextInput(ti)
	ti.events.RequestFocus.Emit(emit)
	ti.events.Enable.Emit(emit)

	assert.Empty(t, f.log.calls)
	assert.Nil(t, f.helper.FocusedTextInput())
}

func TestRequestLeaveSendsLeave(t *testing.T) {
	f := newFixture()
	ta := f.textInput("ta", f.clientA)
	ta.events.RequestLeave.Emit(emit)
	assert.Equal(t, []string{"ta.leave"}, f.log.calls)
}

func TestMatchingClient(t *testing.T) {
	f := newFixture()
	a1 := f.textInput("a1", f.clientA)
	f.textInput("b1", f.clientB)
	a2 := f.textInput("a2", f.clientA)

	seq := f.helper.TextInputs().MatchingClient(f.clientA)

	var got []TextInput
	for ti := range seq {
		got = append(got, ti)
	}
	assert.Equal(t, []TextInput{a1, a2}, got)

	// Restartable.
	got = got[:0]
	for ti := range seq {
		got = append(got, ti)
	}
	assert.Equal(t, []TextInput{a1, a2}, got)

	// Early exit.
	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)

	var all []TextInput
	for ti := range f.helper.TextInputs().All() {
		all = append(all, ti)
	}
	assert.Len(t, all, 3)
}
