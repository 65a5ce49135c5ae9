package protocols

import (
	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/transcript"
)

// TextInputV1 is a zwp_text_input_v1 object. Unlike v3 it is created
// without a seat and binds one when the client activates it on a
// surface; it is enabled once the compositor sends enter for that
// surface.
type TextInputV1 struct {
	id     string
	client *Client
	out    *transcript.Transcript
	events ime.TextInputEvents

	seat      ime.Seat
	activated ime.Surface
	focused   ime.Surface
	enabled   bool

	pending textInputState
	current textInputState
	serial  uint32

	destroyed bool
}

var _ ime.TextInput = (*TextInputV1)(nil)

func NewTextInputV1(id string, client *Client, out *transcript.Transcript) *TextInputV1 {
	return &TextInputV1{id: id, client: client, out: out}
}

func (t *TextInputV1) String() string {
	return t.id
}

// Activate asks for input method support on surface through seat.
func (t *TextInputV1) Activate(seat ime.Seat, surface ime.Surface) {
	if t.destroyed {
		return
	}
	t.seat = seat
	t.activated = surface
	t.events.RequestFocus.Emit(struct{}{})
}

// Deactivate withdraws the activation. Disable is emitted even when a
// leave already dropped the enabled state, since focus may still be held.
func (t *TextInputV1) Deactivate() {
	if t.destroyed {
		return
	}
	active := t.activated != nil || t.enabled
	t.activated = nil
	t.enabled = false
	if active {
		t.events.Disable.Emit(struct{}{})
	}
	t.events.RequestLeave.Emit(struct{}{})
}

func (t *TextInputV1) SetSurroundingText(text string, cursor, anchor uint32) {
	t.pending.surrounding = ime.SurroundingText{Text: text, Cursor: cursor, Anchor: anchor}
	t.pending.features |= ime.FeatureSurroundingText
}

func (t *TextInputV1) SetContentType(hints, purpose uint32) {
	t.pending.content = ime.ContentType{Hints: hints, Purpose: purpose}
	t.pending.features |= ime.FeatureContentType
}

func (t *TextInputV1) SetCursorRectangle(x, y, w, h int32) {
	t.pending.rect = ime.Rect{X: x, Y: y, W: w, H: h}
	t.pending.features |= ime.FeatureCursorRect
}

// CommitState applies the pending state under serial.
func (t *TextInputV1) CommitState(serial uint32) {
	if t.destroyed {
		return
	}
	t.serial = serial
	t.current = t.pending
	t.events.Commit.Emit(struct{}{})
}

func (t *TextInputV1) Destroy() {
	if t.destroyed {
		return
	}
	t.events.Destroy.Emit(struct{}{})
	t.destroyed = true
}

func (t *TextInputV1) Enabled() bool {
	return t.enabled
}

func (t *TextInputV1) Events() *ime.TextInputEvents {
	return &t.events
}

func (t *TextInputV1) Version() ime.Version {
	return ime.V1
}

func (t *TextInputV1) Client() ime.Client {
	return t.client
}

func (t *TextInputV1) Seat() ime.Seat {
	return t.seat
}

func (t *TextInputV1) FocusedSurface() ime.Surface {
	return t.focused
}

func (t *TextInputV1) SurroundingText() ime.SurroundingText {
	return t.current.surrounding
}

// TextChangeCause is always CauseOther: v1 clients cannot say who
// changed the text.
func (t *TextInputV1) TextChangeCause() ime.ChangeCause {
	return ime.CauseOther
}

func (t *TextInputV1) ContentType() ime.ContentType {
	return t.current.content
}

func (t *TextInputV1) CursorRect() ime.Rect {
	return t.current.rect
}

func (t *TextInputV1) Features() ime.Features {
	return t.current.features
}

func (t *TextInputV1) SendEnter(s ime.Surface) {
	if t.destroyed {
		return
	}
	if t.focused != s {
		t.focused = s
		t.out.Record(t.id, "enter", s)
	}

	if t.activated != nil && t.activated == s && !t.enabled {
		t.enabled = true
		t.events.Enable.Emit(struct{}{})
	}
}

// SendLeave drops the enabled state without announcing a disable. The
// next enter on the activated surface enables the text input again, and
// Deactivate still disables it.
func (t *TextInputV1) SendLeave() {
	if t.destroyed || t.focused == nil {
		return
	}
	t.out.Record(t.id, "leave")
	t.focused = nil
	t.enabled = false
}

func (t *TextInputV1) HandleIMCommitted(im ime.InputMethod) {
	if t.destroyed {
		return
	}
	st := im.Current()
	if st.DeleteSurrounding.Before != 0 || st.DeleteSurrounding.After != 0 {
		index := -int32(st.DeleteSurrounding.Before)
		length := st.DeleteSurrounding.Before + st.DeleteSurrounding.After
		t.out.Record(t.id, "delete_surrounding_text", index, length)
	}
	if st.Preedit.Text != "" {
		t.out.Record(t.id, "preedit_cursor", st.Preedit.CursorBegin)
		t.out.Record(t.id, "preedit_string", t.serial, st.Preedit.Text, st.CommitText)
	}
	if st.CommitText != "" {
		t.out.Record(t.id, "commit_string", t.serial, st.CommitText)
	}
}
