package protocols

import (
	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/transcript"
)

// textInputState is the double-buffered state of a text input.
type textInputState struct {
	enabled     bool
	surrounding ime.SurroundingText
	cause       ime.ChangeCause
	content     ime.ContentType
	rect        ime.Rect
	features    ime.Features
}

// TextInputV3 is a zwp_text_input_v3 object.
type TextInputV3 struct {
	id     string
	client *Client
	seat   ime.Seat
	out    *transcript.Transcript
	events ime.TextInputEvents

	pending textInputState
	current textInputState
	focused ime.Surface
	serial  uint32

	destroyed bool
}

var _ ime.TextInput = (*TextInputV3)(nil)

func NewTextInputV3(id string, client *Client, seat ime.Seat, out *transcript.Transcript) *TextInputV3 {
	return &TextInputV3{id: id, client: client, seat: seat, out: out}
}

func (t *TextInputV3) String() string {
	return t.id
}

// Enable requests input method support. Like every state request it
// takes effect on the next Commit, and it resets the pending state.
func (t *TextInputV3) Enable() {
	t.pending = textInputState{enabled: true}
}

func (t *TextInputV3) Disable() {
	t.pending.enabled = false
}

func (t *TextInputV3) SetSurroundingText(text string, cursor, anchor uint32) {
	t.pending.surrounding = ime.SurroundingText{Text: text, Cursor: cursor, Anchor: anchor}
	t.pending.features |= ime.FeatureSurroundingText
}

func (t *TextInputV3) SetTextChangeCause(cause ime.ChangeCause) {
	t.pending.cause = cause
}

func (t *TextInputV3) SetContentType(hints, purpose uint32) {
	t.pending.content = ime.ContentType{Hints: hints, Purpose: purpose}
	t.pending.features |= ime.FeatureContentType
}

func (t *TextInputV3) SetCursorRectangle(x, y, w, h int32) {
	t.pending.rect = ime.Rect{X: x, Y: y, W: w, H: h}
	t.pending.features |= ime.FeatureCursorRect
}

// Commit applies the pending state. Enabled-state transitions are
// announced before the commit itself.
func (t *TextInputV3) Commit() {
	if t.destroyed {
		return
	}
	t.serial++

	wasEnabled := t.current.enabled
	t.current = t.pending
	t.pending.cause = ime.CauseInputMethod

	switch {
	case !wasEnabled && t.current.enabled:
		t.events.Enable.Emit(struct{}{})
	case wasEnabled && !t.current.enabled:
		t.events.Disable.Emit(struct{}{})
	}
	t.events.Commit.Emit(struct{}{})
}

func (t *TextInputV3) Destroy() {
	if t.destroyed {
		return
	}
	t.events.Destroy.Emit(struct{}{})
	t.destroyed = true
}

func (t *TextInputV3) Enabled() bool {
	return t.current.enabled
}

func (t *TextInputV3) Events() *ime.TextInputEvents {
	return &t.events
}

func (t *TextInputV3) Version() ime.Version {
	return ime.V3
}

func (t *TextInputV3) Client() ime.Client {
	return t.client
}

func (t *TextInputV3) Seat() ime.Seat {
	return t.seat
}

func (t *TextInputV3) FocusedSurface() ime.Surface {
	return t.focused
}

func (t *TextInputV3) SurroundingText() ime.SurroundingText {
	return t.current.surrounding
}

func (t *TextInputV3) TextChangeCause() ime.ChangeCause {
	return t.current.cause
}

func (t *TextInputV3) ContentType() ime.ContentType {
	return t.current.content
}

func (t *TextInputV3) CursorRect() ime.Rect {
	return t.current.rect
}

func (t *TextInputV3) Features() ime.Features {
	return t.current.features
}

func (t *TextInputV3) SendEnter(s ime.Surface) {
	if t.destroyed || t.focused == s {
		return
	}
	if t.focused != nil {
		t.SendLeave()
	}
	t.focused = s
	t.out.Record(t.id, "enter", s)
}

func (t *TextInputV3) SendLeave() {
	if t.destroyed || t.focused == nil {
		return
	}
	t.out.Record(t.id, "leave", t.focused)
	t.focused = nil
}

func (t *TextInputV3) HandleIMCommitted(im ime.InputMethod) {
	if t.destroyed {
		return
	}
	st := im.Current()
	if st.Preedit.Text != "" {
		t.out.Record(t.id, "preedit_string", st.Preedit.Text, st.Preedit.CursorBegin, st.Preedit.CursorEnd)
	}
	if st.CommitText != "" {
		t.out.Record(t.id, "commit_string", st.CommitText)
	}
	if st.DeleteSurrounding.Before != 0 || st.DeleteSurrounding.After != 0 {
		t.out.Record(t.id, "delete_surrounding_text", st.DeleteSurrounding.Before, st.DeleteSurrounding.After)
	}
	t.out.Record(t.id, "done", t.serial)
}
