package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
name: typing
seat: seat0
steps:
  - op: input_method.create
    id: im
    client: osk
  - op: text_input.create
    id: ti
    client: app
    version: v3
  - {op: text_input.set_surrounding, id: ti, text: "hello", cursor: 5, anchor: 5}
  - {op: keyboard.key, id: kbd0, key: 30, state: pressed, time: 12}
`

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "typing", sc.Name)
	assert.Equal(t, "seat0", sc.Seat)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, Step{Op: "text_input.set_surrounding", ID: "ti", Text: "hello", Cursor: 5, Anchor: 5}, sc.Steps[2])
	assert.Equal(t, uint32(30), sc.Steps[3].Key)
	assert.Equal(t, uint32(12), sc.Steps[3].Time)
	assert.Equal(t, "keyboard.key kbd0", sc.Steps[3].String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
		step string
	}{
		{
			name: "unknown op",
			doc:  "steps:\n  - {op: keyboard.add, id: k}\n  - {op: seat.explode}\n",
			want: ErrUnknownOp,
			step: "step 1",
		},
		{
			name: "missing field",
			doc:  "steps:\n  - {op: text_input.create, id: ti, client: app}\n",
			want: ErrMissingField,
			step: "step 0",
		},
		{
			name: "bad version",
			doc:  "steps:\n  - {op: text_input.create, id: ti, client: app, version: v2}\n",
			want: ErrInvalidValue,
			step: "step 0",
		},
		{
			name: "bad state",
			doc:  "steps:\n  - {op: keyboard.key, id: k, state: held}\n",
			want: ErrInvalidValue,
			step: "step 0",
		},
		{
			name: "bad cause",
			doc:  "steps:\n  - {op: text_input.set_cause, id: ti, cause: typing}\n",
			want: ErrInvalidValue,
			step: "step 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.step)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("steps: [op"))
	assert.Error(t, err)
}

func TestOpsSorted(t *testing.T) {
	ops := Ops()
	assert.IsIncreasing(t, ops)
	assert.Contains(t, ops, "input_method.grab_keyboard")
	assert.Contains(t, ops, "virtual_keyboard.key")
}

func TestParseStep(t *testing.T) {
	step, err := ParseStep("virtual_keyboard.key", []string{"id=vk1", "key=30", "state=pressed", "time=7"})
	require.NoError(t, err)
	assert.Equal(t, Step{Op: "virtual_keyboard.key", ID: "vk1", Key: 30, State: "pressed", Time: 7}, step)

	// Numeric-looking strings stay strings for string fields.
	step, err = ParseStep("input_method.commit_string", []string{"id=im", "text=42"})
	require.NoError(t, err)
	assert.Equal(t, "42", step.Text)

	_, err = ParseStep("keyboard.add", []string{"kbd0"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseStep("keyboard.key", []string{"id=kbd0"})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = ParseStep("keyboard.key", []string{"id=kbd0", "key=abc", "state=pressed"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseStep("text_input.set_cursor_rect", []string{"id=t", "widht=10"})
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "widht")
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`steps:
  - {op: text_input.set_cursor_rect, id: t, widht: 10}
`))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Parse([]byte(`sead: seat1
steps: []
`))
	assert.ErrorIs(t, err, ErrInvalidValue)

	sc, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, sc.Steps)
}

func TestLoadDefaultsName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "focus-switch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - {op: keyboard.add, id: kbd0}\n"), 0o600))

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "focus-switch", sc.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	sc, err := Parse([]byte(sample))
	require.NoError(t, err)

	data, err := Marshal(sc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "latched")

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, sc, again)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - {op: keyboard.add, id: kbd0}\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded := make(chan *Scenario, 4)
	errs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(sc *Scenario, err error) {
			if err != nil {
				errs <- err
				return
			}
			loaded <- sc
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - {op: keyboard.add, id: kbd1}\n"), 0o600))

	select {
	case sc := <-loaded:
		require.Len(t, sc.Steps, 1)
		assert.Equal(t, "kbd1", sc.Steps[0].ID)
	case err := <-errs:
		t.Fatalf("reload failed: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("scenario was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
