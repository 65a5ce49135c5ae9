// Package transcript records the outgoing protocol events of a session.
package transcript

import (
	"fmt"
	"strings"

	"github.com/bnema/wayime/internal/signal"
)

// Entry is one outgoing event.
type Entry struct {
	Seq    int
	Object string
	Event  string
	Args   []string
}

func (e Entry) String() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("%s.%s", e.Object, e.Event)
	}
	return fmt.Sprintf("%s.%s(%s)", e.Object, e.Event, strings.Join(e.Args, ", "))
}

// Transcript is an append-only list of entries. It belongs to the event
// loop that produces it.
type Transcript struct {
	Appended signal.Signal[Entry]

	entries []Entry
}

func New() *Transcript {
	return &Transcript{}
}

// Record appends an event sent to object.
func (t *Transcript) Record(object, event string, args ...any) {
	e := Entry{
		Seq:    len(t.entries) + 1,
		Object: object,
		Event:  event,
	}
	for _, a := range args {
		e.Args = append(e.Args, fmt.Sprint(a))
	}
	t.entries = append(t.entries, e)
	t.Appended.Emit(e)
}

func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Since returns the entries recorded after the first n.
func (t *Transcript) Since(n int) []Entry {
	if n >= len(t.entries) {
		return nil
	}
	out := make([]Entry, len(t.entries)-n)
	copy(out, t.entries[n:])
	return out
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// Lines renders every entry with Entry.String.
func (t *Transcript) Lines() []string {
	lines := make([]string, len(t.entries))
	for i, e := range t.entries {
		lines[i] = e.String()
	}
	return lines
}
