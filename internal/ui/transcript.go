package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/wayime/internal/transcript"
)

// terminalEvents end a session or refuse an object.
var terminalEvents = map[string]bool{
	"leave":       true,
	"deactivate":  true,
	"unavailable": true,
}

// FormatEntry renders one transcript entry. Plain output matches
// Entry.String so it can be diffed against expectations.
func FormatEntry(e transcript.Entry, plain bool) string {
	if plain {
		return e.String()
	}

	event := EventStyle.Render(e.Event)
	if terminalEvents[e.Event] {
		event = TerminalEventStyle.Render(e.Event)
	}

	line := SeqStyle.Render(fmt.Sprint(e.Seq)) + " " + ObjectStyle.Render(e.Object) + "." + event
	if len(e.Args) > 0 {
		line += ArgsStyle.Render("(" + strings.Join(e.Args, ", ") + ")")
	}
	return line
}

// RenderTranscript renders entries one per line.
func RenderTranscript(entries []transcript.Entry, plain bool) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(FormatEntry(e, plain))
		b.WriteString("\n")
	}
	return b.String()
}
