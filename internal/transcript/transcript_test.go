package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	tr := New()
	var seen []Entry
	tr.Appended.Connect(func(e Entry) { seen = append(seen, e) })

	tr.Record("im", "activate")
	tr.Record("ti1", "enter", "surface-1")
	tr.Record("im", "surrounding_text", "hello", 5, 5)

	assert.Equal(t, []string{
		"im.activate",
		"ti1.enter(surface-1)",
		"im.surrounding_text(hello, 5, 5)",
	}, tr.Lines())
	assert.Len(t, seen, 3)
	assert.Equal(t, 3, seen[2].Seq)
}

func TestSince(t *testing.T) {
	tr := New()
	tr.Record("a", "one")
	tr.Record("a", "two")
	tr.Record("a", "three")

	assert.Equal(t, "two", tr.Since(1)[0].Event)
	assert.Len(t, tr.Since(1), 2)
	assert.Nil(t, tr.Since(3))
	assert.Nil(t, tr.Since(10))
}
