package server

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/protocols"
	"github.com/bnema/wayime/internal/seat"
)

var (
	ErrUnknownObject   = errors.New("unknown object")
	ErrDuplicateObject = errors.New("object already exists")
	ErrUnsupported     = errors.New("not supported by this protocol version")
)

// objects maps the ids used by steps to protocol objects. Clients and
// surfaces are created on first use; everything else must be created by
// its own step and keeps its id until it is destroyed.
type objects struct {
	clients  map[string]*protocols.Client
	surfaces map[string]*protocols.Surface
	seats    map[string]*seat.Seat

	keyboards        map[string]*seat.Device
	textInputs       map[string]ime.TextInput
	inputMethods     map[string]*protocols.InputMethodV2
	grabs            map[string]*protocols.KeyboardGrabV2
	popups           map[string]*protocols.PopupSurfaceV2
	virtualKeyboards map[string]*protocols.VirtualKeyboardV1

	kinds map[string]string
}

func newObjects() *objects {
	return &objects{
		clients:          make(map[string]*protocols.Client),
		surfaces:         make(map[string]*protocols.Surface),
		seats:            make(map[string]*seat.Seat),
		keyboards:        make(map[string]*seat.Device),
		textInputs:       make(map[string]ime.TextInput),
		inputMethods:     make(map[string]*protocols.InputMethodV2),
		grabs:            make(map[string]*protocols.KeyboardGrabV2),
		popups:           make(map[string]*protocols.PopupSurfaceV2),
		virtualKeyboards: make(map[string]*protocols.VirtualKeyboardV1),
		kinds:            make(map[string]string),
	}
}

func (o *objects) client(name string) *protocols.Client {
	c, ok := o.clients[name]
	if !ok {
		c = protocols.NewClient(name)
		o.clients[name] = c
	}
	return c
}

func (o *objects) surface(id string, owner *protocols.Client) *protocols.Surface {
	s, ok := o.surfaces[id]
	if !ok {
		s = protocols.NewSurface(id, owner)
		o.surfaces[id] = s
	}
	return s
}

// claim reserves id for an object of kind.
func (o *objects) claim(id, kind string) error {
	if existing, ok := o.kinds[id]; ok {
		return fmt.Errorf("%w: %s %q", ErrDuplicateObject, existing, id)
	}
	o.kinds[id] = kind
	return nil
}

func (o *objects) release(id string) {
	delete(o.kinds, id)
}

// counts returns the number of live objects per kind.
func (o *objects) counts() map[string]int {
	out := make(map[string]int)
	for _, kind := range o.kinds {
		out[kind]++
	}
	return out
}

// ids returns the live object ids of kind, sorted.
func (o *objects) ids(kind string) []string {
	var out []string
	for id, k := range o.kinds {
		if k == kind {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func lookup[T any](m map[string]T, kind, id string) (T, error) {
	v, ok := m[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrUnknownObject, kind, id)
	}
	return v, nil
}
