// Package signal provides typed observer lists used to connect protocol
// objects to the components that hold references to them.
package signal

// Listener is a handle to a connected handler.
type Listener interface {
	// Disconnect removes the handler. It is safe to call more than once
	// and from inside the handler itself.
	Disconnect()
}

type slot[T any] struct {
	fn      func(T)
	removed bool
	owner   *Signal[T]
}

func (s *slot[T]) Disconnect() {
	if s.removed {
		return
	}
	s.removed = true
	s.owner.remove(s)
}

// Signal is a list of handlers called in connection order by Emit. The
// zero value is ready to use. Signals are not safe for concurrent use;
// they belong to a single event loop.
type Signal[T any] struct {
	slots []*slot[T]
}

// Connect appends fn to the handler list.
func (s *Signal[T]) Connect(fn func(T)) Listener {
	sl := &slot[T]{fn: fn, owner: s}
	s.slots = append(s.slots, sl)
	return sl
}

// Emit calls every connected handler with v. Handlers disconnected while
// the emission is in progress are not called; handlers connected during
// the emission are not called until the next one.
func (s *Signal[T]) Emit(v T) {
	slots := make([]*slot[T], len(s.slots))
	copy(slots, s.slots)
	for _, sl := range slots {
		if sl.removed {
			continue
		}
		sl.fn(v)
	}
}

// Len returns the number of connected handlers.
func (s *Signal[T]) Len() int {
	return len(s.slots)
}

func (s *Signal[T]) remove(target *slot[T]) {
	for i, sl := range s.slots {
		if sl == target {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return
		}
	}
}

// Group collects listeners so they can be disconnected together. It is
// how components drop every observation of an object inside that
// object's destroy notification.
type Group struct {
	listeners []Listener
}

// Add records l in the group and returns it.
func (g *Group) Add(l Listener) Listener {
	g.listeners = append(g.listeners, l)
	return l
}

// Disconnect disconnects every listener in the group and empties it.
func (g *Group) Disconnect() {
	listeners := g.listeners
	g.listeners = nil
	for _, l := range listeners {
		l.Disconnect()
	}
}

// Len returns the number of listeners in the group.
func (g *Group) Len() int {
	return len(g.listeners)
}
