package input

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ThomasT75/uinput"
	"github.com/bnema/wayime/internal/ime"
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/seat"
)

// keyboardDevice is the part of uinput.Keyboard the sink drives.
type keyboardDevice interface {
	KeyDown(key int) error
	KeyUp(key int) error
	Close() error
}

// uinputSink injects keys through a virtual uinput keyboard. Keys still
// held when the sink closes are released first, so the host never sees a
// stuck key.
type uinputSink struct {
	mu       sync.Mutex
	keyboard keyboardDevice
	pressed  map[uint32]bool
	closed   bool
}

var _ seat.KeySink = (*uinputSink)(nil)

func newUInputSink(path string) (*uinputSink, error) {
	if path == "" {
		path = DefaultUInputPath
	}
	keyboard, err := uinput.CreateKeyboard(path, []byte("wayime virtual keyboard"))
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual keyboard: %w", err)
	}
	logger.Debugf("Created uinput keyboard on %s", path)
	return newUInputSinkWith(keyboard), nil
}

func newUInputSinkWith(keyboard keyboardDevice) *uinputSink {
	return &uinputSink{
		keyboard: keyboard,
		pressed:  make(map[uint32]bool),
	}
}

// Key presses or releases ev.Key. The key code is an evdev code, which
// is what uinput expects.
func (s *uinputSink) Key(ev ime.KeyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if ev.Key == 0 {
		return fmt.Errorf("%w: key code 0", ErrInvalidEvent)
	}

	switch ev.State {
	case ime.KeyPressed:
		if err := s.keyboard.KeyDown(int(ev.Key)); err != nil {
			return fmt.Errorf("key down %d: %w", ev.Key, err)
		}
		s.pressed[ev.Key] = true
	case ime.KeyReleased:
		if err := s.keyboard.KeyUp(int(ev.Key)); err != nil {
			return fmt.Errorf("key up %d: %w", ev.Key, err)
		}
		delete(s.pressed, ev.Key)
	default:
		return fmt.Errorf("%w: key state %d", ErrInvalidEvent, ev.State)
	}
	return nil
}

// Held returns the keys pressed through the sink and not yet released,
// in ascending order.
func (s *uinputSink) Held() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]uint32, 0, len(s.pressed))
	for key := range s.pressed {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Close releases held keys and destroys the device.
func (s *uinputSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for key := range s.pressed {
		if err := s.keyboard.KeyUp(int(key)); err != nil {
			logger.Warnf("Failed to release key %d: %v", key, err)
		}
	}
	clear(s.pressed)

	return s.keyboard.Close()
}
