// Package ime mediates between text-input clients, the seat's input
// method and the seat's keyboard grab.
//
// Everything in this package runs on the compositor's event goroutine.
// Nothing here locks; ordering is the order in which protocol
// notifications are delivered.
package ime

import (
	"fmt"

	"github.com/bnema/wayime/internal/signal"
)

// Version identifies a text-input protocol version.
type Version int

const (
	V1 Version = 1
	V3 Version = 3
)

func (v Version) String() string {
	switch v {
	case V1:
		return "text-input-v1"
	case V3:
		return "text-input-v3"
	default:
		return fmt.Sprintf("text-input-v%d", int(v))
	}
}

// Features is the set of optional state a text input advertises.
type Features uint32

const (
	FeatureSurroundingText Features = 1 << iota
	FeatureContentType
	FeatureCursorRect
)

func (f Features) Has(flag Features) bool {
	return f&flag == flag
}

// ChangeCause tells the input method who changed the surrounding text.
type ChangeCause uint32

const (
	CauseInputMethod ChangeCause = 0
	CauseOther       ChangeCause = 1
)

// Rect is a rectangle in surface-local coordinates.
type Rect struct {
	X, Y, W, H int32
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.W, r.H)
}

type SurroundingText struct {
	Text   string
	Cursor uint32
	Anchor uint32
}

type ContentType struct {
	Hints   uint32
	Purpose uint32
}

type Preedit struct {
	Text        string
	CursorBegin int32
	CursorEnd   int32
}

type DeleteSurrounding struct {
	Before uint32
	After  uint32
}

// InputMethodState is the content an input method applied with its last
// commit.
type InputMethodState struct {
	Preedit           Preedit
	CommitText        string
	DeleteSurrounding DeleteSurrounding
}

type KeyState uint32

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
)

func (s KeyState) String() string {
	if s == KeyPressed {
		return "pressed"
	}
	return "released"
}

type KeyEvent struct {
	TimeMsec uint32
	Key      uint32
	State    KeyState
}

type Modifiers struct {
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

// Client identifies the protocol client that owns an object. Clients are
// compared by identity.
type Client interface {
	Name() string
}

type Surface interface {
	Client() Client
}

// DeviceOrigin tags a keyboard device with where it came from. Virtual
// devices carry the client that created them.
type DeviceOrigin struct {
	Virtual bool
	Client  Client
}

// Keyboard is a keyboard device known to a seat.
type Keyboard interface {
	Name() string
	Origin() DeviceOrigin
	Modifiers() Modifiers
}

// KeyboardGrabHandler receives key and modifier events while installed
// as a seat's keyboard grab. src is the device the event came from.
type KeyboardGrabHandler interface {
	Key(src Keyboard, ev KeyEvent)
	Modifiers(src Keyboard, mods Modifiers)
}

type SeatEvents struct {
	KeyboardFocusChanged signal.Signal[Surface]
	KeyboardChanged      signal.Signal[Keyboard]
}

type Seat interface {
	Name() string
	Events() *SeatEvents
	KeyboardFocusSurface() Surface
	Keyboard() Keyboard
	AttachInputDevice(kb Keyboard)
	DetachInputDevice(kb Keyboard)
	// DefaultKeyboardGrab is the seat's un-intercepted key delivery.
	DefaultKeyboardGrab() KeyboardGrabHandler
	KeyboardStartGrab(h KeyboardGrabHandler)
	KeyboardEndGrab()
	KeyboardSendModifiers(mods Modifiers)
}

type TextInputEvents struct {
	Enable       signal.Signal[struct{}]
	Disable      signal.Signal[struct{}]
	Commit       signal.Signal[struct{}]
	RequestFocus signal.Signal[struct{}]
	RequestLeave signal.Signal[struct{}]
	Destroy      signal.Signal[struct{}]
}

type TextInput interface {
	Events() *TextInputEvents
	Version() Version
	Client() Client
	// Seat may be nil for protocol versions that bind a seat late.
	Seat() Seat
	FocusedSurface() Surface
	SurroundingText() SurroundingText
	TextChangeCause() ChangeCause
	ContentType() ContentType
	CursorRect() Rect
	Features() Features
	SendEnter(s Surface)
	SendLeave()
	// HandleIMCommitted forwards im's committed content to the client.
	HandleIMCommitted(im InputMethod)
}

type InputMethodEvents struct {
	Commit          signal.Signal[struct{}]
	NewKeyboardGrab signal.Signal[KeyboardGrab]
	NewPopupSurface signal.Signal[PopupSurface]
	Destroy         signal.Signal[struct{}]
}

type InputMethod interface {
	Events() *InputMethodEvents
	Client() Client
	Seat() Seat
	Current() InputMethodState
	SendActivate()
	SendDeactivate()
	SendDone()
	SendSurroundingText(st SurroundingText)
	SendTextChangeCause(cause ChangeCause)
	SendContentType(ct ContentType)
	SendUnavailable()
}

type KeyboardGrabEvents struct {
	Destroy signal.Signal[struct{}]
}

type KeyboardGrab interface {
	Events() *KeyboardGrabEvents
	Client() Client
	InputMethod() InputMethod
	// Keyboard is the device last passed to SetKeyboard, or nil.
	Keyboard() Keyboard
	SetKeyboard(kb Keyboard)
	SendKey(ev KeyEvent)
	SendModifiers(mods Modifiers)
}

type PopupSurfaceEvents struct {
	Destroy signal.Signal[struct{}]
}

type PopupSurface interface {
	Events() *PopupSurfaceEvents
	SendCursorRect(r Rect)
}

type VirtualKeyboardEvents struct {
	Destroy signal.Signal[struct{}]
}

type VirtualKeyboard interface {
	Events() *VirtualKeyboardEvents
	Client() Client
	// Keyboard is the seat device backing this virtual keyboard.
	Keyboard() Keyboard
}

// sameSeat reports whether a and b name the same seat.
func sameSeat(a, b Seat) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Name() == b.Name()
}
