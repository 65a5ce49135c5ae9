package seat

import "github.com/bnema/wayime/internal/ime"

// Device is a keyboard device attached to a seat. Its origin is fixed at
// creation: physical, or synthesized by a client.
type Device struct {
	name   string
	origin ime.DeviceOrigin
	mods   ime.Modifiers
}

// NewPhysicalKeyboard creates a keyboard device backed by hardware.
func NewPhysicalKeyboard(name string) *Device {
	return &Device{name: name}
}

// NewVirtualKeyboard creates a keyboard device synthesized by client.
func NewVirtualKeyboard(name string, client ime.Client) *Device {
	return &Device{
		name:   name,
		origin: ime.DeviceOrigin{Virtual: true, Client: client},
	}
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Origin() ime.DeviceOrigin {
	return d.origin
}

func (d *Device) Modifiers() ime.Modifiers {
	return d.mods
}

func (d *Device) String() string {
	return d.name
}
