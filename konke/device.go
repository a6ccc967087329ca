package konke

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidIndex means a socket or USB index outside what the device reported at setup
	ErrInvalidIndex = errors.New("konke: index out of range")
	// ErrUnsupported means the device or entity does not have the requested feature
	ErrUnsupported = errors.New("konke: not supported by this device")
	// ErrUnknownModel means no entry in the model registry
	ErrUnknownModel = errors.New("konke: unsupported device model")
)

// Device is the minimum a device handle provides
type Device interface {
	Host() string
	MAC() string
	Online() bool
	Refresh(ctx context.Context) error
}

// Relays is a device with one or more switchable sockets
type Relays interface {
	SocketCount() int
	Status() []bool
	TurnOn(ctx context.Context, index int) error
	TurnOff(ctx context.Context, index int) error
}

// USBPorts is a device with switchable USB ports
type USBPorts interface {
	USBCount() int
	USBStatus() []bool
	TurnOnUSB(ctx context.Context, index int) error
	TurnOffUSB(ctx context.Context, index int) error
}

// PowerMeter is a device reporting its current draw in watts
type PowerMeter interface {
	Power() float64
}

// Lamp is a device with a dimmable and/or colored light
type Lamp interface {
	LightOn() bool
	Brightness() int
	Color() (r, g, b uint8)
	ColorTemp() int
	TurnOnLight(ctx context.Context) error
	TurnOffLight(ctx context.Context) error
	SetBrightness(ctx context.Context, pct int) error
	SetColor(ctx context.Context, r, g, b uint8) error
	SetColorTemp(ctx context.Context, kelvin int) error
}

// Transmitter is a device able to replay and learn IR/RF codes
type Transmitter interface {
	SupportsIR() bool
	SupportsRF() bool
	Emit(ctx context.Context, kind string, slot int) error
	Learn(ctx context.Context, kind string, slot int, timeout time.Duration) (bool, error)
}
