package konke

import (
	"context"
	"fmt"

	"github.com/cloudkucooland/konkebridge/konkeio"
	"github.com/sirupsen/logrus"
)

// Facade is one physical device as seen by one configured accessory. It holds
// the device handle and the poll coalescer, both shared with any other facade
// for the same host; every entity built for the accessory points back to it.
type Facade struct {
	name    string
	device  Device
	poll    *Coalescer
	sockets int
	usb     int
	log     logrus.FieldLogger
}

// NewFacade wraps device; poll gates its refreshes
func NewFacade(name string, device Device, poll *Coalescer) *Facade {
	return &Facade{
		name:   name,
		device: device,
		poll:   poll,
		log:    poll.log.WithField("host", device.Host()),
	}
}

// Init performs the first refresh and records how many sockets and USB ports
// the device reports. Indices are checked against these counts from then on.
func (f *Facade) Init(ctx context.Context) error {
	if err := f.Refresh(ctx); err != nil {
		return err
	}
	if !f.Available() {
		return fmt.Errorf("%w: %s", konkeio.ErrDeviceOffline, f.device.Host())
	}
	if r, ok := f.device.(Relays); ok {
		f.sockets = r.SocketCount()
	}
	if u, ok := f.device.(USBPorts); ok {
		f.usb = u.USBCount()
	}
	f.log = f.log.WithField("mac", f.device.MAC())
	return nil
}

// Name is the display name
func (f *Facade) Name() string {
	return f.name
}

// UniqueID is the device MAC address
func (f *Facade) UniqueID() string {
	return f.device.MAC()
}

// Device returns the underlying handle
func (f *Facade) Device() Device {
	return f.device
}

// Sockets is the socket count recorded at Init
func (f *Facade) Sockets() int {
	return f.sockets
}

// USBPorts is the USB port count recorded at Init
func (f *Facade) USBPorts() int {
	return f.usb
}

// Refresh updates the cached state, at most once per debounce window
func (f *Facade) Refresh(ctx context.Context) error {
	return f.poll.MaybeRefresh(ctx, f.device.Refresh)
}

// Available mirrors the device online flag as seen by the last refresh
func (f *Facade) Available() bool {
	return f.poll.Available() && f.device.Online()
}

// Refreshed is false until a refresh has succeeded
func (f *Facade) Refreshed() bool {
	return f.poll.Refreshed()
}

// Status is the cached state of socket i
func (f *Facade) Status(i int) (bool, error) {
	r, ok := f.device.(Relays)
	if !ok {
		return false, ErrUnsupported
	}
	if i < 0 || i >= f.sockets {
		return false, fmt.Errorf("%w: socket %d, device has %d", ErrInvalidIndex, i, f.sockets)
	}
	return at(r.Status(), i), nil
}

// USBStatus is the cached state of USB port i
func (f *Facade) USBStatus(i int) (bool, error) {
	u, ok := f.device.(USBPorts)
	if !ok || f.usb == 0 {
		return false, fmt.Errorf("%w: no USB ports", ErrUnsupported)
	}
	if i < 0 || i >= f.usb {
		return false, fmt.Errorf("%w: usb port %d, device has %d", ErrInvalidIndex, i, f.usb)
	}
	return at(u.USBStatus(), i), nil
}

// Set asks the device to switch socket i. The cached state changes on the next refresh.
func (f *Facade) Set(ctx context.Context, i int, on bool) error {
	r, ok := f.device.(Relays)
	if !ok {
		return ErrUnsupported
	}
	if i < 0 || i >= f.sockets {
		return fmt.Errorf("%w: socket %d, device has %d", ErrInvalidIndex, i, f.sockets)
	}
	if on {
		return r.TurnOn(ctx, i)
	}
	return r.TurnOff(ctx, i)
}

// SetUSB asks the device to switch USB port i
func (f *Facade) SetUSB(ctx context.Context, i int, on bool) error {
	u, ok := f.device.(USBPorts)
	if !ok || f.usb == 0 {
		return fmt.Errorf("%w: no USB ports", ErrUnsupported)
	}
	if i < 0 || i >= f.usb {
		return fmt.Errorf("%w: usb port %d, device has %d", ErrInvalidIndex, i, f.usb)
	}
	if on {
		return u.TurnOnUSB(ctx, i)
	}
	return u.TurnOffUSB(ctx, i)
}

// at tolerates a status list that shrank since setup
func at(s []bool, i int) bool {
	if i >= len(s) {
		return false
	}
	return s[i]
}
