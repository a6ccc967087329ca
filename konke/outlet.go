package konke

import (
	"context"
	"fmt"
)

// Outlet is one socket of a Konke plug or power strip
type Outlet struct {
	facade *Facade
	index  int
	name   string
	id     string
	meter  bool
}

// NewOutlet returns the sub-entity for socket index of a power strip.
// Sockets are numbered from 1 in both the id and the name.
func NewOutlet(f *Facade, index int) (*Outlet, error) {
	if index < 0 || index >= f.Sockets() {
		return nil, fmt.Errorf("%w: socket %d, device has %d", ErrInvalidIndex, index, f.Sockets())
	}
	return &Outlet{
		facade: f,
		index:  index,
		name:   fmt.Sprintf("%s %d", f.Name(), index+1),
		id:     fmt.Sprintf("%s:%d", f.UniqueID(), index+1),
	}, nil
}

// NewPlug returns the outlet of a single-socket plug, which carries the
// device id and name unchanged
func NewPlug(f *Facade, meter bool) (*Outlet, error) {
	if f.Sockets() < 1 {
		return nil, fmt.Errorf("%w: plug reports no socket", ErrInvalidIndex)
	}
	return &Outlet{facade: f, name: f.Name(), id: f.UniqueID(), meter: meter}, nil
}

func (o *Outlet) UniqueID() string { return o.id }
func (o *Outlet) Name() string     { return o.name }
func (o *Outlet) Index() int       { return o.index }
func (o *Outlet) Available() bool  { return o.facade.Available() }

// IsOn is the state seen by the last successful refresh
func (o *Outlet) IsOn() bool {
	on, _ := o.facade.Status(o.index)
	return on
}

func (o *Outlet) State() State {
	return stateOf(o.facade, o.IsOn())
}

func (o *Outlet) TurnOn(ctx context.Context) error {
	if err := o.facade.Set(ctx, o.index, true); err != nil {
		return err
	}
	o.facade.log.WithField("entity", o.id).Debug("turn on outlet")
	return nil
}

func (o *Outlet) TurnOff(ctx context.Context) error {
	if err := o.facade.Set(ctx, o.index, false); err != nil {
		return err
	}
	o.facade.log.WithField("entity", o.id).Debug("turn off outlet")
	return nil
}

// Update triggers the refresh shared with every other entity of the device
func (o *Outlet) Update(ctx context.Context) error {
	return o.facade.Refresh(ctx)
}

// CurrentPower is the draw in watts for plugs with a power meter
func (o *Outlet) CurrentPower() (float64, bool) {
	if !o.meter {
		return 0, false
	}
	pm, ok := o.facade.Device().(PowerMeter)
	if !ok {
		return 0, false
	}
	return pm.Power(), true
}

// USBSwitch is one USB port of a Konke plug or power strip
type USBSwitch struct {
	facade *Facade
	index  int
	name   string
	id     string
}

// NewUSBSwitch returns the sub-entity for USB port index of a power strip
func NewUSBSwitch(f *Facade, index int) (*USBSwitch, error) {
	if index < 0 || index >= f.USBPorts() {
		return nil, fmt.Errorf("%w: usb port %d, device has %d", ErrInvalidIndex, index, f.USBPorts())
	}
	return &USBSwitch{
		facade: f,
		index:  index,
		name:   fmt.Sprintf("%s USB %d", f.Name(), index+1),
		id:     fmt.Sprintf("%s:usb%d", f.UniqueID(), index+1),
	}, nil
}

// NewPlugUSB returns the single USB port of a plug such as the K2
func NewPlugUSB(f *Facade) (*USBSwitch, error) {
	if f.USBPorts() < 1 {
		return nil, fmt.Errorf("%w: no USB ports", ErrUnsupported)
	}
	return &USBSwitch{facade: f, name: f.Name() + " USB", id: f.UniqueID() + ":usb"}, nil
}

func (u *USBSwitch) UniqueID() string { return u.id }
func (u *USBSwitch) Name() string     { return u.name }
func (u *USBSwitch) Index() int       { return u.index }
func (u *USBSwitch) Available() bool  { return u.facade.Available() }

func (u *USBSwitch) IsOn() bool {
	on, _ := u.facade.USBStatus(u.index)
	return on
}

func (u *USBSwitch) State() State {
	return stateOf(u.facade, u.IsOn())
}

func (u *USBSwitch) TurnOn(ctx context.Context) error {
	if err := u.facade.SetUSB(ctx, u.index, true); err != nil {
		return err
	}
	u.facade.log.WithField("entity", u.id).Debug("turn on usb")
	return nil
}

func (u *USBSwitch) TurnOff(ctx context.Context) error {
	if err := u.facade.SetUSB(ctx, u.index, false); err != nil {
		return err
	}
	u.facade.log.WithField("entity", u.id).Debug("turn off usb")
	return nil
}

func (u *USBSwitch) Update(ctx context.Context) error {
	return u.facade.Refresh(ctx)
}
