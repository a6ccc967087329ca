package konke

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/log"
	tfaccessory "github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/devices"
	"github.com/cloudkucooland/konkebridge/runner"
)

// how long a HomeKit write may take before it is abandoned
const writeTimeout = 10 * time.Second

// binding ties the entities of one configured accessory to its hc accessory
type binding struct {
	acc      *tfaccessory.TFAccessory
	facade   *Facade
	entities []Entity
	sync     func()
}

// accessoryID derives a stable HomeKit id from the MAC; accessories sharing
// a device are kept apart by the top bits
func accessoryID(mac string, kind Kind, remoteType string) uint64 {
	raw, err := hex.DecodeString(strings.NewReplacer(":", "", "-", "").Replace(mac))
	if err != nil || len(raw) == 0 {
		// hc assigns one
		return 0
	}
	var id uint64
	for _, v := range raw {
		id = id<<8 | uint64(v)
	}
	switch kind {
	case KindLight:
		id |= 1 << 48
	case KindRemote:
		id |= 2 << 48
		if strings.EqualFold(remoteType, RemoteRF) {
			id |= 1 << 50
		}
	}
	return id
}

func bind(a *tfaccessory.TFAccessory, kind Kind, f *Facade, entities []Entity) (*binding, error) {
	b := &binding{acc: a, facade: f, entities: entities}
	switch kind {
	case KindLight:
		return b, b.bindLight()
	case KindRemote:
		return b, b.bindRemote()
	default:
		return b, b.bindSwitch()
	}
}

func fault(e Entity) int {
	if e.Available() {
		return characteristic.StatusFaultNoFault
	}
	return characteristic.StatusFaultGeneralFault
}

// setSwitch handles a write from HomeKit and fires the accessory's actions
func setSwitch(a *tfaccessory.TFAccessory, s Switchable, newval bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	log.Info.Printf("setting [%s] to [%t]", s.Name(), newval)
	var err error
	state := "Off"
	if newval {
		state = "On"
		err = s.TurnOn(ctx)
	} else {
		err = s.TurnOff(ctx)
	}
	if err != nil {
		return err
	}
	runner.RunActions(a.MatchActions(state))
	return nil
}

func onRemoteUpdate(a *tfaccessory.TFAccessory, on *characteristic.On, s Switchable) {
	on.OnValueRemoteUpdate(func(newval bool) {
		if err := setSwitch(a, s, newval); err != nil {
			log.Info.Println(err.Error())
		}
	})
}

func (b *binding) bindSwitch() error {
	var outlets, usb []Switchable
	var outletNames, usbNames []string
	for _, e := range b.entities {
		switch e := e.(type) {
		case *Outlet:
			outlets = append(outlets, e)
			outletNames = append(outletNames, e.Name())
		case *USBSwitch:
			usb = append(usb, e)
			usbNames = append(usbNames, e.Name())
		}
	}
	if len(outlets) == 0 {
		return fmt.Errorf("%w: [%s] has no outlets", ErrUnsupported, b.acc.Name)
	}

	d := devices.NewPowerStrip(b.acc.Info, outletNames, usbNames)
	for i, o := range outlets {
		onRemoteUpdate(b.acc, d.Outlets[i].On, o)
	}
	for i, u := range usb {
		onRemoteUpdate(b.acc, d.USB[i].On, u)
	}

	b.acc.Type = accessory.TypeOutlet
	b.acc.Device = d
	b.acc.Accessory = d.Accessory
	b.sync = func() {
		for i, o := range outlets {
			svc := d.Outlets[i]
			on := o.IsOn()
			if svc.On.GetValue() != on {
				log.Debug.Printf("updating HomeKit: [%s] %t", o.Name(), on)
			}
			svc.On.SetValue(on)
			svc.OutletInUse.SetValue(on)
			svc.StatusFault.SetValue(fault(o))
		}
		for i, u := range usb {
			d.USB[i].On.SetValue(u.IsOn())
			d.USB[i].StatusFault.SetValue(fault(u))
		}
	}
	return nil
}

func (b *binding) light() *Light {
	for _, e := range b.entities {
		if l, ok := e.(*Light); ok {
			return l
		}
	}
	return nil
}

func (b *binding) bindLight() error {
	l := b.light()
	if l == nil {
		return fmt.Errorf("%w: [%s] has no light", ErrUnsupported, b.acc.Name)
	}

	features := l.SupportedFeatures()
	d := devices.NewLightbulb(b.acc.Info, devices.LightbulbOptions{
		Brightness: features&SupportBrightness != 0,
		Color:      features&SupportColor != 0,
		ColorTemp:  features&SupportColorTemp != 0,
		MinMireds:  l.MinMireds(),
		MaxMireds:  l.MaxMireds(),
	})
	svc := d.Lightbulb
	onRemoteUpdate(b.acc, svc.On, l)

	turnOnWith := func(opts LightOptions) {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := l.TurnOnWith(ctx, opts); err != nil {
			log.Info.Println(err.Error())
		}
	}
	if svc.Brightness != nil {
		svc.Brightness.OnValueRemoteUpdate(func(pct int) {
			level := pctToLevel(pct)
			turnOnWith(LightOptions{Brightness: &level})
		})
	}
	if svc.Hue != nil {
		svc.Hue.OnValueRemoteUpdate(func(hue float64) {
			turnOnWith(LightOptions{Color: &HS{Hue: hue, Saturation: svc.Saturation.GetValue()}})
		})
		svc.Saturation.OnValueRemoteUpdate(func(sat float64) {
			turnOnWith(LightOptions{Color: &HS{Hue: svc.Hue.GetValue(), Saturation: sat}})
		})
	}
	if svc.ColorTemperature != nil {
		svc.ColorTemperature.OnValueRemoteUpdate(func(mireds int) {
			turnOnWith(LightOptions{ColorTemp: &mireds})
		})
	}

	b.acc.Type = accessory.TypeLightbulb
	b.acc.Device = d
	b.acc.Accessory = d.Accessory
	b.sync = func() {
		svc.On.SetValue(l.IsOn())
		svc.StatusFault.SetValue(fault(l))
		if svc.Brightness != nil {
			svc.Brightness.SetValue(levelToPct(l.Brightness()))
		}
		if svc.Hue != nil {
			c := l.Color()
			svc.Hue.SetValue(c.Hue)
			svc.Saturation.SetValue(c.Saturation)
		}
		if svc.ColorTemperature != nil {
			if m := l.ColorTemp(); m > 0 {
				svc.ColorTemperature.SetValue(m)
			}
		}
	}
	return nil
}

func (b *binding) remote() *Remote {
	for _, e := range b.entities {
		if r, ok := e.(*Remote); ok {
			return r
		}
	}
	return nil
}

func (b *binding) bindRemote() error {
	r := b.remote()
	if r == nil {
		return fmt.Errorf("%w: [%s] has no transmitter", ErrUnsupported, b.acc.Name)
	}

	d := devices.NewRemoteHub(b.acc.Info)
	d.Switch.On.OnValueRemoteUpdate(func(newval bool) {
		log.Info.Printf("[%s] is a %s remote, send commands with actions or over HTTP", b.acc.Name, r.Type())
	})

	b.acc.Type = accessory.TypeSwitch
	b.acc.Device = d
	b.acc.Accessory = d.Accessory
	b.sync = func() {
		d.Switch.On.SetValue(r.IsOn())
		d.Switch.StatusFault.SetValue(fault(r))
	}
	return nil
}

// update refreshes every entity; they share the facade, so the device sees one request
func (b *binding) update(ctx context.Context) {
	for _, e := range b.entities {
		if err := e.Update(ctx); err != nil {
			b.facade.log.WithError(err).WithField("entity", e.UniqueID()).Warn("update failed")
		}
	}
	b.sync()
}
