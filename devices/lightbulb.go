package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

// Lightbulb is a KLight, KBulb or K2 light ring; the optional
// characteristics are nil when the light does not support them
type Lightbulb struct {
	*accessory.Accessory
	Lightbulb *LightbulbSvc
}

// LightbulbOptions selects the characteristics to add
type LightbulbOptions struct {
	Brightness bool
	Color      bool
	ColorTemp  bool
	MinMireds  int
	MaxMireds  int
}

func NewLightbulb(info accessory.Info, opts LightbulbOptions) *Lightbulb {
	acc := Lightbulb{}
	acc.Accessory = accessory.New(info, accessory.TypeLightbulb)
	acc.Lightbulb = NewLightbulbSvc(opts)

	acc.AddService(acc.Lightbulb.Service)

	return &acc
}

type LightbulbSvc struct {
	*service.Service

	On               *characteristic.On
	Brightness       *characteristic.Brightness
	Hue              *characteristic.Hue
	Saturation       *characteristic.Saturation
	ColorTemperature *characteristic.ColorTemperature
	StatusFault      *characteristic.StatusFault
}

func NewLightbulbSvc(opts LightbulbOptions) *LightbulbSvc {
	svc := LightbulbSvc{}
	svc.Service = service.New(service.TypeLightbulb)

	svc.On = characteristic.NewOn()
	svc.AddCharacteristic(svc.On.Characteristic)

	if opts.Brightness {
		svc.Brightness = characteristic.NewBrightness()
		svc.AddCharacteristic(svc.Brightness.Characteristic)
	}

	if opts.Color {
		svc.Hue = characteristic.NewHue()
		svc.AddCharacteristic(svc.Hue.Characteristic)

		svc.Saturation = characteristic.NewSaturation()
		svc.AddCharacteristic(svc.Saturation.Characteristic)
	}

	if opts.ColorTemp {
		svc.ColorTemperature = characteristic.NewColorTemperature()
		if opts.MinMireds > 0 && opts.MaxMireds > opts.MinMireds {
			svc.ColorTemperature.SetMinValue(opts.MinMireds)
			svc.ColorTemperature.SetMaxValue(opts.MaxMireds)
			svc.ColorTemperature.SetValue(opts.MinMireds)
		}
		svc.AddCharacteristic(svc.ColorTemperature.Characteristic)
	}

	svc.StatusFault = characteristic.NewStatusFault()
	svc.StatusFault.SetValue(characteristic.StatusFaultNoFault)
	svc.AddCharacteristic(svc.StatusFault.Characteristic)

	return &svc
}
