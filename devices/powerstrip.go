package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

// PowerStrip is a Konke plug or strip: one outlet service per socket and
// one switch service per USB port
type PowerStrip struct {
	*accessory.Accessory
	Outlets []*OutletSvc
	USB     []*USBSvc
}

// NewPowerStrip builds the accessory; outlets and usb are the service names
func NewPowerStrip(info accessory.Info, outlets, usb []string) *PowerStrip {
	acc := PowerStrip{}
	acc.Accessory = accessory.New(info, accessory.TypeOutlet)

	for _, name := range outlets {
		svc := NewOutletSvc(name)
		acc.AddService(svc.Service)
		acc.Outlets = append(acc.Outlets, svc)
	}
	for _, name := range usb {
		svc := NewUSBSvc(name)
		acc.AddService(svc.Service)
		acc.USB = append(acc.USB, svc)
	}

	return &acc
}

type OutletSvc struct {
	*service.Service

	On          *characteristic.On
	OutletInUse *characteristic.OutletInUse
	Name        *characteristic.Name
	StatusFault *characteristic.StatusFault
}

func NewOutletSvc(name string) *OutletSvc {
	svc := OutletSvc{}
	svc.Service = service.New(service.TypeOutlet)

	svc.On = characteristic.NewOn()
	svc.AddCharacteristic(svc.On.Characteristic)

	svc.OutletInUse = characteristic.NewOutletInUse()
	svc.AddCharacteristic(svc.OutletInUse.Characteristic)

	svc.Name = characteristic.NewName()
	svc.Name.SetValue(name)
	svc.AddCharacteristic(svc.Name.Characteristic)

	svc.StatusFault = characteristic.NewStatusFault()
	svc.StatusFault.SetValue(characteristic.StatusFaultNoFault)
	svc.AddCharacteristic(svc.StatusFault.Characteristic)

	return &svc
}

type USBSvc struct {
	*service.Service

	On          *characteristic.On
	Name        *characteristic.Name
	StatusFault *characteristic.StatusFault
}

func NewUSBSvc(name string) *USBSvc {
	svc := USBSvc{}
	svc.Service = service.New(service.TypeSwitch)

	svc.On = characteristic.NewOn()
	svc.AddCharacteristic(svc.On.Characteristic)

	svc.Name = characteristic.NewName()
	svc.Name.SetValue(name)
	svc.AddCharacteristic(svc.Name.Characteristic)

	svc.StatusFault = characteristic.NewStatusFault()
	svc.StatusFault.SetValue(characteristic.StatusFaultNoFault)
	svc.AddCharacteristic(svc.StatusFault.Characteristic)

	return &svc
}
