package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

// RemoteHub is the IR or RF transmitter of a Konke device. HomeKit has no
// remote service a bridge can drive, so it shows as a switch that is on
// while the transmitter is reachable; commands go through actions and HTTP.
type RemoteHub struct {
	*accessory.Accessory
	Switch *RemoteSvc
}

func NewRemoteHub(info accessory.Info) *RemoteHub {
	acc := RemoteHub{}
	acc.Accessory = accessory.New(info, accessory.TypeSwitch)
	acc.Switch = NewRemoteSvc()
	acc.AddService(acc.Switch.Service)

	return &acc
}

type RemoteSvc struct {
	*service.Service

	On          *characteristic.On
	StatusFault *characteristic.StatusFault
}

func NewRemoteSvc() *RemoteSvc {
	svc := RemoteSvc{}
	svc.Service = service.New(service.TypeSwitch)

	svc.On = characteristic.NewOn()
	svc.AddCharacteristic(svc.On.Characteristic)

	svc.StatusFault = characteristic.NewStatusFault()
	svc.AddCharacteristic(svc.StatusFault.Characteristic)

	return &svc
}
