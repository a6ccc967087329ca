package accessory

import (
	hcaccessory "github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/konkebridge/action"
)

// TFAccessory is the accessory type, the bridge's stuff, plus hc's stuff
type TFAccessory struct {
	Platform string // Konke
	Name     string // the name used internally
	// the accessory's config file name
	IP         string // the host of the device, as known by the gateway
	Kind       string // switch, light or remote
	Model      string // k1, k2, minik, mul, micmul, klight, kbulb, k2_light...
	RemoteType string // ir or rf, remotes only
	Type       hcaccessory.AccessoryType

	// embedded struct (pointer)
	Info                   hcaccessory.Info // defined at https://github.com/brutella/hc/blob/master/accessory/accessory.go
	*hcaccessory.Accessory                  // set when the device is added to HomeControl

	Device interface{}

	Actions []action.Action
	Runner  func(*TFAccessory, *action.Action)
}

// MatchActions returns a slice of actions that should be run
// jumping through hoops since including platform here would be circular
func (a TFAccessory) MatchActions(state string) []*action.Action {
	var actions []*action.Action
	for i := range a.Actions {
		if a.Actions[i].TriggerState == state {
			log.Debug.Printf("%s: %+v", state, a.Actions[i])
			actions = append(actions, &a.Actions[i])
		}
	}
	return actions
}
