package runner

// this is distinct from action because of circular imports

import (
	"fmt"

	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/konkebridge/action"
	"github.com/cloudkucooland/konkebridge/platform"
)

// RunActions runs each action in its own goroutine
func RunActions(as []*action.Action) {
	for _, a := range as {
		go func(a *action.Action) {
			if err := Run(a); err != nil {
				log.Info.Println(err.Error())
			}
		}(a)
	}
}

// Run looks up the target accessory and hands it the action
func Run(a *action.Action) error {
	log.Debug.Printf("running action: %+v", a)
	p, ok := platform.GetPlatform(a.TargetPlatform)
	if !ok {
		return fmt.Errorf("unknown platform [%s]", a.TargetPlatform)
	}
	d, ok := p.GetAccessory(a.TargetDevice)
	if !ok {
		return fmt.Errorf("unknown device [%s]", a.TargetDevice)
	}
	if d.Runner == nil {
		return fmt.Errorf("[%s] does not have an action runner", d.Name)
	}
	d.Runner(d, a)
	return nil
}
