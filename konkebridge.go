package konkebridge

import (
	"fmt"

	"github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/config"
	tfhc "github.com/cloudkucooland/konkebridge/homecontrol"
	"github.com/cloudkucooland/konkebridge/httpctl"
	"github.com/cloudkucooland/konkebridge/konke"
	"github.com/cloudkucooland/konkebridge/platform"
)

// BootstrapPlatforms sets up all the platforms
func BootstrapPlatforms(c *config.Config) {
	var hcp tfhc.HCPlatform
	platform.RegisterPlatform("HomeControl", hcp)

	var h httpctl.Platform
	platform.RegisterPlatform("HTTP", h)

	var kp konke.Platform
	platform.RegisterPlatform("Konke", kp)

	platform.StartupAllPlatforms(c)
}

// AddAccessory is a wrapper to each platform's AddAccessory, no need to expose each platform to the daemon
func AddAccessory(a *accessory.TFAccessory) error {
	if a.Platform == "" {
		a.Platform = "Konke"
	}

	p, ok := platform.GetPlatform(a.Platform)
	if !ok {
		return fmt.Errorf("unknown accessory platform [%s] for [%s]", a.Platform, a.Name)
	}
	return p.AddAccessory(a)
}

// StartHC is just a wrapper, no need to expose tfhc to the daemon
func StartHC(c *config.Config) error {
	return tfhc.StartHC(c)
}
