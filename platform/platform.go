package platform

import (
	"sync"

	"github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/config"
)

// Control is the interface which all platforms must satisfy
type Control interface {
	Startup(*config.Config) Control
	Background()
	Shutdown() Control
	AddAccessory(*accessory.TFAccessory) error
	GetAccessory(string) (*accessory.TFAccessory, bool)
}

var mu sync.Mutex
var platforms = make(map[string]Control)

// RegisterPlatform is called whenever a new platform is instantiated
func RegisterPlatform(name string, control Control) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := platforms[name]; !ok {
		platforms[name] = control
	}
}

// GetPlatform looks up a registered platform by name
func GetPlatform(name string) (Control, bool) {
	mu.Lock()
	defer mu.Unlock()
	pc, ok := platforms[name]
	return pc, ok
}

// ShutdownAllPlatforms is called at process stop to shutdown all platforms
func ShutdownAllPlatforms() {
	mu.Lock()
	defer mu.Unlock()
	for name, platform := range platforms {
		platforms[name] = platform.Shutdown()
	}
}

// StartupAllPlatforms is called at process start to initialize all platforms
func StartupAllPlatforms(c *config.Config) {
	mu.Lock()
	defer mu.Unlock()
	for name, platform := range platforms {
		platforms[name] = platform.Startup(c)
	}
}

// Background starts the background processes for every platform
func Background() {
	mu.Lock()
	defer mu.Unlock()
	for _, platform := range platforms {
		platform.Background()
	}
}
