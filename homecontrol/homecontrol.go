package tfhc

import (
	"fmt"
	"path/filepath"
	"sync"

	tfaccessory "github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/config"
	"github.com/cloudkucooland/konkebridge/platform"

	"github.com/brutella/hc"
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/brutella/hc/util"
)

// HCPlatform is the platform handle
type HCPlatform struct {
	Running bool
}

type hcmu struct {
	mu  sync.Mutex
	hcs map[string]*tfaccessory.TFAccessory
}

var accessories = hcmu{hcs: make(map[string]*tfaccessory.TFAccessory)}

// Startup is called by the platform bootstrap
func (h HCPlatform) Startup(c *config.Config) platform.Control {
	h.Running = true
	return h
}

// StartHC is called after all devices are registered to start operation
func StartHC(c *config.Config) error {
	storage, err := util.NewFileStorage(filepath.Join(c.ConfigDir, "serials"))
	if err != nil {
		return fmt.Errorf("unable to get storage: %w", err)
	}
	serial := util.GetSerialNumberForAccessoryName("KonkeBridgeRoot", storage)

	if c.Name == "" {
		c.Name = "Konke"
	}
	root := accessory.NewBridge(accessory.Info{
		Name:             c.Name,
		ID:               1,
		SerialNumber:     serial,
		Manufacturer:     "konkebridge",
		Model:            "KonkeBridge",
		FirmwareRevision: "0.1.0",
	})
	root.Accessory.OnIdentify(func() {
		log.Info.Printf("bridge root identify called: %+v", root.Accessory)
	})

	transport, err := hc.NewIPTransport(c.HCConfig, root.Accessory, Accessories()...)
	if err != nil {
		return err
	}

	hc.OnTermination(func() {
		<-transport.Stop()
	})
	go transport.Start()
	uri, _ := transport.XHMURI()
	log.Info.Printf("add this bridge with: %s", uri)
	return nil
}

// Accessories returns every registered hc accessory
func Accessories() []*accessory.Accessory {
	accessories.mu.Lock()
	defer accessories.mu.Unlock()

	values := make([]*accessory.Accessory, 0, len(accessories.hcs))
	for _, v := range accessories.hcs {
		values = append(values, v.Accessory)
	}
	return values
}

// Shutdown is called at process teardown
func (h HCPlatform) Shutdown() platform.Control {
	h.Running = false
	return h
}

// AddAccessory registers a device with HC
func (h HCPlatform) AddAccessory(a *tfaccessory.TFAccessory) error {
	// catch devices that didn't get set up properly
	if a.Accessory == nil {
		return fmt.Errorf("accessory unset: %v", a.Info)
	}

	accessories.mu.Lock()
	defer accessories.mu.Unlock()
	if _, ok := accessories.hcs[a.Name]; ok {
		return fmt.Errorf("duplicate accessory name: %s", a.Name)
	}

	a.Accessory.OnIdentify(func() {
		log.Info.Printf("identify called for [%s]: %+v", a.Name, a.Accessory)
		for _, service := range a.Accessory.GetServices() {
			log.Debug.Printf("service: %+v", service)
			for _, char := range service.GetCharacteristics() {
				log.Debug.Printf("characteristic : %+v", char)
			}
		}
	})

	accessories.hcs[a.Name] = a
	return nil
}

// GetAccessory looks up a device by name -- you probably want the platform's version, not this
func (h HCPlatform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	accessories.mu.Lock()
	defer accessories.mu.Unlock()
	a, ok := accessories.hcs[name]
	return a, ok
}

// Background runs the various background tasks: none for HC
func (h HCPlatform) Background() {
}
