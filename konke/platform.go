package konke

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brutella/hc/log"
	tfaccessory "github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/config"
	"github.com/cloudkucooland/konkebridge/konkeio"
	"github.com/cloudkucooland/konkebridge/platform"
	"github.com/sirupsen/logrus"
)

// how long the first refresh of a device may take
const setupTimeout = 15 * time.Second

// Platform is the platform handle for the Konke stuff
type Platform struct {
	Running bool
}

type kmu struct {
	mu sync.Mutex
	ks map[string]*binding
}

// bindings are indexed by accessory name; several may share a host
var konkes = kmu{ks: make(map[string]*binding)}

var (
	client   *konkeio.Client
	manager  *Manager
	pullRate time.Duration
	stop     context.CancelFunc
)

// Startup connects to the gateway broker
func (k Platform) Startup(c *config.Config) platform.Control {
	cl, err := konkeio.Connect(c.MQTTBroker, c.MQTTClientID, c.MQTTPrefix, c.Timeout())
	if err != nil {
		log.Info.Printf("unable to start konke platform: %s", err.Error())
		return k
	}
	client = cl
	manager = NewManager(func(host string) (Device, error) {
		d, err := cl.Device(host)
		if err != nil {
			return nil, err
		}
		return d, nil
	}, c.Debounce(), logrus.WithField("platform", "konke"))
	pullRate = c.PullRate()

	k.Running = true
	return k
}

// Shutdown is called by the platform management to shut things down
func (k Platform) Shutdown() platform.Control {
	if stop != nil {
		stop()
	}
	if client != nil {
		client.Close()
	}
	k.Running = false
	return k
}

// AddAccessory reaches the device, builds its entities, then adds it to HC
func (k Platform) AddAccessory(a *tfaccessory.TFAccessory) error {
	if manager == nil {
		return fmt.Errorf("konke platform not running, skipping [%s]", a.Name)
	}

	hc, ok := platform.GetPlatform("HomeControl")
	if !ok {
		return fmt.Errorf("can't add accessory, HomeControl platform does not yet exist")
	}

	if _, ok := k.GetAccessory(a.Name); ok {
		return fmt.Errorf("already have an accessory named [%s]", a.Name)
	}

	kind := Kind(strings.ToLower(a.Kind))
	if kind == "" {
		kind = KindSwitch
	}
	name := a.Info.Name
	if name == "" {
		name = a.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()
	f, entities, err := manager.Setup(ctx, Spec{Kind: kind, Model: a.Model, Host: a.IP, Name: name, RemoteType: a.RemoteType})
	if err != nil {
		return fmt.Errorf("unable to set up konke device [%s]: %w", a.Name, err)
	}

	// override the config file with reality
	a.Info.Name = f.Name()
	a.Info.Manufacturer = "Konke"
	a.Info.Model = a.Model
	a.Info.SerialNumber = f.UniqueID()
	a.Info.ID = accessoryID(f.UniqueID(), kind, a.RemoteType)

	b, err := bind(a, kind, f, entities)
	if err != nil {
		return err
	}
	a.Runner = actionRunner

	log.Info.Printf("adding [%s]: [%s] with %d entities", a.Info.Name, a.Info.Model, len(entities))
	if err := hc.AddAccessory(a); err != nil {
		return err
	}

	konkes.mu.Lock()
	konkes.ks[a.Name] = b
	konkes.mu.Unlock()

	b.sync()
	return nil
}

// GetAccessory looks up a Konke accessory by name
func (k Platform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	b, ok := lookup(name)
	if !ok {
		return nil, false
	}
	return b.acc, true
}

func lookup(name string) (*binding, bool) {
	konkes.mu.Lock()
	defer konkes.mu.Unlock()
	b, ok := konkes.ks[name]
	return b, ok
}

func bindings() []*binding {
	konkes.mu.Lock()
	defer konkes.mu.Unlock()
	bs := make([]*binding, 0, len(konkes.ks))
	for _, b := range konkes.ks {
		bs = append(bs, b)
	}
	return bs
}

// Background pulls every device each KonkePullRate seconds
func (k Platform) Background() {
	if pullRate == 0 {
		log.Info.Print("konke pulling disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	stop = cancel
	go func() {
		ticker := time.NewTicker(pullRate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pullAll(ctx)
			}
		}
	}()
}

func pullAll(ctx context.Context) {
	pull(ctx, bindings())
}

// pull updates every binding at once so that a device waiting out its
// timeout does not hold up the others
func pull(ctx context.Context, bs []*binding) {
	var wg sync.WaitGroup
	for _, b := range bs {
		wg.Add(1)
		go func(b *binding) {
			defer wg.Done()
			b.update(ctx)
		}(b)
	}
	wg.Wait()
}
