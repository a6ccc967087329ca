package konke

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cloudkucooland/konkebridge/konkeio"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeDevice keeps what the hardware would report in the "remote" fields;
// they are only copied into the cached fields by Refresh.
type fakeDevice struct {
	mu sync.Mutex

	host   string
	mac    string
	online bool

	status []bool
	usb    []bool
	light  bool
	bright int
	color  [3]uint8
	ct     int
	power  float64
	ir, rf bool

	remoteStatus []bool
	remoteUSB    []bool
	remoteLight  bool

	refreshErr error
	delay      time.Duration // how long Refresh takes
	refreshes  int
	calls      []string
	learnOK    bool
}

func newFakeDevice(sockets, usb int) *fakeDevice {
	return &fakeDevice{
		host:         "192.168.1.20",
		mac:          "28:d9:8a:01:02:03",
		online:       true,
		remoteStatus: make([]bool, sockets),
		remoteUSB:    make([]bool, usb),
	}
}

func (d *fakeDevice) Host() string { return d.host }

func (d *fakeDevice) MAC() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mac
}

func (d *fakeDevice) Online() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online
}

func (d *fakeDevice) Refresh(ctx context.Context) error {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshes++
	if d.refreshErr != nil {
		if errors.Is(d.refreshErr, konkeio.ErrDeviceOffline) {
			d.online = false
		}
		return d.refreshErr
	}
	d.online = true
	d.status = append([]bool(nil), d.remoteStatus...)
	d.usb = append([]bool(nil), d.remoteUSB...)
	d.light = d.remoteLight
	return nil
}

func (d *fakeDevice) setOffline(offline bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if offline {
		d.refreshErr = fmt.Errorf("%w: %s", konkeio.ErrDeviceOffline, d.host)
	} else {
		d.refreshErr = nil
	}
}

func (d *fakeDevice) failWith(err error) {
	d.mu.Lock()
	d.refreshErr = err
	d.mu.Unlock()
}

func (d *fakeDevice) refreshCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshes
}

func (d *fakeDevice) record(format string, args ...interface{}) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) SocketCount() int { return len(d.remoteStatus) }

func (d *fakeDevice) Status() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *fakeDevice) TurnOn(ctx context.Context, i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("turn_on %d", i)
	d.remoteStatus[i] = true
	return nil
}

func (d *fakeDevice) TurnOff(ctx context.Context, i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("turn_off %d", i)
	d.remoteStatus[i] = false
	return nil
}

func (d *fakeDevice) USBCount() int { return len(d.remoteUSB) }

func (d *fakeDevice) USBStatus() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.usb
}

func (d *fakeDevice) TurnOnUSB(ctx context.Context, i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("turn_on_usb %d", i)
	d.remoteUSB[i] = true
	return nil
}

func (d *fakeDevice) TurnOffUSB(ctx context.Context, i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("turn_off_usb %d", i)
	d.remoteUSB[i] = false
	return nil
}

func (d *fakeDevice) Power() float64 { return d.power }

func (d *fakeDevice) LightOn() bool   { return d.light }
func (d *fakeDevice) Brightness() int { return d.bright }

func (d *fakeDevice) Color() (uint8, uint8, uint8) {
	return d.color[0], d.color[1], d.color[2]
}

func (d *fakeDevice) ColorTemp() int { return d.ct }

func (d *fakeDevice) TurnOnLight(ctx context.Context) error {
	d.record("turn_on_light")
	d.remoteLight = true
	return nil
}

func (d *fakeDevice) TurnOffLight(ctx context.Context) error {
	d.record("turn_off_light")
	d.remoteLight = false
	return nil
}

func (d *fakeDevice) SetBrightness(ctx context.Context, pct int) error {
	d.record("set_brightness %d", pct)
	return nil
}

func (d *fakeDevice) SetColor(ctx context.Context, r, g, b uint8) error {
	d.record("set_color %d %d %d", r, g, b)
	return nil
}

func (d *fakeDevice) SetColorTemp(ctx context.Context, k int) error {
	d.record("set_ct %d", k)
	return nil
}

func (d *fakeDevice) SupportsIR() bool { return d.ir }
func (d *fakeDevice) SupportsRF() bool { return d.rf }

func (d *fakeDevice) Emit(ctx context.Context, kind string, slot int) error {
	d.record("emit %s %d", kind, slot)
	return nil
}

func (d *fakeDevice) Learn(ctx context.Context, kind string, slot int, timeout time.Duration) (bool, error) {
	d.record("learn %s %d %s", kind, slot, timeout)
	return d.learnOK, nil
}

// clock is a manually advanced time source
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	dev    *fakeDevice
	facade *Facade
	clock  *clock
	hook   *test.Hook
}

// newFixture returns an initialised facade over a fake device; the clock is
// already past the debounce window of the Init refresh
func newFixture(t *testing.T, name string, sockets, usb int) *fixture {
	t.Helper()
	logger, hook := newNullLogger()
	fx := &fixture{dev: newFakeDevice(sockets, usb), clock: newClock(), hook: hook}
	poll := NewCoalescer(DefaultDebounce, logger)
	poll.now = fx.clock.now
	fx.facade = NewFacade(name, fx.dev, poll)
	if err := fx.facade.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	fx.clock.advance(time.Second)
	return fx
}

func (fx *fixture) warnings() int {
	n := 0
	for _, e := range fx.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			n++
		}
	}
	return n
}

func newNullLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}
