package konkeio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Device is the handle for one physical Konke device.
// Cached state only changes when Refresh succeeds.
type Device struct {
	client *Client
	host   string
	log    logrus.FieldLogger

	mu     sync.RWMutex
	st     state
	online bool
	seq    uint64

	updates chan state
	learned chan learnResult
}

func (d *Device) onState(_ mqtt.Client, m mqtt.Message) {
	var s state
	if err := json.Unmarshal(m.Payload(), &s); err != nil {
		d.log.WithError(err).Warn("unparsable state")
		return
	}
	// keep only the newest unread state
	select {
	case <-d.updates:
	default:
	}
	select {
	case d.updates <- s:
	default:
	}
}

func (d *Device) onLearn(_ mqtt.Client, m mqtt.Message) {
	var r learnResult
	if err := json.Unmarshal(m.Payload(), &r); err != nil {
		d.log.WithError(err).Warn("unparsable learn result")
		return
	}
	select {
	case d.learned <- r:
	default:
	}
}

// Host is the network address the device was configured with
func (d *Device) Host() string {
	return d.host
}

// Refresh asks the gateway for the current state and waits for it.
// A broker failure or a missing answer marks the device offline and returns
// ErrDeviceOffline; a canceled ctx leaves the cached state alone.
func (d *Device) Refresh(ctx context.Context) error {
	// drop anything published before we asked
	select {
	case <-d.updates:
	default:
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	payload, err := json.Marshal(request{Seq: seq})
	if err != nil {
		return err
	}
	if err := d.client.wait(ctx, d.client.conn.Publish(d.client.topic(d.host, "get"), qos, false, payload)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.setOffline()
		if errors.Is(err, ErrDeviceOffline) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrDeviceOffline, d.host, err)
	}

	timer := time.NewTimer(d.client.timeout)
	defer timer.Stop()

	for {
		select {
		case s := <-d.updates:
			// a late answer to an earlier request
			if s.Seq != 0 && s.Seq != seq {
				d.log.WithField("seq", s.Seq).Debug("ignoring stale state")
				continue
			}
			d.mu.Lock()
			d.online = s.online()
			if d.online {
				d.st = s
			}
			d.mu.Unlock()
			if !s.online() {
				return fmt.Errorf("%w: %s (reported by gateway)", ErrDeviceOffline, d.host)
			}
			return nil
		case <-timer.C:
			d.setOffline()
			return fmt.Errorf("%w: %s did not answer within %s", ErrDeviceOffline, d.host, d.client.timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Device) setOffline() {
	d.mu.Lock()
	d.online = false
	d.mu.Unlock()
}

// Online reports the online flag observed by the last refresh
func (d *Device) Online() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.online
}

// MAC is the hardware address, empty until the first successful refresh
func (d *Device) MAC() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.MAC
}

func (d *Device) SocketCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.st.Status)
}

func (d *Device) Status() []bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.Status.bools()
}

func (d *Device) USBCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.st.USBStatus)
}

func (d *Device) USBStatus() []bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.USBStatus.bools()
}

func (d *Device) LightOn() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return bool(d.st.LightStatus)
}

// Brightness is 0-100
func (d *Device) Brightness() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.Brightness
}

func (d *Device) Color() (r, g, b uint8) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.Color[0], d.st.Color[1], d.st.Color[2]
}

// ColorTemp is in kelvin
func (d *Device) ColorTemp() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.CT
}

// Power is the last reported draw in watts
func (d *Device) Power() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.Power
}

func (d *Device) SupportsIR() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.IR
}

func (d *Device) SupportsRF() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.RF
}

func (d *Device) TurnOn(ctx context.Context, index int) error {
	return d.send(ctx, command{Op: "turn_on", Index: index})
}

func (d *Device) TurnOff(ctx context.Context, index int) error {
	return d.send(ctx, command{Op: "turn_off", Index: index})
}

func (d *Device) TurnOnUSB(ctx context.Context, index int) error {
	return d.send(ctx, command{Op: "turn_on_usb", Index: index})
}

func (d *Device) TurnOffUSB(ctx context.Context, index int) error {
	return d.send(ctx, command{Op: "turn_off_usb", Index: index})
}

func (d *Device) TurnOnLight(ctx context.Context) error {
	return d.send(ctx, command{Op: "turn_on_light"})
}

func (d *Device) TurnOffLight(ctx context.Context) error {
	return d.send(ctx, command{Op: "turn_off_light"})
}

// SetBrightness takes 0-100
func (d *Device) SetBrightness(ctx context.Context, pct int) error {
	return d.send(ctx, command{Op: "set_brightness", Value: pct})
}

func (d *Device) SetColor(ctx context.Context, r, g, b uint8) error {
	return d.send(ctx, command{Op: "set_color", Color: []int{int(r), int(g), int(b)}})
}

// SetColorTemp takes kelvin
func (d *Device) SetColorTemp(ctx context.Context, kelvin int) error {
	return d.send(ctx, command{Op: "set_ct", Value: kelvin})
}

// Emit replays the code stored in slot; kind is "ir" or "rf"
func (d *Device) Emit(ctx context.Context, kind string, slot int) error {
	return d.send(ctx, command{Op: "emit", Kind: kind, Value: slot})
}

// Learn puts the device in learning mode and waits for it to store a code in slot.
// It returns false when nothing was learned before the timeout.
func (d *Device) Learn(ctx context.Context, kind string, slot int, timeout time.Duration) (bool, error) {
	select {
	case <-d.learned:
	default:
	}

	cmd := command{Op: "learn", Kind: kind, Value: slot, Timeout: int(timeout / time.Second)}
	if err := d.send(ctx, cmd); err != nil {
		return false, err
	}

	timer := time.NewTimer(timeout + d.client.timeout)
	defer timer.Stop()

	for {
		select {
		case r := <-d.learned:
			if r.Slot != slot {
				d.log.WithField("slot", r.Slot).Debug("learn result for another slot")
				continue
			}
			return r.OK, nil
		case <-timer.C:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func (d *Device) send(ctx context.Context, cmd command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	d.log.WithField("op", cmd.Op).Debug("sending command")
	if err := d.client.wait(ctx, d.client.conn.Publish(d.client.topic(d.host, "set"), qos, false, payload)); err != nil {
		return fmt.Errorf("konkeio: %s %s: %w", cmd.Op, d.host, err)
	}
	return nil
}
