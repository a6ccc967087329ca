package konke

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Remote types
const (
	RemoteIR = "ir"
	RemoteRF = "rf"
)

// Learning slots and defaults
const (
	MinSlot             = 1000
	MaxSlot             = 999999
	DefaultSlot         = 1001
	DefaultLearnTimeout = 10 * time.Second
	DefaultSendDelay    = 400 * time.Millisecond
)

// Remote is the IR or RF transmitter of a K2 or MiniK Pro
type Remote struct {
	facade *Facade
	tx     Transmitter
	name   string
	kind   string
}

// NewRemote builds the remote entity; kind is RemoteIR or RemoteRF
func NewRemote(f *Facade, kind string) (*Remote, error) {
	tx, ok := f.Device().(Transmitter)
	if !ok {
		return nil, fmt.Errorf("%w: device has no transmitter", ErrUnsupported)
	}
	kind = strings.ToLower(kind)
	if kind == "" {
		kind = RemoteIR
	}
	if kind != RemoteIR && kind != RemoteRF {
		return nil, fmt.Errorf("%w: remote type %q", ErrUnsupported, kind)
	}
	return &Remote{facade: f, tx: tx, name: f.Name(), kind: kind}, nil
}

// Type is "IR" or "RF"
func (r *Remote) Type() string {
	return strings.ToUpper(r.kind)
}

func (r *Remote) UniqueID() string {
	return fmt.Sprintf("%s:%s", r.facade.UniqueID(), r.Type())
}

func (r *Remote) Name() string {
	return r.name
}

// Available requires the device to be online and to support this remote type
func (r *Remote) Available() bool {
	if !r.facade.Available() {
		return false
	}
	if r.kind == RemoteIR {
		return r.tx.SupportsIR()
	}
	return r.tx.SupportsRF()
}

// IsOn is true while the device is reachable
func (r *Remote) IsOn() bool {
	return r.facade.Available()
}

func (r *Remote) State() State {
	return stateOf(r.facade, r.IsOn())
}

func (r *Remote) TurnOn(ctx context.Context) error {
	r.facade.log.Error("remote does not support turn on, send commands instead")
	return fmt.Errorf("%w: turn on a remote", ErrUnsupported)
}

func (r *Remote) TurnOff(ctx context.Context) error {
	r.facade.log.Error("remote does not support turn off, send commands instead")
	return fmt.Errorf("%w: turn off a remote", ErrUnsupported)
}

func (r *Remote) Update(ctx context.Context) error {
	return r.facade.Refresh(ctx)
}

// SendCommand sends each command in order, repeats times, waiting delay
// after every send. Commands look like "ir_1001"; malformed ones and ones for
// the other remote type are logged and skipped.
func (r *Remote) SendCommand(ctx context.Context, commands []string, repeats int, delay time.Duration) error {
	if repeats < 1 {
		repeats = 1
	}
	for i := 0; i < repeats; i++ {
		for _, c := range commands {
			if err := r.send(ctx, c); err != nil {
				return err
			}
			if delay <= 0 {
				continue
			}
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
		}
	}
	return nil
}

func (r *Remote) send(ctx context.Context, command string) error {
	slot, ok := r.parse(command)
	if !ok {
		return nil
	}
	return r.tx.Emit(ctx, r.kind, slot)
}

// parse splits "ir_1001" into its slot, logging why a command is rejected
func (r *Remote) parse(command string) (int, bool) {
	parts := strings.Split(command, "_")
	if len(parts) != 2 {
		r.facade.log.Warnf("illegal command format: %s", command)
		return 0, false
	}
	if strings.ToLower(parts[0]) != r.kind {
		r.facade.log.Warnf("illegal command type: %s", command)
		return 0, false
	}
	slot, err := strconv.Atoi(parts[1])
	if err != nil {
		r.facade.log.Warnf("illegal command slot: %s", command)
		return 0, false
	}
	return slot, true
}

// Learn records the next code received by the device into slot. A zero
// timeout is passed to the device as is and leaves the wait to its firmware.
func (r *Remote) Learn(ctx context.Context, slot int, timeout time.Duration) (bool, error) {
	if slot < MinSlot || slot > MaxSlot {
		return false, fmt.Errorf("konke: slot %d outside %d-%d", slot, MinSlot, MaxSlot)
	}
	if timeout < 0 {
		return false, fmt.Errorf("konke: negative learn timeout %s", timeout)
	}
	r.facade.log.WithField("slot", slot).Debugf("start learning %s remote", r.Type())
	return r.tx.Learn(ctx, r.kind, slot, timeout)
}
