package konke

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brutella/hc/log"
	tfaccessory "github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/action"
)

// long enough for a few remote commands with the default send delay
const actionTimeout = 30 * time.Second

// actionRunner is the Runner of every Konke accessory
func actionRunner(a *tfaccessory.TFAccessory, act *action.Action) {
	b, ok := lookup(a.Name)
	if !ok {
		log.Info.Printf("konke action for unknown accessory [%s]", a.Name)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	if err := b.run(ctx, act); err != nil {
		log.Info.Printf("[%s] %s %s: %s", a.Name, act.Verb, act.Value, err.Error())
	}
}

// run executes one action. On, Off and Toggle take an optional 1-based
// outlet number in Value, all outlets otherwise; Send takes a comma
// separated list of remote commands.
func (b *binding) run(ctx context.Context, act *action.Action) error {
	verb := strings.ToLower(act.Verb)
	switch verb {
	case "on", "off", "toggle":
		targets, err := b.switchables(act.Value)
		if err != nil {
			return err
		}
		for _, s := range targets {
			on := verb == "on"
			if verb == "toggle" {
				on = !s.IsOn()
			}
			if on {
				err = s.TurnOn(ctx)
			} else {
				err = s.TurnOff(ctx)
			}
			if err != nil {
				return err
			}
		}
		return nil
	case "send":
		r := b.remote()
		if r == nil {
			return fmt.Errorf("%w: [%s] is not a remote", ErrUnsupported, b.acc.Name)
		}
		var commands []string
		for _, c := range strings.Split(act.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				commands = append(commands, c)
			}
		}
		return r.SendCommand(ctx, commands, 1, DefaultSendDelay)
	default:
		return fmt.Errorf("unknown verb %q", act.Verb)
	}
}

func (b *binding) switchables(value string) ([]Switchable, error) {
	var all []Switchable
	for _, e := range b.entities {
		if _, ok := e.(*Remote); ok {
			continue
		}
		if s, ok := e.(Switchable); ok {
			all = append(all, s)
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: [%s] has nothing to switch", ErrUnsupported, b.acc.Name)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return all, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("bad outlet number %q: %w", value, err)
	}
	if n < 1 || n > len(all) {
		return nil, fmt.Errorf("%w: outlet %d, accessory has %d", ErrInvalidIndex, n, len(all))
	}
	return all[n-1 : n], nil
}
