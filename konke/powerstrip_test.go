package konke

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSwitch(t *testing.T, fx *fixture, model string) []Entity {
	t.Helper()
	m, err := Lookup(KindSwitch, model)
	require.NoError(t, err)
	entities, err := m.Build(fx.facade, "")
	require.NoError(t, err)
	return entities
}

func TestStripEntities(t *testing.T) {
	tests := []struct {
		sockets, usb int
	}{
		{1, 0},
		{4, 0},
		{6, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d+%d", tt.sockets, tt.usb), func(t *testing.T) {
			fx := newFixture(t, "Desk", tt.sockets, tt.usb)
			entities := buildSwitch(t, fx, "micmul")
			require.Len(t, entities, tt.sockets+tt.usb)

			for i := 0; i < tt.sockets; i++ {
				o, ok := entities[i].(*Outlet)
				require.True(t, ok)
				assert.Equal(t, fmt.Sprintf("28:d9:8a:01:02:03:%d", i+1), o.UniqueID())
				assert.Equal(t, fmt.Sprintf("Desk %d", i+1), o.Name())
				assert.Equal(t, i, o.Index())
			}
			for i := 0; i < tt.usb; i++ {
				u, ok := entities[tt.sockets+i].(*USBSwitch)
				require.True(t, ok)
				assert.Equal(t, fmt.Sprintf("28:d9:8a:01:02:03:usb%d", i+1), u.UniqueID())
				assert.Equal(t, fmt.Sprintf("Desk USB %d", i+1), u.Name())
			}

			seen := map[string]bool{}
			for _, e := range entities {
				assert.False(t, seen[e.UniqueID()], "duplicate id %s", e.UniqueID())
				seen[e.UniqueID()] = true
			}
		})
	}
}

func TestPlugEntities(t *testing.T) {
	fx := newFixture(t, "Kettle", 1, 1)
	fx.dev.power = 1830.5
	entities := buildSwitch(t, fx, "K2 Pro")
	require.Len(t, entities, 2)

	plug := entities[0].(*Outlet)
	assert.Equal(t, "28:d9:8a:01:02:03", plug.UniqueID())
	assert.Equal(t, "Kettle", plug.Name())
	w, ok := plug.CurrentPower()
	assert.True(t, ok)
	assert.Equal(t, 1830.5, w)

	usb := entities[1].(*USBSwitch)
	assert.Equal(t, "28:d9:8a:01:02:03:usb", usb.UniqueID())
	assert.Equal(t, "Kettle USB", usb.Name())

	fx = newFixture(t, "Lamp", 1, 0)
	entities = buildSwitch(t, fx, "k1")
	require.Len(t, entities, 1)
	_, ok = entities[0].(*Outlet).CurrentPower()
	assert.False(t, ok)
}

func TestUpdatesCoalesce(t *testing.T) {
	fx := newFixture(t, "Desk", 4, 0)
	entities := buildSwitch(t, fx, "mul")
	ctx := context.Background()
	before := fx.dev.refreshCount()

	for round := 0; round < 3; round++ {
		for _, e := range entities {
			require.NoError(t, e.Update(ctx))
		}
	}
	assert.Equal(t, before+1, fx.dev.refreshCount())

	fx.clock.advance(DefaultDebounce)
	var wg sync.WaitGroup
	for _, e := range entities {
		wg.Add(1)
		go func(e Entity) {
			defer wg.Done()
			_ = e.Update(ctx)
		}(e)
	}
	wg.Wait()
	assert.Equal(t, before+2, fx.dev.refreshCount())
}

func TestSetThenRefresh(t *testing.T) {
	fx := newFixture(t, "Desk", 4, 0)
	entities := buildSwitch(t, fx, "mul")
	ctx := context.Background()
	o := entities[1].(*Outlet)

	require.NoError(t, o.TurnOn(ctx))
	assert.False(t, o.IsOn(), "cached state only changes on refresh")
	require.NoError(t, o.Update(ctx))
	assert.True(t, o.IsOn())
	assert.Equal(t, StateOn, o.State())
	assert.False(t, entities[0].(*Outlet).IsOn())

	// a second turn on is harmless
	fx.clock.advance(time.Second)
	require.NoError(t, o.TurnOn(ctx))
	require.NoError(t, o.Update(ctx))
	assert.Equal(t, StateOn, o.State())

	fx.clock.advance(time.Second)
	require.NoError(t, o.TurnOff(ctx))
	require.NoError(t, o.TurnOff(ctx))
	require.NoError(t, o.Update(ctx))
	assert.Equal(t, StateOff, o.State())

	assert.Equal(t, []string{"turn_on 1", "turn_on 1", "turn_off 1", "turn_off 1"}, fx.dev.calls)
}

func TestUSBSetThenRefresh(t *testing.T) {
	fx := newFixture(t, "Desk", 6, 2)
	ctx := context.Background()
	u, err := NewUSBSwitch(fx.facade, 1)
	require.NoError(t, err)

	require.NoError(t, u.TurnOn(ctx))
	require.NoError(t, u.Update(ctx))
	assert.True(t, u.IsOn())
	on, err := fx.facade.USBStatus(0)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestOfflineTransitionsLogged(t *testing.T) {
	fx := newFixture(t, "Desk", 4, 0)
	ctx := context.Background()
	require.Equal(t, 0, fx.warnings())

	fx.dev.setOffline(true)
	require.NoError(t, fx.facade.Refresh(ctx))
	assert.Equal(t, 1, fx.warnings())
	assert.False(t, fx.facade.Available())

	for i := 0; i < 3; i++ {
		fx.clock.advance(time.Second)
		require.NoError(t, fx.facade.Refresh(ctx))
	}
	assert.Equal(t, 1, fx.warnings(), "no repeat while still offline")

	fx.dev.setOffline(false)
	fx.clock.advance(time.Second)
	require.NoError(t, fx.facade.Refresh(ctx))
	assert.True(t, fx.facade.Available())
	assert.Equal(t, "device is back online", fx.hook.LastEntry().Message)

	fx.dev.setOffline(true)
	fx.clock.advance(time.Second)
	require.NoError(t, fx.facade.Refresh(ctx))
	assert.Equal(t, 2, fx.warnings())
}

func TestIndexErrors(t *testing.T) {
	fx := newFixture(t, "Desk", 4, 0)

	_, err := fx.facade.Status(4)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = fx.facade.Status(-1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	assert.ErrorIs(t, fx.facade.Set(context.Background(), 5, true), ErrInvalidIndex)
	_, err = NewOutlet(fx.facade, 4)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = fx.facade.USBStatus(0)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, fx.facade.SetUSB(context.Background(), 0, true), ErrUnsupported)
	_, err = NewPlugUSB(fx.facade)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, fx.dev.calls)

	fx = newFixture(t, "Desk", 4, 2)
	_, err = fx.facade.USBStatus(2)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestStateMachine(t *testing.T) {
	logger, _ := newNullLogger()
	dev := newFakeDevice(2, 0)
	f := NewFacade("Desk", dev, NewCoalescer(DefaultDebounce, logger))
	f.sockets = 2
	o, err := NewOutlet(f, 0)
	require.NoError(t, err)
	assert.Equal(t, StateUnknown, o.State())

	fx := newFixture(t, "Desk", 2, 0)
	o, err = NewOutlet(fx.facade, 0)
	require.NoError(t, err)
	ctx := context.Background()
	assert.Equal(t, StateOff, o.State())

	require.NoError(t, o.TurnOn(ctx))
	require.NoError(t, o.Update(ctx))
	assert.Equal(t, StateOn, o.State())

	fx.dev.setOffline(true)
	fx.clock.advance(time.Second)
	require.NoError(t, o.Update(ctx))
	assert.Equal(t, StateUnavailable, o.State())
	assert.False(t, o.Available())
	assert.True(t, o.IsOn(), "last known value is kept")

	fx.dev.setOffline(false)
	fx.clock.advance(time.Second)
	require.NoError(t, o.Update(ctx))
	assert.Equal(t, StateOn, o.State())
	assert.True(t, o.Available())
}

func TestRefreshErrorPropagates(t *testing.T) {
	fx := newFixture(t, "Desk", 2, 0)
	boom := errors.New("malformed status")
	fx.dev.failWith(boom)

	err := fx.facade.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, fx.facade.Available())
	assert.Equal(t, 0, fx.warnings())
}
