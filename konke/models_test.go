package konke

import (
	"context"
	"testing"

	"github.com/cloudkucooland/konkebridge/konkeio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		kind  Kind
		model string
		want  string
	}{
		{"", "", "toggle"},
		{KindSwitch, "Smart Plugin", "k1"},
		{KindSwitch, "K2 PRO", "k2"},
		{"Switch", "MiniK", "minik"},
		{KindSwitch, " micmul ", "micmul"},
		{KindLight, "KBulb", "kbulb"},
		{KindLight, "k2_light", "k2_light"},
		{KindRemote, "minik pro", "minik"},
	}
	for _, tt := range tests {
		m, err := Lookup(tt.kind, tt.model)
		require.NoError(t, err, "%s/%s", tt.kind, tt.model)
		assert.Equal(t, tt.want, m.Name)
	}

	_, err := Lookup(KindSwitch, "unknown-model")
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.Contains(t, err.Error(), issueURL)

	_, err = Lookup(KindRemote, "mul")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

type dialer struct {
	devices map[string]*fakeDevice
	calls   int
}

func (d *dialer) dial(host string) (Device, error) {
	d.calls++
	dev, ok := d.devices[host]
	if !ok {
		dev = newFakeDevice(4, 2)
		dev.host = host
		d.devices[host] = dev
	}
	return dev, nil
}

func newTestManager() (*Manager, *dialer) {
	logger, _ := newNullLogger()
	d := &dialer{devices: map[string]*fakeDevice{}}
	return NewManager(d.dial, DefaultDebounce, logger), d
}

func TestSetupUnknownModel(t *testing.T) {
	m, d := newTestManager()
	f, entities, err := m.Setup(context.Background(), Spec{Model: "unknown-model", Host: "10.0.0.9"})
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.Nil(t, f)
	assert.Empty(t, entities)
	assert.Equal(t, 0, d.calls)
}

func TestSetupStrip(t *testing.T) {
	m, _ := newTestManager()
	f, entities, err := m.Setup(context.Background(), Spec{Kind: KindSwitch, Model: "MUL", Host: "10.0.0.9"})
	require.NoError(t, err)
	assert.Equal(t, "Konke Outlet", f.Name())
	assert.Len(t, entities, 6)
	assert.Equal(t, "Konke Outlet 1", entities[0].Name())
}

func TestSetupOffline(t *testing.T) {
	m, d := newTestManager()
	dev := newFakeDevice(1, 0)
	dev.setOffline(true)
	d.devices["10.0.0.9"] = dev

	_, entities, err := m.Setup(context.Background(), Spec{Model: "k1", Host: "10.0.0.9"})
	assert.ErrorIs(t, err, konkeio.ErrDeviceOffline)
	assert.Empty(t, entities)
}

func TestSetupSharesPoll(t *testing.T) {
	m, d := newTestManager()
	ctx := context.Background()
	d.devices["10.0.0.7"] = newFakeDevice(1, 1)
	d.devices["10.0.0.7"].ir = true

	plug, _, err := m.Setup(ctx, Spec{Kind: KindSwitch, Model: "k2", Host: "10.0.0.7", Name: "Plug"})
	require.NoError(t, err)
	remote, entities, err := m.Setup(ctx, Spec{Kind: KindRemote, Model: "k2", Host: "10.0.0.7", Name: "TV"})
	require.NoError(t, err)
	other, _, err := m.Setup(ctx, Spec{Model: "k1", Host: "10.0.0.8"})
	require.NoError(t, err)

	assert.Same(t, plug.poll, remote.poll)
	assert.NotSame(t, plug.poll, other.poll)
	assert.Equal(t, "TV", remote.Name())
	require.Len(t, entities, 1)
	assert.Equal(t, "28:d9:8a:01:02:03:IR", entities[0].UniqueID())
}
