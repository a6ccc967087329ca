package konke

import (
	"context"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Feature flags advertised by a light
type Feature int

const (
	SupportBrightness Feature = 1 << iota
	SupportColorTemp
	SupportColor
)

// KBulb color temperature range
const (
	MinKelvin = 2700
	MaxKelvin = 6493
)

// HS is a hue (0-360) / saturation (0-100) color
type HS struct {
	Hue        float64
	Saturation float64
}

// LightOptions are the optional parts of a turn-on request. Brightness is
// 0-255 and ColorTemp is in mireds; nil leaves the current value alone.
type LightOptions struct {
	Brightness *int
	ColorTemp  *int
	Color      *HS
}

// Light is a KLight, a KBulb or the light ring of a K2
type Light struct {
	facade   *Facade
	lamp     Lamp
	name     string
	id       string
	ring     bool
	features Feature
}

// NewLight builds the light entity. ring selects the K2 light ring, which
// has its own on/off state and a distinct id.
func NewLight(f *Facade, features Feature, ring bool) (*Light, error) {
	lamp, ok := f.Device().(Lamp)
	if !ok {
		return nil, fmt.Errorf("%w: device has no light", ErrUnsupported)
	}
	if !ring && f.Sockets() < 1 {
		return nil, fmt.Errorf("%w: light reports no relay", ErrInvalidIndex)
	}
	l := &Light{facade: f, lamp: lamp, name: f.Name(), id: f.UniqueID(), ring: ring, features: features}
	if ring && f.UniqueID() != "" {
		l.id = f.UniqueID() + ":light"
	}
	return l, nil
}

func (l *Light) UniqueID() string           { return l.id }
func (l *Light) Name() string               { return l.name }
func (l *Light) Available() bool            { return l.facade.Available() }
func (l *Light) SupportedFeatures() Feature { return l.features }

func (l *Light) IsOn() bool {
	if l.ring {
		return l.lamp.LightOn()
	}
	on, _ := l.facade.Status(0)
	return on
}

func (l *Light) State() State {
	return stateOf(l.facade, l.IsOn())
}

// Brightness is 0-255
func (l *Light) Brightness() int {
	return pctToLevel(l.lamp.Brightness())
}

// ColorTemp is in mireds, 0 when the device reports nothing
func (l *Light) ColorTemp() int {
	return kelvinToMired(l.lamp.ColorTemp())
}

// Color is the current color as hue/saturation
func (l *Light) Color() HS {
	return rgbToHS(l.lamp.Color())
}

// MinMireds is the coolest supported color temperature
func (l *Light) MinMireds() int {
	return kelvinToMired(MaxKelvin)
}

// MaxMireds is the warmest supported color temperature
func (l *Light) MaxMireds() int {
	return kelvinToMired(MinKelvin)
}

func (l *Light) TurnOn(ctx context.Context) error {
	return l.TurnOnWith(ctx, LightOptions{})
}

// TurnOnWith switches the light on if needed and then applies each option
// that differs from the current state
func (l *Light) TurnOnWith(ctx context.Context, opts LightOptions) error {
	l.facade.log.WithField("entity", l.id).Debugf("turn on light %+v", opts)

	if !l.IsOn() {
		var err error
		if l.ring {
			err = l.lamp.TurnOnLight(ctx)
		} else {
			err = l.facade.Set(ctx, 0, true)
		}
		if err != nil {
			return err
		}
	}

	if opts.Brightness != nil {
		pct := levelToPct(*opts.Brightness)
		if pct != l.lamp.Brightness() {
			if err := l.lamp.SetBrightness(ctx, pct); err != nil {
				return err
			}
		}
	}

	if opts.ColorTemp != nil {
		k := miredToKelvin(*opts.ColorTemp)
		if k != l.lamp.ColorTemp() {
			if err := l.lamp.SetColorTemp(ctx, k); err != nil {
				return err
			}
		}
	}

	if opts.Color != nil {
		r, g, b := hsToRGB(*opts.Color)
		cr, cg, cb := l.lamp.Color()
		if r != cr || g != cg || b != cb {
			if err := l.lamp.SetColor(ctx, r, g, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Light) TurnOff(ctx context.Context) error {
	var err error
	if l.ring {
		err = l.lamp.TurnOffLight(ctx)
	} else {
		err = l.facade.Set(ctx, 0, false)
	}
	if err != nil {
		return err
	}
	l.facade.log.WithField("entity", l.id).Debug("turn off light")
	return nil
}

func (l *Light) Update(ctx context.Context) error {
	return l.facade.Refresh(ctx)
}

// device brightness is a percentage, HomeKit-side callers use 0-255
func pctToLevel(pct int) int {
	return int(math.Round(float64(pct) / 100 * 255))
}

func levelToPct(level int) int {
	return int(math.Round(float64(level) * 100 / 255))
}

func kelvinToMired(k int) int {
	if k <= 0 {
		return 0
	}
	return 1000000 / k
}

func miredToKelvin(m int) int {
	if m <= 0 {
		return 0
	}
	return 1000000 / m
}

func hsToRGB(c HS) (r, g, b uint8) {
	return colorful.Hsv(c.Hue, c.Saturation/100, 1).RGB255()
}

func rgbToHS(r, g, b uint8) HS {
	h, s, _ := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsv()
	return HS{Hue: h, Saturation: s * 100}
}
