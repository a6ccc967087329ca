package konke

import (
	"fmt"
	"strings"
)

// Kind selects which entities a configured accessory becomes
type Kind string

const (
	KindSwitch Kind = "switch"
	KindLight  Kind = "light"
	KindRemote Kind = "remote"
)

const issueURL = "https://github.com/cloudkucooland/konkebridge/issues"

// Model describes the topology of one device model for one entity kind
type Model struct {
	Name       string
	Kind       Kind
	Strip      bool    // one entity per socket and per USB port
	USB        bool    // single plug with a USB port
	PowerMeter bool    // reports watts
	Light      Feature // light features
	Ring       bool    // light is the K2 light ring
}

// Build creates the entities for a facade that has been through Init.
// remoteType is only used by KindRemote.
func (m Model) Build(f *Facade, remoteType string) ([]Entity, error) {
	var entities []Entity

	switch m.Kind {
	case KindSwitch:
		if m.Strip {
			for i := 0; i < f.Sockets(); i++ {
				o, err := NewOutlet(f, i)
				if err != nil {
					return nil, err
				}
				entities = append(entities, o)
			}
			for i := 0; i < f.USBPorts(); i++ {
				u, err := NewUSBSwitch(f, i)
				if err != nil {
					return nil, err
				}
				entities = append(entities, u)
			}
			return entities, nil
		}
		o, err := NewPlug(f, m.PowerMeter)
		if err != nil {
			return nil, err
		}
		entities = append(entities, o)
		if m.USB {
			u, err := NewPlugUSB(f)
			if err != nil {
				return nil, err
			}
			entities = append(entities, u)
		}
	case KindLight:
		l, err := NewLight(f, m.Light, m.Ring)
		if err != nil {
			return nil, err
		}
		entities = append(entities, l)
	case KindRemote:
		r, err := NewRemote(f, remoteType)
		if err != nil {
			return nil, err
		}
		entities = append(entities, r)
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownModel, m.Kind)
	}
	return entities, nil
}

var models = map[Kind]map[string]Model{}

func register(m Model, aliases ...string) {
	if models[m.Kind] == nil {
		models[m.Kind] = make(map[string]Model)
	}
	for _, a := range aliases {
		models[m.Kind][a] = m
	}
}

func init() {
	register(Model{Name: "toggle", Kind: KindSwitch}, "")
	register(Model{Name: "k1", Kind: KindSwitch}, "smart plugin", "k1")
	register(Model{Name: "k2", Kind: KindSwitch, USB: true, PowerMeter: true}, "k2", "k2 pro")
	register(Model{Name: "minik", Kind: KindSwitch}, "minik", "minik pro")
	register(Model{Name: "mul", Kind: KindSwitch, Strip: true}, "mul")
	register(Model{Name: "micmul", Kind: KindSwitch, Strip: true}, "micmul")

	register(Model{Name: "klight", Kind: KindLight, Light: SupportBrightness | SupportColor}, "klight")
	register(Model{Name: "kbulb", Kind: KindLight, Light: SupportBrightness | SupportColorTemp}, "kbulb")
	register(Model{Name: "k2_light", Kind: KindLight, Ring: true}, "k2_light")

	register(Model{Name: "k2", Kind: KindRemote}, "k2", "k2 pro")
	register(Model{Name: "minik", Kind: KindRemote}, "minik", "minik pro")
}

// Lookup finds a model by kind and model string, ignoring case.
// An empty kind means KindSwitch.
func Lookup(kind Kind, model string) (Model, error) {
	if kind == "" {
		kind = KindSwitch
	}
	key := strings.ToLower(strings.TrimSpace(model))
	m, ok := models[Kind(strings.ToLower(string(kind)))][key]
	if !ok {
		return Model{}, fmt.Errorf("%w: %s %q, please create an issue at %s", ErrUnknownModel, kind, model, issueURL)
	}
	return m, nil
}

// DefaultName is the display name used when the accessory config has none
func DefaultName(kind Kind) string {
	switch kind {
	case KindLight:
		return "Konke Light"
	case KindRemote:
		return "Konke Remote"
	default:
		return "Konke Outlet"
	}
}
