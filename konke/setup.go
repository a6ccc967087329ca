package konke

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DialFunc returns the device handle for host
type DialFunc func(host string) (Device, error)

// Spec is one configured accessory
type Spec struct {
	Kind       Kind
	Model      string
	Host       string
	Name       string
	RemoteType string
}

// Manager turns accessory specs into entities. Accessories configured for the
// same host share one device handle and one poll coalescer.
type Manager struct {
	dial     DialFunc
	interval time.Duration
	log      logrus.FieldLogger

	mu    sync.Mutex
	polls map[string]*Coalescer
}

// NewManager returns a Manager; interval is the per-device refresh debounce
func NewManager(dial DialFunc, interval time.Duration, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		dial:     dial,
		interval: interval,
		log:      log,
		polls:    make(map[string]*Coalescer),
	}
}

// Setup resolves the model, reaches the device and builds its entities.
// On any error no entity is returned.
func (m *Manager) Setup(ctx context.Context, s Spec) (*Facade, []Entity, error) {
	model, err := Lookup(s.Kind, s.Model)
	if err != nil {
		m.log.WithField("model", s.Model).Error(err)
		return nil, nil, err
	}

	dev, err := m.dial(s.Host)
	if err != nil {
		return nil, nil, err
	}

	name := s.Name
	if name == "" {
		name = DefaultName(model.Kind)
	}

	f := NewFacade(name, dev, m.poll(s.Host))
	if err := f.Init(ctx); err != nil {
		return nil, nil, err
	}

	entities, err := model.Build(f, s.RemoteType)
	if err != nil {
		return nil, nil, err
	}
	m.log.WithFields(logrus.Fields{"model": model.Name, "host": s.Host, "id": f.UniqueID()}).Debugf("set up %d entities", len(entities))
	return f, entities, nil
}

func (m *Manager) poll(host string) *Coalescer {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[host]
	if !ok {
		p = NewCoalescer(m.interval, m.log.WithField("host", host))
		m.polls[host] = p
	}
	return p
}
