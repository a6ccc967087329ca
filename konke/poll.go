package konke

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudkucooland/konkebridge/konkeio"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the minimum time between two refreshes of the same device
const DefaultDebounce = 300 * time.Millisecond

// Coalescer gates refreshes of one device so that every entity sharing it
// can ask for an update on each poll while the device sees at most one
// request per window.
type Coalescer struct {
	mu        sync.Mutex
	interval  time.Duration
	last      time.Time
	available bool
	refreshed bool

	now func() time.Time
	log logrus.FieldLogger
}

// NewCoalescer returns a Coalescer with the given window; a zero window uses DefaultDebounce
func NewCoalescer(interval time.Duration, log logrus.FieldLogger) *Coalescer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coalescer{
		interval:  interval,
		available: true,
		now:       time.Now,
		log:       log,
	}
}

// MaybeRefresh calls refresh unless one was issued less than the window ago.
// Offline errors are absorbed into the availability flag; anything else is returned.
func (c *Coalescer) MaybeRefresh(ctx context.Context, refresh func(context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.last.IsZero() && c.now().Sub(c.last) < c.interval {
		return nil
	}

	err := refresh(ctx)
	c.last = c.now()

	switch {
	case err == nil:
		if !c.available {
			c.log.Info("device is back online")
		}
		c.available = true
		c.refreshed = true
		return nil
	case errors.Is(err, konkeio.ErrDeviceOffline):
		if c.available {
			c.log.WithError(err).Warn("device is offline")
		}
		c.available = false
		return nil
	default:
		return err
	}
}

// Available is false after a refresh failed because the device was offline
func (c *Coalescer) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// Refreshed reports whether any refresh has succeeded
func (c *Coalescer) Refreshed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshed
}
