package config

import (
	"time"

	"github.com/brutella/hc"
)

// Config is the primary daemon configuration...
type Config struct {
	ConfigDir     string    // passed in from CLI
	ConfigFile    string    // server.json
	HTTPAddress   string    // net.Dial address format, :port is good enough
	Name          string    // what this bridge shows as
	ID            string    // displayed serial number -- if you run multiple instances, make sure each has a distinct ID
	HCConfig      hc.Config // base HomeControl configuration
	MQTTBroker    string    // tcp://host:1883 of the Konke gateway broker
	MQTTClientID  string    // unset uses "konkebridge"
	MQTTPrefix    string    // topic prefix, unset uses "konke"
	KonkePullRate int       // (seconds) how frequently to pull Konke devices -- 0 to disable
	KonkeDebounce int       // (milliseconds) minimum time between two refreshes of one device -- 0 uses 300
	KonkeTimeout  int       // (seconds) how long to wait for a device to answer -- 0 uses 5
}

// PullRate is KonkePullRate as a duration, zero when pulling is disabled
func (c *Config) PullRate() time.Duration {
	if c.KonkePullRate <= 0 {
		return 0
	}
	return time.Duration(c.KonkePullRate) * time.Second
}

// Debounce is KonkeDebounce as a duration; zero lets the poller pick its default
func (c *Config) Debounce() time.Duration {
	if c.KonkeDebounce <= 0 {
		return 0
	}
	return time.Duration(c.KonkeDebounce) * time.Millisecond
}

// Timeout is KonkeTimeout as a duration; zero lets the client pick its default
func (c *Config) Timeout() time.Duration {
	if c.KonkeTimeout <= 0 {
		return 0
	}
	return time.Duration(c.KonkeTimeout) * time.Second
}
