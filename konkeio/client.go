// Package konkeio talks to Konke devices through a Konke MQTT gateway.
//
// The gateway owns the vendor protocol; this package only requests state, decodes
// the JSON it publishes and forwards commands. Each device lives under
// {prefix}/{host}/ with the sub-topics get, state, set and learn.
package konkeio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// ErrDeviceOffline is returned when the device (or the gateway in front of it) does not answer
var ErrDeviceOffline = errors.New("konke device offline")

const (
	DefaultPrefix   = "konke"
	DefaultClientID = "konkebridge"
	DefaultTimeout  = 5 * time.Second
	qos             = 1
)

// Conn is the subset of mqtt.Client used here
type Conn interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
	Disconnect(quiesce uint)
}

// Client is a connection to the gateway shared by every device handle
type Client struct {
	conn    Conn
	prefix  string
	timeout time.Duration
	log     logrus.FieldLogger

	mu      sync.Mutex
	devices map[string]*Device
}

// Connect dials the broker and returns a ready Client
func Connect(broker, clientID, prefix string, timeout time.Duration) (*Client, error) {
	if broker == "" {
		return nil, errors.New("konkeio: no broker configured")
	}
	if clientID == "" {
		clientID = DefaultClientID
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)

	conn := mqtt.NewClient(opts)
	tok := conn.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("konkeio: connecting to %s: timeout after %s", broker, timeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("konkeio: connecting to %s: %w", broker, err)
	}
	return NewClient(conn, prefix, timeout), nil
}

// NewClient wraps an already connected Conn
func NewClient(conn Conn, prefix string, timeout time.Duration) *Client {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		conn:    conn,
		prefix:  prefix,
		timeout: timeout,
		log:     logrus.WithField("component", "konkeio"),
		devices: make(map[string]*Device),
	}
}

// Close unsubscribes every device and disconnects from the broker
func (c *Client) Close() {
	c.mu.Lock()
	topics := make([]string, 0, len(c.devices)*2)
	for host := range c.devices {
		topics = append(topics, c.topic(host, "state"), c.topic(host, "learn"))
	}
	c.devices = make(map[string]*Device)
	c.mu.Unlock()

	if len(topics) > 0 {
		c.conn.Unsubscribe(topics...).WaitTimeout(c.timeout)
	}
	c.conn.Disconnect(250)
}

// Device returns the handle for host, subscribing to its topics on first use.
// Handles are shared: asking twice for the same host returns the same Device.
func (c *Client) Device(host string) (*Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.devices[host]; ok {
		return d, nil
	}

	d := &Device{
		client:  c,
		host:    host,
		log:     c.log.WithField("host", host),
		updates: make(chan state, 1),
		learned: make(chan learnResult, 1),
	}

	if err := c.wait(context.Background(), c.conn.Subscribe(c.topic(host, "state"), qos, d.onState)); err != nil {
		return nil, fmt.Errorf("konkeio: subscribing to %s: %w", host, err)
	}
	if err := c.wait(context.Background(), c.conn.Subscribe(c.topic(host, "learn"), qos, d.onLearn)); err != nil {
		return nil, fmt.Errorf("konkeio: subscribing to %s: %w", host, err)
	}

	c.devices[host] = d
	return d, nil
}

func (c *Client) topic(host, leaf string) string {
	return fmt.Sprintf("%s/%s/%s", c.prefix, host, leaf)
}

// wait blocks until the token completes, the context ends or the client timeout passes
func (c *Client) wait(ctx context.Context, tok mqtt.Token) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: broker did not acknowledge within %s", ErrDeviceOffline, c.timeout)
	}
}
