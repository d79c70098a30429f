// Package env provides common options to setup a link end from flags and
// environment variables.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"

	fx "github.com/robotalks/mculink/pkg/framework"
	"github.com/robotalks/mculink/pkg/link"
	"github.com/robotalks/mculink/pkg/store"
	"github.com/robotalks/mculink/pkg/telemetry"
	"github.com/robotalks/mculink/pkg/transport"
)

// Environment variables seeding the defaults.
const (
	EnvPort    = "MCULINK_PORT"
	EnvBaud    = "MCULINK_BAUD"
	EnvMQTTURL = "MCULINK_MQTT_URL"
	EnvLinkID  = "MCULINK_ID"
)

// Config provides common options of a link end.
type Config struct {
	// Port is a serial device or a websocket URL (ws://host:port/path).
	Port     string
	BaudRate int

	// MQTTBrokerURL specifies the MQTT broker for telemetry,
	// e.g. mqtt://host:port/topic-prefix. Empty disables telemetry.
	MQTTBrokerURL string
	LinkID        string

	PollInterval time.Duration
	Timeout      time.Duration
	ReplyTimeout time.Duration
	QueueSize    int
	StoreSize    int
}

var defaultConfig = Config{
	Port:         "/dev/ttyUSB0",
	BaudRate:     transport.DefaultBaudRate,
	PollInterval: fx.DefaultInterval,
	Timeout:      link.DefaultTimeout,
	ReplyTimeout: link.DefaultReplyTimeout,
	QueueSize:    link.DefaultQueueSize,
	StoreSize:    store.DefaultSize,
}

func init() {
	defaultConfig.LinkID = MachineID()
	loadEnv(&defaultConfig, os.Getenv)
}

func loadEnv(c *Config, getenv func(string) string) {
	if val := getenv(EnvPort); val != "" {
		c.Port = val
	}
	if val := getenv(EnvBaud); val != "" {
		var baud int
		if _, err := fmt.Sscanf(val, "%d", &baud); err == nil && baud > 0 {
			c.BaudRate = baud
		}
	}
	if val := getenv(EnvMQTTURL); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv(EnvLinkID); val != "" {
		c.LinkID = val
	}
}

// MachineID retrieves the unique ID identifying the machine, falling back
// to the host name.
func MachineID() string {
	id, err := machineid.ProtectedID("mculink")
	if err == nil && len(id) > 12 {
		return id[:12]
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "mculink"
}

// SetupFlags sets command line flags on the default config.
func SetupFlags() {
	defaultConfig.AddFlags(flag.CommandLine)
}

// AddFlags registers the options of c in fs.
func (c *Config) AddFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "port", c.Port, "Serial device or websocket URL of the link")
	fs.IntVar(&c.BaudRate, "baud", c.BaudRate, "Serial baud rate")
	fs.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL for telemetry")
	fs.StringVar(&c.LinkID, "id", c.LinkID, "Link ID")
	fs.DurationVar(&c.PollInterval, "poll-interval", c.PollInterval, "Polling interval")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Inter-byte timeout of a partial frame")
	fs.DurationVar(&c.ReplyTimeout, "reply-timeout", c.ReplyTimeout, "Time to wait for a reply")
	fs.IntVar(&c.QueueSize, "queue-size", c.QueueSize, "Receive queue slots")
	fs.IntVar(&c.StoreSize, "store-size", c.StoreSize, "Size of the simulated memory")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the options.
func (c *Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %v", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval %v", c.PollInterval)
	}
	if c.ReplyTimeout <= 0 {
		return fmt.Errorf("invalid reply timeout %v", c.ReplyTimeout)
	}
	if c.QueueSize < 2 {
		return fmt.Errorf("queue size must be at least 2")
	}
	if c.StoreSize <= 0 || c.StoreSize > 256 {
		return fmt.Errorf("store size must be within 1..256")
	}
	return nil
}

// SessionOptions returns the Session options from the config.
func (c *Config) SessionOptions(opts ...link.Option) []link.Option {
	return append([]link.Option{
		link.WithQueueSize(c.QueueSize),
		link.WithTimeout(c.Timeout),
	}, opts...)
}

// OpenLink opens the configured link.
func (c *Config) OpenLink() (transport.Conn, string, error) {
	return transport.Open(c.Port, c.BaudRate)
}

// NewLoop creates a Loop with the configured interval.
func (c *Config) NewLoop() *fx.Loop {
	loop := fx.NewLoop()
	loop.Interval = c.PollInterval
	return loop
}

// NewTelemetryQueue creates the MQTT queue, or nil when telemetry is
// disabled. The client ID defaults to the link ID with the given role.
func (c *Config) NewTelemetryQueue(role string) (*telemetry.Queue, error) {
	if c.MQTTBrokerURL == "" {
		return nil, nil
	}
	opts, prefix, err := telemetry.ClientOptionsFromURL(c.MQTTBrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT broker URL: %w", err)
	}
	if opts.ClientID == "" {
		opts.SetClientID(role + "-" + c.LinkID)
	}
	return telemetry.NewQueue(opts, prefix), nil
}

// MustValidate validates and fails on error.
func (c *Config) MustValidate() *Config {
	if err := c.Validate(); err != nil {
		log.Fatalln(err)
	}
	return c
}

// MustOpenLink opens the link and fails on error.
func (c *Config) MustOpenLink() (transport.Conn, string) {
	conn, desc, err := c.OpenLink()
	if err != nil {
		log.Fatalf("open %q failed: %v", c.Port, err)
	}
	return conn, desc
}

// MustNewTelemetryQueue creates the MQTT queue and fails on error.
func (c *Config) MustNewTelemetryQueue(role string) *telemetry.Queue {
	q, err := c.NewTelemetryQueue(role)
	if err != nil {
		log.Fatalln(err)
	}
	return q
}
