// Package env sets up telemetry for a vault device.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/pinvault/pkg/l1/comm/mqtt"
)

// Config provides options to setup telemetry.
type Config struct {
	// DeviceID identifies the device in topics, defaults to DeviceID().
	DeviceID string

	// MQTTBrokerURL specifies the MQTT broker to use, empty disables telemetry.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
}

var defaultConfig Config

func init() {
	if val := os.Getenv("PINVAULT_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("PINVAULT_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID in telemetry topics.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for telemetry.")
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

// Enabled tells if telemetry is configured.
func (c *Config) Enabled() bool {
	return c.MQTTBrokerURL != ""
}

// NewReporter creates the telemetry reporter, nil if not enabled.
func (c *Config) NewReporter() (*mqtt.Reporter, error) {
	if !c.Enabled() {
		return nil, nil
	}
	id := c.DeviceID
	if id == "" {
		var err error
		if id, err = DeviceID(); err != nil {
			return nil, fmt.Errorf("device id: %w", err)
		}
	}
	glog.Infof("telemetry %s as %s", c.MQTTBrokerURL, id)
	return mqtt.NewReporter(c.MQTTBrokerURL, id)
}

// MustNewReporter creates the reporter and fails on error.
func (c *Config) MustNewReporter() *mqtt.Reporter {
	r, err := c.NewReporter()
	if err != nil {
		log.Fatalln(err)
	}
	return r
}
