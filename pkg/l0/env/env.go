// Package env sets up a vault device from flags, environment and the
// provisioning file.
package env

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	fx "github.com/robotalks/pinvault/pkg/framework"
	"github.com/robotalks/pinvault/pkg/l0/comm/serial"
	"github.com/robotalks/pinvault/pkg/l0/comm/websocket"
	"github.com/robotalks/pinvault/pkg/l0/indicator"
	"github.com/robotalks/pinvault/pkg/l0/provision"
	"github.com/robotalks/pinvault/pkg/l0/session"
)

// Config provides options to setup a vault device.
type Config struct {
	// Device is the serial port, empty picks the first available one.
	Device string
	// Baud overrides the baud rate of the serial port.
	Baud int
	// Listen serves the vault over websocket instead of serial, e.g. ":8080".
	Listen string
	// ProvisionFile is the path of the provisioning file.
	ProvisionFile string
	// Secret overrides the provisioned secret.
	Secret string
}

var defaultConfig Config

func init() {
	if val := os.Getenv("PINVAULT_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val, err := strconv.Atoi(os.Getenv("PINVAULT_BAUD")); err == nil {
		defaultConfig.Baud = val
	}
	if val := os.Getenv("PINVAULT_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("PINVAULT_PROVISION"); val != "" {
		defaultConfig.ProvisionFile = val
	}
	if val := os.Getenv("PINVAULT_SECRET"); val != "" {
		defaultConfig.Secret = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "dev", defaultConfig.Device, "Serial port device.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial port baud rate.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Serve over websocket on this address instead of serial.")
	flag.StringVar(&defaultConfig.ProvisionFile, "provision", defaultConfig.ProvisionFile, "Provisioning file.")
	flag.StringVar(&defaultConfig.Secret, "secret", defaultConfig.Secret, "Secret, overrides the provisioned one.")
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

// Env is the env of a vault device.
type Env struct {
	Config    *Config
	Provision *provision.Provision

	// LEDs receive the blinks, the first one logs them.
	LEDs indicator.Multi
	// Observers receive session events.
	Observers session.Observers
}

// NewEnv loads provisioning and creates Env.
func (c *Config) NewEnv() (*Env, error) {
	p := &provision.Provision{}
	if c.ProvisionFile != "" {
		var err error
		if p, err = provision.Load(c.ProvisionFile); err != nil {
			return nil, fmt.Errorf("load provisioning %q: %w", c.ProvisionFile, err)
		}
	}
	if c.Secret != "" {
		p.Secret = c.Secret
	}
	if c.Device != "" {
		p.Serial.Device = c.Device
	}
	if c.Baud > 0 {
		p.Serial.Baud = c.Baud
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Env{
		Config:    c,
		Provision: p,
		LEDs:      indicator.Multi{&indicator.LogLED{Name: "pin"}},
	}, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddLED adds an on-board LED driven with the blinks.
func (e *Env) AddLED(led indicator.LED) *Env {
	e.LEDs = append(e.LEDs, led)
	return e
}

// AddObserver adds a session observer.
func (e *Env) AddObserver(o session.Observer) *Env {
	e.Observers = append(e.Observers, o)
	return e
}

// NewController creates a session controller on port.
func (e *Env) NewController(port io.ReadWriter) *session.Controller {
	blinker := indicator.NewBlinker(e.LEDs)
	blinker.Timing = e.Provision.Timing(indicator.DefaultTiming)
	ctl := session.NewController(port, blinker, []byte(e.Provision.Secret))
	if len(e.Observers) > 0 {
		ctl.Observer = e.Observers
	}
	return ctl
}

// NewConsole creates a websocket console serving a controller per
// connection. A device fault halts the console.
func (e *Env) NewConsole() *websocket.Console {
	console := websocket.NewConsole(e.Config.Listen, func(ctx context.Context, conn io.ReadWriteCloser) error {
		return e.NewController(conn).Run(ctx)
	})
	console.Fatal = session.IsDeviceFault
	return console
}

// Runnable creates the vault: a websocket console when Listen is set,
// otherwise a controller on the serial port.
func (e *Env) Runnable() (fx.Runnable, error) {
	if e.Config.Listen != "" {
		return fx.NamedRun("console", e.NewConsole()), nil
	}
	port, name, err := serial.Open(e.Provision.Serial.Device, e.Provision.Serial.Baud)
	if err != nil {
		if errors.Is(err, serial.ErrNoPortFound) {
			return nil, err
		}
		return nil, fmt.Errorf("open serial port %q: %w", name, err)
	}
	return fx.NamedRun("vault:"+name, e.NewController(port)), nil
}
