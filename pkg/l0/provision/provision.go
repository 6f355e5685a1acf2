// Package provision loads the per-device provisioning file.
//
// Example:
//
//	secret = "whaaat la policia noooo"
//
//	[indicator]
//	on = "300ms"
//	off = "200ms"
//	pause = "600ms"
//
//	[serial]
//	device = "/dev/ttyACM0"
//	baud = 115200
package provision

import (
	"errors"
	"io"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/pinvault/pkg/l0/indicator"
)

// ErrNoSecret indicates the provisioning has no secret.
var ErrNoSecret = errors.New("no secret provisioned")

// Duration is a time.Duration in TOML, written as "300ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Indicator overrides the blink pattern, zero values keep the default.
type Indicator struct {
	On    Duration `toml:"on"`
	Off   Duration `toml:"off"`
	Pause Duration `toml:"pause"`
}

// Serial configures the serial port.
type Serial struct {
	Device string `toml:"device"`
	Baud   int    `toml:"baud"`
}

// Provision is the content of a provisioning file.
type Provision struct {
	Secret    string    `toml:"secret"`
	Indicator Indicator `toml:"indicator"`
	Serial    Serial    `toml:"serial"`
}

// Decode reads a provisioning file.
func Decode(r io.Reader) (*Provision, error) {
	var p Provision
	if _, err := toml.DecodeReader(r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads the provisioning file at path.
func Load(path string) (*Provision, error) {
	var p Provision
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the provisioning is usable.
func (p *Provision) Validate() error {
	if p.Secret == "" {
		return ErrNoSecret
	}
	return nil
}

// Timing returns the blink pattern, using base for unset values.
func (p *Provision) Timing(base indicator.Timing) indicator.Timing {
	if p.Indicator.On > 0 {
		base.On = time.Duration(p.Indicator.On)
	}
	if p.Indicator.Off > 0 {
		base.Off = time.Duration(p.Indicator.Off)
	}
	if p.Indicator.Pause > 0 {
		base.Pause = time.Duration(p.Indicator.Pause)
	}
	return base
}

// Encode writes the provisioning file.
func (p *Provision) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(p)
}
