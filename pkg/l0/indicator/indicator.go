// Package indicator drives the LED which reveals the PIN out-of-band.
package indicator

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/pinvault/pkg/framework"
)

// LED is an on/off output.
type LED interface {
	Set(on bool) error
	Toggle() error
}

// Timing defines the blink pattern.
type Timing struct {
	On    time.Duration
	Off   time.Duration
	Pause time.Duration // between the digits
}

// DefaultTiming is the default blink pattern.
var DefaultTiming = Timing{
	On:    300 * time.Millisecond,
	Off:   200 * time.Millisecond,
	Pause: 600 * time.Millisecond,
}

// SleepFunc waits for a duration, returning early with the context error.
type SleepFunc func(context.Context, time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Blinker shows digits by blinking an LED.
type Blinker struct {
	LED    LED
	Timing Timing
	Sleep  SleepFunc
}

// NewBlinker creates a Blinker with default timing.
func NewBlinker(led LED) *Blinker {
	return &Blinker{LED: led, Timing: DefaultTiming, Sleep: Sleep}
}

// ShowPIN blinks once per unit of the first digit, pauses, then blinks
// once per unit of the second digit.
func (b *Blinker) ShowPIN(ctx context.Context, digits [2]byte) error {
	if err := b.LED.Set(false); err != nil {
		return err
	}
	if err := b.blink(ctx, digits[0]); err != nil {
		return err
	}
	if err := b.sleep(ctx, b.Timing.Pause); err != nil {
		return err
	}
	return b.blink(ctx, digits[1])
}

func (b *Blinker) blink(ctx context.Context, count byte) error {
	for n := byte(0); n < count; n++ {
		if err := b.LED.Toggle(); err != nil {
			return err
		}
		if err := b.sleep(ctx, b.Timing.On); err != nil {
			return err
		}
		if err := b.LED.Toggle(); err != nil {
			return err
		}
		if err := b.sleep(ctx, b.Timing.Off); err != nil {
			return err
		}
	}
	return nil
}

func (b *Blinker) sleep(ctx context.Context, d time.Duration) error {
	if b.Sleep == nil {
		return Sleep(ctx, d)
	}
	return b.Sleep(ctx, d)
}

// LogLED is a virtual LED which logs its level.
type LogLED struct {
	Name string

	on   bool
	lock sync.Mutex
}

// Set implements LED.
func (l *LogLED) Set(on bool) error {
	l.lock.Lock()
	l.on = on
	l.lock.Unlock()
	glog.V(1).Infof("LED %s: %s", l.Name, level(on))
	return nil
}

// Toggle implements LED.
func (l *LogLED) Toggle() error {
	l.lock.Lock()
	l.on = !l.on
	on := l.on
	l.lock.Unlock()
	glog.V(1).Infof("LED %s: %s", l.Name, level(on))
	return nil
}

// IsOn returns the current level.
func (l *LogLED) IsOn() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}

func level(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// Multi drives several LEDs as one.
type Multi []LED

// Set implements LED.
func (m Multi) Set(on bool) error {
	var errs fx.AggregatedError
	for _, led := range m {
		errs.Add(led.Set(on))
	}
	return errs.Aggregate()
}

// Toggle implements LED.
func (m Multi) Toggle() error {
	var errs fx.AggregatedError
	for _, led := range m {
		errs.Add(led.Toggle())
	}
	return errs.Aggregate()
}
