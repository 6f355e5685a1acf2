package indicator

import (
	"context"
	"sync"
	"time"
)

// Step is one entry in a Recorder timeline.
type Step struct {
	On   bool
	Wait time.Duration // non-zero for a sleep
}

// Recorder is an LED which records levels and sleeps instead of
// waiting, for driving a Blinker in tests.
type Recorder struct {
	on    bool
	steps []Step
	lock  sync.Mutex
}

// Set implements LED.
func (r *Recorder) Set(on bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.on = on
	r.steps = append(r.steps, Step{On: on})
	return nil
}

// Toggle implements LED.
func (r *Recorder) Toggle() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.on = !r.on
	r.steps = append(r.steps, Step{On: r.on})
	return nil
}

// Sleep is a SleepFunc which returns immediately.
func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.steps = append(r.steps, Step{On: r.on, Wait: d})
	return ctx.Err()
}

// Blinker creates a Blinker recording into r.
func (r *Recorder) Blinker(timing Timing) *Blinker {
	return &Blinker{LED: r, Timing: timing, Sleep: r.Sleep}
}

// Steps returns the timeline and clears it.
func (r *Recorder) Steps() []Step {
	r.lock.Lock()
	defer r.lock.Unlock()
	steps := r.steps
	r.steps = nil
	return steps
}

// Blinks counts the off-to-on transitions in steps.
func Blinks(steps []Step) (count int) {
	var on bool
	for _, s := range steps {
		if s.Wait == 0 {
			if s.On && !on {
				count++
			}
			on = s.On
		}
	}
	return
}
