// Package session runs the vault protocol over a terminal connection.
package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/pinvault/pkg/framework"
	"github.com/robotalks/pinvault/pkg/l0/comm"
	"github.com/robotalks/pinvault/pkg/l0/indicator"
	"github.com/robotalks/pinvault/pkg/vault"
)

// Controller drives sessions one after another on a single connection.
// Everything happens on the goroutine calling Run, and every read blocks
// until the peer sends a byte.
type Controller struct {
	Port     io.ReadWriter
	Random   io.Reader // must be cryptographically secure
	Blinker  *indicator.Blinker
	Secret   []byte
	Observer Observer

	reader  *comm.Reader
	session uint64
}

// NewController creates a Controller using crypto/rand.
func NewController(port io.ReadWriter, blinker *indicator.Blinker, secret []byte) *Controller {
	return &Controller{
		Port:    port,
		Random:  rand.Reader,
		Blinker: blinker,
		Secret:  secret,
	}
}

// Run implements Runnable. It only returns on cancellation or a fatal
// error of the random source, the port or the indicator, which must
// halt the device. When Port is an io.Closer it's closed on return.
func (c *Controller) Run(ctx context.Context) error {
	if len(c.Secret) == 0 {
		return vault.ErrEmptySecret
	}
	run := func() error {
		for {
			if err := c.RunSession(ctx); err != nil {
				return err
			}
		}
	}
	if closer, ok := c.Port.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, run)
	}
	return run()
}

// RunSession runs one session on a fresh vault: from the start command
// until the session is ended.
func (c *Controller) RunSession(ctx context.Context) error {
	unbound, err := vault.New(c.Secret)
	if err != nil {
		return err
	}
	c.session++
	glog.V(2).Infof("session %d: waiting for start", c.session)
	if _, err = c.await(ctx, comm.CodeStart); err != nil {
		return err
	}

	pin, err := vault.GeneratePIN(c.Random)
	if err != nil {
		return fmt.Errorf("generate pin: %w", err)
	}
	locked := unbound.Bind(pin)
	c.notify(EventBound, locked.Phase(), locked.FailedAttempts())

	if err = c.Blinker.ShowPIN(ctx, pin); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &IndicatorError{Err: err}
	}
	c.notify(EventPINRevealed, locked.Phase(), locked.FailedAttempts())

	unlocked, err := c.unlock(ctx, locked)
	if err != nil {
		return err
	}
	return c.serve(ctx, unlocked)
}

func (c *Controller) unlock(ctx context.Context, locked *vault.Locked) (*vault.Unlocked, error) {
	for {
		cmd, err := c.await(ctx, comm.CodeGuess)
		if err != nil {
			return nil, err
		}
		// argument bytes are not validated, see comm.Command.Digits
		unlocked, next := locked.Unlock(vault.PIN(cmd.Digits()))
		if unlocked != nil {
			if err = c.reply(comm.ReplyPINCorrect); err != nil {
				return nil, err
			}
			c.notify(EventUnlocked, unlocked.Phase(), unlocked.FailedAttempts())
			return unlocked, nil
		}
		locked = next
		if err = c.reply(comm.ReplyPINIncorrect); err != nil {
			return nil, err
		}
		c.notify(EventGuessRejected, locked.Phase(), locked.FailedAttempts())
	}
}

func (c *Controller) serve(ctx context.Context, unlocked *vault.Unlocked) error {
	for {
		cmd, err := c.await(ctx, comm.CodeQuery, comm.CodeEnd)
		if err != nil {
			return err
		}
		if cmd.Code() == comm.CodeEnd {
			c.notify(EventEnded, unlocked.Phase(), unlocked.FailedAttempts())
			return nil
		}
		if err = c.reply(append(unlocked.ReadSecret(), comm.ReplyEnd...)); err != nil {
			return err
		}
		c.notify(EventSecretQueried, unlocked.Phase(), unlocked.FailedAttempts())
	}
}

// await reads commands until one with an expected code arrives,
// anything else is dropped.
func (c *Controller) await(ctx context.Context, codes ...byte) (comm.Command, error) {
	if c.reader == nil {
		c.reader = comm.NewReader(c.Port)
	}
	for {
		cmd, err := c.reader.ReadCommand()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return cmd, ctxErr
			}
			return cmd, fmt.Errorf("read command: %w", err)
		}
		for _, code := range codes {
			if cmd.Code() == code {
				return cmd, nil
			}
		}
		glog.V(3).Infof("session %d: ignored command %q", c.session, cmd.Code())
		if err = ctx.Err(); err != nil {
			return cmd, err
		}
	}
}

func (c *Controller) reply(b []byte) error {
	if _, err := c.Port.Write(b); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}

func (c *Controller) notify(kind EventKind, phase vault.Phase, failedAttempts uint32) {
	glog.V(2).Infof("session %d: %s (%s, failed attempts %d)", c.session, kind, phase, failedAttempts)
	if c.Observer != nil {
		c.Observer.SessionEvent(Event{
			Session:        c.session,
			Kind:           kind,
			Phase:          phase,
			FailedAttempts: failedAttempts,
		})
	}
}
