package comm

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// MaxReplyLen limits the length of a reply line read by Client.
const MaxReplyLen = 4096

// Client provides terminal side operations of the protocol.
// The device doesn't reply to every command, so only Guess and Query
// wait for a reply. A command and its reply are exchanged under one
// lock, so concurrent calls never take each other's replies.
type Client struct {
	w    io.Writer
	r    *bufio.Reader
	lock sync.Mutex
}

// NewClient creates a client over the stream connected to the device.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{w: rw, r: bufio.NewReader(rw)}
}

// Send sends a command.
func (c *Client) Send(cmd Command) error {
	return c.SendLine(cmd.Line())
}

// SendLine sends raw bytes, the caller includes the terminator.
func (c *Client) SendLine(line []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.write(line)
}

func (c *Client) write(line []byte) error {
	_, err := c.w.Write(line)
	return err
}

// Start asks the device to start a session.
func (c *Client) Start() error {
	return c.Send(NewCommand(CodeStart))
}

// End ends the current session.
func (c *Client) End() error {
	return c.Send(NewCommand(CodeEnd))
}

// Guess sends the PIN digits (numeric values, not ASCII)
// and reports whether the device accepted them.
func (c *Client) Guess(digits [CommandSize - 1]byte) (bool, error) {
	reply, err := c.Do(NewCommand(CodeGuess, digits[0]+'0', digits[1]+'0'))
	if err != nil {
		return false, err
	}
	switch {
	case bytes.Equal(reply, bytes.TrimSuffix(ReplyPINCorrect, ReplyEnd)):
		return true, nil
	case bytes.Equal(reply, bytes.TrimSuffix(ReplyPINIncorrect, ReplyEnd)):
		return false, nil
	}
	return false, &UnexpectedReplyError{Reply: string(reply)}
}

// Query retrieves the secret from an unlocked device. A secret
// containing a line break can't be fully retrieved.
func (c *Client) Query() ([]byte, error) {
	return c.Do(NewCommand(CodeQuery))
}

// Do sends a command and reads one reply line.
func (c *Client) Do(cmd Command) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.write(cmd.Line()); err != nil {
		return nil, err
	}
	return c.readReply()
}

// ReadReply reads a reply line and strips the line end.
func (c *Client) ReadReply() ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.readReply()
}

func (c *Client) readReply() ([]byte, error) {
	var line []byte
	for {
		chunk, err := c.r.ReadSlice(LF)
		line = append(line, chunk...)
		if len(line) > MaxReplyLen {
			return nil, ErrLineTooLong
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		break
	}
	line = bytes.TrimSuffix(line, []byte{LF})
	return bytes.TrimSuffix(line, []byte{CR}), nil
}
