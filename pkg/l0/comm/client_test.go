package comm

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedDevice records what the client wrote and replays canned replies.
type scriptedDevice struct {
	written bytes.Buffer
	replies io.Reader
}

func (d *scriptedDevice) Read(p []byte) (int, error) {
	return d.replies.Read(p)
}

func (d *scriptedDevice) Write(p []byte) (int, error) {
	return d.written.Write(p)
}

func newScriptedDevice(replies string) *scriptedDevice {
	return &scriptedDevice{replies: strings.NewReader(replies)}
}

func TestClient(t *testing.T) {
	dev := newScriptedDevice("pin incorrect\r\npin correct\r\nthe secret\r\n")
	c := NewClient(dev)

	require.NoError(t, c.Start())
	ok, err := c.Guess([2]byte{3, 4})
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = c.Guess([2]byte{1, 2})
	require.NoError(t, err)
	require.True(t, ok)
	secret, err := c.Query()
	require.NoError(t, err)
	require.Equal(t, []byte("the secret"), secret)
	require.NoError(t, c.End())

	require.Equal(t, "x\ng34\ng12\nq\nu\n", dev.written.String())
}

func TestClientReplyErrors(t *testing.T) {
	testCases := []struct {
		name    string
		replies string
		check   func(*testing.T, error)
	}{
		{
			"unexpected",
			"pin maybe\r\n",
			func(t *testing.T, err error) {
				require.Equal(t, &UnexpectedReplyError{Reply: "pin maybe"}, err)
			},
		},
		{
			"closed",
			"",
			func(t *testing.T, err error) {
				require.Equal(t, io.EOF, err)
			},
		},
		{
			"truncated",
			"pin corr",
			func(t *testing.T, err error) {
				require.Equal(t, io.ErrUnexpectedEOF, err)
			},
		},
		{
			"too long",
			strings.Repeat("a", MaxReplyLen+1) + "\r\n",
			func(t *testing.T, err error) {
				require.Equal(t, ErrLineTooLong, err)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(newScriptedDevice(tc.replies)).Guess([2]byte{1, 1})
			tc.check(t, err)
		})
	}
}

func TestClientReadReplyLF(t *testing.T) {
	reply, err := NewClient(newScriptedDevice("plain\n")).ReadReply()
	require.NoError(t, err)
	require.Equal(t, []byte("plain"), reply)
}

// echoDevice accepts 11 and rejects any other guess, one reply per command.
func echoDevice(conn io.ReadWriter) {
	r := NewReader(conn)
	for {
		cmd, err := r.ReadCommand()
		if err != nil {
			return
		}
		reply := ReplyPINIncorrect
		if cmd.Digits() == [2]byte{1, 1} {
			reply = ReplyPINCorrect
		}
		if _, err = conn.Write(reply); err != nil {
			return
		}
	}
}

type pipeConn struct {
	io.Reader
	io.Writer
}

func TestClientConcurrentGuesses(t *testing.T) {
	cmdR, cmdW := io.Pipe()
	replyR, replyW := io.Pipe()
	defer cmdW.Close()
	defer replyW.Close()
	go echoDevice(&pipeConn{Reader: cmdR, Writer: replyW})
	c := NewClient(&pipeConn{Reader: replyR, Writer: cmdW})

	const count = 32
	errCh := make(chan error, count)
	for n := 0; n < count; n++ {
		go func(correct bool) {
			digits := [2]byte{2, 2}
			if correct {
				digits = [2]byte{1, 1}
			}
			ok, err := c.Guess(digits)
			if err == nil && ok != correct {
				err = &UnexpectedReplyError{Reply: "reply of another guess"}
			}
			errCh <- err
		}(n%2 == 0)
	}
	for n := 0; n < count; n++ {
		require.NoError(t, <-errCh)
	}
}
