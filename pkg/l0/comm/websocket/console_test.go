package websocket

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"net"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pinvault/pkg/l0/indicator"
	"github.com/robotalks/pinvault/pkg/l0/session"
	"github.com/robotalks/pinvault/pkg/vault"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for n := range p {
		p[n] = 0
	}
	return len(p), nil
}

func TestConsole(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	unlocked := make(chan struct{}, 1)
	console := NewConsole("", func(ctx context.Context, conn io.ReadWriteCloser) error {
		ctl := session.NewController(conn, (&indicator.Recorder{}).Blinker(indicator.DefaultTiming), []byte("over the wire"))
		ctl.Random = zeroReader{}
		ctl.Observer = session.ObserverFunc(func(e session.Event) {
			if e.Kind == session.EventUnlocked {
				unlocked <- struct{}{}
			}
		})
		return ctl.Run(ctx)
	})
	srv := httptest.NewServer(console.Handler(ctx))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + DefaultPath

	client, closer, err := Dial(url)
	require.NoError(t, err)
	defer closer.Close()

	require.NoError(t, client.Start())
	ok, err := client.Guess([2]byte{1, 2})
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = client.Guess([2]byte{1, 1})
	require.NoError(t, err)
	require.True(t, ok)
	select {
	case <-unlocked:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	secret, err := client.Query()
	require.NoError(t, err)
	require.Equal(t, "over the wire", string(secret))

	busy, busyCloser, err := Dial(url)
	require.NoError(t, err)
	defer busyCloser.Close()
	reply, err := busy.ReadReply()
	require.NoError(t, err)
	require.Equal(t, "busy", string(reply))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("trng fault")
}

func TestConsoleHaltsOnFatalError(t *testing.T) {
	var served int32
	console := NewConsole("", func(ctx context.Context, conn io.ReadWriteCloser) error {
		atomic.AddInt32(&served, 1)
		ctl := session.NewController(conn, (&indicator.Recorder{}).Blinker(indicator.DefaultTiming), []byte("s"))
		ctl.Random = failingReader{}
		return ctl.Run(ctx)
	})
	console.Fatal = session.IsDeviceFault

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() {
		done <- console.RunListener(context.Background(), ln)
	}()
	url := "ws://" + ln.Addr().String() + DefaultPath

	client, closer, err := Dial(url)
	require.NoError(t, err)
	defer closer.Close()
	require.NoError(t, client.Start())

	select {
	case err = <-done:
	case <-time.After(time.Second):
		t.Fatal("console still running")
	}
	var rngErr *vault.RandomSourceError
	require.True(t, errors.As(err, &rngErr))
	require.EqualError(t, err, "generate pin: random source failed: trng fault")

	_, _, err = Dial(url)
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&served))
}

func TestConsoleKeepsServingAfterDisconnect(t *testing.T) {
	var served int32
	console := NewConsole("", func(ctx context.Context, conn io.ReadWriteCloser) error {
		atomic.AddInt32(&served, 1)
		_, err := io.Copy(ioutil.Discard, conn)
		return err
	})
	console.Fatal = session.IsDeviceFault
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(console.Handler(ctx))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + DefaultPath

	for n := 1; n <= 2; n++ {
		_, closer, err := Dial(url)
		require.NoError(t, err)
		closer.Close()
		deadline := time.Now().Add(time.Second)
		for atomic.LoadInt32(&served) != int32(n) || atomic.LoadInt32(&console.active) != 0 {
			require.True(t, time.Now().Before(deadline), "connection %d not released", n)
			time.Sleep(10 * time.Millisecond)
		}
	}
}
