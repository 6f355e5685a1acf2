// Package websocket carries the L0 protocol over websocket, so a vault
// can run without a serial line.
package websocket

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/pinvault/pkg/l0/comm"
)

// DefaultPath is the URL path of the console.
const DefaultPath = "/console"

// ReplyBusy is sent to a connection refused because another one is active.
var ReplyBusy = []byte("busy\r\n")

// ServeFunc serves one connection until it fails or ctx is done.
type ServeFunc func(ctx context.Context, conn io.ReadWriteCloser) error

// Console accepts one terminal at a time, each served by Serve.
type Console struct {
	Addr  string
	Path  string
	Serve ServeFunc
	// Fatal tells if an error from Serve must halt the console.
	Fatal func(error) bool

	active   int32
	haltOnce sync.Once
	haltCh   chan error
}

// NewConsole creates a Console.
func NewConsole(addr string, serve ServeFunc) *Console {
	return &Console{Addr: addr, Path: DefaultPath, Serve: serve}
}

func (c *Console) halted() chan error {
	c.haltOnce.Do(func() {
		c.haltCh = make(chan error, 1)
	})
	return c.haltCh
}

// Handler returns the websocket handler. Origin is not checked.
// After a fatal error every connection is refused as busy.
func (c *Console) Handler(ctx context.Context) http.Handler {
	return websocket.Server{Handler: func(conn *websocket.Conn) {
		defer conn.Close()
		if !atomic.CompareAndSwapInt32(&c.active, 0, 1) {
			glog.Warningf("refused %s: console busy", conn.Request().RemoteAddr)
			conn.Write(ReplyBusy)
			return
		}
		remote := conn.Request().RemoteAddr
		glog.Infof("console connected: %s", remote)
		err := c.Serve(ctx, conn)
		if err != nil && c.Fatal != nil && c.Fatal(err) {
			glog.Errorf("console halted by %s: %v", remote, err)
			select {
			case c.halted() <- err:
			default:
			}
			return
		}
		atomic.StoreInt32(&c.active, 0)
		glog.Infof("console disconnected: %s: %v", remote, err)
	}}
}

// Run implements Runnable.
func (c *Console) Run(ctx context.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return c.RunListener(ctx, ln)
}

// RunListener serves on ln until ctx is done or a fatal error from Serve.
func (c *Console) RunListener(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	path := c.Path
	if path == "" {
		path = DefaultPath
	}
	mux.Handle(path, c.Handler(ctx))
	srv := &http.Server{Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
	select {
	case err := <-errCh:
		return err
	case err := <-c.halted():
		shutdown()
		return err
	case <-ctx.Done():
		shutdown()
		return ctx.Err()
	}
}

// Dial connects to a console and returns a protocol client.
func Dial(url string) (*comm.Client, io.Closer, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, nil, err
	}
	return comm.NewClient(conn), conn, nil
}
