package sh

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/pinvault/pkg/l0/comm"
	"github.com/robotalks/pinvault/pkg/l0/comm/serial"
	"github.com/robotalks/pinvault/pkg/l0/comm/websocket"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	Target      string
	Baud        int
	Timeout     time.Duration

	Shell *ishell.Shell
	Conn  *Conn
}

// Conn is an open connection to a vault.
type Conn struct {
	Name   string
	Client *comm.Client
	Closer io.Closer
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// ErrNotConnected indicates no vault is connected.
	ErrNotConnected = errors.New("not connected")
	// ErrReplyTimeout indicates the vault didn't reply in time.
	ErrReplyTimeout = errors.New("reply timeout")

	// flags

	evalOnly bool
	target   string
	baudRate int
	timeout  = 5 * time.Second

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StartCmd,
		&GuessCmd,
		&QueryCmd,
		&EndCmd,
		&SendCmd,
		&ReadCmd,
	}
)

func init() {
	if val := os.Getenv("PINVAULT_DEVICE"); val != "" {
		target = val
	}
	if val, err := strconv.Atoi(os.Getenv("PINVAULT_BAUD")); err == nil {
		baudRate = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.StringVar(&target, "dev", target, "Serial port or console URL (ws://host:port/console) to connect.")
	flag.IntVar(&baudRate, "baud", baudRate, "Serial port baud rate.")
	flag.DurationVar(&timeout, "timeout", timeout, "Timeout waiting for a reply.")
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Target:      target,
		Baud:        baudRate,
		Timeout:     timeout,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context, conn *Conn)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		conn := ShellFrom(c).Conn
		if conn == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c, conn)
	}
}

// IsConsoleURL tells if target is a websocket console rather than a serial port.
func IsConsoleURL(target string) bool {
	return strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://")
}

// Connect connects a vault over a serial port or a websocket console.
func (s *Shell) Connect(target string) error {
	conn := &Conn{Name: target}
	if IsConsoleURL(target) {
		client, closer, err := websocket.Dial(target)
		if err != nil {
			return err
		}
		conn.Client, conn.Closer = client, closer
	} else {
		port, name, err := serial.Open(target, s.Baud)
		if err != nil {
			return err
		}
		conn.Name, conn.Client, conn.Closer = name, comm.NewClient(port), port
	}
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conn.Name))
	return nil
}

// Disconnect disconnects current vault.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Closer.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// WithTimeout runs fn which waits for a reply. On timeout the connection
// is dropped, as a late reply would be taken for the next one.
func (s *Shell) WithTimeout(fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		return err
	case <-time.After(s.Timeout):
		s.Disconnect()
		return ErrReplyTimeout
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Target != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Target)
		}
		if err := s.Connect(s.Target); err != nil {
			log.Fatalf("connect %q failed: %v", s.Target, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// ParseDigits parses PIN digits from "D D" or "DD".
func ParseDigits(args []string) (digits [2]byte, err error) {
	str := strings.Join(args, "")
	if len(str) != len(digits) {
		return digits, fmt.Errorf("expect %d digits", len(digits))
	}
	for n := range digits {
		if str[n] < '0' || str[n] > '9' {
			return digits, fmt.Errorf("invalid digit %q", str[n])
		}
		digits[n] = str[n] - '0'
	}
	return digits, nil
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			names, err := serial.List()
			if err != nil {
				c.Err(err)
				return
			}
			if len(names) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, name := range names {
				c.Println(name)
			}
		},
	}

	// ConnectCmd connects a vault.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[DEVICE|URL], first serial port if omitted",
		Func: func(c *ishell.Context) {
			var target string
			if len(c.Args) > 0 {
				target = c.Args[0]
			}
			if err := ShellFrom(c).Connect(target); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current vault.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// StartCmd starts a session, the PIN blinks on the device.
	StartCmd = ishell.Cmd{
		Name:    "start",
		Aliases: []string{"x"},
		Help:    "start a session, watch the LED for the PIN",
		Func: MustBeConnected(func(c *ishell.Context, conn *Conn) {
			if err := conn.Client.Start(); err != nil {
				c.Err(err)
			}
		}),
	}

	// GuessCmd enters a PIN.
	GuessCmd = ishell.Cmd{
		Name:    "guess",
		Aliases: []string{"g"},
		Help:    "D D",
		Func: MustBeConnected(func(c *ishell.Context, conn *Conn) {
			digits, err := ParseDigits(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			var ok bool
			err = ShellFrom(c).WithTimeout(func() (err error) {
				ok, err = conn.Client.Guess(digits)
				return
			})
			if err != nil {
				c.Err(err)
				return
			}
			if ok {
				c.Println("pin correct")
			} else {
				c.Println("pin incorrect")
			}
		}),
	}

	// QueryCmd reads the secret.
	QueryCmd = ishell.Cmd{
		Name:    "query",
		Aliases: []string{"q"},
		Help:    "read the secret, session must be unlocked",
		Func: MustBeConnected(func(c *ishell.Context, conn *Conn) {
			var secret []byte
			err := ShellFrom(c).WithTimeout(func() (err error) {
				secret, err = conn.Client.Query()
				return
			})
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(secret))
		}),
	}

	// EndCmd ends the session.
	EndCmd = ishell.Cmd{
		Name:    "end",
		Aliases: []string{"u"},
		Help:    "end the session",
		Func: MustBeConnected(func(c *ishell.Context, conn *Conn) {
			if err := conn.Client.End(); err != nil {
				c.Err(err)
			}
		}),
	}

	// SendCmd sends a raw line.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "LINE, sent with a line feed, replies are not read, use read",
		Func: MustBeConnected(func(c *ishell.Context, conn *Conn) {
			line := append([]byte(strings.Join(c.Args, " ")), comm.LF)
			if err := conn.Client.SendLine(line); err != nil {
				c.Err(err)
			}
		}),
	}

	// ReadCmd reads one reply.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "read one reply",
		Func: MustBeConnected(func(c *ishell.Context, conn *Conn) {
			var reply []byte
			err := ShellFrom(c).WithTimeout(func() (err error) {
				reply, err = conn.Client.ReadReply()
				return
			})
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(reply))
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
