package comm

// Command codes.
const (
	CodeStart byte = 'x'
	CodeGuess byte = 'g'
	CodeQuery byte = 'q'
	CodeEnd   byte = 'u'
)

// Line terminators.
const (
	LF byte = '\n'
	CR byte = '\r'
)

// CommandSize is the number of bytes kept from a command line.
const CommandSize = 3

// Replies
var (
	ReplyPINCorrect   = []byte("pin correct\r\n")
	ReplyPINIncorrect = []byte("pin incorrect\r\n")
	ReplyEnd          = []byte("\r\n")
)

// Command is a line received from the terminal, zero padded.
type Command [CommandSize]byte

// NewCommand builds a command from code and args, extra args are dropped.
func NewCommand(code byte, args ...byte) Command {
	cmd := Command{code}
	copy(cmd[1:], args)
	return cmd
}

// Code returns the command code.
func (c Command) Code() byte {
	return c[0]
}

// Args returns the raw argument bytes.
func (c Command) Args() []byte {
	return c[1:]
}

// Digits converts the argument bytes from ASCII digits by subtracting '0'.
// The bytes are not validated: anything below '0' wraps around, e.g. '/'
// becomes 0xff, and a missing argument (zero padding) becomes 0xd0.
func (c Command) Digits() [CommandSize - 1]byte {
	return [CommandSize - 1]byte{c[1] - '0', c[2] - '0'}
}

// Line encodes the command as a line terminated by '\n',
// trailing zero padding is left out.
func (c Command) Line() []byte {
	n := len(c)
	for n > 0 && c[n-1] == 0 {
		n--
	}
	line := make([]byte, n, n+1)
	copy(line, c[:n])
	return append(line, LF)
}
