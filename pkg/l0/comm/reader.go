package comm

import (
	"io"
)

// Reader reads commands from a byte stream, one byte at a time so
// nothing after the terminator is consumed.
type Reader struct {
	r   io.Reader
	buf [1]byte
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadByte blocks until a byte is received.
func (r *Reader) ReadByte() (byte, error) {
	if br, ok := r.r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	for {
		n, err := r.r.Read(r.buf[:])
		if n > 0 {
			return r.buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// ReadCommand reads one line and returns the first CommandSize bytes.
// A '\r' also consumes the byte after it, whatever it is. When that
// byte never comes, ReadCommand blocks.
func (r *Reader) ReadCommand() (cmd Command, err error) {
	var b byte
	for n := 0; ; n++ {
		if b, err = r.ReadByte(); err != nil {
			if err == io.EOF && n > 0 {
				err = io.ErrUnexpectedEOF
			}
			return Command{}, err
		}
		if b == LF || b == CR {
			break
		}
		if n < len(cmd) {
			cmd[n] = b
		}
	}
	if b == CR {
		if _, err = r.ReadByte(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Command{}, err
		}
	}
	return cmd, nil
}
