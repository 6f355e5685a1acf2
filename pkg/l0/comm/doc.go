// Package comm provides L0 protocol support.
package comm

// L0 protocol is communicated between the vault device and an operator
// terminal over a peer-to-peer byte stream (e.g. serial port).
//
// It is ASCII and line oriented. Each line is a command whose first byte
// is the command code and the next two bytes are optional arguments.
// A line ends with '\n', '\r', or '\r' followed by any one byte which is
// swallowed so a "\r\n" pair is consumed as a whole. Bytes beyond the
// third one are read and dropped.
//
//	x      start a session, the PIN is revealed on the indicator
//	gDD    guess the PIN, replies "pin correct" or "pin incorrect"
//	q      query the secret once unlocked, replies the secret
//	u      end the session
//
// Replies end with "\r\n". Commands not expected in the current phase
// are consumed without a reply. There is no timeout at this level.
//
// Producer: operator terminal
// Consumer: vault device
