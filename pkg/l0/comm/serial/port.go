// Package serial opens serial ports carrying the L0 protocol.
package serial

import (
	"errors"

	"github.com/golang/glog"
	"go.bug.st/serial.v1"
)

// ErrNoPortFound indicates no serial port is available.
var ErrNoPortFound = errors.New("no serial port found")

// DefaultBaudRate is the baud rate of the vault UART.
const DefaultBaudRate = 115200

// Port is an open serial port.
type Port = serial.Port

// Mode returns 8N1 settings at baudRate, DefaultBaudRate if 0.
func Mode(baudRate int) *serial.Mode {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
}

// Open opens the named port. An empty name picks the first port
// which can be opened.
func Open(name string, baudRate int) (Port, string, error) {
	mode := Mode(baudRate)
	if name != "" {
		port, err := serial.Open(name, mode)
		return port, name, err
	}
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, "", err
	}
	for _, name := range names {
		port, err := serial.Open(name, mode)
		if err == nil {
			glog.Infof("opened serial port %q", name)
			return port, name, nil
		}
		glog.V(2).Infof("skip serial port %q: %v", name, err)
	}
	return nil, "", ErrNoPortFound
}

// List enumerates serial ports on the system.
func List() ([]string, error) {
	return serial.GetPortsList()
}
