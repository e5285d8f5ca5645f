//go:build !linux

package uhid

import "github.com/rs/zerolog"

// Device is the non-Linux stand-in. There is no uhid facility to talk to, so
// Create deterministically reports unavailable without attempting a syscall
// and the backend selector falls back to the screen synthesizer.
type Device struct {
	log *zerolog.Logger
}

func NewDevice(logger *zerolog.Logger) *Device {
	return &Device{log: logger}
}

func (d *Device) Create(name string, reportDesc []byte) error {
	return ErrUnavailable
}

func (d *Device) WriteInput(report []byte) error {
	return ErrNotRunning
}

func (d *Device) Running() bool {
	return false
}

func (d *Device) Destroy() {}
