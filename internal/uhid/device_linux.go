//go:build linux

package uhid

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	devicePath   = "/dev/uhid"
	startTimeout = 3 * time.Second

	// Presented to the host when the caller does not name the device.
	defaultDeviceName = "BarrierVirtual HID"
)

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "uhid").Logger()

// Device is one virtual HID session over /dev/uhid. It exclusively owns the
// kernel file descriptor; reports may be written only between a successful
// Create and Destroy.
type Device struct {
	log     *zerolog.Logger
	fd      int
	created bool
	running bool
}

func NewDevice(logger *zerolog.Logger) *Device {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &Device{log: logger, fd: -1}
}

// Create opens the uhid node, registers the device described by reportDesc
// under the given name and waits for the kernel's START event. An empty name
// selects the default display name. On any failure the descriptor is closed
// again and the device stays non-running.
func (d *Device) Create(name string, reportDesc []byte) error {
	if d.running {
		return nil
	}

	if name == "" {
		name = defaultDeviceName
	}

	fd, err := unix.Open(devicePath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v (try modprobe uhid)", ErrUnavailable, devicePath, err)
	}

	create, err := encodeCreate2(name, reportDesc)
	if err != nil {
		unix.Close(fd)
		return err
	}
	if err := writeRecord(fd, create); err != nil {
		unix.Close(fd)
		return fmt.Errorf("%w: create2: %v", ErrUnavailable, err)
	}
	d.created = true

	if err := awaitStart(fd); err != nil {
		// The kernel saw the create, so always pair it with a destroy.
		_ = writeRecord(fd, encodeDestroy())
		unix.Close(fd)
		d.created = false
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	d.fd = fd
	d.running = true
	d.log.Info().Str("name", name).Msg("virtual hid device created")
	return nil
}

// awaitStart reads events off the descriptor until START is observed or the
// startup budget is spent. Interrupted waits resume; unrelated events read
// along the way are discarded.
func awaitStart(fd int) error {
	deadline := time.Now().Add(startTimeout)
	buf := make([]byte, eventSize)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrStartTimeout
		}

		tv := unix.NsecToTimeval(remaining.Nanoseconds())
		var rfds unix.FdSet
		rfds.Zero()
		rfds.Set(fd)

		n, err := unix.Select(fd+1, &rfds, nil, nil, &tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("select on %s: %w", devicePath, err)
		}
		if n == 0 {
			return ErrStartTimeout
		}

		nr, err := unix.Read(fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("read from %s: %w", devicePath, err)
		}
		if nr >= 4 && eventType(buf) == eventStart {
			return nil
		}
	}
}

// WriteInput emits one report as a single INPUT2 record. There is no retry;
// a refused write is reported to the caller and the next report starts fresh.
func (d *Device) WriteInput(report []byte) error {
	if !d.running {
		return ErrNotRunning
	}

	rec, err := encodeInput2(report)
	if err != nil {
		return err
	}
	if err := writeRecord(d.fd, rec); err != nil {
		return fmt.Errorf("input2: %w", err)
	}
	return nil
}

// Running reports whether the start handshake completed and Destroy has not
// been called.
func (d *Device) Running() bool {
	return d.running
}

// Destroy writes a best-effort DESTROY record and closes the descriptor.
// Idempotent and safe to defer.
func (d *Device) Destroy() {
	if d.fd < 0 {
		return
	}

	if d.created {
		_ = writeRecord(d.fd, encodeDestroy())
	}
	unix.Close(d.fd)
	d.fd = -1
	d.created = false
	d.running = false
	d.log.Info().Msg("virtual hid device destroyed")
}

// writeRecord writes one full uhid record. The protocol is record-oriented,
// so a partial write is a failure, not a resumable condition.
func writeRecord(fd int, rec []byte) error {
	n, err := unix.Write(fd, rec)
	if err != nil {
		return err
	}
	if n != len(rec) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(rec))
	}
	return nil
}
