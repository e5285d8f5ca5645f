// Package virthid injects synthetic keyboard and mouse input into the host
// by presenting a virtual USB HID device through the kernel's uhid facility.
// Upstream code decodes remote input events and feeds them to a Backend; the
// virtual backend translates them into HID reports, and when the virtual
// device cannot be created the events are forwarded to the on-screen
// synthesizer instead.
package virthid

import (
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/openkvm/virthid/internal/hid"
	"github.com/openkvm/virthid/internal/uhid"
)

// Backend is the sink for decoded remote input events. All operations are
// invoked serially from the upstream event dispatcher. Emission failures are
// returned but never fatal; the next event starts fresh.
type Backend interface {
	// Enter is called when the pointer enters this screen at an absolute
	// position; Leave when it departs.
	Enter(x, y int32) error
	Leave() error

	KeyDown(id hid.KeyID, mask hid.ModifierMask, button hid.KeyButton) error
	KeyRepeat(id hid.KeyID, mask hid.ModifierMask, count int32, button hid.KeyButton) error
	KeyUp(id hid.KeyID, mask hid.ModifierMask, button hid.KeyButton) error

	MouseDown(id hid.ButtonID) error
	MouseUp(id hid.ButtonID) error
	MouseMove(x, y int32) error
	MouseRelativeMove(dx, dy int32) error
	MouseWheel(xDelta, yDelta int32) error

	// Close releases the backend. Idempotent; never reports errors.
	Close()
}

// ScreenSynthesizer is the external on-screen input collaborator the selector
// falls back to when the virtual device is unavailable.
type ScreenSynthesizer interface {
	MouseMove(x, y int32) error
	MouseRelativeMove(dx, dy int32) error
	MouseDown(id hid.ButtonID) error
	MouseUp(id hid.ButtonID) error
	MouseWheel(xDelta, yDelta int32) error

	KeyDown(id hid.KeyID, mask hid.ModifierMask, button hid.KeyButton) error
	KeyRepeat(id hid.KeyID, mask hid.ModifierMask, count int32, button hid.KeyButton) error
	KeyUp(id hid.KeyID, mask hid.ModifierMask, button hid.KeyButton) error
}

// NewBackend selects the backend for a session. When the config requests the
// virtual device it is attempted first; if its start handshake fails the
// screen backend takes over with a logged warning. The caller owns the
// returned backend for the lifetime of the session.
func NewBackend(cfg *Config, screen ScreenSynthesizer, logger *zerolog.Logger) Backend {
	if logger == nil {
		l := Logger("backend")
		logger = &l
	}

	if !cfg.VirtualInputEnabled {
		logger.Info().Msg("virtual input disabled, using screen backend")
		return &screenBackend{screen: screen}
	}

	vb := newVirtualBackend(cfg.VirtualDeviceName, logger)
	if vb.Started() {
		logger.Info().Msg("using virtual hid backend")
		return vb
	}

	logger.Warn().Msg("virtual hid backend failed to start, falling back to screen backend")
	return &screenBackend{screen: screen}
}

// screenBackend forwards every event 1:1 to the on-screen synthesizer.
// Entering performs an absolute move; leaving needs no action because the
// synthesizer has no device state to reset.
type screenBackend struct {
	screen ScreenSynthesizer
}

func (b *screenBackend) Enter(x, y int32) error {
	return b.screen.MouseMove(x, y)
}

func (b *screenBackend) Leave() error {
	return nil
}

func (b *screenBackend) KeyDown(id hid.KeyID, mask hid.ModifierMask, button hid.KeyButton) error {
	return b.screen.KeyDown(id, mask, button)
}

func (b *screenBackend) KeyRepeat(id hid.KeyID, mask hid.ModifierMask, count int32, button hid.KeyButton) error {
	return b.screen.KeyRepeat(id, mask, count, button)
}

func (b *screenBackend) KeyUp(id hid.KeyID, mask hid.ModifierMask, button hid.KeyButton) error {
	return b.screen.KeyUp(id, mask, button)
}

func (b *screenBackend) MouseDown(id hid.ButtonID) error {
	return b.screen.MouseDown(id)
}

func (b *screenBackend) MouseUp(id hid.ButtonID) error {
	return b.screen.MouseUp(id)
}

func (b *screenBackend) MouseMove(x, y int32) error {
	return b.screen.MouseMove(x, y)
}

func (b *screenBackend) MouseRelativeMove(dx, dy int32) error {
	return b.screen.MouseRelativeMove(dx, dy)
}

func (b *screenBackend) MouseWheel(xDelta, yDelta int32) error {
	return b.screen.MouseWheel(xDelta, yDelta)
}

func (b *screenBackend) Close() {}

// virtualBackend owns one uhid device session and the input state engine on
// top of it. Construction attempts the create+start handshake; a backend that
// did not start stays Failed for good and the selector substitutes the screen
// backend.
type virtualBackend struct {
	log     zerolog.Logger
	dev     *uhid.Device
	engine  *hid.Engine
	started bool
}

func newVirtualBackend(deviceName string, logger *zerolog.Logger) *virtualBackend {
	scoped := logger.With().
		Str("backend", "uhid").
		Str("session_id", xid.New().String()).
		Logger()

	dev := uhid.NewDevice(&scoped)
	b := &virtualBackend{
		log:    scoped,
		dev:    dev,
		engine: hid.NewEngine(dev, &scoped),
	}

	if err := dev.Create(deviceName, hid.ReportDescriptor); err != nil {
		scoped.Warn().Err(err).Msg("virtual hid device unavailable")
		return b
	}

	b.started = true
	// Neutral baseline so the host sees released keys and buttons.
	if err := b.engine.ClearState(); err != nil {
		scoped.Debug().Err(err).Msg("initial state reset failed")
	}
	return b
}

// Started reports whether the create+start handshake succeeded.
func (b *virtualBackend) Started() bool {
	return b.started
}

func (b *virtualBackend) Enter(x, y int32) error {
	err := b.engine.ClearState()
	if moveErr := b.engine.MouseMoveAbsolute(x, y); err == nil {
		err = moveErr
	}
	return err
}

func (b *virtualBackend) Leave() error {
	return b.engine.ClearState()
}

func (b *virtualBackend) KeyDown(id hid.KeyID, mask hid.ModifierMask, _ hid.KeyButton) error {
	return b.engine.KeyDown(id, mask)
}

func (b *virtualBackend) KeyRepeat(id hid.KeyID, mask hid.ModifierMask, count int32, _ hid.KeyButton) error {
	return b.engine.KeyRepeat(id, mask, count)
}

func (b *virtualBackend) KeyUp(id hid.KeyID, mask hid.ModifierMask, _ hid.KeyButton) error {
	return b.engine.KeyUp(id, mask)
}

func (b *virtualBackend) MouseDown(id hid.ButtonID) error {
	return b.engine.MouseDown(id)
}

func (b *virtualBackend) MouseUp(id hid.ButtonID) error {
	return b.engine.MouseUp(id)
}

func (b *virtualBackend) MouseMove(x, y int32) error {
	return b.engine.MouseMoveAbsolute(x, y)
}

func (b *virtualBackend) MouseRelativeMove(dx, dy int32) error {
	return b.engine.MouseRelativeMove(dx, dy)
}

func (b *virtualBackend) MouseWheel(xDelta, yDelta int32) error {
	return b.engine.MouseWheel(xDelta, yDelta)
}

func (b *virtualBackend) Close() {
	b.dev.Destroy()
}
