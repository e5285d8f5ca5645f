package hid

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
)

// ErrNotRunning is returned by every engine operation invoked while the
// virtual device session is not running. State is left untouched.
var ErrNotRunning = errors.New("virtual hid session not running")

// ReportWriter is the sink the engine emits reports into, satisfied by the
// uhid device channel.
type ReportWriter interface {
	WriteInput(report []byte) error
	Running() bool
}

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "hid").Logger()

// Engine owns the rolling keyboard and mouse state and derives the report
// bytes each event requires. All methods are invoked serially from the
// upstream event dispatcher; the engine introduces no locking of its own.
type Engine struct {
	dev ReportWriter
	log *zerolog.Logger

	hasLastAbs bool
	lastAbsX   int32
	lastAbsY   int32

	mouseButtons      byte
	keyboardModifiers byte
	keys              [KeySlots]byte
}

func NewEngine(dev ReportWriter, logger *zerolog.Logger) *Engine {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &Engine{dev: dev, log: logger}
}

// ClearState resets buttons, modifiers, key slots and the absolute baseline.
// While the session is running it also emits one neutral keyboard and one
// neutral mouse report so the host sees a clean baseline.
func (e *Engine) ClearState() error {
	e.hasLastAbs = false
	e.lastAbsX = 0
	e.lastAbsY = 0
	e.mouseButtons = 0
	e.keyboardModifiers = 0
	e.keys = [KeySlots]byte{}

	if !e.dev.Running() {
		return nil
	}

	kbErr := e.sendKeyboardReport()
	mouseErr := e.sendMouseReport(0, 0, 0, 0)
	if kbErr != nil {
		return kbErr
	}
	return mouseErr
}

// KeyDown applies a key press. The incoming mask overwrites the modifier
// byte: upstream is the authority on modifier state for each event. Keys the
// map cannot translate are dropped silently.
func (e *Engine) KeyDown(id KeyID, mask ModifierMask) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}

	key := Map(id)
	e.keyboardModifiers = modifierFromMask(mask)

	if key.IsModifier {
		e.keyboardModifiers |= key.ModifierBit
		return e.sendKeyboardReport()
	}

	if key.Usage == 0 {
		e.log.Debug().Uint32("key", uint32(id)).Msg("unmapped key ignored")
		return nil
	}

	e.keyboardModifiers |= key.RequiredModifiers

	for _, slot := range e.keys {
		if slot == key.Usage {
			return e.sendKeyboardReport()
		}
	}

	for i := range e.keys {
		if e.keys[i] == 0 {
			e.keys[i] = key.Usage
			return e.sendKeyboardReport()
		}
	}

	// All six slots occupied: the newest press displaces the last slot.
	e.keys[KeySlots-1] = key.Usage
	return e.sendKeyboardReport()
}

// KeyUp applies a key release, clearing every slot holding the key's usage.
func (e *Engine) KeyUp(id KeyID, mask ModifierMask) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}

	key := Map(id)
	e.keyboardModifiers = modifierFromMask(mask)

	if key.IsModifier {
		e.keyboardModifiers &^= key.ModifierBit
		return e.sendKeyboardReport()
	}

	if key.Usage == 0 {
		return nil
	}

	for i := range e.keys {
		if e.keys[i] == key.Usage {
			e.keys[i] = 0
		}
	}

	return e.sendKeyboardReport()
}

// KeyRepeat emits count press/release pairs for a non-modifier key. The mask
// is re-read on every iteration, same as issuing the downs and ups one by one.
func (e *Engine) KeyRepeat(id KeyID, mask ModifierMask, count int32) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}
	if count <= 0 {
		return nil
	}

	key := Map(id)
	if key.IsModifier || key.Usage == 0 {
		return nil
	}

	for i := int32(0); i < count; i++ {
		if err := e.KeyDown(id, mask); err != nil {
			return err
		}
		if err := e.KeyUp(id, mask); err != nil {
			return err
		}
	}
	return nil
}

// MouseDown presses a mouse button. Unknown buttons change nothing and emit
// nothing.
func (e *Engine) MouseDown(id ButtonID) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}
	return e.updateMouseButtons(id, true)
}

// MouseUp releases a mouse button.
func (e *Engine) MouseUp(id ButtonID) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}
	return e.updateMouseButtons(id, false)
}

func (e *Engine) updateMouseButtons(id ButtonID, pressed bool) error {
	bit := buttonBit(id)
	if bit == 0 {
		return nil
	}

	if pressed {
		e.mouseButtons |= bit
	} else {
		e.mouseButtons &^= bit
	}

	return e.sendMouseReport(0, 0, 0, 0)
}

// MouseMoveAbsolute carries absolute coordinates as running deltas, because
// the boot mouse descriptor has no absolute axes. The first sample after a
// reset is a baseline and emits nothing; anything else would make the pointer
// jump whenever a client reconnects.
func (e *Engine) MouseMoveAbsolute(x, y int32) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}

	if !e.hasLastAbs {
		e.lastAbsX = x
		e.lastAbsY = y
		e.hasLastAbs = true
		return nil
	}

	dx := x - e.lastAbsX
	dy := y - e.lastAbsY
	e.lastAbsX = x
	e.lastAbsY = y
	return e.relativeMotion(dx, dy)
}

// MouseRelativeMove emits a relative motion, chunked into signed-byte steps.
func (e *Engine) MouseRelativeMove(dx, dy int32) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}
	return e.relativeMotion(dx, dy)
}

// MouseWheel converts 120-unit wheel deltas into wheel and pan steps. A
// non-zero delta below one detent still scrolls by one step in its direction.
func (e *Engine) MouseWheel(xDelta, yDelta int32) error {
	if !e.dev.Running() {
		return ErrNotRunning
	}

	var wheelSteps, panSteps int32

	if yDelta != 0 {
		wheelSteps = yDelta / 120
		if wheelSteps == 0 {
			if yDelta > 0 {
				wheelSteps = 1
			} else {
				wheelSteps = -1
			}
		}
	}

	if xDelta != 0 {
		panSteps = xDelta / 120
		if panSteps == 0 {
			if xDelta > 0 {
				panSteps = 1
			} else {
				panSteps = -1
			}
		}
	}

	for wheelSteps != 0 || panSteps != 0 {
		stepWheel := clampStep(wheelSteps)
		stepPan := clampStep(panSteps)

		if err := e.sendMouseReport(0, 0, int8(stepWheel), int8(stepPan)); err != nil {
			return err
		}

		wheelSteps -= stepWheel
		panSteps -= stepPan
	}

	return nil
}

// relativeMotion splits arbitrarily large deltas into steps the signed-byte
// report fields can carry, emitted in order.
func (e *Engine) relativeMotion(dx, dy int32) error {
	for dx != 0 || dy != 0 {
		stepX := clampStep(dx)
		stepY := clampStep(dy)

		if err := e.sendMouseReport(int8(stepX), int8(stepY), 0, 0); err != nil {
			return err
		}

		dx -= stepX
		dy -= stepY
	}
	return nil
}

func clampStep(v int32) int32 {
	if v > 127 {
		return 127
	}
	if v < -127 {
		return -127
	}
	return v
}

func (e *Engine) sendKeyboardReport() error {
	var report [KeyboardReportSize]byte
	report[0] = KeyboardReportID
	report[1] = e.keyboardModifiers
	copy(report[3:], e.keys[:])

	if err := e.dev.WriteInput(report[:]); err != nil {
		reportErrors.WithLabelValues("keyboard").Inc()
		return err
	}
	reportsWritten.WithLabelValues("keyboard").Inc()
	return nil
}

func (e *Engine) sendMouseReport(dx, dy, wheel, pan int8) error {
	var report [MouseReportSize]byte
	report[0] = MouseReportID
	report[1] = e.mouseButtons
	report[2] = byte(dx)
	report[3] = byte(dy)
	report[4] = byte(wheel)
	report[5] = byte(pan)

	if err := e.dev.WriteInput(report[:]); err != nil {
		reportErrors.WithLabelValues("mouse").Inc()
		return err
	}
	reportsWritten.WithLabelValues("mouse").Inc()
	return nil
}
