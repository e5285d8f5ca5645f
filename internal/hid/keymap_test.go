package hid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapLetters(t *testing.T) {
	assert.Equal(t, Mapping{Usage: 0x04}, Map('a'))
	assert.Equal(t, Mapping{Usage: 0x1d}, Map('z'))
	assert.Equal(t, Mapping{Usage: 0x04, RequiredModifiers: 0x02}, Map('A'))
	assert.Equal(t, Mapping{Usage: 0x1d, RequiredModifiers: 0x02}, Map('Z'))
}

func TestMapDigits(t *testing.T) {
	assert.Equal(t, Mapping{Usage: 0x1e}, Map('1'))
	assert.Equal(t, Mapping{Usage: 0x26}, Map('9'))
	assert.Equal(t, Mapping{Usage: 0x27}, Map('0'))
}

func TestMapPunctuation(t *testing.T) {
	tests := []struct {
		id      KeyID
		usage   byte
		shifted bool
	}{
		{'!', 0x1e, true},
		{'@', 0x1f, true},
		{'#', 0x20, true},
		{'$', 0x21, true},
		{'%', 0x22, true},
		{'^', 0x23, true},
		{'&', 0x24, true},
		{'*', 0x25, true},
		{'(', 0x26, true},
		{')', 0x27, true},
		{'-', 0x2d, false},
		{'_', 0x2d, true},
		{'=', 0x2e, false},
		{'+', 0x2e, true},
		{'[', 0x2f, false},
		{'{', 0x2f, true},
		{']', 0x30, false},
		{'}', 0x30, true},
		{'\\', 0x31, false},
		{'|', 0x31, true},
		{';', 0x33, false},
		{':', 0x33, true},
		{'\'', 0x34, false},
		{'"', 0x34, true},
		{'`', 0x35, false},
		{'~', 0x35, true},
		{',', 0x36, false},
		{'<', 0x36, true},
		{'.', 0x37, false},
		{'>', 0x37, true},
		{'/', 0x38, false},
		{'?', 0x38, true},
		{' ', 0x2c, false},
	}

	for _, tt := range tests {
		m := Map(tt.id)
		assert.Equal(t, tt.usage, m.Usage, "usage for %q", rune(tt.id))
		if tt.shifted {
			assert.Equal(t, modLeftShift, m.RequiredModifiers, "shift for %q", rune(tt.id))
		} else {
			assert.Zero(t, m.RequiredModifiers, "no shift for %q", rune(tt.id))
		}
		assert.False(t, m.IsModifier)
	}
}

func TestMapNamedKeys(t *testing.T) {
	tests := []struct {
		id    KeyID
		usage byte
	}{
		{KeyReturn, 0x28},
		{KeyKPEnter, 0x28},
		{KeyEscape, 0x29},
		{KeyBackSpace, 0x2a},
		{KeyTab, 0x2b},
		{KeyLeftTab, 0x2b},
		{KeyInsert, 0x49},
		{KeyHome, 0x4a},
		{KeyPageUp, 0x4b},
		{KeyDelete, 0x4c},
		{KeyEnd, 0x4d},
		{KeyPageDown, 0x4e},
		{KeyRight, 0x4f},
		{KeyLeft, 0x50},
		{KeyDown, 0x51},
		{KeyUp, 0x52},
		{KeyCapsLock, 0x39},
		{KeyNumLock, 0x53},
		{KeyScrollLock, 0x47},
		{KeyPrint, 0x46},
		{KeyPause, 0x48},
		{KeyMenu, 0x65},
	}

	for _, tt := range tests {
		m := Map(tt.id)
		assert.Equal(t, tt.usage, m.Usage, "usage for key 0x%x", uint32(tt.id))
		assert.False(t, m.IsModifier)
		assert.Zero(t, m.RequiredModifiers)
	}
}

func TestMapKeypad(t *testing.T) {
	tests := []struct {
		id    KeyID
		usage byte
	}{
		{KeyKPDivide, 0x54},
		{KeyKPMultiply, 0x55},
		{KeyKPSubtract, 0x56},
		{KeyKPAdd, 0x57},
		{KeyKP0, 0x62},
		{KeyKPInsert, 0x62},
		{KeyKP1, 0x59},
		{KeyKPEnd, 0x59},
		{KeyKP2, 0x5a},
		{KeyKPDown, 0x5a},
		{KeyKP3, 0x5b},
		{KeyKPPageDown, 0x5b},
		{KeyKP4, 0x5c},
		{KeyKPLeft, 0x5c},
		{KeyKP5, 0x5d},
		{KeyKPBegin, 0x5d},
		{KeyKP6, 0x5e},
		{KeyKPRight, 0x5e},
		{KeyKP7, 0x5f},
		{KeyKPHome, 0x5f},
		{KeyKP8, 0x60},
		{KeyKPUp, 0x60},
		{KeyKP9, 0x61},
		{KeyKPPageUp, 0x61},
		{KeyKPDecimal, 0x63},
		{KeyKPDelete, 0x63},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.usage, Map(tt.id).Usage, "usage for key 0x%x", uint32(tt.id))
	}
}

func TestMapFunctionKeys(t *testing.T) {
	assert.Equal(t, byte(0x3a), Map(KeyF1).Usage)
	assert.Equal(t, byte(0x3e), Map(KeyF1+4).Usage)
	assert.Equal(t, byte(0x45), Map(KeyF12).Usage)
	assert.Equal(t, byte(0x68), Map(KeyF13).Usage)
	assert.Equal(t, byte(0x73), Map(KeyF24).Usage)
}

func TestMapModifiers(t *testing.T) {
	tests := []struct {
		id  KeyID
		bit byte
	}{
		{KeyShiftL, 0x02},
		{KeyShiftR, 0x20},
		{KeyControlL, 0x01},
		{KeyControlR, 0x10},
		{KeyAltL, 0x04},
		{KeyAltR, 0x40},
		{KeyAltGr, 0x40},
		{KeyMetaL, 0x08},
		{KeySuperL, 0x08},
		{KeyMetaR, 0x80},
		{KeySuperR, 0x80},
	}

	for _, tt := range tests {
		m := Map(tt.id)
		assert.True(t, m.IsModifier, "key 0x%x is a modifier", uint32(tt.id))
		assert.Equal(t, tt.bit, m.ModifierBit, "bit for key 0x%x", uint32(tt.id))
		assert.Zero(t, m.Usage)
	}
}

func TestMapIsTotal(t *testing.T) {
	for _, id := range []KeyID{0x07, 0x80, 0xef00, 0xffff, 0x123456} {
		assert.Equal(t, Mapping{}, Map(id), "key 0x%x maps to nothing", uint32(id))
	}
}

func TestModifierFromMask(t *testing.T) {
	assert.Equal(t, byte(0x00), modifierFromMask(0))
	assert.Equal(t, byte(0x01), modifierFromMask(ModControl))
	assert.Equal(t, byte(0x02), modifierFromMask(ModShift))
	assert.Equal(t, byte(0x04), modifierFromMask(ModAlt))
	assert.Equal(t, byte(0x08), modifierFromMask(ModMeta))
	assert.Equal(t, byte(0x08), modifierFromMask(ModSuper))
	assert.Equal(t, byte(0x40), modifierFromMask(ModAltGr))
	assert.Equal(t, byte(0x47), modifierFromMask(ModControl|ModShift|ModAlt|ModAltGr))
}

func TestButtonBit(t *testing.T) {
	assert.Equal(t, byte(0x01), buttonBit(ButtonLeft))
	assert.Equal(t, byte(0x02), buttonBit(ButtonRight))
	assert.Equal(t, byte(0x04), buttonBit(ButtonMiddle))
	assert.Equal(t, byte(0x08), buttonBit(ButtonExtra0))
	assert.Equal(t, byte(0x10), buttonBit(ButtonExtra1))
	assert.Equal(t, byte(0x00), buttonBit(ButtonNone))
	assert.Equal(t, byte(0x00), buttonBit(ButtonID(42)))
}
