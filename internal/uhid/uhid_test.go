package uhid

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSizeMatchesKernelStruct(t *testing.T) {
	// sizeof(struct uhid_event) with the create2 request as largest member.
	assert.Equal(t, 4376, eventSize)
}

func TestEncodeCreate2(t *testing.T) {
	rd := []byte{0x05, 0x01, 0x09}

	buf, err := encodeCreate2("Test Device", rd)
	require.NoError(t, err)
	require.Len(t, buf, eventSize)

	assert.Equal(t, eventCreate2, binary.LittleEndian.Uint32(buf[0:4]))

	name := buf[create2NameOff : create2NameOff+nameFieldLen]
	assert.Equal(t, "Test Device", string(bytes.TrimRight(name, "\x00")))
	assert.Equal(t, byte(0), name[len("Test Device")])

	assert.Equal(t, uint16(len(rd)), binary.LittleEndian.Uint16(buf[create2RdSizeOff:]))
	assert.Equal(t, uint16(busUSB), binary.LittleEndian.Uint16(buf[create2BusOff:]))
	assert.Equal(t, uint32(deviceVendor), binary.LittleEndian.Uint32(buf[create2VendorOff:]))
	assert.Equal(t, uint32(deviceProduct), binary.LittleEndian.Uint32(buf[create2ProductOff:]))
	assert.Equal(t, uint32(deviceVersion), binary.LittleEndian.Uint32(buf[create2VersionOff:]))
	assert.Equal(t, uint32(deviceCountry), binary.LittleEndian.Uint32(buf[create2CountryOff:]))
	assert.Equal(t, rd, buf[create2RdDataOff:create2RdDataOff+len(rd)])
}

func TestEncodeCreate2TruncatesLongName(t *testing.T) {
	long := strings.Repeat("x", 200)

	buf, err := encodeCreate2(long, nil)
	require.NoError(t, err)

	name := buf[create2NameOff : create2NameOff+nameFieldLen]
	assert.Equal(t, strings.Repeat("x", nameFieldLen-1), string(name[:nameFieldLen-1]))
	// The kernel field always keeps a trailing NUL.
	assert.Equal(t, byte(0), name[nameFieldLen-1])
}

func TestEncodeCreate2RejectsOversizeDescriptor(t *testing.T) {
	_, err := encodeCreate2("x", make([]byte, rdDataMax+1))
	assert.Error(t, err)
}

func TestEncodeInput2(t *testing.T) {
	report := []byte{0x02, 0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}

	buf, err := encodeInput2(report)
	require.NoError(t, err)
	require.Len(t, buf, eventSize)

	assert.Equal(t, eventInput2, binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint16(len(report)), binary.LittleEndian.Uint16(buf[input2SizeOff:]))
	assert.Equal(t, report, buf[input2DataOff:input2DataOff+len(report)])
}

func TestEncodeInput2RejectsOversizeReport(t *testing.T) {
	_, err := encodeInput2(make([]byte, inputDataMax+1))
	assert.Error(t, err)
}

func TestEncodeDestroy(t *testing.T) {
	buf := encodeDestroy()
	require.Len(t, buf, eventSize)
	assert.Equal(t, eventDestroy, binary.LittleEndian.Uint32(buf[0:4]))
}

func TestEventType(t *testing.T) {
	buf := make([]byte, eventSize)
	binary.LittleEndian.PutUint32(buf, eventStart)
	assert.Equal(t, eventStart, eventType(buf))

	assert.Equal(t, uint32(0), eventType([]byte{0x02}))
	assert.Equal(t, uint32(0), eventType(nil))
}
