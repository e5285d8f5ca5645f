// Package uhid drives the kernel's /dev/uhid character device. The device
// consumes fixed-size records, each one a tagged union (struct uhid_event in
// linux/uhid.h). This package encodes and decodes those records and owns the
// device lifecycle: CREATE2, the START handshake, INPUT2 emission and DESTROY.
package uhid

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Event types from linux/uhid.h: the three this package writes, START, which
// it observes, and the other kernel-to-user events, which are discarded like
// everything else read during the start wait.
const (
	eventDestroy uint32 = 1
	eventStart   uint32 = 2
	eventStop    uint32 = 3
	eventOpen    uint32 = 4
	eventClose   uint32 = 5
	eventOutput  uint32 = 6
	eventCreate2 uint32 = 11
	eventInput2  uint32 = 12
)

const (
	busUSB = 0x03

	deviceVendor  = 0x1234
	deviceProduct = 0x5678
	deviceVersion = 1
	deviceCountry = 0

	nameFieldLen = 128
	physFieldLen = 64
	uniqFieldLen = 64

	// HID_MAX_DESCRIPTOR_SIZE and UHID_DATA_MAX respectively.
	rdDataMax    = 4096
	inputDataMax = 4096

	// sizeof(struct uhid_event): the 4-byte type tag plus the create2
	// request, the largest member of the union.
	eventSize = 4 + nameFieldLen + physFieldLen + uniqFieldLen +
		2 + 2 + 4 + 4 + 4 + 4 + rdDataMax
)

// Offsets of the create2 request fields inside the record, after the tag.
const (
	create2NameOff    = 4
	create2RdSizeOff  = create2NameOff + nameFieldLen + physFieldLen + uniqFieldLen
	create2BusOff     = create2RdSizeOff + 2
	create2VendorOff  = create2BusOff + 2
	create2ProductOff = create2VendorOff + 4
	create2VersionOff = create2ProductOff + 4
	create2CountryOff = create2VersionOff + 4
	create2RdDataOff  = create2CountryOff + 4

	input2SizeOff = 4
	input2DataOff = 6
)

var (
	// ErrUnavailable means the uhid facility cannot be used on this host:
	// the device node is missing or unopenable, the kernel rejected the
	// create request, or START never arrived.
	ErrUnavailable = errors.New("uhid device unavailable")

	// ErrStartTimeout means the kernel did not deliver UHID_START within
	// the startup budget.
	ErrStartTimeout = errors.New("timed out waiting for uhid start")

	// ErrNotRunning means the device has not completed the start handshake
	// or has already been destroyed.
	ErrNotRunning = errors.New("uhid device not running")
)

// encodeCreate2 builds a CREATE2 record. The name is truncated to the kernel
// field width, leaving at least one trailing NUL. Unset request fields stay
// zero, matching the memset the kernel interface expects.
func encodeCreate2(name string, reportDesc []byte) ([]byte, error) {
	if len(reportDesc) > rdDataMax {
		return nil, fmt.Errorf("report descriptor too large: %d > %d bytes", len(reportDesc), rdDataMax)
	}

	buf := make([]byte, eventSize)
	binary.LittleEndian.PutUint32(buf[0:4], eventCreate2)

	copy(buf[create2NameOff:create2NameOff+nameFieldLen-1], name)
	binary.LittleEndian.PutUint16(buf[create2RdSizeOff:], uint16(len(reportDesc)))
	binary.LittleEndian.PutUint16(buf[create2BusOff:], busUSB)
	binary.LittleEndian.PutUint32(buf[create2VendorOff:], deviceVendor)
	binary.LittleEndian.PutUint32(buf[create2ProductOff:], deviceProduct)
	binary.LittleEndian.PutUint32(buf[create2VersionOff:], deviceVersion)
	binary.LittleEndian.PutUint32(buf[create2CountryOff:], deviceCountry)
	copy(buf[create2RdDataOff:], reportDesc)

	return buf, nil
}

// encodeInput2 embeds a report into an INPUT2 record.
func encodeInput2(report []byte) ([]byte, error) {
	if len(report) > inputDataMax {
		return nil, fmt.Errorf("input report too large: %d > %d bytes", len(report), inputDataMax)
	}

	buf := make([]byte, eventSize)
	binary.LittleEndian.PutUint32(buf[0:4], eventInput2)
	binary.LittleEndian.PutUint16(buf[input2SizeOff:], uint16(len(report)))
	copy(buf[input2DataOff:], report)
	return buf, nil
}

func encodeDestroy() []byte {
	buf := make([]byte, eventSize)
	binary.LittleEndian.PutUint32(buf[0:4], eventDestroy)
	return buf
}

// eventType reads the tag of a record read back from the kernel.
func eventType(buf []byte) uint32 {
	if len(buf) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[0:4])
}
