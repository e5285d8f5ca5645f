// Package hid translates abstract input events into the binary reports the
// virtual device emits: the report descriptor, the key mapping table and the
// rolling input state engine live here.
package hid

// Report ids and fixed report sizes for the two logical devices declared by
// ReportDescriptor.
const (
	MouseReportID    = 0x01
	KeyboardReportID = 0x02

	MouseReportSize    = 6
	KeyboardReportSize = 9

	// Rolling key slots carried in every keyboard report.
	KeySlots = 6
)

// ReportDescriptor declares one boot-style mouse (report id 1: 5 buttons,
// relative X/Y, vertical wheel, horizontal AC Pan) and one keyboard (report
// id 2: 8 modifier bits, reserved byte, 6 key slots). The byte sequence is
// the wire contract with the host input stack; changing any byte changes how
// the host parses every report.
var ReportDescriptor = []byte{
	0x05, 0x01, /* USAGE_PAGE (Generic Desktop) */
	0x09, 0x02, /* USAGE (Mouse) */
	0xA1, 0x01, /* COLLECTION (Application) */
	0x85, 0x01, /*   REPORT_ID (1) */
	0x09, 0x01, /*   USAGE (Pointer) */
	0xA1, 0x00, /*   COLLECTION (Physical) */
	0x05, 0x09, /*     USAGE_PAGE (Button) */
	0x19, 0x01, /*     USAGE_MINIMUM (Button 1) */
	0x29, 0x05, /*     USAGE_MAXIMUM (Button 5) */
	0x15, 0x00, /*     LOGICAL_MINIMUM (0) */
	0x25, 0x01, /*     LOGICAL_MAXIMUM (1) */
	0x95, 0x05, /*     REPORT_COUNT (5) */
	0x75, 0x01, /*     REPORT_SIZE (1) */
	0x81, 0x02, /*     INPUT (Data,Var,Abs) */
	0x95, 0x01, /*     REPORT_COUNT (1) */
	0x75, 0x03, /*     REPORT_SIZE (3) */
	0x81, 0x03, /*     INPUT (Cnst,Var,Abs) */
	0x05, 0x01, /*     USAGE_PAGE (Generic Desktop) */
	0x09, 0x30, /*     USAGE (X) */
	0x09, 0x31, /*     USAGE (Y) */
	0x09, 0x38, /*     USAGE (Wheel) */
	0x05, 0x0C, /*     USAGE_PAGE (Consumer) */
	0x0A, 0x38, 0x02, /* USAGE (AC Pan) */
	0x15, 0x81, /*     LOGICAL_MINIMUM (-127) */
	0x25, 0x7F, /*     LOGICAL_MAXIMUM (127) */
	0x75, 0x08, /*     REPORT_SIZE (8) */
	0x95, 0x04, /*     REPORT_COUNT (4) */
	0x81, 0x06, /*     INPUT (Data,Var,Rel) */
	0xC0, /*   END_COLLECTION */
	0xC0, /* END_COLLECTION */

	0x05, 0x01, /* USAGE_PAGE (Generic Desktop) */
	0x09, 0x06, /* USAGE (Keyboard) */
	0xA1, 0x01, /* COLLECTION (Application) */
	0x85, 0x02, /*   REPORT_ID (2) */
	0x05, 0x07, /*   USAGE_PAGE (Keyboard) */
	0x19, 0xE0, /*   USAGE_MINIMUM (Left Control) */
	0x29, 0xE7, /*   USAGE_MAXIMUM (Right GUI) */
	0x15, 0x00, /*   LOGICAL_MINIMUM (0) */
	0x25, 0x01, /*   LOGICAL_MAXIMUM (1) */
	0x75, 0x01, /*   REPORT_SIZE (1) */
	0x95, 0x08, /*   REPORT_COUNT (8) */
	0x81, 0x02, /*   INPUT (Data,Var,Abs) */
	0x95, 0x01, /*   REPORT_COUNT (1) */
	0x75, 0x08, /*   REPORT_SIZE (8) */
	0x81, 0x03, /*   INPUT (Cnst,Var,Abs) */
	0x95, 0x06, /*   REPORT_COUNT (6) */
	0x75, 0x08, /*   REPORT_SIZE (8) */
	0x15, 0x00, /*   LOGICAL_MINIMUM (0) */
	0x25, 0x65, /*   LOGICAL_MAXIMUM (101) */
	0x05, 0x07, /*   USAGE_PAGE (Keyboard) */
	0x19, 0x00, /*   USAGE_MINIMUM (0) */
	0x29, 0x65, /*   USAGE_MAXIMUM (101) */
	0x81, 0x00, /*   INPUT (Data,Ary,Abs) */
	0xC0, /* END_COLLECTION */
}
