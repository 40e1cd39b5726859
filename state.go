package ecat

import "strings"

// Application layer states
const (
	AlStateInit   uint8 = 0x01
	AlStatePreop  uint8 = 0x02
	AlStateBoot   uint8 = 0x03
	AlStateSafeop uint8 = 0x04
	AlStateOp     uint8 = 0x08
)

var alStateMap = map[uint8]string{
	AlStateInit:   "INIT",
	AlStatePreop:  "PREOP",
	AlStateBoot:   "BOOT",
	AlStateSafeop: "SAFEOP",
	AlStateOp:     "OP",
}

// Name of a single slave AL state
func AlStateString(state uint8) string {
	str, ok := alStateMap[state]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

// Mailbox communication is available in PREOP, SAFEOP and OP
func MailboxAvailable(state uint8) bool {
	return state == AlStatePreop || state == AlStateSafeop || state == AlStateOp
}

// Names of all states present in a master AL states bitmask
// bit0 INIT, bit1 PREOP, bit2 SAFEOP, bit3 OP
func AlStatesString(mask uint8) string {
	names := make([]string, 0, 4)
	if mask&(1<<0) != 0 {
		names = append(names, "INIT")
	}
	if mask&(1<<1) != 0 {
		names = append(names, "PREOP")
	}
	if mask&(1<<2) != 0 {
		names = append(names, "SAFEOP")
	}
	if mask&(1<<3) != 0 {
		names = append(names, "OP")
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}
