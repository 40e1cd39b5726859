package ecat

import "fmt"

// Sync manager direction, seen from the master
type Direction uint8

const (
	DirInvalid Direction = 0
	DirOutput  Direction = 1
	DirInput   Direction = 2
)

func (d Direction) String() string {
	switch d {
	case DirOutput:
		return "output"
	case DirInput:
		return "input"
	default:
		return "invalid"
	}
}

type WatchdogMode uint8

const (
	WatchdogDefault WatchdogMode = 0
	WatchdogEnable  WatchdogMode = 1
	WatchdogDisable WatchdogMode = 2
)

func (w WatchdogMode) String() string {
	switch w {
	case WatchdogEnable:
		return "enable"
	case WatchdogDisable:
		return "disable"
	default:
		return "default"
	}
}

// Index of the sync manager that terminates a sync list
const SyncEnd uint8 = 0xFF

// A single mapped object inside a PDO
type PdoEntryInfo struct {
	Index     uint16
	Subindex  uint8
	BitLength uint8
}

func (e PdoEntryInfo) String() string {
	return fmt.Sprintf("x%04x:x%02x (%d bits)", e.Index, e.Subindex, e.BitLength)
}

// A PDO and its mapped entries, in mapping order
type PdoInfo struct {
	Index   uint16
	Entries []PdoEntryInfo
}

// Sync manager configuration
type SyncInfo struct {
	Index     uint8
	Direction Direction
	Pdos      []PdoInfo
	Watchdog  WatchdogMode
}

// Entry to be registered inside of a domain
type PdoEntryRegistration struct {
	Alias       uint16
	Position    uint16
	VendorId    uint32
	ProductCode uint32
	Index       uint16
	Subindex    uint8
}

// Position of a registered entry inside of the process image
type Offset struct {
	Byte uint32
	Bit  uint8
}
