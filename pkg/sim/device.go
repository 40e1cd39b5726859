// Package sim is an in-memory bus runtime used for testing.
//
// A [Master] holds one or more simulated slaves described by a [Device]
// (identity, object dictionary and timing behaviour). It implements the
// runtime interfaces of the root package : mailbox requests complete
// after a configurable number of exchange cycles, AL states progress
// with the cycle count and registered entries are laid out in the
// domain per sync manager, the way an EtherCAT master does it.
package sim

import (
	"fmt"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/od"
)

const (
	DefaultCyclesToPreop  = 3
	DefaultCyclesToOp     = 4
	DefaultRequestLatency = 1
)

type objectKey struct {
	index    uint16
	subindex uint8
}

func (k objectKey) String() string {
	return fmt.Sprintf("x%04x:x%02x", k.index, k.subindex)
}

// Device describes a simulated slave
type Device struct {
	Identity ecat.SlaveIdentity
	Name     string
	// Number of exchange cycles before the slave reaches PREOP, negative for never
	CyclesToPreop int
	// Number of cycles after activation before the slave reaches OP, negative for never
	CyclesToOp int
	// Number of cycles for a mailbox request to complete
	RequestLatency int
	// Refuse any sync manager configuration
	RejectPdos bool

	objects      map[objectKey][]byte
	unresponsive map[objectKey]bool
	failing      map[objectKey]bool
}

func NewDevice(id ecat.SlaveIdentity) *Device {
	return &Device{
		Identity:       id,
		CyclesToPreop:  DefaultCyclesToPreop,
		CyclesToOp:     DefaultCyclesToOp,
		RequestLatency: DefaultRequestLatency,
		objects:        make(map[objectKey][]byte),
		unresponsive:   make(map[objectKey]bool),
		failing:        make(map[objectKey]bool),
	}
}

// Set the raw value of a dictionary object
func (d *Device) Set(index uint16, subindex uint8, data []byte) {
	value := make([]byte, len(data))
	copy(value, data)
	d.objects[objectKey{index, subindex}] = value
}

// Get the raw value of a dictionary object
func (d *Device) Object(index uint16, subindex uint8) ([]byte, bool) {
	value, ok := d.objects[objectKey{index, subindex}]
	return value, ok
}

// Requests for this object never complete
func (d *Device) SetUnresponsive(index uint16, subindex uint8) {
	d.unresponsive[objectKey{index, subindex}] = true
}

// Requests for this object complete with an error
func (d *Device) SetFailing(index uint16, subindex uint8) {
	d.failing[objectKey{index, subindex}] = true
}

// Add a PDO to an assignment object (0x1C12 or 0x1C13) and write its
// mapping object. Counts are stored as UNSIGNED8 and PDO indexes as UNSIGNED16.
func (d *Device) AddPdo(assignIndex uint16, pdo ecat.PdoInfo) {
	count := uint8(0)
	if raw, ok := d.Object(assignIndex, 0); ok && len(raw) > 0 {
		count = raw[0]
	}
	count++
	d.Set(assignIndex, 0, []byte{count})
	d.Set(assignIndex, count, []byte{byte(pdo.Index), byte(pdo.Index >> 8)})
	d.Set(pdo.Index, 0, []byte{uint8(len(pdo.Entries))})
	for i, entry := range pdo.Entries {
		d.Set(pdo.Index, uint8(i+1), od.EncodeMappingWord(entry))
	}
}

func (d *Device) matches(id ecat.SlaveIdentity) bool {
	return d.Identity.Alias == id.Alias &&
		d.Identity.Position == id.Position &&
		d.Identity.VendorId == id.VendorId &&
		d.Identity.ProductCode == id.ProductCode
}
