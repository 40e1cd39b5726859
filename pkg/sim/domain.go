package sim

import (
	"fmt"

	ecat "github.com/samsamfire/goecat"
	log "github.com/sirupsen/logrus"
)

// Image region reserved for one sync manager of one slave
type region struct {
	config *SlaveConfig
	sync   uint8
	base   uint32
	size   uint32
}

type registeredEntry struct {
	config *SlaveConfig
	key    objectKey
	loc    entryLocation
	offset ecat.Offset
}

// Simulated process data domain
type Domain struct {
	master  *Master
	regions []region
	entries []registeredEntry
	size    uint32
	data    []byte
}

// Register entries, the returned offsets are indexed like regs.
// Each sync manager gets a contiguous region the first time one
// of its entries is registered, regions are appended in that order.
func (d *Domain) RegisterPdoEntryList(regs []ecat.PdoEntryRegistration) ([]ecat.Offset, error) {
	m := d.master
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return nil, ecat.ErrReleased
	}
	if m.active {
		return nil, ecat.ErrAlreadyActive
	}
	regions := append([]region(nil), d.regions...)
	entries := append([]registeredEntry(nil), d.entries...)
	size := d.size
	offsets := make([]ecat.Offset, 0, len(regs))

	for i, reg := range regs {
		id := ecat.SlaveIdentity{Alias: reg.Alias, Position: reg.Position, VendorId: reg.VendorId, ProductCode: reg.ProductCode}
		config, ok := m.configs[id]
		if !ok {
			return nil, fmt.Errorf("registration %v : %w", i, ecat.ErrUnknownSlave)
		}
		key := objectKey{reg.Index, reg.Subindex}
		loc, ok := config.entries[key]
		if !ok {
			return nil, fmt.Errorf("registration %v (%v) : %w", i, key, ErrEntryNotMapped)
		}
		var base uint32
		found := false
		for _, r := range regions {
			if r.config == config && r.sync == loc.sync {
				base = r.base
				found = true
				break
			}
		}
		if !found {
			regionSize := (config.syncSize[loc.sync] + 7) / 8
			regions = append(regions, region{config: config, sync: loc.sync, base: size, size: regionSize})
			base = size
			size += regionSize
		}
		offset := ecat.Offset{Byte: base + loc.bitPos/8, Bit: uint8(loc.bitPos % 8)}
		entries = append(entries, registeredEntry{config: config, key: key, loc: loc, offset: offset})
		offsets = append(offsets, offset)
	}
	d.regions = regions
	d.entries = entries
	d.size = size
	log.Debugf("[SIM] registered %v entries, domain size %v bytes", len(regs), size)
	return offsets, nil
}

func (d *Domain) Process() error {
	d.master.mu.Lock()
	defer d.master.mu.Unlock()
	if d.master.released {
		return ecat.ErrReleased
	}
	if d.data == nil {
		return ecat.ErrNotActivated
	}
	return nil
}

func (d *Domain) Queue() error {
	d.master.mu.Lock()
	defer d.master.mu.Unlock()
	if d.master.released {
		return ecat.ErrReleased
	}
	if d.data == nil {
		return ecat.ErrNotActivated
	}
	return nil
}

// Borrowed view of the domain memory, nil until activation
func (d *Domain) Data() []byte {
	d.master.mu.Lock()
	defer d.master.mu.Unlock()
	return d.data
}

func (d *Domain) Size() int {
	d.master.mu.Lock()
	defer d.master.mu.Unlock()
	return int(d.size)
}

// Copy current input values of the slaves into the image
// Must be called with the master lock held
func (d *Domain) updateInputs() {
	if d.data == nil {
		return
	}
	for _, entry := range d.entries {
		if entry.loc.direction != ecat.DirInput {
			continue
		}
		s := d.master.slaveFor(entry.config.id)
		if s == nil || (s.alState != ecat.AlStateSafeop && s.alState != ecat.AlStateOp) {
			continue
		}
		value := s.device.objects[entry.key]
		writeBits(d.data, entry.offset, entry.loc.bitLength, value)
	}
}

// Write the low bitLength bits of value at offset
func writeBits(data []byte, offset ecat.Offset, bitLength uint8, value []byte) {
	for i := uint32(0); i < uint32(bitLength); i++ {
		bit := uint32(offset.Bit) + i
		pos := offset.Byte + bit/8
		if int(pos) >= len(data) {
			return
		}
		set := false
		if int(i/8) < len(value) {
			set = value[i/8]&(1<<(i%8)) != 0
		}
		if set {
			data[pos] |= 1 << (bit % 8)
		} else {
			data[pos] &^= 1 << (bit % 8)
		}
	}
}
