package pdo

import (
	"fmt"

	ecat "github.com/samsamfire/goecat"
	log "github.com/sirupsen/logrus"
)

// Layout is the process data layout of a single slave, built
// from the discovered output and input PDOs.
//
// Registrations and Entries are flat lists with every output entry
// strictly before every input entry, both in discovery order.
// Offsets is filled by [Layout.Register] and indexed the same way.
type Layout struct {
	Identity      ecat.SlaveIdentity
	Outputs       []ecat.PdoInfo
	Inputs        []ecat.PdoInfo
	Syncs         []ecat.SyncInfo
	Entries       []ecat.PdoEntryInfo
	Registrations []ecat.PdoEntryRegistration
	Offsets       []ecat.Offset
	outputEntries int
	inputEntries  int
}

// Build the sync manager configuration and the registration list
// for a slave. Nothing is sent to the runtime.
func Build(id ecat.SlaveIdentity, outputs []ecat.PdoInfo, inputs []ecat.PdoInfo) *Layout {
	layout := &Layout{Identity: id, Outputs: outputs, Inputs: inputs}
	layout.Syncs = []ecat.SyncInfo{
		{Index: SyncMailboxOut, Direction: ecat.DirOutput, Watchdog: ecat.WatchdogDisable},
		{Index: SyncMailboxIn, Direction: ecat.DirInput, Watchdog: ecat.WatchdogDisable},
		{Index: SyncOutputs, Direction: ecat.DirOutput, Pdos: outputs, Watchdog: ecat.WatchdogEnable},
		{Index: SyncInputs, Direction: ecat.DirInput, Pdos: inputs, Watchdog: ecat.WatchdogDisable},
		{Index: ecat.SyncEnd},
	}
	layout.outputEntries = layout.add(outputs)
	layout.inputEntries = layout.add(inputs)
	log.Debugf("[PDO] layout for slave %v : %v output entries, %v input entries",
		id.Position, layout.outputEntries, layout.inputEntries)
	return layout
}

func (layout *Layout) add(pdos []ecat.PdoInfo) int {
	count := 0
	for _, pdo := range pdos {
		for _, entry := range pdo.Entries {
			layout.Entries = append(layout.Entries, entry)
			layout.Registrations = append(layout.Registrations, ecat.PdoEntryRegistration{
				Alias:       layout.Identity.Alias,
				Position:    layout.Identity.Position,
				VendorId:    layout.Identity.VendorId,
				ProductCode: layout.Identity.ProductCode,
				Index:       entry.Index,
				Subindex:    entry.Subindex,
			})
			count++
		}
	}
	return count
}

// Number of registered output entries
func (layout *Layout) OutputEntries() int {
	return layout.outputEntries
}

// Number of registered input entries
func (layout *Layout) InputEntries() int {
	return layout.inputEntries
}

// Position of the first input entry inside of the registration list
func (layout *Layout) InputBaseIndex() int {
	return layout.outputEntries
}

// Send the sync manager configuration to the runtime
func (layout *Layout) Configure(slave ecat.SlaveConfig) error {
	if slave == nil {
		return ecat.ErrIllegalArgument
	}
	return slave.ConfigurePdos(layout.Syncs)
}

// Register every entry inside of domain and keep the resulting offsets
func (layout *Layout) Register(domain ecat.Domain) error {
	if domain == nil {
		return ecat.ErrIllegalArgument
	}
	offsets, err := domain.RegisterPdoEntryList(layout.Registrations)
	if err != nil {
		return err
	}
	if len(offsets) != len(layout.Registrations) {
		return fmt.Errorf("%w : got %v, expected %v", ErrOffsetCount, len(offsets), len(layout.Registrations))
	}
	layout.Offsets = offsets
	return nil
}

// Offsets of the input entries only
func (layout *Layout) InputOffsets() []ecat.Offset {
	if len(layout.Offsets) < layout.outputEntries {
		return nil
	}
	return layout.Offsets[layout.outputEntries:]
}

// Byte range [start, end) of the process image covered by the input
// entries. ok is false when there are no registered input entries.
func (layout *Layout) InputRegion() (start uint32, end uint32, ok bool) {
	inputs := layout.InputOffsets()
	if len(inputs) == 0 {
		return 0, 0, false
	}
	start = inputs[0].Byte
	for i, offset := range inputs {
		bits := uint32(offset.Bit) + uint32(layout.Entries[layout.outputEntries+i].BitLength)
		if offset.Byte < start {
			start = offset.Byte
		}
		if last := offset.Byte + (bits+7)/8; last > end {
			end = last
		}
	}
	return start, end, true
}
