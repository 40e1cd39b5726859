// Package report renders a resolved process data layout as YAML,
// i.e. the table of sync managers, registered entries with their real
// offsets, resolved fields and packing violations.
package report

import (
	"encoding/hex"
	"fmt"
	"io"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/image"
	"github.com/samsamfire/goecat/pkg/pdo"
	"gopkg.in/yaml.v3"
)

type SlaveOutput struct {
	Alias       uint16 `yaml:"alias"`
	Position    uint16 `yaml:"position"`
	VendorId    string `yaml:"vendor_id"`
	ProductCode string `yaml:"product_code"`
}

type SyncOutput struct {
	Index     uint8    `yaml:"index"`
	Direction string   `yaml:"direction"`
	Watchdog  string   `yaml:"watchdog"`
	Pdos      []string `yaml:"pdos,flow,omitempty"`
}

type EntryOutput struct {
	Position  int    `yaml:"position"`
	Direction string `yaml:"direction"`
	Object    string `yaml:"object"`
	BitLength uint8  `yaml:"bit_length"`
	Byte      uint32 `yaml:"byte"`
	Bit       uint8  `yaml:"bit"`
}

// Raw content of the input region, offsets are domain offsets
type RawOutput struct {
	Start uint32 `yaml:"start"`
	End   uint32 `yaml:"end"`
	Dump  string `yaml:"dump"`
}

type Report struct {
	Slave         SlaveOutput           `yaml:"slave"`
	ImageSize     int                   `yaml:"image_size"`
	OutputEntries int                   `yaml:"output_entries"`
	InputEntries  int                   `yaml:"input_entries"`
	InputBase     *uint32               `yaml:"input_base,omitempty"`
	Syncs         []SyncOutput          `yaml:"sync_managers"`
	Entries       []EntryOutput         `yaml:"entries"`
	Fields        []image.ResolvedField `yaml:"fields,omitempty"`
	Violations    []image.Violation     `yaml:"violations,omitempty"`
	Raw           *RawOutput            `yaml:"raw,omitempty"`
}

func hex16(value uint16) string {
	return fmt.Sprintf("0x%04X", value)
}

func hex32(value uint32) string {
	return fmt.Sprintf("0x%08X", value)
}

// Build a report of a registered layout
func Build(layout *pdo.Layout, imageSize int, fields []image.ResolvedField) *Report {
	r := &Report{
		Slave: SlaveOutput{
			Alias:       layout.Identity.Alias,
			Position:    layout.Identity.Position,
			VendorId:    hex32(layout.Identity.VendorId),
			ProductCode: hex32(layout.Identity.ProductCode),
		},
		ImageSize:     imageSize,
		OutputEntries: layout.OutputEntries(),
		InputEntries:  layout.InputEntries(),
		Fields:        fields,
		Violations:    image.Validate(layout.Offsets, imageSize),
	}
	if base, ok := image.InputBase(layout.Offsets, layout.OutputEntries()); ok {
		r.InputBase = &base
	}
	for _, sync := range layout.Syncs {
		if sync.Index == ecat.SyncEnd {
			break
		}
		output := SyncOutput{Index: sync.Index, Direction: sync.Direction.String(), Watchdog: sync.Watchdog.String()}
		for _, p := range sync.Pdos {
			output.Pdos = append(output.Pdos, hex16(p.Index))
		}
		r.Syncs = append(r.Syncs, output)
	}
	for i, entry := range layout.Entries {
		direction := ecat.DirInput
		if i < layout.OutputEntries() {
			direction = ecat.DirOutput
		}
		output := EntryOutput{
			Position:  i,
			Direction: direction.String(),
			Object:    fmt.Sprintf("%s:%02X", hex16(entry.Index), entry.Subindex),
			BitLength: entry.BitLength,
		}
		if i < len(layout.Offsets) {
			output.Byte = layout.Offsets[i].Byte
			output.Bit = layout.Offsets[i].Bit
		}
		r.Entries = append(r.Entries, output)
	}
	return r
}

// Attach a hex and ASCII dump of the input region of layout, read
// from view. Nothing is attached when the region is not inside of view.
func (r *Report) SetRaw(layout *pdo.Layout, view []byte) {
	start, end, ok := layout.InputRegion()
	if !ok || uint64(end) > uint64(len(view)) {
		r.Raw = nil
		return
	}
	r.Raw = &RawOutput{Start: start, End: end, Dump: hex.Dump(view[start:end])}
}

// True when no packing rule is broken
func (r *Report) Passed() bool {
	return len(r.Violations) == 0
}

func (r *Report) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

func (r *Report) Write(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}
