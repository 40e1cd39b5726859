package report

import (
	"bytes"
	"encoding/hex"
	"testing"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/image"
	"github.com/samsamfire/goecat/pkg/pdo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func createLayoutTest() *pdo.Layout {
	layout := pdo.Build(
		ecat.SlaveIdentity{Position: 1, VendorId: 2, ProductCode: 0x101},
		[]ecat.PdoInfo{{Index: 0x1600, Entries: []ecat.PdoEntryInfo{{Index: 0x7000, Subindex: 1, BitLength: 8}}}},
		[]ecat.PdoInfo{{Index: 0x1A00, Entries: []ecat.PdoEntryInfo{{Index: 0x6000, Subindex: 1, BitLength: 8}, {Index: 0x6000, Subindex: 2, BitLength: 8}}}},
	)
	layout.Offsets = []ecat.Offset{{Byte: 0}, {Byte: 1}, {Byte: 2}}
	return layout
}

func TestBuild(t *testing.T) {
	layout := createLayoutTest()
	fields := image.Resolve(layout.Offsets, layout.OutputEntries(), []image.FieldDescriptor{{Name: "status", Offset: 0, Width: 2}})
	r := Build(layout, 3, fields)

	assert.True(t, r.Passed())
	assert.Equal(t, "0x00000101", r.Slave.ProductCode)
	require.NotNil(t, r.InputBase)
	assert.EqualValues(t, 1, *r.InputBase)
	assert.Len(t, r.Syncs, 4)
	assert.Equal(t, []string{"0x1600"}, r.Syncs[2].Pdos)
	assert.Equal(t, "enable", r.Syncs[2].Watchdog)
	assert.Len(t, r.Entries, 3)
	assert.Equal(t, "output", r.Entries[0].Direction)
	assert.Equal(t, "input", r.Entries[2].Direction)
	assert.Equal(t, "0x6000:02", r.Entries[2].Object)
	assert.EqualValues(t, 2, r.Entries[2].Byte)

	t.Run("yaml output", func(t *testing.T) {
		raw, err := r.Marshal()
		require.Nil(t, err)
		decoded := map[string]any{}
		require.Nil(t, yaml.Unmarshal(raw, &decoded))
		assert.Equal(t, 3, decoded["image_size"])
		assert.Equal(t, 1, decoded["input_base"])
		assert.NotContains(t, decoded, "violations")
		fieldList := decoded["fields"].([]any)
		field := fieldList[0].(map[string]any)
		assert.Equal(t, "status", field["name"])
		assert.Equal(t, true, field["valid"])
		assert.Equal(t, []any{1, 2}, field["offsets"])
	})
	t.Run("violations", func(t *testing.T) {
		r := Build(layout, 8, nil)
		assert.False(t, r.Passed())
		buffer := &bytes.Buffer{}
		require.Nil(t, r.Write(buffer))
		assert.Contains(t, buffer.String(), "kind: IMAGE SIZE")
	})
	t.Run("unregistered layout", func(t *testing.T) {
		layout := pdo.Build(ecat.SlaveIdentity{}, nil, nil)
		r := Build(layout, 0, nil)
		assert.Nil(t, r.InputBase)
		assert.Empty(t, r.Entries)
	})
}

func TestRaw(t *testing.T) {
	layout := createLayoutTest()
	r := Build(layout, 3, nil)
	r.SetRaw(layout, []byte{0xAA, 0x11, 0x22})
	require.NotNil(t, r.Raw)
	assert.EqualValues(t, 1, r.Raw.Start)
	assert.EqualValues(t, 3, r.Raw.End)
	assert.Equal(t, hex.Dump([]byte{0x11, 0x22}), r.Raw.Dump)
	assert.Contains(t, r.Raw.Dump, "11 22")

	t.Run("yaml output", func(t *testing.T) {
		raw, err := r.Marshal()
		require.Nil(t, err)
		decoded := map[string]any{}
		require.Nil(t, yaml.Unmarshal(raw, &decoded))
		dump := decoded["raw"].(map[string]any)
		assert.Equal(t, 1, dump["start"])
		assert.Equal(t, r.Raw.Dump, dump["dump"])
	})
	t.Run("view too short", func(t *testing.T) {
		r.SetRaw(layout, []byte{0xAA})
		assert.Nil(t, r.Raw)
		r.SetRaw(layout, nil)
		assert.Nil(t, r.Raw)
	})
}
