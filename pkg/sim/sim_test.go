package sim

import (
	"errors"
	"testing"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/od"
	"github.com/stretchr/testify/assert"
)

const TEST_DEVICE = `
[DeviceInfo]
VendorNumber=0x99
ProductNumber=0x42
ProductName=Test device

[Simulation]
Position=3
CyclesToPreop=0
CyclesToOp=-1
RequestLatency=2
Unresponsive=1A00sub0
Failing=1008

[1008]
DataType=0x0009
DefaultValue=Test device

[1A00sub0]
DataType=0x0005
DefaultValue=1
`

var TEST_SYNCS = []ecat.SyncInfo{
	{Index: 0, Direction: ecat.DirOutput, Watchdog: ecat.WatchdogDisable},
	{Index: 1, Direction: ecat.DirInput, Watchdog: ecat.WatchdogDisable},
	{Index: 2, Direction: ecat.DirOutput, Watchdog: ecat.WatchdogEnable, Pdos: []ecat.PdoInfo{
		{Index: 0x1600, Entries: []ecat.PdoEntryInfo{{Index: 0x7000, Subindex: 1, BitLength: 8}, {Index: 0x7000, Subindex: 2, BitLength: 8}}},
	}},
	{Index: 3, Direction: ecat.DirInput, Watchdog: ecat.WatchdogDisable, Pdos: []ecat.PdoInfo{
		{Index: 0x1A00, Entries: []ecat.PdoEntryInfo{{Index: 0x6000, Subindex: 1, BitLength: 8}, {Index: 0x6000, Subindex: 2, BitLength: 8}, {Index: 0x6000, Subindex: 3, BitLength: 8}}},
	}},
	{Index: ecat.SyncEnd},
}

func registrations(id ecat.SlaveIdentity, entries ...[2]uint16) []ecat.PdoEntryRegistration {
	regs := make([]ecat.PdoEntryRegistration, 0, len(entries))
	for _, e := range entries {
		regs = append(regs, ecat.PdoEntryRegistration{
			Alias:       id.Alias,
			Position:    id.Position,
			VendorId:    id.VendorId,
			ProductCode: id.ProductCode,
			Index:       e[0],
			Subindex:    uint8(e[1]),
		})
	}
	return regs
}

func TestParseDevice(t *testing.T) {
	t.Run("default device", func(t *testing.T) {
		device := Default()
		assert.EqualValues(t, 2, device.Identity.VendorId)
		assert.EqualValues(t, 0x101, device.Identity.ProductCode)
		assert.Equal(t, "Generic IO 2/3", device.Name)
		raw, ok := device.Object(0x1A00, 3)
		assert.True(t, ok)
		assert.Equal(t, od.EncodeMappingWord(ecat.PdoEntryInfo{Index: 0x6000, Subindex: 3, BitLength: 8}), raw)
		raw, ok = device.Object(0x1C12, 1)
		assert.True(t, ok)
		assert.Equal(t, []byte{0x00, 0x16}, raw)
	})
	t.Run("simulation section", func(t *testing.T) {
		device, err := ParseDevice([]byte(TEST_DEVICE))
		assert.Nil(t, err)
		assert.EqualValues(t, 3, device.Identity.Position)
		assert.EqualValues(t, 0x99, device.Identity.VendorId)
		assert.Equal(t, 0, device.CyclesToPreop)
		assert.Equal(t, -1, device.CyclesToOp)
		assert.Equal(t, 2, device.RequestLatency)
		assert.True(t, device.unresponsive[objectKey{0x1A00, 0}])
		assert.True(t, device.failing[objectKey{0x1008, 0}])
	})
	t.Run("invalid object name", func(t *testing.T) {
		_, err := ParseDevice([]byte("[Simulation]\nFailing=zz"))
		assert.NotNil(t, err)
	})
	t.Run("invalid value", func(t *testing.T) {
		_, err := ParseDevice([]byte("[2000]\nDataType=0x0005\nDefaultValue=300"))
		assert.NotNil(t, err)
	})
}

func TestAddPdo(t *testing.T) {
	device := NewDevice(ecat.SlaveIdentity{})
	device.AddPdo(0x1C13, ecat.PdoInfo{Index: 0x1A00, Entries: []ecat.PdoEntryInfo{{Index: 0x6000, Subindex: 1, BitLength: 16}}})
	device.AddPdo(0x1C13, ecat.PdoInfo{Index: 0x1A01, Entries: []ecat.PdoEntryInfo{{Index: 0x6010, Subindex: 1, BitLength: 8}}})
	raw, _ := device.Object(0x1C13, 0)
	assert.Equal(t, []byte{2}, raw)
	raw, _ = device.Object(0x1C13, 2)
	assert.Equal(t, []byte{0x01, 0x1A}, raw)
	raw, _ = device.Object(0x1A01, 1)
	assert.Equal(t, []byte{0x10, 0x60, 0x01, 0x08}, raw)
}

func TestSlaveStates(t *testing.T) {
	device := Default()
	m := NewMaster(device)
	config, err := m.SlaveConfig(device.Identity)
	assert.Nil(t, err)
	assert.Equal(t, ecat.AlStateInit, config.State().AlState)
	for range DefaultCyclesToPreop {
		assert.Nil(t, m.Receive())
	}
	assert.Equal(t, ecat.AlStatePreop, config.State().AlState)
	assert.Equal(t, ecat.AlStatePreop, m.State().AlStates)

	t.Run("unknown slave never comes online", func(t *testing.T) {
		other, err := m.SlaveConfig(ecat.SlaveIdentity{Position: 7})
		assert.Nil(t, err)
		assert.False(t, other.State().Online)
	})
	t.Run("same identity returns same config", func(t *testing.T) {
		again, err := m.SlaveConfig(device.Identity)
		assert.Nil(t, err)
		assert.Same(t, config, again)
	})
}

func TestSdoRequest(t *testing.T) {
	device, err := ParseDevice([]byte(TEST_DEVICE))
	assert.Nil(t, err)
	m := NewMaster(device)
	config, _ := m.SlaveConfig(device.Identity)

	t.Run("invalid size", func(t *testing.T) {
		_, err := config.CreateSdoRequest(0x1008, 0, 0)
		assert.Equal(t, ErrInvalidSize, err)
	})
	t.Run("completes after latency", func(t *testing.T) {
		device.Set(0x2000, 0, []byte{0x12, 0x34})
		req, err := config.CreateSdoRequest(0x2000, 0, 2)
		assert.Nil(t, err)
		assert.Nil(t, req.Read())
		assert.Equal(t, ecat.RequestBusy, req.State())
		assert.Nil(t, m.Receive())
		assert.Equal(t, ecat.RequestBusy, req.State())
		assert.Nil(t, m.Receive())
		assert.Equal(t, ecat.RequestSuccess, req.State())
		assert.Equal(t, []byte{0x12, 0x34}, req.Data())
	})
	t.Run("failing object", func(t *testing.T) {
		req, _ := config.CreateSdoRequest(0x1008, 0, 16)
		assert.Nil(t, req.Read())
		m.Receive()
		m.Receive()
		assert.Equal(t, ecat.RequestError, req.State())
	})
	t.Run("missing object", func(t *testing.T) {
		req, _ := config.CreateSdoRequest(0x3000, 0, 1)
		assert.Nil(t, req.Read())
		m.Receive()
		m.Receive()
		assert.Equal(t, ecat.RequestError, req.State())
	})
	t.Run("unresponsive object", func(t *testing.T) {
		req, _ := config.CreateSdoRequest(0x1A00, 0, 1)
		assert.Nil(t, req.Read())
		for range 50 {
			m.Receive()
		}
		assert.Equal(t, ecat.RequestBusy, req.State())
	})
}

func TestDomain(t *testing.T) {
	device := Default()
	device.CyclesToPreop = 0
	m := NewMaster(device)
	config, _ := m.SlaveConfig(device.Identity)
	domain, err := m.CreateDomain()
	assert.Nil(t, err)
	assert.Nil(t, config.ConfigurePdos(TEST_SYNCS))

	t.Run("unmapped entry is rejected", func(t *testing.T) {
		_, err := domain.RegisterPdoEntryList(registrations(device.Identity, [2]uint16{0x6000, 9}))
		assert.True(t, errors.Is(err, ErrEntryNotMapped))
		assert.Equal(t, 0, domain.Size())
	})
	t.Run("unknown slave is rejected", func(t *testing.T) {
		_, err := domain.RegisterPdoEntryList(registrations(ecat.SlaveIdentity{Position: 9}, [2]uint16{0x6000, 1}))
		assert.ErrorIs(t, err, ecat.ErrUnknownSlave)
	})

	offsets, err := domain.RegisterPdoEntryList(registrations(device.Identity,
		[2]uint16{0x7000, 1}, [2]uint16{0x7000, 2},
		[2]uint16{0x6000, 1}, [2]uint16{0x6000, 2}, [2]uint16{0x6000, 3},
	))
	assert.Nil(t, err)
	assert.Len(t, offsets, 5)
	for i, offset := range offsets {
		assert.EqualValues(t, i, offset.Byte)
		assert.EqualValues(t, 0, offset.Bit)
	}
	assert.Equal(t, 5, domain.Size())
	assert.Nil(t, domain.Data())

	assert.Nil(t, m.Activate())
	assert.Equal(t, ecat.ErrAlreadyActive, m.Activate())
	assert.Len(t, domain.Data(), 5)

	// INIT -> PREOP -> SAFEOP
	m.Receive()
	m.Receive()
	assert.Equal(t, ecat.AlStateSafeop, config.State().AlState)
	assert.Equal(t, []byte{0, 0, 0x11, 0x22, 0x33}, domain.Data())

	m.Write(device, 0x6000, 2, []byte{0xAB})
	for range DefaultCyclesToOp {
		m.Receive()
	}
	assert.True(t, config.State().Operational)
	assert.EqualValues(t, 0xAB, domain.Data()[3])

	t.Run("deactivate drops configuration", func(t *testing.T) {
		assert.Nil(t, m.Deactivate())
		assert.Nil(t, domain.Data())
		assert.Equal(t, ecat.AlStatePreop, config.State().AlState)
		assert.False(t, m.Active())
	})
	t.Run("activation error", func(t *testing.T) {
		injected := errors.New("no link")
		m.SetActivateError(injected)
		assert.Equal(t, injected, m.Activate())
		m.SetActivateError(nil)
	})
	t.Run("release", func(t *testing.T) {
		assert.Nil(t, m.Release())
		assert.Equal(t, ecat.ErrReleased, m.Receive())
		_, err := m.CreateDomain()
		assert.Equal(t, ecat.ErrReleased, err)
	})
}

func TestRejectPdos(t *testing.T) {
	device := Default()
	device.RejectPdos = true
	m := NewMaster(device)
	config, _ := m.SlaveConfig(device.Identity)
	assert.Equal(t, ErrPdosRejected, config.ConfigurePdos(TEST_SYNCS))

	device.RejectPdos = false
	err := config.ConfigurePdos([]ecat.SyncInfo{{Index: 2, Direction: ecat.DirInvalid}})
	assert.ErrorIs(t, err, ErrPdosRejected)
}

func TestWriteBits(t *testing.T) {
	data := make([]byte, 2)
	writeBits(data, ecat.Offset{Byte: 0, Bit: 4}, 8, []byte{0xFF})
	assert.Equal(t, []byte{0xF0, 0x0F}, data)
	writeBits(data, ecat.Offset{Byte: 0, Bit: 4}, 4, []byte{0x00})
	assert.Equal(t, []byte{0x00, 0x0F}, data)
}
