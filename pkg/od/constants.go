package od

// Data types
const (
	BOOLEAN        uint8 = 0x01
	INTEGER8       uint8 = 0x02
	INTEGER16      uint8 = 0x03
	INTEGER32      uint8 = 0x04
	UNSIGNED8      uint8 = 0x05
	UNSIGNED16     uint8 = 0x06
	UNSIGNED32     uint8 = 0x07
	VISIBLE_STRING uint8 = 0x09
	OCTET_STRING   uint8 = 0x0A
	INTEGER64      uint8 = 0x15
	UNSIGNED64     uint8 = 0x1B
)

// Reserved dictionary objects
const (
	EntryDeviceName       uint16 = 0x1008
	EntryHardwareVersion  uint16 = 0x1009
	EntrySoftwareVersion  uint16 = 0x100A
	EntryIdentity         uint16 = 0x1018
	EntryRxPdoMappingBase uint16 = 0x1600
	EntryTxPdoMappingBase uint16 = 0x1A00
	EntrySyncManagerType  uint16 = 0x1C00
	EntryRxPdoAssign      uint16 = 0x1C12 // Output direction (SM2)
	EntryTxPdoAssign      uint16 = 0x1C13 // Input direction (SM3)
)

const (
	MaxAssignedPdos = 16
	MappingWordSize = 4
)
