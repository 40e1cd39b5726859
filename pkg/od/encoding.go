package od

import (
	"encoding/binary"
	"errors"
	"strconv"

	ecat "github.com/samsamfire/goecat"
)

var (
	ErrUnexpectedWidth = errors.New("unexpected data width")
	ErrTypeMismatch    = errors.New("data type mismatch")
)

// EncodeFromString value from a device description into bytes respecting datatype
func EncodeFromString(value string, datatype uint8) ([]byte, error) {

	var data []byte
	var err error
	var parsedInt int64
	var parsedUint uint64

	if value == "" {
		// Treat empty string as a 0 value
		value = "0"
	}

	switch datatype {
	case BOOLEAN, UNSIGNED8:
		parsedUint, err = strconv.ParseUint(value, 0, 8)
		data = []byte{byte(parsedUint)}

	case INTEGER8:
		parsedInt, err = strconv.ParseInt(value, 0, 8)
		data = []byte{byte(parsedInt)}

	case UNSIGNED16:
		parsedUint, err = strconv.ParseUint(value, 0, 16)
		data = make([]byte, 2)
		binary.LittleEndian.PutUint16(data, uint16(parsedUint))

	case INTEGER16:
		parsedInt, err = strconv.ParseInt(value, 0, 16)
		data = make([]byte, 2)
		binary.LittleEndian.PutUint16(data, uint16(parsedInt))

	case UNSIGNED32:
		parsedUint, err = strconv.ParseUint(value, 0, 32)
		data = make([]byte, 4)
		binary.LittleEndian.PutUint32(data, uint32(parsedUint))

	case INTEGER32:
		parsedInt, err = strconv.ParseInt(value, 0, 32)
		data = make([]byte, 4)
		binary.LittleEndian.PutUint32(data, uint32(parsedInt))

	case UNSIGNED64:
		parsedUint, err = strconv.ParseUint(value, 0, 64)
		data = make([]byte, 8)
		binary.LittleEndian.PutUint64(data, parsedUint)

	case INTEGER64:
		parsedInt, err = strconv.ParseInt(value, 0, 64)
		data = make([]byte, 8)
		binary.LittleEndian.PutUint64(data, uint64(parsedInt))

	case VISIBLE_STRING, OCTET_STRING:
		return []byte(value), nil

	default:
		return nil, ErrTypeMismatch

	}
	return data, err
}

// Encode a mapping entry into its 4 byte dictionary representation
// bits 0..15 index, bits 16..23 subindex, bits 24..31 bit length
func EncodeMappingWord(entry ecat.PdoEntryInfo) []byte {
	raw := uint32(entry.Index) | uint32(entry.Subindex)<<16 | uint32(entry.BitLength)<<24
	data := make([]byte, MappingWordSize)
	binary.LittleEndian.PutUint32(data, raw)
	return data
}
