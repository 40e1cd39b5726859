package od

import (
	"encoding/binary"
	"fmt"

	ecat "github.com/samsamfire/goecat"
)

// Check that the raw length is one of the widths a mailbox read can return
func validRawWidth(length int) bool {
	switch length {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// Decode an unsigned little-endian value of the given bit width.
// raw may be wider than needed (1, 2, 4 or 8 bytes), only the low
// bytes are used.
func DecodeUnsigned(raw []byte, bits int) (uint64, error) {
	if bits != 8 && bits != 16 && bits != 32 && bits != 64 {
		return 0, fmt.Errorf("%w : unsupported width %d bits", ErrUnexpectedWidth, bits)
	}
	needed := bits / 8
	if !validRawWidth(len(raw)) || len(raw) < needed {
		return 0, fmt.Errorf("%w : got %d bytes for %d bits", ErrUnexpectedWidth, len(raw), bits)
	}
	var value uint64
	for i := needed - 1; i >= 0; i-- {
		value = value<<8 | uint64(raw[i])
	}
	return value, nil
}

// Decode a count field (subindex 0 of an assignment or mapping object).
// Slaves have been seen answering with 1, 2, 4 or 8 bytes, all are accepted.
func DecodeCount(raw []byte) (uint8, error) {
	value, err := DecodeUnsigned(raw, 8)
	return uint8(value), err
}

// Decode a 16 bit value, 2, 4 or 8 raw bytes are accepted
func DecodeUint16Lenient(raw []byte) (uint16, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("%w : got %d bytes for 16 bits", ErrUnexpectedWidth, len(raw))
	}
	value, err := DecodeUnsigned(raw, 16)
	return uint16(value), err
}

// Decode a mapping word, exactly 4 bytes are required as the word
// packs three fields and any other width would corrupt all of them.
func DecodeMappingWord(raw []byte) (ecat.PdoEntryInfo, error) {
	if len(raw) != MappingWordSize {
		return ecat.PdoEntryInfo{}, fmt.Errorf("%w : mapping word is %d bytes, expected %d", ErrUnexpectedWidth, len(raw), MappingWordSize)
	}
	word := binary.LittleEndian.Uint32(raw)
	return ecat.PdoEntryInfo{
		Index:     uint16(word),
		Subindex:  uint8(word >> 16),
		BitLength: uint8(word >> 24),
	}, nil
}
