package od

import (
	"testing"

	ecat "github.com/samsamfire/goecat"
	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {

	data, err := EncodeFromString("0x10", UNSIGNED8)
	assert.Nil(t, err)
	assert.EqualValues(t, []byte{0x10}, data)

	data, _ = EncodeFromString("0x1A00", UNSIGNED16)
	assert.EqualValues(t, []byte{0x00, 0x1A}, data)

	data, _ = EncodeFromString("0x60000108", UNSIGNED32)
	assert.EqualValues(t, []byte{0x08, 0x01, 0x00, 0x60}, data)

	data, _ = EncodeFromString("-20", INTEGER16)
	assert.EqualValues(t, []byte{0xec, 0xff}, data)

	data, _ = EncodeFromString("", UNSIGNED16)
	assert.EqualValues(t, []byte{0, 0}, data)

	data, _ = EncodeFromString("Device", VISIBLE_STRING)
	assert.EqualValues(t, []byte("Device"), data)

	_, err = EncodeFromString("90000", UNSIGNED8)
	assert.NotNil(t, err)

	_, err = EncodeFromString("1", 0x08)
	assert.Equal(t, ErrTypeMismatch, err)
}

func TestDecodeCount(t *testing.T) {
	for _, raw := range [][]byte{
		{0x03},
		{0x03, 0x00},
		{0x03, 0x00, 0x00, 0x00},
		{0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	} {
		count, err := DecodeCount(raw)
		assert.Nil(t, err)
		assert.EqualValues(t, 3, count)
	}
	_, err := DecodeCount([]byte{0x03, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrUnexpectedWidth)
	_, err = DecodeCount(nil)
	assert.ErrorIs(t, err, ErrUnexpectedWidth)
}

func TestDecodeUnsigned(t *testing.T) {
	value, err := DecodeUnsigned([]byte{0x34, 0x12, 0xFF, 0xFF}, 16)
	assert.Nil(t, err)
	assert.EqualValues(t, 0x1234, value)

	value, err = DecodeUnsigned([]byte{0x78, 0x56, 0x34, 0x12, 0, 0, 0, 0}, 32)
	assert.Nil(t, err)
	assert.EqualValues(t, 0x12345678, value)

	_, err = DecodeUnsigned([]byte{0x01}, 16)
	assert.ErrorIs(t, err, ErrUnexpectedWidth)

	_, err = DecodeUnsigned([]byte{0x01, 0x02}, 12)
	assert.ErrorIs(t, err, ErrUnexpectedWidth)
}

func TestDecodeUint16Lenient(t *testing.T) {
	value, err := DecodeUint16Lenient([]byte{0x00, 0x1A})
	assert.Nil(t, err)
	assert.EqualValues(t, 0x1A00, value)
	value, err = DecodeUint16Lenient([]byte{0x01, 0x16, 0x00, 0x00})
	assert.Nil(t, err)
	assert.EqualValues(t, 0x1601, value)
	_, err = DecodeUint16Lenient([]byte{0x01})
	assert.ErrorIs(t, err, ErrUnexpectedWidth)
}

func TestMappingWord(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		entry := ecat.PdoEntryInfo{Index: 0x6010, Subindex: 3, BitLength: 8}
		raw := EncodeMappingWord(entry)
		assert.Len(t, raw, 4)
		decoded, err := DecodeMappingWord(raw)
		assert.Nil(t, err)
		assert.Equal(t, entry, decoded)
	})
	t.Run("field positions", func(t *testing.T) {
		decoded, err := DecodeMappingWord([]byte{0x10, 0x60, 0x03, 0x08})
		assert.Nil(t, err)
		assert.EqualValues(t, 0x6010, decoded.Index)
		assert.EqualValues(t, 3, decoded.Subindex)
		assert.EqualValues(t, 8, decoded.BitLength)
	})
	t.Run("strict width", func(t *testing.T) {
		for _, raw := range [][]byte{{0x10}, {0x10, 0x60}, {0x10, 0x60, 0x03, 0x08, 0, 0, 0, 0}} {
			_, err := DecodeMappingWord(raw)
			assert.ErrorIs(t, err, ErrUnexpectedWidth)
		}
	})
}
