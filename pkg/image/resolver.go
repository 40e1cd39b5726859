// Package image maps application fields onto the process image.
//
// Field offsets are logical : they count registered entries from
// the start of the input direction, not bytes from the start of the
// domain. Every byte of a field is resolved on its own through the
// offset the runtime returned for the matching entry, so that padding
// inserted by the runtime never shifts a value.
package image

import (
	"errors"
	"fmt"

	ecat "github.com/samsamfire/goecat"
)

// Value returned for fields that cannot be read
const InvalidValue uint32 = 0xFFFFFFFF

var (
	ErrFieldInvalid = errors.New("field is not resolved")
	ErrOutOfImage   = errors.New("field is outside of the process image")
)

// A named application field, offset is relative to the input direction
type FieldDescriptor struct {
	Name   string `yaml:"name"`
	Offset int    `yaml:"offset"`
	Width  int    `yaml:"width"`
}

// A field with the real byte offset of each of its bytes
type ResolvedField struct {
	FieldDescriptor `yaml:",inline"`
	Valid           bool     `yaml:"valid"`
	Offsets         []uint32 `yaml:"offsets,flow,omitempty"`
}

func validWidth(width int) bool {
	return width == 1 || width == 2 || width == 4
}

// Offset of the first input entry, i.e. the entry following the last output entry
func InputBase(offsets []ecat.Offset, outputEntries int) (uint32, bool) {
	if outputEntries < 0 || outputEntries >= len(offsets) {
		return 0, false
	}
	return offsets[outputEntries].Byte, true
}

// Resolve fields against the offsets returned by registration.
// offsets holds every registered entry, outputs first.
// Fields that do not fit inside the input entries are marked invalid.
func Resolve(offsets []ecat.Offset, outputEntries int, fields []FieldDescriptor) []ResolvedField {
	inputEntries := len(offsets) - outputEntries
	if outputEntries < 0 || inputEntries < 0 {
		inputEntries = 0
	}
	resolved := make([]ResolvedField, 0, len(fields))
	for _, field := range fields {
		rf := ResolvedField{FieldDescriptor: field}
		if field.Offset >= 0 && validWidth(field.Width) && field.Offset+field.Width <= inputEntries {
			rf.Valid = true
			rf.Offsets = make([]uint32, field.Width)
			for k := range field.Width {
				rf.Offsets[k] = offsets[outputEntries+field.Offset+k].Byte
			}
		}
		resolved = append(resolved, rf)
	}
	return resolved
}

// Read a field from a view of the process image, little-endian.
// view must be fetched from the runtime for every read.
func ReadValue(field ResolvedField, view []byte) (uint32, error) {
	if !field.Valid || len(field.Offsets) != field.Width || !validWidth(field.Width) {
		return InvalidValue, fmt.Errorf("%v : %w", field.Name, ErrFieldInvalid)
	}
	var value uint32
	for k := len(field.Offsets) - 1; k >= 0; k-- {
		offset := field.Offsets[k]
		if uint64(offset) >= uint64(len(view)) {
			return InvalidValue, fmt.Errorf("%v : byte %v at %v : %w", field.Name, k, offset, ErrOutOfImage)
		}
		value = value<<8 | uint32(view[offset])
	}
	return value, nil
}
