package image

import (
	"fmt"

	ecat "github.com/samsamfire/goecat"
)

type ViolationKind uint8

const (
	ViolationBitOffset   ViolationKind = 1
	ViolationFirstOffset ViolationKind = 2
	ViolationOffsetJump  ViolationKind = 3
	ViolationImageSize   ViolationKind = 4
)

var violationKindMap = map[ViolationKind]string{
	ViolationBitOffset:   "BIT OFFSET",
	ViolationFirstOffset: "FIRST OFFSET",
	ViolationOffsetJump:  "OFFSET JUMP",
	ViolationImageSize:   "IMAGE SIZE",
}

func (k ViolationKind) String() string {
	str, ok := violationKindMap[k]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

func (k ViolationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// A broken packing rule, Position is the entry position or -1
// for rules about the whole image
type Violation struct {
	Kind     ViolationKind `yaml:"kind"`
	Position int           `yaml:"position"`
	Message  string        `yaml:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%v] %v", v.Kind, v.Message)
}

// Check the packing of registered entries, expecting 8 bit entries
// registered outputs first in a single domain.
func Validate(offsets []ecat.Offset, imageSize int) []Violation {
	violations := make([]Violation, 0)
	for i, offset := range offsets {
		if offset.Bit != 0 {
			violations = append(violations, Violation{
				Kind:     ViolationBitOffset,
				Position: i,
				Message:  fmt.Sprintf("non-zero bit position %v at %v", offset.Bit, i),
			})
		}
		if i == 0 {
			if offset.Byte != 0 {
				violations = append(violations, Violation{
					Kind:     ViolationFirstOffset,
					Position: i,
					Message:  fmt.Sprintf("first offset is %v, expected 0", offset.Byte),
				})
			}
			continue
		}
		previous := offsets[i-1].Byte
		if offset.Byte == previous || offset.Byte == previous+1 {
			continue
		}
		// Packed layout
		if offset.Byte != uint32(i) {
			violations = append(violations, Violation{
				Kind:     ViolationOffsetJump,
				Position: i,
				Message:  fmt.Sprintf("unexpected offset jump at %v (got %v)", i, offset.Byte),
			})
		}
	}
	if imageSize != len(offsets) {
		violations = append(violations, Violation{
			Kind:     ViolationImageSize,
			Position: -1,
			Message:  fmt.Sprintf("image size %v != total entries %v", imageSize, len(offsets)),
		})
	}
	return violations
}
