package sdo

import (
	"strings"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/od"
)

// Helper function for reading directly a uint8
func (c *SDOClient) ReadUint8(slave ecat.SlaveConfig, index uint16, subindex uint8) (uint8, error) {
	raw, err := c.Read(slave, index, subindex, 1)
	if err != nil {
		return 0, err
	}
	value, err := od.DecodeUnsigned(raw, 8)
	return uint8(value), err
}

// Helper function for reading directly a uint16
func (c *SDOClient) ReadUint16(slave ecat.SlaveConfig, index uint16, subindex uint8) (uint16, error) {
	raw, err := c.Read(slave, index, subindex, 2)
	if err != nil {
		return 0, err
	}
	value, err := od.DecodeUnsigned(raw, 16)
	return uint16(value), err
}

// Helper function for reading directly a uint32
func (c *SDOClient) ReadUint32(slave ecat.SlaveConfig, index uint16, subindex uint8) (uint32, error) {
	raw, err := c.Read(slave, index, subindex, 4)
	if err != nil {
		return 0, err
	}
	value, err := od.DecodeUnsigned(raw, 32)
	return uint32(value), err
}

// Helper function for reading a visible string of at most maxLength bytes
// Trailing NUL bytes are removed
func (c *SDOClient) ReadString(slave ecat.SlaveConfig, index uint16, subindex uint8, maxLength int) (string, error) {
	raw, err := c.Read(slave, index, subindex, maxLength)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}
