package sim

import _ "embed"

//go:embed base.dev
var rawDefaultDevice []byte

// Return embeded default device : 2 output bytes in 0x1600 and
// 3 input bytes in 0x1A00, at position 0
func Default() *Device {
	device, err := ParseDevice(rawDefaultDevice)
	if err != nil {
		panic(err)
	}
	return device
}
