package config

import (
	"github.com/samsamfire/goecat/pkg/od"
)

// Maximum length of the manufacturer strings
const maxStringLength = 64

type Identity struct {
	VendorId       uint32
	ProductCode    uint32
	RevisionNumber uint32
	SerialNumber   uint32
}

type ManufacturerInformation struct {
	ManufacturerDeviceName      string
	ManufacturerHardwareVersion string
	ManufacturerSoftwareVersion string
}

// Read identity object (0x1018)
func (config *SlaveConfigurator) ReadIdentity() (*Identity, error) {
	// Vendor ID is the only mandatory field
	vendorId, err := config.client.ReadUint32(config.slave, od.EntryIdentity, 1)
	if err != nil {
		return nil, err
	}
	productCode, _ := config.client.ReadUint32(config.slave, od.EntryIdentity, 2)
	revisionNumber, _ := config.client.ReadUint32(config.slave, od.EntryIdentity, 3)
	serialNumber, _ := config.client.ReadUint32(config.slave, od.EntryIdentity, 4)
	return &Identity{
		VendorId:       vendorId,
		ProductCode:    productCode,
		RevisionNumber: revisionNumber,
		SerialNumber:   serialNumber,
	}, nil
}

// Read manufacturer device name
func (config *SlaveConfigurator) ReadManufacturerDeviceName() (string, error) {
	return config.client.ReadString(config.slave, od.EntryDeviceName, 0, maxStringLength)
}

// Read Manufacturer hardware version
func (config *SlaveConfigurator) ReadManufacturerHardwareVersion() (string, error) {
	return config.client.ReadString(config.slave, od.EntryHardwareVersion, 0, maxStringLength)
}

// Read manufacturer software version
func (config *SlaveConfigurator) ReadManufacturerSoftwareVersion() (string, error) {
	return config.client.ReadString(config.slave, od.EntrySoftwareVersion, 0, maxStringLength)
}

// Read manufacturer objects (0x1008,0x1009,0x100A, these are all optional)
func (config *SlaveConfigurator) ReadManufacturerInformation() ManufacturerInformation {
	info := ManufacturerInformation{}
	info.ManufacturerDeviceName, _ = config.ReadManufacturerDeviceName()
	info.ManufacturerHardwareVersion, _ = config.ReadManufacturerHardwareVersion()
	info.ManufacturerSoftwareVersion, _ = config.ReadManufacturerSoftwareVersion()
	return info
}
