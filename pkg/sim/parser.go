package sim

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/od"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Get index & subindex matching
var matchIdxRegExp = regexp.MustCompile(`^[0-9A-Fa-f]{4}$`)
var matchSubidxRegExp = regexp.MustCompile(`^([0-9A-Fa-f]{4})sub([0-9A-Fa-f]+)$`)

// Parse a device description
// file can be either a path or an *os.File or []byte
//
// The format is a subset of an EDS file :
//   - [DeviceInfo] with VendorNumber, ProductNumber and ProductName
//   - [XXXX] or [XXXXsubY] sections with DataType and DefaultValue
//   - [Simulation] with Alias, Position, CyclesToPreop, CyclesToOp,
//     RequestLatency, RejectPdos and comma separated Unresponsive / Failing objects
func ParseDevice(file any) (*Device, error) {
	devFile, err := ini.Load(file)
	if err != nil {
		return nil, err
	}

	info := devFile.Section("DeviceInfo")
	vendorId, err := parseUint(info.Key("VendorNumber").String(), 32)
	if err != nil {
		return nil, fmt.Errorf("[SIM] invalid VendorNumber : %w", err)
	}
	productCode, err := parseUint(info.Key("ProductNumber").String(), 32)
	if err != nil {
		return nil, fmt.Errorf("[SIM] invalid ProductNumber : %w", err)
	}

	simulation := devFile.Section("Simulation")
	device := NewDevice(ecat.SlaveIdentity{
		Alias:       uint16(simulation.Key("Alias").MustUint(0)),
		Position:    uint16(simulation.Key("Position").MustUint(0)),
		VendorId:    uint32(vendorId),
		ProductCode: uint32(productCode),
	})
	device.Name = info.Key("ProductName").String()
	device.CyclesToPreop = simulation.Key("CyclesToPreop").MustInt(DefaultCyclesToPreop)
	device.CyclesToOp = simulation.Key("CyclesToOp").MustInt(DefaultCyclesToOp)
	device.RequestLatency = simulation.Key("RequestLatency").MustInt(DefaultRequestLatency)
	device.RejectPdos = simulation.Key("RejectPdos").MustBool(false)

	for _, object := range splitList(simulation.Key("Unresponsive").String()) {
		index, subindex, err := parseObjectName(object)
		if err != nil {
			return nil, err
		}
		device.SetUnresponsive(index, subindex)
	}
	for _, object := range splitList(simulation.Key("Failing").String()) {
		index, subindex, err := parseObjectName(object)
		if err != nil {
			return nil, err
		}
		device.SetFailing(index, subindex)
	}

	// Iterate over all the sections
	for _, section := range devFile.Sections() {
		sectionName := section.Name()
		if !matchIdxRegExp.MatchString(sectionName) && !matchSubidxRegExp.MatchString(sectionName) {
			continue
		}
		index, subindex, err := parseObjectName(sectionName)
		if err != nil {
			return nil, err
		}
		dataType, err := parseUint(section.Key("DataType").String(), 8)
		if err != nil {
			return nil, fmt.Errorf("[SIM] invalid DataType for %v : %w", sectionName, err)
		}
		data, err := od.EncodeFromString(section.Key("DefaultValue").String(), uint8(dataType))
		if err != nil {
			return nil, fmt.Errorf("[SIM] invalid DefaultValue for %v : %w", sectionName, err)
		}
		device.Set(index, subindex, data)
	}
	log.Debugf("[SIM] loaded device %v (vendor x%x, product x%x) with %v objects",
		device.Name, device.Identity.VendorId, device.Identity.ProductCode, len(device.objects))
	return device, nil
}

// Parse "1A00" or "1A00sub2" into index and subindex
func parseObjectName(name string) (uint16, uint8, error) {
	if matchIdxRegExp.MatchString(name) {
		index, err := strconv.ParseUint(name, 16, 16)
		return uint16(index), 0, err
	}
	groups := matchSubidxRegExp.FindStringSubmatch(name)
	if groups == nil {
		return 0, 0, fmt.Errorf("[SIM] invalid object name %q", name)
	}
	index, err := strconv.ParseUint(groups[1], 16, 16)
	if err != nil {
		return 0, 0, err
	}
	subindex, err := strconv.ParseUint(groups[2], 16, 8)
	if err != nil {
		return 0, 0, err
	}
	return uint16(index), uint8(subindex), nil
}

func parseUint(value string, bits int) (uint64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseUint(value, 0, bits)
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
