package config

import (
	"errors"
	"fmt"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/od"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyAssignment = errors.New("no pdo assigned")
	ErrEmptyMapping    = errors.New("pdo has no mapped entry")
)

// Read the number of PDOs assigned to a sync manager (0x1C12 or 0x1C13)
func (config *SlaveConfigurator) ReadNbAssigned(assignIndex uint16) (uint8, error) {
	raw, err := config.client.Read(config.slave, assignIndex, 0, 1)
	if err != nil {
		return 0, err
	}
	return od.DecodeCount(raw)
}

// Read the ordered list of PDO indexes assigned to a sync manager.
// At most [od.MaxAssignedPdos] are returned, bigger counts are clamped.
func (config *SlaveConfigurator) ReadAssignList(assignIndex uint16) ([]uint16, error) {
	nbAssigned, err := config.ReadNbAssigned(assignIndex)
	if err != nil {
		return nil, err
	}
	if nbAssigned == 0 {
		return nil, fmt.Errorf("x%x : %w", assignIndex, ErrEmptyAssignment)
	}
	if nbAssigned > od.MaxAssignedPdos {
		log.Warnf("[CONFIG] x%x reports %v assigned pdos, only reading %v", assignIndex, nbAssigned, od.MaxAssignedPdos)
		nbAssigned = od.MaxAssignedPdos
	}
	pdos := make([]uint16, 0, nbAssigned)
	for i := range nbAssigned {
		raw, err := config.client.Read(config.slave, assignIndex, i+1, 2)
		if err != nil {
			return nil, err
		}
		pdoIndex, err := od.DecodeUint16Lenient(raw)
		if err != nil {
			return nil, fmt.Errorf("x%x:x%x : %w", assignIndex, i+1, err)
		}
		pdos = append(pdos, pdoIndex)
	}
	log.Debugf("[CONFIG] x%x assigned pdos : %x", assignIndex, pdos)
	return pdos, nil
}

// Read the number of entries mapped inside a PDO
func (config *SlaveConfigurator) ReadNbMappings(pdoIndex uint16) (uint8, error) {
	raw, err := config.client.Read(config.slave, pdoIndex, 0, 1)
	if err != nil {
		return 0, err
	}
	return od.DecodeCount(raw)
}

// Read the mapping of a single PDO, entries are in mapping order
func (config *SlaveConfigurator) ReadMapping(pdoIndex uint16) (ecat.PdoInfo, error) {
	pdo := ecat.PdoInfo{Index: pdoIndex}
	nbMappings, err := config.ReadNbMappings(pdoIndex)
	if err != nil {
		return pdo, err
	}
	if nbMappings == 0 {
		return pdo, fmt.Errorf("x%x : %w", pdoIndex, ErrEmptyMapping)
	}
	pdo.Entries = make([]ecat.PdoEntryInfo, 0, nbMappings)
	for i := range nbMappings {
		raw, err := config.client.Read(config.slave, pdoIndex, i+1, od.MappingWordSize)
		if err != nil {
			return pdo, err
		}
		entry, err := od.DecodeMappingWord(raw)
		if err != nil {
			return pdo, fmt.Errorf("x%x:x%x : %w", pdoIndex, i+1, err)
		}
		pdo.Entries = append(pdo.Entries, entry)
	}
	return pdo, nil
}

// Read the mappings of every PDO of an assignment object
func (config *SlaveConfigurator) ReadMappings(assignIndex uint16) ([]ecat.PdoInfo, error) {
	pdoIndexes, err := config.ReadAssignList(assignIndex)
	if err != nil {
		return nil, err
	}
	pdos := make([]ecat.PdoInfo, 0, len(pdoIndexes))
	for _, pdoIndex := range pdoIndexes {
		pdo, err := config.ReadMapping(pdoIndex)
		if err != nil {
			return nil, err
		}
		log.Debugf("[CONFIG] pdo x%x : %v", pdo.Index, pdo.Entries)
		pdos = append(pdos, pdo)
	}
	return pdos, nil
}

// Discover the complete PDO layout of the slave.
// Both assignment lists are read first (outputs 0x1C12 then inputs 0x1C13),
// then every mapping, in assignment order.
func (config *SlaveConfigurator) Discover() (outputs []ecat.PdoInfo, inputs []ecat.PdoInfo, err error) {
	outputIndexes, err := config.ReadAssignList(od.EntryRxPdoAssign)
	if err != nil {
		return nil, nil, err
	}
	inputIndexes, err := config.ReadAssignList(od.EntryTxPdoAssign)
	if err != nil {
		return nil, nil, err
	}
	outputs = make([]ecat.PdoInfo, 0, len(outputIndexes))
	for _, pdoIndex := range outputIndexes {
		pdo, err := config.ReadMapping(pdoIndex)
		if err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, pdo)
	}
	inputs = make([]ecat.PdoInfo, 0, len(inputIndexes))
	for _, pdoIndex := range inputIndexes {
		pdo, err := config.ReadMapping(pdoIndex)
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, pdo)
	}
	log.Infof("[CONFIG] discovered %v output pdos and %v input pdos", len(outputs), len(inputs))
	return outputs, inputs, nil
}
