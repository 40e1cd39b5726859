package config

import (
	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/sdo"
)

// SlaveConfigurator provides helper methods for reading the
// reserved configuration objects of a slave, i.e. objects between
// 0x1000 and 0x2000 (identity, PDO assignment and PDO mapping).
// No device description is needed, everything is read through
// mailbox requests issued by an SDOClient.
type SlaveConfigurator struct {
	client *sdo.SDOClient
	slave  ecat.SlaveConfig
}

// Create a new [SlaveConfigurator] for given slave and SDOClient
func NewSlaveConfigurator(slave ecat.SlaveConfig, client *sdo.SDOClient) *SlaveConfigurator {
	configurator := SlaveConfigurator{client: client, slave: slave}
	return &configurator
}
