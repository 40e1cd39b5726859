// This package discovers the process data layout of EtherCAT slaves at runtime
// and exposes named fields at their real position inside of the process image
package network

import (
	"errors"
	"fmt"
	"sync"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/internal/clock"
	"github.com/samsamfire/goecat/pkg/image"
	"github.com/samsamfire/goecat/pkg/sdo"
	"github.com/samsamfire/goecat/pkg/startup"
	log "github.com/sirupsen/logrus"
)

var (
	ErrLayoutExists = errors.New("slave already has an active layout, close it first")
	ErrMasterBusy   = errors.New("master already runs other layouts, close them first")
)

// A Network is the main object of this package
// It wraps a bus runtime master and brings slaves to cyclic exchange,
// either one at a time or as a group sharing a single domain
type Network struct {
	mu       sync.Mutex
	master   ecat.Master
	config   startup.Config
	clock    clock.Clock
	recorder sdo.Recorder
	callback func(id ecat.SlaveIdentity, from startup.State, to startup.State)
	layouts  map[ecat.SlaveIdentity]*Layout
}

// Create a new Network using the given master, with default timings
func NewNetwork(master ecat.Master) *Network {
	return &Network{
		master:  master,
		config:  startup.DefaultConfig(),
		clock:   clock.Real(),
		layouts: map[ecat.SlaveIdentity]*Layout{},
	}
}

func (network *Network) Master() ecat.Master {
	return network.master
}

// Set bring-up and mailbox timings, see [startup.LoadConfig]
func (network *Network) SetConfig(cfg startup.Config) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.config = cfg
}

func (network *Network) SetClock(clk clock.Clock) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.clock = clk
}

// Set a recorder notified of every mailbox read, e.g. a trace.Recorder
func (network *Network) SetRecorder(recorder sdo.Recorder) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.recorder = recorder
}

// Set a callback called on every bring-up state change
func (network *Network) OnTransition(callback func(id ecat.SlaveIdentity, from startup.State, to startup.State)) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.callback = callback
}

// Discover the PDO layout of a slave, register it and start cyclic exchange.
// Returns an error if discovery or registration failed. Not reaching
// PREOP or OP in time is not an error, see [Layout.Warnings].
func (network *Network) DiscoverAndConfigure(id ecat.SlaveIdentity) (*Layout, error) {
	layouts, err := network.DiscoverAndConfigureAll(id)
	if err != nil {
		return nil, err
	}
	return layouts[0], nil
}

// Discover and register several slaves into a single domain, then activate
// the master once. Layouts are returned in the order of ids, each with its
// own offsets inside of the shared process image.
// The master must not run any other layout, otherwise [ErrMasterBusy]
// is returned and nothing is touched.
func (network *Network) DiscoverAndConfigureAll(ids ...ecat.SlaveIdentity) ([]*Layout, error) {
	network.mu.Lock()
	defer network.mu.Unlock()

	if len(ids) == 0 {
		return nil, ecat.ErrIllegalArgument
	}
	seen := make(map[ecat.SlaveIdentity]bool, len(ids))
	for _, id := range ids {
		if _, ok := network.layouts[id]; ok || seen[id] {
			return nil, fmt.Errorf("slave %v : %w", id.Position, ErrLayoutExists)
		}
		seen[id] = true
	}
	if len(network.layouts) > 0 {
		return nil, ErrMasterBusy
	}

	group := startup.NewGroup(network.master, ids, network.config, network.clock)
	for i, machine := range group.Machines() {
		if network.recorder != nil {
			machine.Client().SetRecorder(network.recorder)
		}
		if network.callback != nil {
			callback := network.callback
			id := ids[i]
			machine.OnTransition(func(from startup.State, to startup.State) {
				callback(id, from, to)
			})
		}
	}
	log.Infof("[NETWORK] starting discovery of %v slaves", len(ids))
	if err := group.Run(); err != nil {
		// Only this group was configured, drop it so that discovery can be retried
		_ = network.master.Deactivate()
		return nil, err
	}

	shared := &session{group: group}
	layouts := make([]*Layout, 0, len(ids))
	for _, machine := range group.Machines() {
		layout := &Layout{Layout: machine.Layout(), machine: machine, network: network, session: shared}
		shared.members = append(shared.members, layout)
		network.layouts[layout.Identity] = layout
		layouts = append(layouts, layout)
		log.Infof("[NETWORK][x%x] layout ready in %v : %v output entries, %v input entries",
			layout.Identity.Position, machine.State(), layout.OutputEntries(), layout.InputEntries())
	}
	shared.open = len(layouts)
	return layouts, nil
}

// Layout of a slave that was already configured
func (network *Network) Layout(id ecat.SlaveIdentity) (*Layout, bool) {
	network.mu.Lock()
	defer network.mu.Unlock()
	layout, ok := network.layouts[id]
	return layout, ok
}

func (network *Network) remove(id ecat.SlaveIdentity) {
	network.mu.Lock()
	defer network.mu.Unlock()
	delete(network.layouts, id)
}

// Resolve fields against the input direction of a layout.
// Every field is invalid when the layout is nil or closed.
func ResolveFields(layout *Layout, fields []image.FieldDescriptor) []image.ResolvedField {
	if layout == nil || layout.isClosed() {
		return image.Resolve(nil, 0, fields)
	}
	return image.Resolve(layout.Offsets, layout.OutputEntries(), fields)
}

// Read a resolved field, view should come from [Layout.View]
func ReadValue(field image.ResolvedField, view []byte) (uint32, error) {
	return image.ReadValue(field, view)
}

// Check the packing of the whole domain a layout is registered into,
// i.e. the offsets of every slave configured together with it.
// Returns nothing for a nil or closed layout.
func Validate(layout *Layout) []image.Violation {
	if layout == nil || layout.isClosed() {
		return nil
	}
	return layout.session.validate()
}
