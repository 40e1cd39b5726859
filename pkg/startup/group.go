package startup

import (
	"fmt"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/internal/clock"
	log "github.com/sirupsen/logrus"
)

// Group brings up several slaves into a single shared domain.
// Every slave is discovered and registered in order, then the master
// is activated once for all of them.
type Group struct {
	*ecat.BusManager
	machines []*Machine
	domain   ecat.Domain
}

// Create a new [Group] for the given slaves, machines share the same
// bus manager and mailbox timings. A nil clock uses the real time.
func NewGroup(master ecat.Master, ids []ecat.SlaveIdentity, cfg Config, clk clock.Clock) *Group {
	bm := ecat.NewBusManager(master)
	group := &Group{BusManager: bm}
	for _, id := range ids {
		machine := newMachine(bm, id, cfg, clk)
		machine.shared = true
		group.machines = append(group.machines, machine)
	}
	return group
}

// Machines, in the order the slaves were given
func (g *Group) Machines() []*Machine {
	return g.machines
}

// Shared domain, nil until [Group.Run] created it
func (g *Group) Domain() ecat.Domain {
	return g.domain
}

// Run the bring-up of every slave.
// Discovery and registration errors of any slave abort the whole group
// before activation. Not reaching OP in time is only a warning of the
// concerned machine.
func (g *Group) Run() error {
	if len(g.machines) == 0 {
		return ecat.ErrIllegalArgument
	}
	master := g.Master()
	domain, err := master.CreateDomain()
	if err != nil {
		return fmt.Errorf("domain creation : %w", err)
	}
	g.domain = domain
	for _, m := range g.machines {
		m.domain = domain
		err := m.runUntil(StateRegistered)
		if m.state == StateFailed {
			return fmt.Errorf("slave %v : %w", m.id.Position, err)
		}
	}
	if err := master.Activate(); err != nil {
		err = fmt.Errorf("activation : %w", err)
		for _, m := range g.machines {
			m.fail(err)
		}
		return err
	}
	log.Infof("[STARTUP] activated %v slaves, domain size %v bytes", len(g.machines), domain.Size())
	for _, m := range g.machines {
		m.enterActive()
	}
	for _, m := range g.machines {
		if err := m.Run(); err != nil {
			return fmt.Errorf("slave %v : %w", m.id.Position, err)
		}
	}
	return nil
}
