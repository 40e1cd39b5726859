// Package startup brings a single slave from INIT to cyclic exchange.
//
// The [Machine] walks through explicit states, each [Machine.Step]
// performs exactly one transition. Waiting is done by pumping the bus
// and sleeping on an injectable clock, so that tests never sleep for real.
// Not reaching PREOP or OP in time is only a warning, every other
// error is fatal and leads to [StateFailed].
package startup

import (
	"errors"
	"fmt"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/internal/clock"
	"github.com/samsamfire/goecat/pkg/config"
	"github.com/samsamfire/goecat/pkg/pdo"
	"github.com/samsamfire/goecat/pkg/sdo"
	log "github.com/sirupsen/logrus"
)

var (
	ErrPreopTimeout         = errors.New("slave did not reach a mailbox state in time")
	ErrOperationalTimeout   = errors.New("slave did not reach OP in time")
	ErrRegistrationRejected = errors.New("runtime rejected the process data layout")
	ErrIdentityMismatch     = errors.New("slave identity does not match")
	ErrGroupActivation      = errors.New("slave belongs to a group, activation is done by the group")
)

// Machine drives the bring-up of a single slave
type Machine struct {
	*ecat.BusManager
	config       Config
	clock        clock.Clock
	id           ecat.SlaveIdentity
	client       *sdo.SDOClient
	state        State
	err          error
	warnings     []error
	slave        ecat.SlaveConfig
	domain       ecat.Domain
	configurator *config.SlaveConfigurator
	layout       *pdo.Layout
	identity     *config.Identity
	callback     func(from State, to State)
	shared       bool
}

// Create a new bring-up [Machine] for the slave identified by id.
// A nil clock uses the real time.
func NewMachine(master ecat.Master, id ecat.SlaveIdentity, cfg Config, clk clock.Clock) *Machine {
	return newMachine(ecat.NewBusManager(master), id, cfg, clk)
}

func newMachine(bm *ecat.BusManager, id ecat.SlaveIdentity, cfg Config, clk clock.Clock) *Machine {
	if clk == nil {
		clk = clock.Real()
	}
	client := sdo.NewSDOClient(bm, clk)
	client.SetPollInterval(cfg.MailboxPollInterval)
	client.SetRetries(cfg.MailboxRetries)
	return &Machine{
		BusManager: bm,
		config:     cfg,
		clock:      clk,
		id:         id,
		client:     client,
		state:      StateIdle,
	}
}

// Set a callback called on every state change
func (m *Machine) OnTransition(callback func(from State, to State)) {
	m.callback = callback
}

func (m *Machine) State() State {
	return m.state
}

// Reason of the failure, nil unless in [StateFailed]
func (m *Machine) Err() error {
	return m.err
}

// Non fatal errors met so far
func (m *Machine) Warnings() []error {
	return m.warnings
}

func (m *Machine) Client() *sdo.SDOClient {
	return m.client
}

func (m *Machine) Slave() ecat.SlaveConfig {
	return m.slave
}

// Layout, available once discovery succeeded
func (m *Machine) Layout() *pdo.Layout {
	return m.layout
}

// Identity read from the slave, only when VerifyIdentity is set
func (m *Machine) Identity() *config.Identity {
	return m.identity
}

func (m *Machine) transition(to State) {
	from := m.state
	m.state = to
	log.Debugf("[STARTUP] state changed | %v ==> %v", from, to)
	if m.callback != nil {
		m.callback(from, to)
	}
}

func (m *Machine) fail(err error) error {
	log.Errorf("[STARTUP] slave %v failed in %v : %v", m.id.Position, m.state, err)
	m.err = err
	m.transition(StateFailed)
	return err
}

func (m *Machine) warn(err error) {
	log.Warnf("[STARTUP] slave %v : %v", m.id.Position, err)
	m.warnings = append(m.warnings, err)
}

// Perform a single transition.
// Returns the error met during the step : fatal errors move the machine
// to [StateFailed], [ErrOperationalTimeout] leaves it in [StateActive].
func (m *Machine) Step() error {
	switch m.state {
	case StateIdle:
		return m.stepIdle()
	case StateWaitMailboxReady:
		return m.stepWaitMailboxReady()
	case StateDiscovering:
		return m.stepDiscovering()
	case StateConfiguringLayout:
		return m.stepConfiguringLayout()
	case StateRegistered:
		return m.stepRegistered()
	case StateActive:
		return m.stepActive()
	case StateFailed:
		return m.err
	}
	return nil
}

// Step until operational or failed. Stops early in [StateActive]
// when OP is not reached in time, which is not considered an error.
func (m *Machine) Run() error {
	return m.runUntil(StateOperational)
}

func (m *Machine) runUntil(target State) error {
	for !m.state.Done() && m.state != target {
		err := m.Step()
		if m.state == StateFailed {
			return m.err
		}
		if errors.Is(err, ErrOperationalTimeout) {
			return nil
		}
		if errors.Is(err, ErrGroupActivation) {
			return err
		}
	}
	return m.err
}

// Domain the entries are registered into, nil before [StateWaitMailboxReady]
func (m *Machine) Domain() ecat.Domain {
	return m.domain
}

func (m *Machine) stepIdle() error {
	master := m.Master()
	slave, err := master.SlaveConfig(m.id)
	if err != nil {
		return m.fail(fmt.Errorf("slave configuration : %w", err))
	}
	if m.domain == nil {
		domain, err := master.CreateDomain()
		if err != nil {
			return m.fail(fmt.Errorf("domain creation : %w", err))
		}
		m.domain = domain
	}
	m.slave = slave
	m.configurator = config.NewSlaveConfigurator(slave, m.client)
	m.transition(StateWaitMailboxReady)
	return nil
}

func (m *Machine) stepWaitMailboxReady() error {
	start := m.clock.Now()
	for {
		_ = m.Exchange()
		if ecat.MailboxAvailable(m.slave.State().AlState) {
			log.Infof("[STARTUP] slave %v mailbox ready (%v)", m.id.Position, ecat.AlStateString(m.slave.State().AlState))
			break
		}
		if m.clock.Now().Sub(start) >= m.config.PreopTimeout {
			m.warn(fmt.Errorf("%w (%v, bus %v)", ErrPreopTimeout,
				m.config.PreopTimeout, ecat.AlStatesString(m.Master().State().AlStates)))
			break
		}
		m.clock.Sleep(m.config.PreopPollInterval)
	}
	// The first mailbox exchanges after reaching PREOP are not reliable
	for range m.config.WarmupCycles {
		_ = m.Exchange()
		m.clock.Sleep(m.config.WarmupInterval)
	}
	if m.config.VerifyIdentity {
		m.verifyIdentity()
	}
	m.transition(StateDiscovering)
	return nil
}

func (m *Machine) verifyIdentity() {
	identity, err := m.configurator.ReadIdentity()
	if err != nil {
		m.warn(fmt.Errorf("identity : %w", err))
		return
	}
	m.identity = identity
	if identity.VendorId != m.id.VendorId || identity.ProductCode != m.id.ProductCode {
		m.warn(fmt.Errorf("%w : got vendor x%x product x%x, expected vendor x%x product x%x",
			ErrIdentityMismatch, identity.VendorId, identity.ProductCode, m.id.VendorId, m.id.ProductCode))
	}
}

func (m *Machine) stepDiscovering() error {
	outputs, inputs, err := m.configurator.Discover()
	if err != nil {
		return m.fail(err)
	}
	m.layout = pdo.Build(m.id, outputs, inputs)
	m.transition(StateConfiguringLayout)
	return nil
}

func (m *Machine) stepConfiguringLayout() error {
	if err := m.layout.Configure(m.slave); err != nil {
		return m.fail(fmt.Errorf("%w : sync managers : %w", ErrRegistrationRejected, err))
	}
	if err := m.layout.Register(m.domain); err != nil {
		return m.fail(fmt.Errorf("%w : entries : %w", ErrRegistrationRejected, err))
	}
	m.transition(StateRegistered)
	return nil
}

func (m *Machine) stepRegistered() error {
	if m.shared {
		return ErrGroupActivation
	}
	if err := m.Master().Activate(); err != nil {
		return m.fail(fmt.Errorf("activation : %w", err))
	}
	m.enterActive()
	return nil
}

func (m *Machine) enterActive() {
	m.SetDomain(m.domain)
	m.transition(StateActive)
}

func (m *Machine) stepActive() error {
	start := m.clock.Now()
	for {
		_ = m.Exchange()
		if m.slave.State().Operational {
			m.transition(StateOperational)
			return nil
		}
		if m.clock.Now().Sub(start) >= m.config.OpTimeout {
			err := fmt.Errorf("%w (%v, slave in %v)", ErrOperationalTimeout,
				m.config.OpTimeout, ecat.AlStateString(m.slave.State().AlState))
			m.warn(err)
			return err
		}
		m.clock.Sleep(m.config.OpPollInterval)
	}
}
