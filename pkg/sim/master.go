package sim

import (
	"sync"

	ecat "github.com/samsamfire/goecat"
	log "github.com/sirupsen/logrus"
)

// Simulated master
type Master struct {
	mu          sync.Mutex
	slaves      []*slave
	configs     map[ecat.SlaveIdentity]*SlaveConfig
	domains     []*Domain
	requests    []*SdoRequest
	active      bool
	released    bool
	cycles      uint64
	activateErr error
}

// Create a master with the given slaves on the bus, all in INIT
func NewMaster(devices ...*Device) *Master {
	m := &Master{configs: make(map[ecat.SlaveIdentity]*SlaveConfig)}
	for _, device := range devices {
		m.slaves = append(m.slaves, &slave{device: device, alState: ecat.AlStateInit})
	}
	return m
}

// Must be called with the lock held
func (m *Master) slaveFor(id ecat.SlaveIdentity) *slave {
	for _, s := range m.slaves {
		if s.device.matches(id) {
			return s
		}
	}
	return nil
}

// Must be called with the lock held
func (m *Master) configFor(device *Device) *SlaveConfig {
	for id, config := range m.configs {
		if device.matches(id) {
			return config
		}
	}
	return nil
}

// Get or create the configuration for a slave
// A configuration is returned even when no such slave is on the bus,
// it simply never comes online.
func (m *Master) SlaveConfig(id ecat.SlaveIdentity) (ecat.SlaveConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil, ecat.ErrReleased
	}
	config, ok := m.configs[id]
	if !ok {
		config = &SlaveConfig{master: m, id: id, entries: make(map[objectKey]entryLocation)}
		m.configs[id] = config
	}
	return config, nil
}

func (m *Master) CreateDomain() (ecat.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil, ecat.ErrReleased
	}
	if m.active {
		return nil, ecat.ErrAlreadyActive
	}
	domain := &Domain{master: m}
	m.domains = append(m.domains, domain)
	return domain, nil
}

// Make Activate fail with err, nil restores normal behaviour
func (m *Master) SetActivateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activateErr = err
}

// Activate allocates the domain memory and starts bringing
// configured slaves to OP
func (m *Master) Activate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ecat.ErrReleased
	}
	if m.active {
		return ecat.ErrAlreadyActive
	}
	if m.activateErr != nil {
		return m.activateErr
	}
	for _, domain := range m.domains {
		domain.data = make([]byte, domain.size)
	}
	m.active = true
	log.Debugf("[SIM] master activated with %v domains", len(m.domains))
	return nil
}

// Deactivate drops all configurations and domains, slaves fall back to PREOP
func (m *Master) Deactivate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deactivate()
	return nil
}

func (m *Master) deactivate() {
	for _, domain := range m.domains {
		domain.data = nil
	}
	m.domains = nil
	m.requests = nil
	m.configs = make(map[ecat.SlaveIdentity]*SlaveConfig)
	m.active = false
	for _, s := range m.slaves {
		if s.alState == ecat.AlStateSafeop || s.alState == ecat.AlStateOp {
			s.alState = ecat.AlStatePreop
			s.cyclesInState = 0
		}
	}
}

// Receive advances the simulation by one cycle
func (m *Master) Receive() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ecat.ErrReleased
	}
	m.cycles++

	for _, s := range m.slaves {
		m.advance(s)
	}

	pending := m.requests[:0]
	for _, req := range m.requests {
		if !req.process(m.slaveFor(req.config.id)) {
			pending = append(pending, req)
		}
	}
	m.requests = pending

	if m.active {
		for _, domain := range m.domains {
			domain.updateInputs()
		}
	}
	return nil
}

// AL state progression of a single slave
func (m *Master) advance(s *slave) {
	s.cyclesInState++
	device := s.device
	previous := s.alState
	switch s.alState {
	case ecat.AlStateInit:
		if device.CyclesToPreop >= 0 && s.cyclesInState >= device.CyclesToPreop {
			s.alState = ecat.AlStatePreop
		}
	case ecat.AlStatePreop:
		config := m.configFor(device)
		if m.active && config != nil && len(config.syncs) > 0 {
			s.alState = ecat.AlStateSafeop
		}
	case ecat.AlStateSafeop:
		if device.CyclesToOp >= 0 && s.cyclesInState >= device.CyclesToOp {
			s.alState = ecat.AlStateOp
		}
	}
	if s.alState != previous {
		s.cyclesInState = 0
		log.Debugf("[SIM] slave %v : %v -> %v",
			device.Identity.Position,
			ecat.AlStateString(previous),
			ecat.AlStateString(s.alState),
		)
	}
}

func (m *Master) Send() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ecat.ErrReleased
	}
	return nil
}

func (m *Master) State() ecat.MasterState {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := ecat.MasterState{SlavesResponding: uint32(len(m.slaves)), LinkUp: !m.released}
	for _, s := range m.slaves {
		state.AlStates |= s.alState
	}
	return state
}

func (m *Master) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil
	}
	m.deactivate()
	m.released = true
	return nil
}

// Update a dictionary value of a simulated device, e.g. an input
func (m *Master) Write(device *Device, index uint16, subindex uint8, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	device.Set(index, subindex, data)
}

// Number of exchange cycles seen
func (m *Master) Cycles() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

func (m *Master) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}
