package sim

import (
	"errors"
	"fmt"

	ecat "github.com/samsamfire/goecat"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidSize    = errors.New("invalid request size")
	ErrPdosRejected   = errors.New("sync manager configuration rejected")
	ErrEntryNotMapped = errors.New("entry is not mapped in any configured pdo")
)

// Position of a configured entry inside its sync manager image
type entryLocation struct {
	sync      uint8
	direction ecat.Direction
	bitPos    uint32
	bitLength uint8
}

// Simulated slave : device plus runtime state
type slave struct {
	device        *Device
	alState       uint8
	cyclesInState int
}

// Simulated slave configuration
type SlaveConfig struct {
	master   *Master
	id       ecat.SlaveIdentity
	syncs    []ecat.SyncInfo
	entries  map[objectKey]entryLocation
	syncSize map[uint8]uint32 // size in bits per sync manager
}

func (sc *SlaveConfig) Identity() ecat.SlaveIdentity {
	return sc.id
}

// Create a mailbox read request
func (sc *SlaveConfig) CreateSdoRequest(index uint16, subindex uint8, size int) (ecat.SdoRequest, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return &SdoRequest{config: sc, key: objectKey{index, subindex}, size: size}, nil
}

// Configure sync managers, the list ends at the first [ecat.SyncEnd] entry
func (sc *SlaveConfig) ConfigurePdos(syncs []ecat.SyncInfo) error {
	sc.master.mu.Lock()
	defer sc.master.mu.Unlock()

	if sc.master.released {
		return ecat.ErrReleased
	}
	if sc.master.active {
		return ecat.ErrAlreadyActive
	}
	if s := sc.master.slaveFor(sc.id); s != nil && s.device.RejectPdos {
		return ErrPdosRejected
	}
	entries := make(map[objectKey]entryLocation)
	syncSize := make(map[uint8]uint32)
	configured := make([]ecat.SyncInfo, 0, len(syncs))
	for _, sync := range syncs {
		if sync.Index == ecat.SyncEnd {
			break
		}
		if sync.Direction != ecat.DirOutput && sync.Direction != ecat.DirInput {
			return fmt.Errorf("%w : sync manager %v has no direction", ErrPdosRejected, sync.Index)
		}
		bitPos := uint32(0)
		for _, pdo := range sync.Pdos {
			for _, entry := range pdo.Entries {
				entries[objectKey{entry.Index, entry.Subindex}] = entryLocation{
					sync:      sync.Index,
					direction: sync.Direction,
					bitPos:    bitPos,
					bitLength: entry.BitLength,
				}
				bitPos += uint32(entry.BitLength)
			}
		}
		syncSize[sync.Index] = bitPos
		configured = append(configured, sync)
	}
	sc.syncs = configured
	sc.entries = entries
	sc.syncSize = syncSize
	log.Debugf("[SIM] slave %v configured with %v sync managers", sc.id.Position, len(configured))
	return nil
}

// Configured sync managers
func (sc *SlaveConfig) Syncs() []ecat.SyncInfo {
	sc.master.mu.Lock()
	defer sc.master.mu.Unlock()
	return sc.syncs
}

func (sc *SlaveConfig) State() ecat.SlaveConfigState {
	sc.master.mu.Lock()
	defer sc.master.mu.Unlock()
	s := sc.master.slaveFor(sc.id)
	if s == nil {
		return ecat.SlaveConfigState{}
	}
	return ecat.SlaveConfigState{
		Online:      true,
		Operational: s.alState == ecat.AlStateOp,
		AlState:     s.alState,
	}
}

// Simulated mailbox request
type SdoRequest struct {
	config  *SlaveConfig
	key     objectKey
	size    int
	state   ecat.RequestState
	pending int
	data    []byte
}

// Start a read, completion happens during exchange cycles
func (r *SdoRequest) Read() error {
	m := r.config.master
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ecat.ErrReleased
	}
	r.state = ecat.RequestBusy
	r.data = nil
	r.pending = 0
	if s := m.slaveFor(r.config.id); s != nil {
		r.pending = s.device.RequestLatency
	}
	m.requests = append(m.requests, r)
	return nil
}

func (r *SdoRequest) State() ecat.RequestState {
	r.config.master.mu.Lock()
	defer r.config.master.mu.Unlock()
	return r.state
}

func (r *SdoRequest) Data() []byte {
	r.config.master.mu.Lock()
	defer r.config.master.mu.Unlock()
	return r.data
}

// Advance a pending request by one cycle, returns true once done
// Must be called with the master lock held
func (r *SdoRequest) process(s *slave) bool {
	if s == nil || !ecat.MailboxAvailable(s.alState) {
		return false
	}
	device := s.device
	if device.unresponsive[r.key] {
		return false
	}
	if r.pending > 0 {
		r.pending--
		if r.pending > 0 {
			return false
		}
	}
	value, ok := device.objects[r.key]
	if !ok || device.failing[r.key] {
		log.Debugf("[SIM] mailbox read %v failed", r.key)
		r.state = ecat.RequestError
		return true
	}
	r.data = make([]byte, len(value))
	copy(r.data, value)
	r.state = ecat.RequestSuccess
	return true
}
