package ecat

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Bus manager is a wrapper around the master interface
// It drives one exchange cycle on behalf of the rest of the stack
type BusManager struct {
	mu     sync.Mutex
	master Master
	domain Domain
	cycles uint64
}

func NewBusManager(master Master) *BusManager {
	return &BusManager{master: master}
}

func (bm *BusManager) Master() Master {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.master
}

// Set the domain processed on every exchange cycle
// A nil domain only pumps frames
func (bm *BusManager) SetDomain(domain Domain) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.domain = domain
}

func (bm *BusManager) Domain() Domain {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.domain
}

// Perform one exchange cycle : receive, process, queue, send
func (bm *BusManager) Exchange() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if err := bm.master.Receive(); err != nil {
		log.Warnf("[BUS] receive : %v", err)
		return err
	}
	if bm.domain != nil {
		if err := bm.domain.Process(); err != nil {
			log.Warnf("[BUS] domain process : %v", err)
			return err
		}
		if err := bm.domain.Queue(); err != nil {
			log.Warnf("[BUS] domain queue : %v", err)
			return err
		}
	}
	if err := bm.master.Send(); err != nil {
		log.Warnf("[BUS] send : %v", err)
		return err
	}
	bm.cycles++
	return nil
}

// Number of exchange cycles performed successfully
func (bm *BusManager) Cycles() uint64 {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.cycles
}
