package sdo

import (
	"sync"
	"time"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/internal/clock"
	log "github.com/sirupsen/logrus"
)

// SDOClient reads slave dictionary objects through mailbox requests.
// Only one request is ever outstanding : while a read is polling,
// any other read fails immediately with [ErrBusy].
type SDOClient struct {
	mu           sync.Mutex
	busy         bool
	clock        clock.Clock
	pump         Pumper
	recorder     Recorder
	pollInterval time.Duration
	retries      int
}

// Create a new [SDOClient]
// pump is called once per poll iteration so that the runtime can
// service the mailbox, it may be nil if the runtime is driven elsewhere.
func NewSDOClient(pump Pumper, clk clock.Clock) *SDOClient {
	if clk == nil {
		clk = clock.Real()
	}
	return &SDOClient{
		clock:        clk,
		pump:         pump,
		pollInterval: DefaultPollInterval,
		retries:      DefaultRetries,
	}
}

// Read a dictionary object, expecting width bytes.
// This is blocking : the request is polled every poll interval
// until it completes or the retry budget is exhausted.
func (c *SDOClient) Read(slave ecat.SlaveConfig, index uint16, subindex uint8, width int) ([]byte, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, &RequestError{Index: index, Subindex: subindex, Err: ErrBusy}
	}
	c.busy = true
	pollInterval := c.pollInterval
	retries := c.retries
	recorder := c.recorder
	pump := c.pump
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	start := c.clock.Now()
	data, polls, err := c.read(slave, pump, index, subindex, width, pollInterval, retries)
	if err != nil {
		err = &RequestError{Index: index, Subindex: subindex, Polls: polls, Err: err}
	}
	if recorder != nil {
		recorder.Record(Transaction{
			Index:    index,
			Subindex: subindex,
			Width:    width,
			Data:     data,
			Polls:    polls,
			Duration: c.clock.Now().Sub(start),
			Err:      err,
		})
	}
	return data, err
}

func (c *SDOClient) read(
	slave ecat.SlaveConfig,
	pump Pumper,
	index uint16,
	subindex uint8,
	width int,
	pollInterval time.Duration,
	retries int,
) ([]byte, int, error) {

	if slave == nil || width <= 0 || width > MaxRequestSize {
		log.Warnf("[SDO] invalid request x%x:x%x width %v", index, subindex, width)
		return nil, 0, ErrRequestRejected
	}
	req, err := slave.CreateSdoRequest(index, subindex, width)
	if err != nil || req == nil {
		log.Warnf("[SDO] failed to create request x%x:x%x : %v", index, subindex, err)
		return nil, 0, ErrRequestRejected
	}
	if err := req.Read(); err != nil {
		log.Warnf("[SDO] failed to start request x%x:x%x : %v", index, subindex, err)
		return nil, 0, ErrRequestRejected
	}
	log.Debugf("[SDO][TX] UPLOAD | x%x:x%x width %v", index, subindex, width)

	for polls := 1; polls <= retries; polls++ {
		if pump != nil {
			if err := pump.Exchange(); err != nil {
				log.Debugf("[SDO] exchange failed whilst polling x%x:x%x : %v", index, subindex, err)
			}
		}
		switch req.State() {
		case ecat.RequestSuccess:
			raw := req.Data()
			data := make([]byte, len(raw))
			copy(data, raw)
			log.Debugf("[SDO][RX] UPLOAD | x%x:x%x %v (%v polls)", index, subindex, data, polls)
			return data, polls, nil
		case ecat.RequestError:
			log.Debugf("[SDO][RX] UPLOAD FAILED | x%x:x%x (%v polls)", index, subindex, polls)
			return nil, polls, ErrTransferFailed
		}
		c.clock.Sleep(pollInterval)
	}
	log.Debugf("[SDO] UPLOAD TIMEOUT | x%x:x%x after %v polls", index, subindex, retries)
	return nil, retries, ErrTimeout
}

func (c *SDOClient) SetPollInterval(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollInterval = interval
}

func (c *SDOClient) SetRetries(retries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retries = retries
}

// Set a recorder notified of every finished read
func (c *SDOClient) SetRecorder(recorder Recorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = recorder
}

func (c *SDOClient) SetPump(pump Pumper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pump = pump
}
