package sdo

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultPollInterval = time.Millisecond
	DefaultRetries      = 200
	MaxRequestSize      = 1024
)

var (
	ErrTimeout         = errors.New("mailbox request timed out")
	ErrRequestRejected = errors.New("mailbox request rejected")
	ErrTransferFailed  = errors.New("mailbox transfer failed")
	ErrBusy            = errors.New("a mailbox request is already outstanding")
)

// Error returned by a dictionary access, carries the accessed object
type RequestError struct {
	Index    uint16
	Subindex uint8
	Polls    int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("x%04x:x%02x : %v", e.Index, e.Subindex, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Anything able to drive one exchange cycle of the bus.
// [ecat.BusManager] implements it.
type Pumper interface {
	Exchange() error
}

// A finished dictionary read, offered to a [Recorder]
type Transaction struct {
	Index    uint16
	Subindex uint8
	Width    int
	Data     []byte
	Polls    int
	Duration time.Duration
	Err      error
}

type Recorder interface {
	Record(tx Transaction)
}
