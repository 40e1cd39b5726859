package pdo

import "errors"

// Sync manager assignment of a slave with mailbox support
const (
	SyncMailboxOut uint8 = 0
	SyncMailboxIn  uint8 = 1
	SyncOutputs    uint8 = 2
	SyncInputs     uint8 = 3
)

var ErrOffsetCount = errors.New("runtime returned an unexpected number of offsets")
