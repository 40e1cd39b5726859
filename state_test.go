package ecat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlStates(t *testing.T) {
	assert.Equal(t, "SAFEOP", AlStateString(AlStateSafeop))
	assert.Equal(t, "UNKNOWN", AlStateString(0x10))
	assert.True(t, MailboxAvailable(AlStatePreop))
	assert.True(t, MailboxAvailable(AlStateOp))
	assert.False(t, MailboxAvailable(AlStateInit))
	assert.False(t, MailboxAvailable(AlStateBoot))
	assert.Equal(t, "PREOP|OP", AlStatesString(AlStatePreop|AlStateOp))
	assert.Equal(t, "NONE", AlStatesString(0))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "SUCCESS", RequestSuccess.String())
	assert.Equal(t, "UNKNOWN", RequestState(9).String())
	assert.Equal(t, "input", DirInput.String())
	assert.Equal(t, "enable", WatchdogEnable.String())
	assert.Equal(t, "x6010:x03 (8 bits)", PdoEntryInfo{Index: 0x6010, Subindex: 3, BitLength: 8}.String())
}
