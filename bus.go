package ecat

// Interfaces implemented by a bus runtime (an EtherCAT master).
// The runtime owns the wire protocol, the cyclic frame exchange and
// the process image memory. This module only drives it.

// Identifies a slave on the bus
type SlaveIdentity struct {
	Alias       uint16
	Position    uint16
	VendorId    uint32
	ProductCode uint32
}

// Possible states of a mailbox request
type RequestState uint8

const (
	RequestUnused  RequestState = 0
	RequestBusy    RequestState = 1
	RequestSuccess RequestState = 2
	RequestError   RequestState = 3
)

var requestStateMap = map[RequestState]string{
	RequestUnused:  "UNUSED",
	RequestBusy:    "BUSY",
	RequestSuccess: "SUCCESS",
	RequestError:   "ERROR",
}

func (s RequestState) String() string {
	str, ok := requestStateMap[s]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

// A read mailbox request against a single dictionary object
type SdoRequest interface {
	Read() error         // Start a read transfer
	State() RequestState // Poll transfer state
	Data() []byte        // Payload, valid once state is [RequestSuccess]
}

// State of a configured slave as reported by the runtime
type SlaveConfigState struct {
	Online      bool
	Operational bool
	AlState     uint8
}

// Bus wide state, AlStates is an OR of all slaves AL states
type MasterState struct {
	SlavesResponding uint32
	AlStates         uint8
	LinkUp           bool
}

// Handle on a single slave configuration
type SlaveConfig interface {
	Identity() SlaveIdentity
	CreateSdoRequest(index uint16, subindex uint8, size int) (SdoRequest, error)
	ConfigurePdos(syncs []SyncInfo) error
	State() SlaveConfigState
}

// Process data domain
// Data returns a borrowed view that is only valid until the next
// activation change of the master.
type Domain interface {
	RegisterPdoEntryList(regs []PdoEntryRegistration) ([]Offset, error)
	Process() error
	Queue() error
	Data() []byte
	Size() int
}

// A bus runtime master
type Master interface {
	SlaveConfig(id SlaveIdentity) (SlaveConfig, error)
	CreateDomain() (Domain, error)
	Activate() error
	Deactivate() error
	Receive() error
	Send() error
	State() MasterState
	Release() error
}
