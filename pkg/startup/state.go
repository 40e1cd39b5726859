package startup

// Bring-up states
type State uint8

const (
	StateIdle              State = 0
	StateWaitMailboxReady  State = 1
	StateDiscovering       State = 2
	StateConfiguringLayout State = 3
	StateRegistered        State = 4
	StateActive            State = 5
	StateOperational       State = 6
	StateFailed            State = 255
)

var stateMap = map[State]string{
	StateIdle:              "IDLE",
	StateWaitMailboxReady:  "WAIT-MAILBOX-READY",
	StateDiscovering:       "DISCOVERING",
	StateConfiguringLayout: "CONFIGURING-LAYOUT",
	StateRegistered:        "REGISTERED",
	StateActive:            "ACTIVE",
	StateOperational:       "OPERATIONAL",
	StateFailed:            "FAILED",
}

func (s State) String() string {
	str, ok := stateMap[s]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

// Terminal states, [Machine.Step] does nothing once reached
func (s State) Done() bool {
	return s == StateOperational || s == StateFailed
}
