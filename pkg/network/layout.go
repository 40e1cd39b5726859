package network

import (
	"errors"
	"sync"

	ecat "github.com/samsamfire/goecat"
	"github.com/samsamfire/goecat/pkg/image"
	"github.com/samsamfire/goecat/pkg/pdo"
	"github.com/samsamfire/goecat/pkg/report"
	"github.com/samsamfire/goecat/pkg/sdo"
	"github.com/samsamfire/goecat/pkg/startup"
	log "github.com/sirupsen/logrus"
)

var ErrLayoutClosed = errors.New("layout is closed")

// Slaves activated together, they share a domain and a bus manager
type session struct {
	mu      sync.Mutex
	group   *startup.Group
	members []*Layout
	open    int
}

func (s *session) domain() ecat.Domain {
	return s.group.Domain()
}

// Offsets of every member in registration order, against the domain size
func (s *session) validate() []image.Violation {
	offsets := make([]ecat.Offset, 0)
	for _, member := range s.members {
		offsets = append(offsets, member.Offsets...)
	}
	return image.Validate(offsets, s.domain().Size())
}

// Returns true when the last open member was released
func (s *session) release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open--
	return s.open == 0
}

// Layout is the handle on a configured slave
// It embeds the discovered [pdo.Layout] with the registered offsets
type Layout struct {
	*pdo.Layout
	mu      sync.Mutex
	machine *startup.Machine
	network *Network
	session *session
	closed  bool
}

// Bring-up state, [startup.StateActive] if OP was not reached in time
func (layout *Layout) State() startup.State {
	return layout.machine.State()
}

func (layout *Layout) Operational() bool {
	return layout.machine.Slave().State().Operational
}

// Non fatal errors met during bring-up
func (layout *Layout) Warnings() []error {
	return layout.machine.Warnings()
}

// Mailbox client bound to this slave's bus
func (layout *Layout) Client() *sdo.SDOClient {
	return layout.machine.Client()
}

func (layout *Layout) isClosed() bool {
	layout.mu.Lock()
	defer layout.mu.Unlock()
	return layout.closed
}

// Perform one exchange cycle, shared by every slave of the same domain
func (layout *Layout) Exchange() error {
	layout.mu.Lock()
	defer layout.mu.Unlock()
	if layout.closed {
		return ErrLayoutClosed
	}
	return layout.machine.Exchange()
}

// Current view of the process image. It must not be kept across
// a [Layout.Close] or any reactivation of the master, fetch it again
// for every read.
func (layout *Layout) View() []byte {
	layout.mu.Lock()
	defer layout.mu.Unlock()
	if layout.closed {
		return nil
	}
	return layout.session.domain().Data()
}

// Offset of the first input entry inside of the process image
func (layout *Layout) InputBase() (uint32, bool) {
	return image.InputBase(layout.Offsets, layout.OutputEntries())
}

// Build a report of the layout with the given fields resolved and
// the current content of its input region
func (layout *Layout) Report(fields []image.FieldDescriptor) (*report.Report, error) {
	if layout.isClosed() {
		return nil, ErrLayoutClosed
	}
	r := report.Build(layout.Layout, layout.session.domain().Size(), ResolveFields(layout, fields))
	// Packing is checked over the whole domain
	r.Violations = layout.session.validate()
	r.SetRaw(layout.Layout, layout.View())
	return r, nil
}

// Stop using the layout. The master is deactivated once every slave
// configured together with this one is closed, slaves can then be
// discovered again.
func (layout *Layout) Close() error {
	layout.mu.Lock()
	defer layout.mu.Unlock()
	if layout.closed {
		return nil
	}
	layout.closed = true
	layout.network.remove(layout.Identity)
	log.Infof("[NETWORK][x%x] closing layout", layout.Identity.Position)
	if !layout.session.release() {
		return nil
	}
	layout.session.group.SetDomain(nil)
	return layout.network.Master().Deactivate()
}
