// Package trace records every mailbox read in CBOR.
//
// A [Recorder] is plugged into an sdo client and appends one [Record]
// per finished read to a writer. Records of a recorder share a session
// id so that traces of consecutive runs can be appended to the same file.
package trace

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samsamfire/goecat/internal/clock"
	"github.com/samsamfire/goecat/pkg/sdo"
)

type Outcome uint8

const (
	OutcomeSuccess  Outcome = 0
	OutcomeTimeout  Outcome = 1
	OutcomeRejected Outcome = 2
	OutcomeFailed   Outcome = 3
	OutcomeBusy     Outcome = 4
	OutcomeError    Outcome = 5
)

var outcomeMap = map[Outcome]string{
	OutcomeSuccess:  "SUCCESS",
	OutcomeTimeout:  "TIMEOUT",
	OutcomeRejected: "REJECTED",
	OutcomeFailed:   "FAILED",
	OutcomeBusy:     "BUSY",
	OutcomeError:    "ERROR",
}

func (o Outcome) String() string {
	str, ok := outcomeMap[o]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

// A single mailbox read
type Record struct {
	Timestamp  time.Time `cbor:"1,keyasint"`
	Session    string    `cbor:"2,keyasint"`
	Sequence   uint64    `cbor:"3,keyasint"`
	Index      uint16    `cbor:"4,keyasint"`
	Subindex   uint8     `cbor:"5,keyasint"`
	Width      int       `cbor:"6,keyasint"`
	Data       []byte    `cbor:"7,keyasint,omitempty"`
	Polls      int       `cbor:"8,keyasint"`
	DurationUs int64     `cbor:"9,keyasint"`
	Outcome    Outcome   `cbor:"10,keyasint"`
	Error      string    `cbor:"11,keyasint,omitempty"`
}

func (r Record) String() string {
	return fmt.Sprintf("#%v x%04x:x%02x %v (%v polls) %x", r.Sequence, r.Index, r.Subindex, r.Outcome, r.Polls, r.Data)
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// Recorder implements [sdo.Recorder]
type Recorder struct {
	mu       sync.Mutex
	encoder  *cbor.Encoder
	clock    clock.Clock
	session  string
	sequence uint64
	err      error
}

// Create a recorder writing to w, a nil clock uses the real time
func NewRecorder(w io.Writer, clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.Real()
	}
	return &Recorder{
		encoder: encMode.NewEncoder(w),
		clock:   clk,
		session: uuid.NewString(),
	}
}

func (r *Recorder) Session() string {
	return r.session
}

// Record a finished read. Encoding errors do not disrupt reads,
// the first one is kept and returned by [Recorder.Err].
func (r *Recorder) Record(tx sdo.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequence++
	record := Record{
		Timestamp:  r.clock.Now(),
		Session:    r.session,
		Sequence:   r.sequence,
		Index:      tx.Index,
		Subindex:   tx.Subindex,
		Width:      tx.Width,
		Data:       tx.Data,
		Polls:      tx.Polls,
		DurationUs: tx.Duration.Microseconds(),
		Outcome:    outcomeOf(tx.Err),
	}
	if tx.Err != nil {
		record.Error = tx.Err.Error()
	}
	if err := r.encoder.Encode(record); err != nil && r.err == nil {
		r.err = err
	}
}

func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, sdo.ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, sdo.ErrRequestRejected):
		return OutcomeRejected
	case errors.Is(err, sdo.ErrTransferFailed):
		return OutcomeFailed
	case errors.Is(err, sdo.ErrBusy):
		return OutcomeBusy
	default:
		return OutcomeError
	}
}

// Decode every record of a trace
func ReadAll(rd io.Reader) ([]Record, error) {
	decoder := decMode.NewDecoder(rd)
	records := make([]Record, 0)
	for {
		var record Record
		if err := decoder.Decode(&record); err != nil {
			if err == io.EOF {
				return records, nil
			}
			return records, err
		}
		records = append(records, record)
	}
}

var _ sdo.Recorder = (*Recorder)(nil)
