// Package installation walks a user through the ordered steps of connecting
// an attachment's hoses, refusing to move past a scan-gated step until the
// right position tag has been read.
package installation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hose_installation/internal/models"
	"hose_installation/internal/scan"
)

type State int

const (
	NotStarted State = iota
	// Instruction is a step without a scan gate, waiting for the user to continue.
	Instruction
	AwaitingScan
	StepComplete
	Finished
)

var stateNames = map[State]string{
	NotStarted:   "not_started",
	Instruction:  "instruction",
	AwaitingScan: "awaiting_scan",
	StepComplete: "step_complete",
	Finished:     "finished",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrNotStarted       = errors.New("installation has not been started")
	ErrAlreadyStarted   = errors.New("installation is already started")
	ErrFinished         = errors.New("installation is already finished")
	ErrScanRequired     = errors.New("step requires a confirming scan")
	ErrNotAwaitingScan  = errors.New("current step does not expect a scan")
	ErrGarbledScan      = scan.ErrGarbled
	ErrPositionMismatch = errors.New("scanned position does not match the step")
	ErrAtFirstStep      = errors.New("already at the first step")
)

// ScanRejection is returned when a readable tag belongs to another position.
// The step keeps waiting; the same rejection can repeat any number of times.
type ScanRejection struct {
	Step     int
	Expected string
	Got      string
}

func (r *ScanRejection) Error() string {
	return fmt.Sprintf("step %d expects position %q, scanned %q", r.Step+1, r.Expected, r.Got)
}

func (r *ScanRejection) Unwrap() error { return ErrPositionMismatch }

// Transition is one recorded state change.
type Transition struct {
	Step int       `json:"step"`
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Sequencer is the step state machine of a single installation.
// It is not safe for concurrent use; Session serialises access.
type Sequencer struct {
	steps     []models.InstallationStep
	state     State
	index     int
	completed []bool
	scans     map[int]scan.Event
	scanning  bool
	message   string
	history   []Transition
	now       func() time.Time
}

// New returns a sequencer in NotStarted. The step slice is copied and never changed.
func New(steps []models.InstallationStep) *Sequencer {
	cp := make([]models.InstallationStep, len(steps))
	copy(cp, steps)
	return &Sequencer{
		steps:     cp,
		completed: make([]bool, len(cp)),
		scans:     make(map[int]scan.Event),
		now:       time.Now,
	}
}

func (s *Sequencer) State() State { return s.state }

// Index is the current step, or len(steps) once finished.
func (s *Sequencer) Index() int { return s.index }

func (s *Sequencer) Steps() []models.InstallationStep { return s.steps }

func (s *Sequencer) History() []Transition {
	out := make([]Transition, len(s.history))
	copy(out, s.history)
	return out
}

// Start enters the first step. An empty installation finishes at once.
func (s *Sequencer) Start() error {
	if s.state != NotStarted {
		return ErrAlreadyStarted
	}
	if len(s.steps) == 0 {
		s.moveTo(Finished, 0)
		return nil
	}
	s.enter(0)
	return nil
}

// Advance completes an instruction step and moves on.
func (s *Sequencer) Advance() error {
	switch s.state {
	case NotStarted:
		return ErrNotStarted
	case Finished:
		return ErrFinished
	case AwaitingScan:
		return ErrScanRequired
	case StepComplete:
		s.next()
		return nil
	default:
		s.complete()
		return nil
	}
}

// BeginScan marks the scanner as open for the current step.
func (s *Sequencer) BeginScan() error {
	if err := s.expectScan(); err != nil {
		return err
	}
	s.scanning = true
	s.message = ""
	return nil
}

// SubmitScan validates a delivered scan against the current step.
func (s *Sequencer) SubmitScan(ev scan.Event) error {
	if err := s.expectScan(); err != nil {
		return err
	}
	if ev.Err != nil {
		s.message = ev.Err.Error()
		if errors.Is(ev.Err, scan.ErrUnavailable) {
			s.scanning = false
			return ev.Err
		}
		return ErrGarbledScan
	}

	got := ev.Text()
	if got == "" {
		s.message = ErrGarbledScan.Error()
		return ErrGarbledScan
	}

	expected := strings.TrimSpace(s.steps[s.index].ExpectedPosition)
	if expected != "" && !strings.EqualFold(got, expected) {
		rej := &ScanRejection{Step: s.index, Expected: expected, Got: got}
		s.message = rej.Error()
		return rej
	}

	ev.Payload = got
	s.scans[s.index] = ev
	s.scanning = false
	s.message = ""
	s.complete()
	return nil
}

// ReportScanError records a failure to read as a message for the user.
func (s *Sequencer) ReportScanError(err error) error {
	if err := s.expectScan(); err != nil {
		return err
	}
	if err == nil {
		err = ErrGarbledScan
	}
	s.message = err.Error()
	s.scanning = false
	return nil
}

// CancelScan closes the scanner and leaves the step waiting.
func (s *Sequencer) CancelScan() error {
	if err := s.expectScan(); err != nil {
		return err
	}
	s.scanning = false
	return nil
}

// Back returns to the previous step. Completion and scans from that step on are forgotten.
func (s *Sequencer) Back() error {
	switch s.state {
	case NotStarted:
		return ErrNotStarted
	case Finished:
		if len(s.steps) == 0 {
			return ErrAtFirstStep
		}
		s.rewind(len(s.steps) - 1)
		return nil
	}
	if s.index == 0 {
		return ErrAtFirstStep
	}
	s.rewind(s.index - 1)
	return nil
}

func (s *Sequencer) rewind(to int) {
	for i := to; i < len(s.steps); i++ {
		s.completed[i] = false
		delete(s.scans, i)
	}
	s.scanning = false
	s.message = ""
	s.enter(to)
}

func (s *Sequencer) expectScan() error {
	switch s.state {
	case NotStarted:
		return ErrNotStarted
	case Finished:
		return ErrFinished
	case AwaitingScan:
		return nil
	default:
		return ErrNotAwaitingScan
	}
}

func (s *Sequencer) enter(i int) {
	st := Instruction
	if s.steps[i].ScanRequired {
		st = AwaitingScan
	}
	s.moveTo(st, i)
}

func (s *Sequencer) complete() {
	s.completed[s.index] = true
	s.moveTo(StepComplete, s.index)
	s.next()
}

func (s *Sequencer) next() {
	if s.index+1 < len(s.steps) {
		s.enter(s.index + 1)
		return
	}
	s.moveTo(Finished, len(s.steps))
}

func (s *Sequencer) moveTo(to State, index int) {
	s.history = append(s.history, Transition{Step: index, From: s.state, To: to, At: s.now().UTC()})
	s.state = to
	s.index = index
}

// RecordedScan is an accepted scan for one step.
type RecordedScan struct {
	Step     int         `json:"step"`
	Position string      `json:"position"`
	Origin   scan.Origin `json:"origin"`
	At       time.Time   `json:"at"`
}

// Progress is a read-only view of the sequencer.
type Progress struct {
	State     State                    `json:"state"`
	Step      int                      `json:"step"`
	Total     int                      `json:"total"`
	Completed int                      `json:"completed"`
	Scanning  bool                     `json:"scanning"`
	Current   *models.InstallationStep `json:"current,omitempty"`
	Scans     []RecordedScan           `json:"scans"`
	Message   string                   `json:"message,omitempty"`
}

func (s *Sequencer) Progress() Progress {
	p := Progress{
		State:    s.state,
		Step:     s.index,
		Total:    len(s.steps),
		Scanning: s.scanning,
		Message:  s.message,
		Scans:    make([]RecordedScan, 0, len(s.scans)),
	}
	for i, done := range s.completed {
		if done {
			p.Completed++
		}
		if ev, ok := s.scans[i]; ok {
			p.Scans = append(p.Scans, RecordedScan{Step: i, Position: ev.Payload, Origin: ev.Origin, At: ev.At})
		}
	}
	if s.state != NotStarted && s.state != Finished && s.index < len(s.steps) {
		cur := s.steps[s.index]
		p.Current = &cur
	}
	return p
}

// ScannedPositions lists accepted positions in step order.
func (s *Sequencer) ScannedPositions() []string {
	out := make([]string, 0, len(s.scans))
	for i := range s.steps {
		if ev, ok := s.scans[i]; ok {
			out = append(out, ev.Payload)
		}
	}
	return out
}
