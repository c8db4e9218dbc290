package installation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"hose_installation/internal/models"
	"hose_installation/internal/scan"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("installation session not found")

// Outcome is what a delivered scan did to a session.
type Outcome struct {
	Event    scan.Event
	Err      error
	Progress Progress
}

// Session is one user's walk through an attachment's steps. The browser feeds
// it through a PushSource; a hardware reader, when bound, through a pump goroutine.
type Session struct {
	ID           string
	UserID       int
	MachineID    int64
	AttachmentID int64
	ReaderID     string
	OpenedAt     time.Time

	mu         sync.Mutex
	seq        *Sequencer
	push       *scan.PushSource
	reader     scan.Source
	stopPump   context.CancelFunc
	pumpDone   chan struct{}
	lastActive atomic.Int64 // unix nanoseconds; read by Sweep without s.mu
	closed     bool
	observe    func(*Session, Outcome)
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Progress()
}

func (s *Session) History() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.History()
}

func (s *Session) ScannedPositions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.ScannedPositions()
}

func (s *Session) Advance() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	err := s.seq.Advance()
	return s.seq.Progress(), err
}

func (s *Session) Back() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.stopSources()
	err := s.seq.Back()
	return s.seq.Progress(), err
}

// BeginScan opens the scanners for the current step. capable is what the
// client reported about its own NFC or camera support.
func (s *Session) BeginScan(ctx context.Context, capable bool) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.seq.expectScan(); err != nil {
		return s.seq.Progress(), err
	}

	s.push.SetCapability(capable)
	pushErr := s.push.Start(ctx)
	readerErr := scan.ErrUnavailable
	if s.reader != nil {
		readerErr = s.reader.Start(ctx)
	}
	if pushErr != nil && readerErr != nil {
		err := pushErr
		if !errors.Is(err, scan.ErrUnavailable) {
			err = readerErr
		}
		_ = s.seq.ReportScanError(err)
		return s.seq.Progress(), err
	}

	err := s.seq.BeginScan()
	return s.seq.Progress(), err
}

// Deliver hands a payload decoded by the browser to the session and applies it.
// A client that can post a decoded tag evidently can scan, so a closed push
// source is opened on the way.
func (s *Session) Deliver(ev scan.Event) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.seq.expectScan(); err != nil {
		return s.seq.Progress(), err
	}
	if !s.push.Listening() {
		s.push.SetCapability(true)
		if err := s.push.Start(context.Background()); err != nil {
			return s.seq.Progress(), err
		}
	}
	if err := s.push.Push(ev); err != nil {
		return s.seq.Progress(), err
	}

	var taken scan.Event
	select {
	case taken = <-s.push.Events():
	default:
		return s.seq.Progress(), nil
	}
	return s.apply(taken)
}

// apply runs with s.mu held.
func (s *Session) apply(ev scan.Event) (Progress, error) {
	err := s.seq.SubmitScan(ev)
	if err == nil {
		s.stopSources()
	}
	p := s.seq.Progress()
	if s.observe != nil {
		s.observe(s, Outcome{Event: ev, Err: err, Progress: p})
	}
	return p, err
}

// ReportError records a client-side read failure on the current step.
func (s *Session) ReportError(err error) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	rerr := s.seq.ReportScanError(err)
	if rerr == nil {
		s.stopSources()
	}
	return s.seq.Progress(), rerr
}

func (s *Session) CancelScan() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	err := s.seq.CancelScan()
	if err == nil {
		s.stopSources()
	}
	return s.seq.Progress(), err
}

// stopSources runs with s.mu held.
func (s *Session) stopSources() {
	_ = s.push.Stop()
	if s.reader != nil {
		_ = s.reader.Stop()
	}
}

func (s *Session) bindReader(src scan.Source) {
	ctx, cancel := context.WithCancel(context.Background())
	s.reader = src
	s.stopPump = cancel
	s.pumpDone = make(chan struct{})
	go s.pump(ctx, src.Events())
}

// pump forwards reader events. Tags read while no step is waiting are dropped.
func (s *Session) pump(ctx context.Context, events <-chan scan.Event) {
	defer close(s.pumpDone)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			s.mu.Lock()
			if !s.closed && s.seq.State() == AwaitingScan {
				s.touch()
				_, _ = s.apply(ev)
			}
			s.mu.Unlock()
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopSources()
	stop, done := s.stopPump, s.pumpDone
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}

// ReaderFactory builds the scan source of a hardware reader.
type ReaderFactory func(readerID string) scan.Source

type Option func(*Manager)

func WithReaders(f ReaderFactory) Option {
	return func(m *Manager) { m.readers = f }
}

// WithObserver registers a callback for every applied scan, whichever source delivered it.
// fn runs with the session locked and may only read its exported fields.
func WithObserver(fn func(*Session, Outcome)) Option {
	return func(m *Manager) { m.observe = fn }
}

// OpenRequest describes a new session.
type OpenRequest struct {
	UserID       int
	MachineID    int64
	AttachmentID int64
	ReaderID     string
	Steps        []models.InstallationStep
}

// Manager owns the open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	readers  ReaderFactory
	observe  func(*Session, Outcome)
}

func NewManager(ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{sessions: make(map[string]*Session), ttl: ttl}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open creates and starts a session.
func (m *Manager) Open(req OpenRequest) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		MachineID:    req.MachineID,
		AttachmentID: req.AttachmentID,
		ReaderID:     req.ReaderID,
		OpenedAt:     now.UTC(),
		seq:          New(req.Steps),
		push:         scan.NewPushSource(),
		observe:      m.observe,
	}
	s.lastActive.Store(now.UnixNano())
	if err := s.seq.Start(); err != nil {
		return nil, err
	}
	if req.ReaderID != "" && m.readers != nil {
		s.bindReader(m.readers(req.ReaderID))
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the manager's TTL and returns their ids.
// It never waits on a session lock, so a session busy applying a scan does not stall lookups.
func (m *Manager) Sweep(now time.Time) []string {
	if m.ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, s := range expired {
		s.close()
		ids = append(ids, s.ID)
	}
	return ids
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
