package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hose_installation/internal/installation"
	"hose_installation/internal/logger"
	"hose_installation/internal/models"
	"hose_installation/internal/repository"
	"hose_installation/internal/scan"
)

const auditTimeout = 5 * time.Second

// SessionView is what clients see of an installation session.
type SessionView struct {
	ID           string                `json:"id"`
	MachineID    int64                 `json:"machine_id,omitempty"`
	AttachmentID int64                 `json:"attachment_id"`
	ReaderID     string                `json:"reader_id,omitempty"`
	OpenedAt     time.Time             `json:"opened_at"`
	Progress     installation.Progress `json:"progress"`
	// Tag describes the position of the scan just submitted.
	Tag     *models.TagInfo `json:"tag,omitempty"`
	Summary *Summary        `json:"summary,omitempty"`
}

// Summary is returned once every step is complete.
type Summary struct {
	Machine        *models.Machine             `json:"machine,omitempty"`
	Attachment     models.Attachment           `json:"attachment"`
	Recommendation installation.Recommendation `json:"recommendation"`
	Scans          []installation.RecordedScan `json:"scans"`
}

type InstallationService struct {
	sessions    *installation.Manager
	machines    repository.MachineRepo
	attachments repository.AttachmentRepo
	steps       repository.StepRepo
	installs    repository.InstallationRepo
	events      repository.EventRepo
	log         *logger.Logger
}

func NewInstallationService(repos *repository.Repository, ttl time.Duration, readers installation.ReaderFactory, log *logger.Logger) *InstallationService {
	s := &InstallationService{
		machines:    repos.Machines,
		attachments: repos.Attachments,
		steps:       repos.Steps,
		installs:    repos.Installations,
		events:      repos.EventRepo,
		log:         log,
	}
	opts := []installation.Option{installation.WithObserver(s.recordScan)}
	if readers != nil {
		opts = append(opts, installation.WithReaders(readers))
	}
	s.sessions = installation.NewManager(ttl, opts...)
	return s
}

func (s *InstallationService) ListInstallations(ctx context.Context, userID int) ([]models.Installation, error) {
	out, err := s.installs.ListByUser(ctx, userID)
	return out, storeErr("list installations", err)
}

func (s *InstallationService) CreateInstallation(ctx context.Context, in models.Installation) (int64, error) {
	if in.MachineID <= 0 || in.AttachmentID <= 0 {
		return 0, invalid("machine_id and attachment_id are required")
	}
	if _, err := s.machines.GetByID(ctx, in.MachineID); err != nil {
		return 0, storeErr("get machine", err)
	}
	if _, err := s.attachments.GetByID(ctx, in.AttachmentID); err != nil {
		return 0, storeErr("get attachment", err)
	}
	id, err := s.installs.Create(ctx, in)
	return id, storeErr("create installation", err)
}

// OpenSession loads the attachment's steps and starts walking them.
func (s *InstallationService) OpenSession(ctx context.Context, userID int, p OpenParams) (SessionView, error) {
	if p.InstallationID > 0 {
		in, err := s.installs.GetByID(ctx, p.InstallationID)
		if err != nil {
			return SessionView{}, storeErr("get installation", err)
		}
		if in.UserID != userID {
			return SessionView{}, storeErr("get installation", repository.ErrNotFound)
		}
		p.MachineID, p.AttachmentID = in.MachineID, in.AttachmentID
	}
	if p.AttachmentID <= 0 {
		return SessionView{}, invalid("attachment_id or installation_id is required")
	}
	if _, err := s.attachments.GetByID(ctx, p.AttachmentID); err != nil {
		return SessionView{}, storeErr("get attachment", err)
	}
	steps, err := s.steps.ListByAttachment(ctx, p.AttachmentID)
	if err != nil {
		return SessionView{}, storeErr("list steps", err)
	}

	sess, err := s.sessions.Open(installation.OpenRequest{
		UserID:       userID,
		MachineID:    p.MachineID,
		AttachmentID: p.AttachmentID,
		ReaderID:     p.ReaderID,
		Steps:        steps,
	})
	if err != nil {
		return SessionView{}, err
	}
	s.audit(EventSessionOpened, fmt.Sprintf("session opened for attachment %d", p.AttachmentID), map[string]any{
		"session_id": sess.ID, "user_id": userID, "attachment_id": p.AttachmentID, "steps": len(steps),
	})
	return s.view(ctx, sess, sess.Progress(), nil), nil
}

// session returns the caller's own session; other users' sessions do not exist for them.
func (s *InstallationService) session(userID int, id string) (*installation.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, installation.ErrSessionNotFound
	}
	return sess, nil
}

func (s *InstallationService) GetSession(ctx context.Context, userID int, id string) (SessionView, error) {
	sess, err := s.session(userID, id)
	if err != nil {
		return SessionView{}, err
	}
	return s.view(ctx, sess, sess.Progress(), nil), nil
}

func (s *InstallationService) NextStep(ctx context.Context, userID int, id string) (SessionView, error) {
	sess, err := s.session(userID, id)
	if err != nil {
		return SessionView{}, err
	}
	before := sess.Progress()
	p, err := sess.Advance()
	if err == nil {
		s.auditStep(sess, before, p)
	}
	return s.view(ctx, sess, p, nil), err
}

func (s *InstallationService) PreviousStep(ctx context.Context, userID int, id string) (SessionView, error) {
	sess, err := s.session(userID, id)
	if err != nil {
		return SessionView{}, err
	}
	p, err := sess.Back()
	return s.view(ctx, sess, p, nil), err
}

func (s *InstallationService) BeginScan(ctx context.Context, userID int, id string, capable bool) (SessionView, error) {
	sess, err := s.session(userID, id)
	if err != nil {
		return SessionView{}, err
	}
	p, err := sess.BeginScan(ctx, capable)
	if errors.Is(err, scan.ErrUnavailable) {
		s.audit(EventScanError, err.Error(), map[string]any{"session_id": sess.ID, "step": p.Step})
	}
	return s.view(ctx, sess, p, nil), err
}

func (s *InstallationService) SubmitScan(ctx context.Context, userID int, id string, ev scan.Event) (SessionView, error) {
	sess, err := s.session(userID, id)
	if err != nil {
		return SessionView{}, err
	}
	p, err := sess.Deliver(ev)

	var tag *models.TagInfo
	if info, ok := installation.LookupTag(ev.Payload); ok {
		tag = &info
	}
	return s.view(ctx, sess, p, tag), err
}

func (s *InstallationService) CancelScan(ctx context.Context, userID int, id string) (SessionView, error) {
	sess, err := s.session(userID, id)
	if err != nil {
		return SessionView{}, err
	}
	p, err := sess.CancelScan()
	return s.view(ctx, sess, p, nil), err
}

func (s *InstallationService) ReportScanError(ctx context.Context, userID int, id string, message string) (SessionView, error) {
	sess, err := s.session(userID, id)
	if err != nil {
		return SessionView{}, err
	}
	if message == "" {
		message = scan.ErrGarbled.Error()
	}
	p, err := sess.ReportError(errors.New(message))
	if err == nil {
		s.audit(EventScanError, message, map[string]any{"session_id": sess.ID, "step": p.Step})
	}
	return s.view(ctx, sess, p, nil), err
}

func (s *InstallationService) CloseSession(_ context.Context, userID int, id string) error {
	sess, err := s.session(userID, id)
	if err != nil {
		return err
	}
	if err := s.sessions.Close(sess.ID); err != nil {
		return err
	}
	s.audit(EventSessionClosed, "session closed", map[string]any{"session_id": sess.ID})
	return nil
}

// Run sweeps idle sessions every tick and closes the rest on shutdown.
func (s *InstallationService) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.sessions.CloseAll()
			return
		case now := <-ticker.C:
			for _, id := range s.sessions.Sweep(now) {
				if s.log != nil {
					s.log.Infow("installation_session_expired", "session_id", id)
				}
				s.audit(EventSessionClosed, "session expired", map[string]any{"session_id": id})
			}
		}
	}
}

func (s *InstallationService) view(ctx context.Context, sess *installation.Session, p installation.Progress, tag *models.TagInfo) SessionView {
	v := SessionView{
		ID:           sess.ID,
		MachineID:    sess.MachineID,
		AttachmentID: sess.AttachmentID,
		ReaderID:     sess.ReaderID,
		OpenedAt:     sess.OpenedAt,
		Progress:     p,
		Tag:          tag,
	}
	if p.State == installation.Finished {
		v.Summary = s.summary(ctx, sess, p)
	}
	return v
}

func (s *InstallationService) summary(ctx context.Context, sess *installation.Session, p installation.Progress) *Summary {
	positions := make([]string, 0, len(p.Scans))
	for _, sc := range p.Scans {
		positions = append(positions, sc.Position)
	}
	sum := &Summary{
		Recommendation: installation.Recommend(positions),
		Scans:          p.Scans,
	}
	if a, err := s.attachments.GetByID(ctx, sess.AttachmentID); err == nil {
		sum.Attachment = a
	} else if s.log != nil {
		s.log.Warnw("summary_attachment_lookup_failed", "attachment_id", sess.AttachmentID, "err", err)
	}
	if sess.MachineID > 0 {
		if m, err := s.machines.GetByID(ctx, sess.MachineID); err == nil {
			sum.Machine = &m
		} else if s.log != nil {
			s.log.Warnw("summary_machine_lookup_failed", "machine_id", sess.MachineID, "err", err)
		}
	}
	return sum
}

// recordScan audits every applied scan, whichever source delivered it.
func (s *InstallationService) recordScan(sess *installation.Session, o installation.Outcome) {
	meta := map[string]any{
		"session_id": sess.ID,
		"origin":     o.Event.Origin,
		"payload":    o.Event.Payload,
		"step":       o.Progress.Step,
	}
	var rej *installation.ScanRejection
	switch {
	case o.Err == nil:
		s.audit(EventScanAccepted, "scan accepted", meta)
		if o.Progress.State == installation.Finished {
			s.audit(EventFinished, "installation finished", map[string]any{"session_id": sess.ID})
		}
	case errors.As(o.Err, &rej):
		meta["step"] = rej.Step
		meta["expected"] = rej.Expected
		s.audit(EventScanRejected, rej.Error(), meta)
	default:
		s.audit(EventScanError, o.Err.Error(), meta)
	}
}

func (s *InstallationService) auditStep(sess *installation.Session, before, after installation.Progress) {
	if after.Completed > before.Completed {
		s.audit(EventStepCompleted, fmt.Sprintf("step %d completed", before.Step+1), map[string]any{
			"session_id": sess.ID, "step": before.Step,
		})
	}
	if after.State == installation.Finished && before.State != installation.Finished {
		s.audit(EventFinished, "installation finished", map[string]any{"session_id": sess.ID})
	}
}

// audit never fails the caller; a lost audit entry is logged.
func (s *InstallationService) audit(typ, msg string, meta map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()
	err := s.events.Append(ctx, models.InstallationEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: msg,
		Metadata:    meta,
	})
	if err != nil && s.log != nil {
		s.log.Errorw("audit_append_failed", "type", typ, "err", err)
	}
}
