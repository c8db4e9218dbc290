package service

import (
	"context"
	"strings"

	"hose_installation/internal/installation"
	"hose_installation/internal/models"
	"hose_installation/internal/repository"
)

type CatalogService struct {
	machines    repository.MachineRepo
	attachments repository.AttachmentRepo
	steps       repository.StepRepo
}

func NewCatalogService(repos *repository.Repository) *CatalogService {
	return &CatalogService{
		machines:    repos.Machines,
		attachments: repos.Attachments,
		steps:       repos.Steps,
	}
}

func (s *CatalogService) ListMachines(ctx context.Context) ([]models.Machine, error) {
	out, err := s.machines.List(ctx)
	return out, storeErr("list machines", err)
}

func (s *CatalogService) GetMachine(ctx context.Context, id int64) (models.Machine, error) {
	m, err := s.machines.GetByID(ctx, id)
	return m, storeErr("get machine", err)
}

func validMachine(m models.Machine) error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return invalid("machine name is required")
	case m.WorkingPressureBar < 0 || m.MaxPressureBar < 0 || m.FlowLPM < 0 || m.PowerW < 0:
		return invalid("machine specifications cannot be negative")
	case m.MaxPressureBar > 0 && m.WorkingPressureBar > m.MaxPressureBar:
		return invalid("working pressure exceeds max pressure")
	}
	return nil
}

func (s *CatalogService) CreateMachine(ctx context.Context, m models.Machine) (int64, error) {
	if err := validMachine(m); err != nil {
		return 0, err
	}
	id, err := s.machines.Create(ctx, m)
	return id, storeErr("create machine", err)
}

func (s *CatalogService) UpdateMachine(ctx context.Context, m models.Machine) error {
	if err := validMachine(m); err != nil {
		return err
	}
	return storeErr("update machine", s.machines.Update(ctx, m))
}

func (s *CatalogService) DeleteMachine(ctx context.Context, id int64) error {
	return storeErr("delete machine", s.machines.Delete(ctx, id))
}

func (s *CatalogService) ListAttachments(ctx context.Context) ([]models.Attachment, error) {
	out, err := s.attachments.List(ctx)
	return out, storeErr("list attachments", err)
}

// ListMachineAttachments fails with 404 when the machine itself is unknown.
func (s *CatalogService) ListMachineAttachments(ctx context.Context, machineID int64) ([]models.Attachment, error) {
	if _, err := s.machines.GetByID(ctx, machineID); err != nil {
		return nil, storeErr("get machine", err)
	}
	out, err := s.attachments.ListByMachine(ctx, machineID)
	return out, storeErr("list machine attachments", err)
}

func (s *CatalogService) GetAttachment(ctx context.Context, id int64) (models.Attachment, error) {
	a, err := s.attachments.GetByID(ctx, id)
	return a, storeErr("get attachment", err)
}

// CreateAttachment stores the attachment and links it to each given machine.
func (s *CatalogService) CreateAttachment(ctx context.Context, a models.Attachment, machineIDs []int64) (int64, error) {
	if strings.TrimSpace(a.Name) == "" {
		return 0, invalid("attachment name is required")
	}
	id, err := s.attachments.Create(ctx, a)
	if err != nil {
		return 0, storeErr("create attachment", err)
	}
	for _, mid := range machineIDs {
		if err := s.attachments.LinkMachine(ctx, id, mid); err != nil {
			return id, storeErr("link attachment", err)
		}
	}
	return id, nil
}

func (s *CatalogService) UpdateAttachment(ctx context.Context, a models.Attachment) error {
	if strings.TrimSpace(a.Name) == "" {
		return invalid("attachment name is required")
	}
	return storeErr("update attachment", s.attachments.Update(ctx, a))
}

func (s *CatalogService) DeleteAttachment(ctx context.Context, id int64) error {
	return storeErr("delete attachment", s.attachments.Delete(ctx, id))
}

func (s *CatalogService) LinkAttachment(ctx context.Context, attachmentID, machineID int64) error {
	return storeErr("link attachment", s.attachments.LinkMachine(ctx, attachmentID, machineID))
}

func (s *CatalogService) UnlinkAttachment(ctx context.Context, attachmentID, machineID int64) error {
	return storeErr("unlink attachment", s.attachments.UnlinkMachine(ctx, attachmentID, machineID))
}

func (s *CatalogService) ListSteps(ctx context.Context, attachmentID int64) ([]models.InstallationStep, error) {
	if _, err := s.attachments.GetByID(ctx, attachmentID); err != nil {
		return nil, storeErr("get attachment", err)
	}
	out, err := s.steps.ListByAttachment(ctx, attachmentID)
	return out, storeErr("list steps", err)
}

func validStep(st models.InstallationStep) error {
	switch {
	case st.StepNumber < 1:
		return invalid("step_number must be positive")
	case strings.TrimSpace(st.Description) == "":
		return invalid("step description is required")
	case !st.ScanRequired && strings.TrimSpace(st.ExpectedPosition) != "":
		return invalid("expected_position needs scan_required")
	}
	return nil
}

func (s *CatalogService) CreateStep(ctx context.Context, st models.InstallationStep) (int64, error) {
	if err := validStep(st); err != nil {
		return 0, err
	}
	id, err := s.steps.Create(ctx, st)
	return id, storeErr("create step", err)
}

func (s *CatalogService) UpdateStep(ctx context.Context, st models.InstallationStep) error {
	if err := validStep(st); err != nil {
		return err
	}
	return storeErr("update step", s.steps.Update(ctx, st))
}

func (s *CatalogService) DeleteStep(ctx context.Context, id int64) error {
	return storeErr("delete step", s.steps.Delete(ctx, id))
}

func (s *CatalogService) LookupTag(position string) (models.TagInfo, bool) {
	return installation.LookupTag(position)
}
