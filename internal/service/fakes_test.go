package service

import (
	"context"
	"sort"
	"sync"

	"hose_installation/internal/models"
	"hose_installation/internal/repository"
)

// memStore is an in-memory catalogue shared by the fake repositories below.
type memStore struct {
	mu          sync.Mutex
	machines    map[int64]models.Machine
	attachments map[int64]models.Attachment
	links       map[int64][]int64 // attachment -> machines
	steps       map[int64][]models.InstallationStep
	installs    map[int64]models.Installation
	nextID      int64
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{
		machines:    map[int64]models.Machine{},
		attachments: map[int64]models.Attachment{},
		links:       map[int64][]int64{},
		steps:       map[int64][]models.InstallationStep{},
		installs:    map[int64]models.Installation{},
		nextID:      100,
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// repos wires the store into a Repository, with ev as the event log.
func (m *memStore) repos(ev *fakeEventRepo) *repository.Repository {
	return &repository.Repository{
		Machines:      memMachines{m},
		Attachments:   memAttachments{m},
		Steps:         memSteps{m},
		Installations: memInstalls{m},
		EventRepo:     ev,
	}
}

type memMachines struct{ *memStore }

func (r memMachines) List(context.Context) ([]models.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]models.Machine, 0, len(r.machines))
	for _, m := range r.machines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memMachines) GetByID(_ context.Context, id int64) (models.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return models.Machine{}, r.failWith
	}
	m, ok := r.machines[id]
	if !ok {
		return models.Machine{}, repository.ErrNotFound
	}
	return m, nil
}

func (r memMachines) Create(_ context.Context, m models.Machine) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.id()
	r.machines[m.ID] = m
	return m.ID, nil
}

func (r memMachines) Update(_ context.Context, m models.Machine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.machines[m.ID]; !ok {
		return repository.ErrNotFound
	}
	r.machines[m.ID] = m
	return nil
}

func (r memMachines) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.machines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.machines, id)
	return nil
}

type memAttachments struct{ *memStore }

func (r memAttachments) List(context.Context) ([]models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Attachment, 0, len(r.attachments))
	for _, a := range r.attachments {
		out = append(out, a)
	}
	return out, nil
}

func (r memAttachments) ListByMachine(_ context.Context, machineID int64) ([]models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Attachment
	for aid, mids := range r.links {
		for _, mid := range mids {
			if mid == machineID {
				out = append(out, r.attachments[aid])
			}
		}
	}
	return out, nil
}

func (r memAttachments) GetByID(_ context.Context, id int64) (models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attachments[id]
	if !ok {
		return models.Attachment{}, repository.ErrNotFound
	}
	return a, nil
}

func (r memAttachments) Create(_ context.Context, a models.Attachment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.id()
	r.attachments[a.ID] = a
	return a.ID, nil
}

func (r memAttachments) Update(_ context.Context, a models.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attachments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	r.attachments[a.ID] = a
	return nil
}

func (r memAttachments) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attachments, id)
	return nil
}

func (r memAttachments) LinkMachine(_ context.Context, attachmentID, machineID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.machines[machineID]; !ok {
		return repository.ErrNotFound
	}
	r.links[attachmentID] = append(r.links[attachmentID], machineID)
	return nil
}

func (r memAttachments) UnlinkMachine(_ context.Context, attachmentID, machineID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mids := r.links[attachmentID]
	for i, mid := range mids {
		if mid == machineID {
			r.links[attachmentID] = append(mids[:i], mids[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memSteps struct{ *memStore }

func (r memSteps) ListByAttachment(_ context.Context, attachmentID int64) ([]models.InstallationStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.InstallationStep(nil), r.steps[attachmentID]...), nil
}

func (r memSteps) Create(_ context.Context, s models.InstallationStep) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.id()
	r.steps[s.AttachmentID] = append(r.steps[s.AttachmentID], s)
	return s.ID, nil
}

func (r memSteps) Update(context.Context, models.InstallationStep) error { return nil }

func (r memSteps) Delete(context.Context, int64) error { return nil }

type memInstalls struct{ *memStore }

func (r memInstalls) GetByID(_ context.Context, id int64) (models.Installation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.installs[id]
	if !ok {
		return models.Installation{}, repository.ErrNotFound
	}
	return in, nil
}

func (r memInstalls) Create(_ context.Context, in models.Installation) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = r.id()
	r.installs[in.ID] = in
	return in.ID, nil
}

func (r memInstalls) ListByUser(_ context.Context, userID int) ([]models.Installation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Installation
	for _, in := range r.installs {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out, nil
}
