package service

import (
	"context"
	"time"

	"hose_installation/internal/installation"
	"hose_installation/internal/logger"
	"hose_installation/internal/models"
	"hose_installation/internal/nfc"
	"hose_installation/internal/repository"
	"hose_installation/internal/scan"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (Identity, error)
}

// Catalog serves machines, attachments and their installation steps.
type Catalog interface {
	ListMachines(ctx context.Context) ([]models.Machine, error)
	GetMachine(ctx context.Context, id int64) (models.Machine, error)
	CreateMachine(ctx context.Context, m models.Machine) (int64, error)
	UpdateMachine(ctx context.Context, m models.Machine) error
	DeleteMachine(ctx context.Context, id int64) error

	ListAttachments(ctx context.Context) ([]models.Attachment, error)
	ListMachineAttachments(ctx context.Context, machineID int64) ([]models.Attachment, error)
	GetAttachment(ctx context.Context, id int64) (models.Attachment, error)
	CreateAttachment(ctx context.Context, a models.Attachment, machineIDs []int64) (int64, error)
	UpdateAttachment(ctx context.Context, a models.Attachment) error
	DeleteAttachment(ctx context.Context, id int64) error
	LinkAttachment(ctx context.Context, attachmentID, machineID int64) error
	UnlinkAttachment(ctx context.Context, attachmentID, machineID int64) error

	ListSteps(ctx context.Context, attachmentID int64) ([]models.InstallationStep, error)
	CreateStep(ctx context.Context, s models.InstallationStep) (int64, error)
	UpdateStep(ctx context.Context, s models.InstallationStep) error
	DeleteStep(ctx context.Context, id int64) error

	LookupTag(position string) (models.TagInfo, bool)
}

// MachineConfig serves the hydraulic layout of a machine.
type MachineConfig interface {
	ListValves(ctx context.Context, machineID int64) ([]models.Valve, error)
	CreateValve(ctx context.Context, v models.Valve) (int64, error)
	UpdateValve(ctx context.Context, v models.Valve) error
	DeleteValve(ctx context.Context, id int64) error

	ListCouplings(ctx context.Context, machineID int64) ([]models.HoseCoupling, error)
	CreateCoupling(ctx context.Context, c models.HoseCoupling) (int64, error)
	UpdateCoupling(ctx context.Context, c models.HoseCoupling) error
	DeleteCoupling(ctx context.Context, id int64) error

	ListHydraulicInputs(ctx context.Context, machineID int64) ([]models.HydraulicInput, error)
	CreateHydraulicInput(ctx context.Context, in models.HydraulicInput) (int64, error)
	UpdateHydraulicInput(ctx context.Context, in models.HydraulicInput) error
	DeleteHydraulicInput(ctx context.Context, id int64) error
}

type Users interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, id int, role string) error
}

// Installations drives installation sessions for authenticated users.
type Installations interface {
	ListInstallations(ctx context.Context, userID int) ([]models.Installation, error)
	CreateInstallation(ctx context.Context, in models.Installation) (int64, error)

	OpenSession(ctx context.Context, userID int, p OpenParams) (SessionView, error)
	GetSession(ctx context.Context, userID int, id string) (SessionView, error)
	NextStep(ctx context.Context, userID int, id string) (SessionView, error)
	PreviousStep(ctx context.Context, userID int, id string) (SessionView, error)
	BeginScan(ctx context.Context, userID int, id string, capable bool) (SessionView, error)
	SubmitScan(ctx context.Context, userID int, id string, ev scan.Event) (SessionView, error)
	CancelScan(ctx context.Context, userID int, id string) (SessionView, error)
	ReportScanError(ctx context.Context, userID int, id string, message string) (SessionView, error)
	CloseSession(ctx context.Context, userID int, id string) error
}

// Status exposes the NFC reader snapshots.
type Status interface {
	Current(ctx context.Context) models.StatusSnapshot
	PollNow(ctx context.Context) models.StatusSnapshot
	Subscribe() chan interface{}
	Unsubscribe(ch chan interface{})
}

// EventLog exposes the installation audit log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.InstallationEvent, error)
}

// Runner is a background loop stopped by cancelling ctx.
type Runner interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Authorization
	Catalog
	MachineConfig
	Users
	Installations
	Status
	EventLog

	// StatusMonitor polls the reader into the status hub.
	StatusMonitor Runner
	// SessionSweeper closes idle installation sessions.
	SessionSweeper Runner
}

// Deps carries what the services need beyond the repositories.
type Deps struct {
	Auth       AuthOptions
	Poller     *nfc.Poller
	Hub        *nfc.Hub
	SessionTTL time.Duration
	Readers    installation.ReaderFactory
	Logger     *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	status := NewStatusService(deps.Poller, deps.Hub, deps.Logger)
	installs := NewInstallationService(repos, deps.SessionTTL, deps.Readers, deps.Logger)
	return &Service{
		Authorization:  NewAuthService(repos.Auth, deps.Auth),
		Catalog:        NewCatalogService(repos),
		MachineConfig:  NewMachineConfigService(repos),
		Users:          NewUserService(repos.Auth),
		Installations:  installs,
		Status:         status,
		EventLog:       NewEventLogService(repos.EventRepo),
		StatusMonitor:  status,
		SessionSweeper: installs,
	}
}
