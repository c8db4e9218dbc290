package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"hose_installation/internal/installation"
	"hose_installation/internal/models"
	"hose_installation/internal/scan"
	"hose_installation/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseRole     string
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (service.Identity, error) {
	m.lastParseToken = token
	role := m.parseRole
	if role == "" {
		role = models.RoleUser
	}
	return service.Identity{UserID: m.parseID, Role: role}, m.parseErr
}

type mockCatalog struct {
	machines    []models.Machine
	machine     models.Machine
	attachments []models.Attachment
	attachment  models.Attachment
	steps       []models.InstallationStep
	createdID   int64
	err         error

	lastID         int64
	lastMachine    models.Machine
	lastAttachment models.Attachment
	lastMachineIDs []int64
	lastStep       models.InstallationStep
	calls          int
}

func (m *mockCatalog) ListMachines(context.Context) ([]models.Machine, error) {
	m.calls++
	return m.machines, m.err
}
func (m *mockCatalog) GetMachine(_ context.Context, id int64) (models.Machine, error) {
	m.lastID = id
	return m.machine, m.err
}
func (m *mockCatalog) CreateMachine(_ context.Context, mc models.Machine) (int64, error) {
	m.lastMachine = mc
	return m.createdID, m.err
}
func (m *mockCatalog) UpdateMachine(_ context.Context, mc models.Machine) error {
	m.lastMachine = mc
	return m.err
}
func (m *mockCatalog) DeleteMachine(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}
func (m *mockCatalog) ListAttachments(context.Context) ([]models.Attachment, error) {
	return m.attachments, m.err
}
func (m *mockCatalog) ListMachineAttachments(_ context.Context, machineID int64) ([]models.Attachment, error) {
	m.lastID = machineID
	return m.attachments, m.err
}
func (m *mockCatalog) GetAttachment(_ context.Context, id int64) (models.Attachment, error) {
	m.lastID = id
	return m.attachment, m.err
}
func (m *mockCatalog) CreateAttachment(_ context.Context, a models.Attachment, machineIDs []int64) (int64, error) {
	m.lastAttachment = a
	m.lastMachineIDs = machineIDs
	return m.createdID, m.err
}
func (m *mockCatalog) UpdateAttachment(_ context.Context, a models.Attachment) error {
	m.lastAttachment = a
	return m.err
}
func (m *mockCatalog) DeleteAttachment(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}
func (m *mockCatalog) LinkAttachment(_ context.Context, attachmentID, machineID int64) error {
	m.lastID = attachmentID
	m.lastMachineIDs = []int64{machineID}
	return m.err
}
func (m *mockCatalog) UnlinkAttachment(_ context.Context, attachmentID, machineID int64) error {
	m.lastID = attachmentID
	m.lastMachineIDs = []int64{machineID}
	return m.err
}
func (m *mockCatalog) ListSteps(_ context.Context, attachmentID int64) ([]models.InstallationStep, error) {
	m.lastID = attachmentID
	return m.steps, m.err
}
func (m *mockCatalog) CreateStep(_ context.Context, s models.InstallationStep) (int64, error) {
	m.lastStep = s
	return m.createdID, m.err
}
func (m *mockCatalog) UpdateStep(_ context.Context, s models.InstallationStep) error {
	m.lastStep = s
	return m.err
}
func (m *mockCatalog) DeleteStep(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}
func (m *mockCatalog) LookupTag(position string) (models.TagInfo, bool) {
	return installation.LookupTag(position)
}

type mockMachineConfig struct {
	valves    []models.Valve
	couplings []models.HoseCoupling
	inputs    []models.HydraulicInput
	createdID int64
	err       error

	lastID       int64
	lastValve    models.Valve
	lastCoupling models.HoseCoupling
	lastInput    models.HydraulicInput
}

func (m *mockMachineConfig) ListValves(_ context.Context, machineID int64) ([]models.Valve, error) {
	m.lastID = machineID
	return m.valves, m.err
}
func (m *mockMachineConfig) CreateValve(_ context.Context, v models.Valve) (int64, error) {
	m.lastValve = v
	return m.createdID, m.err
}
func (m *mockMachineConfig) UpdateValve(_ context.Context, v models.Valve) error {
	m.lastValve = v
	return m.err
}
func (m *mockMachineConfig) DeleteValve(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}
func (m *mockMachineConfig) ListCouplings(_ context.Context, machineID int64) ([]models.HoseCoupling, error) {
	m.lastID = machineID
	return m.couplings, m.err
}
func (m *mockMachineConfig) CreateCoupling(_ context.Context, c models.HoseCoupling) (int64, error) {
	m.lastCoupling = c
	return m.createdID, m.err
}
func (m *mockMachineConfig) UpdateCoupling(_ context.Context, c models.HoseCoupling) error {
	m.lastCoupling = c
	return m.err
}
func (m *mockMachineConfig) DeleteCoupling(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}
func (m *mockMachineConfig) ListHydraulicInputs(_ context.Context, machineID int64) ([]models.HydraulicInput, error) {
	m.lastID = machineID
	return m.inputs, m.err
}
func (m *mockMachineConfig) CreateHydraulicInput(_ context.Context, in models.HydraulicInput) (int64, error) {
	m.lastInput = in
	return m.createdID, m.err
}
func (m *mockMachineConfig) UpdateHydraulicInput(_ context.Context, in models.HydraulicInput) error {
	m.lastInput = in
	return m.err
}
func (m *mockMachineConfig) DeleteHydraulicInput(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}

type mockUsers struct {
	users    []models.User
	err      error
	lastID   int
	lastRole string
}

func (m *mockUsers) ListUsers(context.Context) ([]models.User, error) { return m.users, m.err }
func (m *mockUsers) SetRole(_ context.Context, id int, role string) error {
	m.lastID = id
	m.lastRole = role
	return m.err
}

type mockInstallations struct {
	view        service.SessionView
	err         error
	installs    []models.Installation
	createdID   int64
	lastUser    int
	lastSession string
	lastParams  service.OpenParams
	lastEvent   scan.Event
	lastCapable bool
	lastMessage string
	lastInstall models.Installation
	lastOp      string
}

func (m *mockInstallations) record(op string, userID int, id string) (service.SessionView, error) {
	m.lastOp = op
	m.lastUser = userID
	m.lastSession = id
	return m.view, m.err
}

func (m *mockInstallations) ListInstallations(_ context.Context, userID int) ([]models.Installation, error) {
	m.lastUser = userID
	return m.installs, m.err
}
func (m *mockInstallations) CreateInstallation(_ context.Context, in models.Installation) (int64, error) {
	m.lastInstall = in
	return m.createdID, m.err
}
func (m *mockInstallations) OpenSession(_ context.Context, userID int, p service.OpenParams) (service.SessionView, error) {
	m.lastParams = p
	return m.record("open", userID, "")
}
func (m *mockInstallations) GetSession(_ context.Context, userID int, id string) (service.SessionView, error) {
	return m.record("get", userID, id)
}
func (m *mockInstallations) NextStep(_ context.Context, userID int, id string) (service.SessionView, error) {
	return m.record("next", userID, id)
}
func (m *mockInstallations) PreviousStep(_ context.Context, userID int, id string) (service.SessionView, error) {
	return m.record("back", userID, id)
}
func (m *mockInstallations) BeginScan(_ context.Context, userID int, id string, capable bool) (service.SessionView, error) {
	m.lastCapable = capable
	return m.record("begin_scan", userID, id)
}
func (m *mockInstallations) SubmitScan(_ context.Context, userID int, id string, ev scan.Event) (service.SessionView, error) {
	m.lastEvent = ev
	return m.record("scan", userID, id)
}
func (m *mockInstallations) CancelScan(_ context.Context, userID int, id string) (service.SessionView, error) {
	return m.record("cancel_scan", userID, id)
}
func (m *mockInstallations) ReportScanError(_ context.Context, userID int, id string, message string) (service.SessionView, error) {
	m.lastMessage = message
	return m.record("scan_error", userID, id)
}
func (m *mockInstallations) CloseSession(_ context.Context, userID int, id string) error {
	_, err := m.record("close", userID, id)
	return err
}

// mockStatus serves a fixed snapshot and hands out a single shared update channel.
type mockStatus struct {
	mu      sync.Mutex
	snap    models.StatusSnapshot
	polled  int
	updates chan interface{}
	unsubs  int
}

func (m *mockStatus) Current(context.Context) models.StatusSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}
func (m *mockStatus) PollNow(context.Context) models.StatusSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polled++
	return m.snap
}
func (m *mockStatus) Subscribe() chan interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updates == nil {
		m.updates = make(chan interface{}, 4)
	}
	return m.updates
}
func (m *mockStatus) Unsubscribe(chan interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubs++
}

type mockEventLog struct {
	resp     []models.InstallationEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.InstallationEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) http.Handler {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
