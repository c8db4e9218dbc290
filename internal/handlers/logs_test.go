package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"hose_installation/internal/models"
	"hose_installation/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99, parseRole: models.RoleAdmin}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.InstallationEvent{
		{EventID: "e1", OccurredAt: now, Type: service.EventSessionOpened, Description: "opened"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: service.EventScanAccepted, Description: "scan"},
	}
	logs := &mockEventLog{resp: events}
	r := newTestRouter(&service.Service{Authorization: auth, EventLog: logs})

	w := doJSON(r, http.MethodGet, "/api/v1/admin/logs?from=notatime", "", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/admin/logs?from=2025-08-02&to=2025-08-01", "", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for reversed range, got %d", w.Code)
	}

	q := "/api/v1/admin/logs?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=scan_accepted"
	w = doJSON(r, http.MethodGet, q, "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                        `json:"count"`
		Events []models.InstallationEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != service.EventScanAccepted {
		t.Fatalf("expected lastType %s, got %q", service.EventScanAccepted, logs.lastType)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseRole: models.RoleAdmin}, EventLog: logs})

	w := doJSON(r, http.MethodGet, "/api/v1/admin/logs?to=2025-08-31", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	want := time.Date(2025, time.August, 31, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(want) {
		t.Fatalf("lastTo=%v, want %v", logs.lastTo, want)
	}
}

func TestLogsHandler_RequiresAdmin(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseRole: models.RoleUser}, EventLog: &mockEventLog{}})
	if w := doJSON(r, http.MethodGet, "/api/v1/admin/logs", "", "valid"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
