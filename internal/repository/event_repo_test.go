package repository

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"hose_installation/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var eventColumns = []string{"id", "occurred_at", "type", "message", "meta"}

func TestEventSQLite_Append_FillsDefaultsAndNormalizesType(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "SCAN_ACCEPTED", "scan accepted", `{"position":"SUPPLY_LEFT"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewEventSQLite(db).Append(ctx(t), models.InstallationEvent{
		Type:        "  scan_accepted ",
		Description: "scan accepted",
		Metadata:    map[string]string{"position": "SUPPLY_LEFT"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestEventSQLite_Append_DBError(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO installation_events").WillReturnError(errors.New("down"))

	err := NewEventSQLite(db).Append(ctx(t), models.InstallationEvent{Type: "finished", Description: "x"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestEventSQLite_List_NoFilters_ParsesMetadata(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"session": "abc"})
	rows := sqlmock.NewRows(eventColumns).
		AddRow("1", now, "SESSION_OPENED", "m1", string(js)).
		AddRow("2", now.Add(time.Hour), "FINISHED", "m2", nil)
	mock.ExpectQuery(regexp.QuoteMeta(selectEventSQL + " ORDER BY occurred_at ASC")).WillReturnRows(rows)

	got, err := NewEventSQLite(db).List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "1" || got[1].EventID != "2" {
		t.Fatalf("unexpected events: %+v", got)
	}
	b, _ := json.Marshal(got[0].Metadata)
	if string(b) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", b, js)
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil meta, got %#v", got[1].Metadata)
	}
}

func TestEventSQLite_List_WithFilters(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	query := selectEventSQL + " WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC"

	rows := sqlmock.NewRows(eventColumns).AddRow("2", from, "SCAN_REJECTED", "b", nil)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(from.Format(sqliteTimestampLayout), to.Format(sqliteTimestampLayout), "SCAN_REJECTED").WillReturnRows(rows)

	got, err := NewEventSQLite(db).List(ctx(t), from, to, " scan_rejected ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Type != "SCAN_REJECTED" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestEventSQLite_List_ScanError(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows(eventColumns).AddRow("x", 123, "FINISHED", "msg", nil)
	mock.ExpectQuery(regexp.QuoteMeta(selectEventSQL + " ORDER BY occurred_at ASC")).WillReturnRows(rows)

	if _, err := NewEventSQLite(db).List(ctx(t), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
}
