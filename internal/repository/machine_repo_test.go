package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"hose_installation/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var machineRowColumns = []string{"id", "name", "type", "working_pressure_bar", "max_pressure_bar", "flow_lpm", "power_w", "description", "created_at"}

func TestMachineSQLite_List_KeepsStoreOrder(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(machineRowColumns).
		AddRow(2, "Fendt 724", "tractor", 200.0, 210.0, 110.0, 176000.0, "", created).
		AddRow(1, "JCB 3CX", "backhoe", 230.0, 250.0, 160.0, 81000.0, "yard", created)
	mock.ExpectQuery(regexp.QuoteMeta(selectMachinesSQL)).WillReturnRows(rows)

	got, err := NewMachineSQLite(db).List(ctx(t))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Fendt 724" || got[1].Name != "JCB 3CX" {
		t.Fatalf("unexpected machines: %+v", got)
	}
	if got[1].MaxPressureBar != 250 || got[1].Description != "yard" {
		t.Fatalf("columns not mapped: %+v", got[1])
	}
}

func TestMachineSQLite_List_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectMachinesSQL)).WillReturnRows(sqlmock.NewRows(machineRowColumns))

	got, err := NewMachineSQLite(db).List(ctx(t))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestMachineSQLite_GetByID(t *testing.T) {
	tests := []struct {
		name    string
		expect  func(sqlmock.Sqlmock)
		wantErr error
		anyErr  bool
	}{
		{
			name: "found",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectMachineByIDSQL)).WithArgs(int64(5)).
					WillReturnRows(sqlmock.NewRows(machineRowColumns).
						AddRow(5, "Deutz", "tractor", 180.0, 200.0, 90.0, 0.0, "", time.Now()))
			},
		},
		{
			name: "missing",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectMachineByIDSQL)).WithArgs(int64(5)).
					WillReturnRows(sqlmock.NewRows(machineRowColumns))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "driver failure",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectMachineByIDSQL)).WithArgs(int64(5)).
					WillReturnError(errors.New("disk I/O error"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.expect(mock)

			m, err := NewMachineSQLite(db).GetByID(ctx(t), 5)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
			case tt.anyErr:
				if err == nil || errors.Is(err, ErrNotFound) {
					t.Fatalf("want driver error, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("GetByID: %v", err)
				}
				if m.ID != 5 || m.Name != "Deutz" {
					t.Fatalf("unexpected machine: %+v", m)
				}
			}
		})
	}
}

func TestMachineSQLite_Create(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(insertMachineSQL)).
		WithArgs("Fendt 724", "tractor", 200.0, 210.0, 110.0, 0.0, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := NewMachineSQLite(db).Create(ctx(t), models.Machine{
		Name: "Fendt 724", Type: "tractor", WorkingPressureBar: 200, MaxPressureBar: 210, FlowLPM: 110,
	})
	if err != nil || id != 11 {
		t.Fatalf("Create = (%d, %v), want (11, nil)", id, err)
	}
}

func TestMachineSQLite_UpdateDelete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(updateMachineSQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(deleteMachineSQL)).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewMachineSQLite(db)
	if err := repo.Update(ctx(t), models.Machine{ID: 3, Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update: want ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx(t), 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: want ErrNotFound, got %v", err)
	}
}
