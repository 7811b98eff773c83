package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
)

func TestAppointmentRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAppointmentRepository(db)

	ana := seedDoctor(t, db, "Ana", "Lima")
	rui := seedDoctor(t, db, "Rui", "Costa")
	joao := seedPatient(t, db, "Joao", "Souza")
	maria := seedPatient(t, db, "Maria", "Souza")
	pedro := seedPatient(t, db, "Pedro", "Alves")

	at := func(day, hour int) time.Time {
		return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC)
	}
	schedule := func(patientID, doctorID uint, start time.Time) *entity.Appointment {
		t.Helper()
		end := start.Add(time.Hour)
		appointment := &entity.Appointment{
			PatientID: patientID,
			DoctorID:  &doctorID,
			Price:     decimal.RequireFromString("100"),
			StartTime: start,
			EndTime:   &end,
		}
		if err := repo.Save(ctx, appointment); err != nil {
			t.Fatalf("failed to save appointment: %v", err)
		}
		return appointment
	}

	first := schedule(joao.ID, ana.ID, at(1, 9))
	second := schedule(maria.ID, rui.ID, at(2, 9))
	third := schedule(pedro.ID, ana.ID, at(3, 9))

	doctorID := ana.ID
	from := at(2, 0)
	until := at(2, 23)

	tests := []struct {
		name   string
		filter adapter.AppointmentFilter
		want   []uint
	}{
		{
			name:   "no filter lists newest first",
			filter: adapter.AppointmentFilter{},
			want:   []uint{third.ID, second.ID, first.ID},
		},
		{
			name:   "by doctor",
			filter: adapter.AppointmentFilter{DoctorID: &doctorID},
			want:   []uint{third.ID, first.ID},
		},
		{
			name:   "start time lower bound",
			filter: adapter.AppointmentFilter{StartFrom: &from},
			want:   []uint{third.ID, second.ID},
		},
		{
			name:   "end time upper bound",
			filter: adapter.AppointmentFilter{EndUntil: &until},
			want:   []uint{second.ID, first.ID},
		},
		{
			name:   "patient last name ignores case",
			filter: adapter.AppointmentFilter{PatientSearch: "SOUZA"},
			want:   []uint{second.ID, first.ID},
		},
		{
			name:   "patient first name fragment",
			filter: adapter.AppointmentFilter{PatientSearch: "edr"},
			want:   []uint{third.ID},
		},
		{
			name:   "combined filters",
			filter: adapter.AppointmentFilter{DoctorID: &doctorID, PatientSearch: "souza"},
			want:   []uint{first.ID},
		},
		{
			name:   "no match",
			filter: adapter.AppointmentFilter{PatientSearch: "nobody"},
			want:   []uint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appointments, err := repo.FindAll(ctx, tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(appointments) != len(tt.want) {
				t.Fatalf("expected %d appointments, got %d", len(tt.want), len(appointments))
			}
			for i, appointment := range appointments {
				if appointment.Appointment.ID != tt.want[i] {
					t.Errorf("expected appointment %d at position %d, got %d", tt.want[i], i, appointment.Appointment.ID)
				}
				if appointment.Patient == nil {
					t.Errorf("expected patient loaded for appointment %d", appointment.Appointment.ID)
				}
			}
		})
	}
}
