package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDerivePaymentStatus(t *testing.T) {
	price := decimal.RequireFromString("200.00")

	tests := []struct {
		name             string
		current          AppointmentStatus
		total            string
		expectedStatus   AppointmentStatus
		expectedOverpaid bool
	}{
		{
			name:           "no payments keeps pending",
			current:        AppointmentStatusPending,
			total:          "0",
			expectedStatus: AppointmentStatusPending,
		},
		{
			name:           "no payments keeps cancelled",
			current:        AppointmentStatusCancelled,
			total:          "0",
			expectedStatus: AppointmentStatusCancelled,
		},
		{
			name:           "partial payment",
			current:        AppointmentStatusPending,
			total:          "50.00",
			expectedStatus: AppointmentStatusPartiallyPaid,
		},
		{
			name:           "exact payment",
			current:        AppointmentStatusPartiallyPaid,
			total:          "200.00",
			expectedStatus: AppointmentStatusFullyPaid,
		},
		{
			name:             "overpayment folds into fully paid",
			current:          AppointmentStatusPending,
			total:            "250.00",
			expectedStatus:   AppointmentStatusFullyPaid,
			expectedOverpaid: true,
		},
		{
			name:           "refund below zero turns paid appointment unpaid",
			current:        AppointmentStatusFullyPaid,
			total:          "-10.00",
			expectedStatus: AppointmentStatusUnpaid,
		},
		{
			name:           "refund below zero keeps cancelled",
			current:        AppointmentStatusCancelled,
			total:          "-10.00",
			expectedStatus: AppointmentStatusCancelled,
		},
		{
			name:           "payment on cancelled appointment",
			current:        AppointmentStatusCancelled,
			total:          "20.00",
			expectedStatus: AppointmentStatusPartiallyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, overpaid := DerivePaymentStatus(tt.current, price, decimal.RequireFromString(tt.total))
			if status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, status)
			}
			if overpaid != tt.expectedOverpaid {
				t.Errorf("expected overpaid %v, got %v", tt.expectedOverpaid, overpaid)
			}
		})
	}
}

func TestAppointmentStatus_IsValid(t *testing.T) {
	if !AppointmentStatusPartiallyPaid.IsValid() {
		t.Error("expected partially_paid to be valid")
	}
	if AppointmentStatus("refunded").IsValid() {
		t.Error("expected refunded to be invalid")
	}
}

func TestService_ShareOf(t *testing.T) {
	tests := []struct {
		name     string
		kpi      string
		amount   string
		expected string
	}{
		{name: "half share", kpi: "50", amount: "200.00", expected: "100.00"},
		{name: "fractional percent", kpi: "12.5", amount: "80.00", expected: "10.00"},
		{name: "rounds to cents", kpi: "33.33", amount: "10.00", expected: "3.33"},
		{name: "zero percent", kpi: "0", amount: "150.00", expected: "0"},
		{name: "negative amount", kpi: "40", amount: "-50.00", expected: "-20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &Service{KPIPercent: decimal.RequireFromString(tt.kpi)}
			share := service.ShareOf(decimal.RequireFromString(tt.amount))
			if !share.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("expected share %s, got %s", tt.expected, share.String())
			}
		})
	}
}

func TestService_ValidKPIPercent(t *testing.T) {
	tests := []struct {
		kpi   string
		valid bool
	}{
		{"0", true},
		{"100", true},
		{"45.50", true},
		{"-1", false},
		{"100.01", false},
	}

	for _, tt := range tests {
		service := &Service{KPIPercent: decimal.RequireFromString(tt.kpi)}
		if service.ValidKPIPercent() != tt.valid {
			t.Errorf("kpi %s: expected valid=%v", tt.kpi, tt.valid)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	in := time.Date(2024, 3, 15, 22, 45, 10, 5, loc)

	got := NormalizeDate(in)
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC location, got %s", got.Location())
	}
}

func TestUserRole_IsValid(t *testing.T) {
	for _, role := range []UserRole{UserRoleAdmin, UserRoleDoctor, UserRolePatient} {
		if !role.IsValid() {
			t.Errorf("expected %s to be valid", role)
		}
	}
	if UserRole("receptionist").IsValid() {
		t.Error("expected receptionist to be invalid")
	}
}

func TestDoctor_FullName(t *testing.T) {
	if name := (&Doctor{FirstName: "Ana"}).FullName(); name != "Ana" {
		t.Errorf("expected Ana, got %q", name)
	}
	if name := (&Doctor{FirstName: "Ana", LastName: "Lima"}).FullName(); name != "Ana Lima" {
		t.Errorf("expected Ana Lima, got %q", name)
	}
}

func TestNewBalanceEntry(t *testing.T) {
	entry := NewBalanceEntry(7, BalanceEntrySalaryDebit, 3,
		decimal.RequireFromString("1000.00"), decimal.RequireFromString("-500.00"))

	if !entry.BalanceAfter.Equal(decimal.RequireFromString("500.00")) {
		t.Errorf("expected balance after 500.00, got %s", entry.BalanceAfter.String())
	}
	if entry.DoctorID != 7 || entry.SourceID != 3 {
		t.Errorf("unexpected doctor/source ids %d/%d", entry.DoctorID, entry.SourceID)
	}
}
