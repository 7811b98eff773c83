// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the payment status of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending       AppointmentStatus = "pending"
	AppointmentStatusFullyPaid     AppointmentStatus = "fully_paid"
	AppointmentStatusPartiallyPaid AppointmentStatus = "partially_paid"
	AppointmentStatusUnpaid        AppointmentStatus = "unpaid"
	AppointmentStatusCancelled     AppointmentStatus = "cancelled"
)

// IsValid reports whether s is a known appointment status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending,
		AppointmentStatusFullyPaid,
		AppointmentStatusPartiallyPaid,
		AppointmentStatusUnpaid,
		AppointmentStatusCancelled:
		return true
	}
	return false
}

// isPaymentDerived reports whether the status was produced from recorded profits.
func (s AppointmentStatus) isPaymentDerived() bool {
	return s == AppointmentStatusFullyPaid || s == AppointmentStatusPartiallyPaid
}

// Appointment represents a scheduled treatment of a patient by a doctor.
// Scheduling owns its lifecycle; the finance core only writes Status.
type Appointment struct {
	ID        uint
	PatientID uint
	DoctorID  *uint // Nil when the doctor was removed
	ServiceID *uint // Nil when the service was removed
	Price     decimal.Decimal
	Status    AppointmentStatus
	StartTime time.Time
	EndTime   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentWithRelations represents an appointment with its eagerly loaded associations.
type AppointmentWithRelations struct {
	Appointment *Appointment
	Patient     *Patient
	Doctor      *Doctor
	Service     *Service
	TotalPaid   decimal.Decimal
}

// DerivePaymentStatus computes an appointment status from the sum of its profits.
//
// A zero total keeps the current status, so pending and cancelled appointments
// stay as they are until money arrives. A total above the price is folded into
// fully paid and reported through overpaid so the caller can flag it for review.
// A negative total (compensating entries exceeding payments) turns a
// payment-derived status into unpaid.
func DerivePaymentStatus(current AppointmentStatus, price, totalPaid decimal.Decimal) (status AppointmentStatus, overpaid bool) {
	switch {
	case totalPaid.IsZero():
		return current, false
	case totalPaid.IsNegative():
		if current.isPaymentDerived() {
			return AppointmentStatusUnpaid, false
		}
		return current, false
	case totalPaid.LessThan(price):
		return AppointmentStatusPartiallyPaid, false
	case totalPaid.Equal(price):
		return AppointmentStatusFullyPaid, false
	default:
		return AppointmentStatusFullyPaid, true
	}
}
