// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRole represents the role a clinic user acts in.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleDoctor  UserRole = "doctor"
	UserRolePatient UserRole = "patient"
)

// IsValid checks if the role is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleDoctor, UserRolePatient:
		return true
	}
	return false
}

// Doctor represents a clinic doctor. Balance is the running total of the
// doctor's earned share minus salary payouts.
type Doctor struct {
	ID        uint
	FirstName string
	LastName  string
	Phone     string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the doctor's display name.
func (d *Doctor) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// Patient represents a clinic patient.
type Patient struct {
	ID        uint
	FirstName string
	LastName  string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service represents a treatment offered by the clinic.
// KPIPercent is the share of each payment credited to the treating doctor.
type Service struct {
	ID         uint
	Name       string
	Price      decimal.Decimal
	KPIPercent decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var hundred = decimal.NewFromInt(100)

// ValidKPIPercent reports whether the KPI percent lies within [0, 100].
func (s *Service) ValidKPIPercent() bool {
	return !s.KPIPercent.IsNegative() && s.KPIPercent.LessThanOrEqual(hundred)
}

// ShareOf returns the doctor's share of amount, rounded to cents.
func (s *Service) ShareOf(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(s.KPIPercent).Div(hundred).Round(2)
}
