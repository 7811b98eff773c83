// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/application/usecase/finance"
	"github.com/dental-clinic/backend/internal/domain/entity"
)

// AppointmentListQuery represents the query parameters of GET /appointments.
// Times accept RFC 3339 or a plain YYYY-MM-DD date.
type AppointmentListQuery struct {
	Doctor        *uint  `form:"doctor" binding:"omitempty,min=1"`
	StartTime     string `form:"start_time"`
	EndTime       string `form:"end_time"`
	PatientSearch string `form:"patient_search"`
}

// AppointmentResponse represents an appointment in API responses.
type AppointmentResponse struct {
	ID        uint             `json:"id"`
	PatientID uint             `json:"patient_id"`
	DoctorID  *uint            `json:"doctor_id"`
	ServiceID *uint            `json:"service_id"`
	Price     decimal.Decimal  `json:"price"`
	Status    string           `json:"status"`
	StartTime time.Time        `json:"start_time"`
	EndTime   *time.Time       `json:"end_time,omitempty"`
	TotalPaid *decimal.Decimal `json:"total_paid,omitempty"`
	Patient   *PersonResponse  `json:"patient,omitempty"`
	Doctor    *PersonResponse  `json:"doctor,omitempty"`
	Service   *ServiceResponse `json:"service,omitempty"`
}

// PersonResponse represents a patient or doctor summary.
type PersonResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// ServiceResponse represents a clinic service.
type ServiceResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	KPIPercent decimal.Decimal `json:"kpi_percent"`
}

// AppointmentListResponse represents the response for listing appointments.
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// StatusChangeResponse represents the outcome of a status recomputation.
type StatusChangeResponse struct {
	AppointmentID  uint            `json:"appointment_id"`
	PreviousStatus string          `json:"previous_status"`
	Status         string          `json:"status"`
	Price          decimal.Decimal `json:"price"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Overpaid       bool            `json:"overpaid"`
}

// ToAppointmentResponse converts an appointment entity to a DTO.
func ToAppointmentResponse(a *entity.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		ServiceID: a.ServiceID,
		Price:     a.Price,
		Status:    string(a.Status),
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}
}

// ToAppointmentListResponse converts appointments with relations to a DTO.
func ToAppointmentListResponse(appointments []*entity.AppointmentWithRelations) AppointmentListResponse {
	response := AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		item := ToAppointmentResponse(a.Appointment)
		totalPaid := a.TotalPaid
		item.TotalPaid = &totalPaid

		if a.Patient != nil {
			item.Patient = &PersonResponse{
				ID:        a.Patient.ID,
				FirstName: a.Patient.FirstName,
				LastName:  a.Patient.LastName,
				Phone:     a.Patient.Phone,
			}
		}
		if a.Doctor != nil {
			item.Doctor = &PersonResponse{
				ID:        a.Doctor.ID,
				FirstName: a.Doctor.FirstName,
				LastName:  a.Doctor.LastName,
			}
		}
		if a.Service != nil {
			item.Service = &ServiceResponse{
				ID:         a.Service.ID,
				Name:       a.Service.Name,
				Price:      a.Service.Price,
				KPIPercent: a.Service.KPIPercent,
			}
		}

		response.Appointments = append(response.Appointments, item)
	}

	return response
}

// ToStatusChangeResponse converts a status change to a DTO.
func ToStatusChangeResponse(c *finance.StatusChange) StatusChangeResponse {
	return StatusChangeResponse{
		AppointmentID:  c.AppointmentID,
		PreviousStatus: string(c.Previous),
		Status:         string(c.Current),
		Price:          c.Price,
		TotalPaid:      c.TotalPaid,
		Overpaid:       c.Overpaid,
	}
}
