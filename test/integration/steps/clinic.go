package steps

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
	"github.com/dental-clinic/backend/internal/integration/persistence"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

// registerClinicSteps registers fixture, background job and storage steps.
func registerClinicSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^a doctor "([^"]*)" with id (\d+) and balance "([^"]*)"$`, aDoctorWithBalance)
	ctx.Step(`^a patient "([^"]*)" with id (\d+) and phone "([^"]*)"$`, aPatientWithPhone)
	ctx.Step(`^a service "([^"]*)" with id (\d+) priced "([^"]*)" with kpi "([^"]*)"$`, aServiceWithKPI)
	ctx.Step(`^appointment (\d+) for patient (\d+) with doctor (\d+) and service (\d+) priced "([^"]*)"$`, anAppointment)
	ctx.Step(`^the stored balance of doctor (\d+) is overwritten with "([^"]*)"$`, theStoredBalanceIsOverwritten)

	ctx.Step(`^appointment (\d+) should have status "([^"]*)"$`, appointmentShouldHaveStatus)
	ctx.Step(`^doctor (\d+) should have balance "([^"]*)"$`, doctorShouldHaveBalance)
	ctx.Step(`^the outbox should hold (\d+) unpublished events?$`, theOutboxShouldHold)
	ctx.Step(`^the report for "([^"]*)" should be cached$`, theReportShouldBeCached)
	ctx.Step(`^the report for "([^"]*)" should not be cached$`, theReportShouldNotBeCached)

	ctx.Step(`^the SMS gateway answers (\d+)$`, theSMSGatewayAnswers)
	ctx.Step(`^the notification worker runs$`, theNotificationWorkerRuns)
	ctx.Step(`^the SMS gateway should have received (\d+) messages?$`, theSMSGatewayShouldHaveReceived)
	ctx.Step(`^SMS message (\d+) should be sent to "([^"]*)" and contain "([^"]*)"$`, smsMessageShouldBe)
	ctx.Step(`^(\d+) notification jobs? should be "([^"]*)"$`, notificationJobsShouldBe)
}

func authenticate(ctx context.Context, userID uint, role entity.UserRole) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}
	token, err := tc.tokens.GenerateAccessToken(ctx, userID, role)
	if err != nil {
		return ctx, fmt.Errorf("failed to issue token: %w", err)
	}
	tc.accessToken = token
	return SetTestContext(ctx, tc), nil
}

func splitName(full string) (string, string) {
	first, last, _ := strings.Cut(full, " ")
	return first, last
}

func aDoctorWithBalance(ctx context.Context, name string, id int, balance string) error {
	tc := GetTestContext(ctx)
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return err
	}
	first, last := splitName(name)
	now := time.Now().UTC()
	return tc.db.Conn().Create(&model.DoctorModel{
		ID: uint(id), FirstName: first, LastName: last, Balance: amount, CreatedAt: now, UpdatedAt: now,
	}).Error
}

func aPatientWithPhone(ctx context.Context, name string, id int, phone string) error {
	tc := GetTestContext(ctx)
	first, last := splitName(name)
	now := time.Now().UTC()
	return tc.db.Conn().Create(&model.PatientModel{
		ID: uint(id), FirstName: first, LastName: last, Phone: phone, CreatedAt: now, UpdatedAt: now,
	}).Error
}

func aServiceWithKPI(ctx context.Context, name string, id int, price, kpi string) error {
	tc := GetTestContext(ctx)
	priceAmount, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	kpiPercent, err := decimal.NewFromString(kpi)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return tc.db.Conn().Create(&model.ServiceModel{
		ID: uint(id), Name: name, Price: priceAmount, KPIPercent: kpiPercent, CreatedAt: now, UpdatedAt: now,
	}).Error
}

// anAppointment goes through the repository so the stored status is derived the way the application does it.
// Appointments must be declared in id order.
func anAppointment(ctx context.Context, id, patientID, doctorID, serviceID int, price string) error {
	tc := GetTestContext(ctx)
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	doctor, service := uint(doctorID), uint(serviceID)
	appointment := &entity.Appointment{
		PatientID: uint(patientID),
		DoctorID:  &doctor,
		ServiceID: &service,
		Price:     amount,
		StartTime: time.Now().UTC(),
	}
	if err := persistence.NewAppointmentRepository(tc.db.Conn()).Save(ctx, appointment); err != nil {
		return err
	}
	if appointment.ID != uint(id) {
		return fmt.Errorf("expected appointment id %d, got %d", id, appointment.ID)
	}
	return nil
}

func theStoredBalanceIsOverwritten(ctx context.Context, doctorID int, balance string) error {
	tc := GetTestContext(ctx)
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return err
	}
	return tc.db.Conn().Model(&model.DoctorModel{}).Where("id = ?", doctorID).Update("balance", amount).Error
}

func appointmentShouldHaveStatus(ctx context.Context, id int, expected string) error {
	tc := GetTestContext(ctx)
	var appointment model.AppointmentModel
	if err := tc.db.Conn().First(&appointment, id).Error; err != nil {
		return err
	}
	if appointment.Status != expected {
		return fmt.Errorf("appointment %d expected status %s, got %s", id, expected, appointment.Status)
	}
	return nil
}

func doctorShouldHaveBalance(ctx context.Context, id int, expected string) error {
	tc := GetTestContext(ctx)
	want, err := decimal.NewFromString(expected)
	if err != nil {
		return err
	}
	var doctor model.DoctorModel
	if err := tc.db.Conn().First(&doctor, id).Error; err != nil {
		return err
	}
	if !doctor.Balance.Equal(want) {
		return fmt.Errorf("doctor %d expected balance %s, got %s", id, want, doctor.Balance)
	}
	return nil
}

func theOutboxShouldHold(ctx context.Context, expected int) error {
	tc := GetTestContext(ctx)
	var count int64
	if err := tc.db.Conn().Model(&model.OutboxEventModel{}).Where("published_at IS NULL").Count(&count).Error; err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d unpublished events, got %d", expected, count)
	}
	return nil
}

func theReportShouldBeCached(ctx context.Context, date string) error {
	if !GetTestContext(ctx).redis.Exists("report:" + date) {
		return fmt.Errorf("expected report %s to be cached", date)
	}
	return nil
}

func theReportShouldNotBeCached(ctx context.Context, date string) error {
	if GetTestContext(ctx).redis.Exists("report:" + date) {
		return fmt.Errorf("expected report %s not to be cached", date)
	}
	return nil
}

func theSMSGatewayAnswers(ctx context.Context, status int) error {
	GetTestContext(ctx).gateway.SetResponse(http.MethodPost, "/sms", status, map[string]any{"error": "gateway"})
	return nil
}

func theNotificationWorkerRuns(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc.injector.Worker == nil {
		return fmt.Errorf("notification worker is disabled")
	}
	tc.injector.Worker.ProcessNow(ctx)
	return nil
}

func theSMSGatewayShouldHaveReceived(ctx context.Context, expected int) error {
	requests := GetTestContext(ctx).gateway.Requests(http.MethodPost, "/sms")
	if len(requests) != expected {
		return fmt.Errorf("expected %d SMS messages, got %d", expected, len(requests))
	}
	return nil
}

func smsMessageShouldBe(ctx context.Context, index int, phone, text string) error {
	tc := GetTestContext(ctx)
	requests := tc.gateway.Requests(http.MethodPost, "/sms")
	if index < 1 || index > len(requests) {
		return fmt.Errorf("SMS message %d not received, got %d", index, len(requests))
	}
	request := requests[index-1]

	if to := fmt.Sprintf("%v", request.Body["to"]); to != phone {
		return fmt.Errorf("expected SMS to %s, got %s", phone, to)
	}
	if body := fmt.Sprintf("%v", request.Body["body"]); !strings.Contains(body, text) {
		return fmt.Errorf("expected SMS body to contain %q, got %q", text, body)
	}
	if auth := request.Headers["Authorization"]; auth != "Bearer "+tc.cfg.Notification.SMSWebhookToken {
		return fmt.Errorf("unexpected SMS gateway authorization %q", auth)
	}
	return nil
}

func notificationJobsShouldBe(ctx context.Context, expected int, status string) error {
	tc := GetTestContext(ctx)
	var count int64
	if err := tc.db.Conn().Model(&model.NotificationJobModel{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d %s notification jobs, got %d", expected, status, count)
	}
	return nil
}
