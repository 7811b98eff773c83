package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/dental-clinic/backend/internal/application/adapter"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// ResendClient implements the adapter.EmailSender interface using Resend.
type ResendClient struct {
	client    *resend.Client
	fromName  string
	fromEmail string
}

// NewResendClient creates a new Resend client.
func NewResendClient(apiKey, fromName, fromEmail string) *ResendClient {
	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers a clinic e-mail via Resend.
func (c *ResendClient) Send(ctx context.Context, input adapter.SendEmailInput) (*adapter.SendResult, error) {
	to := input.To
	if input.Name != "" {
		to = fmt.Sprintf("%s <%s>", input.Name, input.To)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{to},
		Subject: input.Subject,
		Html:    input.HTML,
		Text:    input.Text,
	}
	if input.Template != "" {
		params.Tags = []resend.Tag{{Name: "template", Value: input.Template}}
	}
	if input.JobID != "" {
		params.Headers = map[string]string{"X-Entity-Ref-ID": input.JobID}
	}

	resp, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		code := domainerror.ErrCodeTemporaryDeliveryFailure
		if isPermanentEmailError(err) {
			code = domainerror.ErrCodePermanentDeliveryFailure
		}
		return nil, domainerror.NewNotificationError(code, "resend rejected e-mail to "+input.To, err)
	}

	return &adapter.SendResult{ProviderID: resp.Id}, nil
}

// Resend reports HTTP failures only through the error text. Bad keys, forbidden
// senders and invalid payloads never succeed on retry; rate limits and 5xx may.
var permanentEmailErrors = []string{"401", "403", "422", "unauthorized", "forbidden", "validation", "invalid", "bad request"}

func isPermanentEmailError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range permanentEmailErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// NoopEmailSender logs e-mails instead of sending them. Used when no Resend key is configured.
type NoopEmailSender struct{}

// NewNoopEmailSender creates a new no-op e-mail sender.
func NewNoopEmailSender() *NoopEmailSender {
	return &NoopEmailSender{}
}

// Send logs the e-mail and reports success.
func (s *NoopEmailSender) Send(_ context.Context, input adapter.SendEmailInput) (*adapter.SendResult, error) {
	slog.Debug("Email provider not configured, message dropped", "to", input.To, "subject", input.Subject)
	return &adapter.SendResult{ProviderID: "email-noop"}, nil
}

// MockEmailSender is a mock implementation for testing.
type MockEmailSender struct {
	SentEmails  []adapter.SendEmailInput
	ShouldFail  bool
	FailError   error
	IsPermanent bool
}

// NewMockEmailSender creates a new mock email sender.
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{
		SentEmails: make([]adapter.SendEmailInput, 0),
	}
}

// Send implements the adapter.EmailSender interface for testing.
func (m *MockEmailSender) Send(_ context.Context, input adapter.SendEmailInput) (*adapter.SendResult, error) {
	if m.ShouldFail {
		code := domainerror.ErrCodeTemporaryDeliveryFailure
		if m.IsPermanent {
			code = domainerror.ErrCodePermanentDeliveryFailure
		}
		return nil, domainerror.NewNotificationError(code, "mock email failure", m.FailError)
	}

	m.SentEmails = append(m.SentEmails, input)
	return &adapter.SendResult{ProviderID: fmt.Sprintf("mock-%d", len(m.SentEmails))}, nil
}

// SetFailure configures the mock to fail with the given error.
func (m *MockEmailSender) SetFailure(err error, permanent bool) {
	m.ShouldFail = true
	m.FailError = err
	m.IsPermanent = permanent
}

// Reset clears all sent emails and failure configuration.
func (m *MockEmailSender) Reset() {
	m.SentEmails = make([]adapter.SendEmailInput, 0)
	m.ShouldFail = false
	m.FailError = nil
	m.IsPermanent = false
}

// Ensure implementations satisfy interfaces.
var (
	_ adapter.EmailSender = (*ResendClient)(nil)
	_ adapter.EmailSender = (*NoopEmailSender)(nil)
	_ adapter.EmailSender = (*MockEmailSender)(nil)
)
