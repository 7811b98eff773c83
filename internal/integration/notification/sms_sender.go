// Package notification queues and delivers SMS and e-mail notifications.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dental-clinic/backend/internal/application/adapter"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// WebhookSMSSender delivers text messages by POSTing them to an SMS gateway webhook.
type WebhookSMSSender struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhookSMSSender creates a new webhook SMS sender.
func NewWebhookSMSSender(url, token string) *WebhookSMSSender {
	return &WebhookSMSSender{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type smsWebhookRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type smsWebhookResponse struct {
	ID string `json:"id"`
}

// Send delivers a text message. Gateway 4xx responses other than 429 are permanent failures.
func (s *WebhookSMSSender) Send(ctx context.Context, phone, text string) (*adapter.SendResult, error) {
	if s.url == "" {
		return nil, domainerror.NewNotificationError(
			domainerror.ErrCodeUnsupportedChannel,
			"sms webhook url not configured",
			domainerror.ErrUnsupportedChannel,
		)
	}

	raw, err := json.Marshal(smsWebhookRequest{To: phone, Body: text})
	if err != nil {
		return nil, domainerror.NewNotificationError(domainerror.ErrCodePermanentDeliveryFailure, "failed to encode sms", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return nil, domainerror.NewNotificationError(domainerror.ErrCodePermanentDeliveryFailure, "failed to build sms request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domainerror.NewNotificationError(domainerror.ErrCodeTemporaryDeliveryFailure, "sms webhook unreachable", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("sms webhook returned %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, domainerror.NewNotificationError(domainerror.ErrCodePermanentDeliveryFailure, "sms rejected", statusErr)
		}
		return nil, domainerror.NewNotificationError(domainerror.ErrCodeTemporaryDeliveryFailure, "sms gateway failure", statusErr)
	}

	var parsed smsWebhookResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsed)
	}
	providerID := parsed.ID
	if providerID == "" {
		providerID = "sms-webhook"
	}

	return &adapter.SendResult{ProviderID: providerID}, nil
}

// NoopSMSSender logs messages instead of sending them. Used when no gateway is configured.
type NoopSMSSender struct{}

// NewNoopSMSSender creates a new no-op SMS sender.
func NewNoopSMSSender() *NoopSMSSender {
	return &NoopSMSSender{}
}

// Send logs the message and reports success.
func (s *NoopSMSSender) Send(_ context.Context, phone, text string) (*adapter.SendResult, error) {
	slog.Debug("SMS gateway not configured, message dropped", "phone", phone, "length", len(text))
	return &adapter.SendResult{ProviderID: "sms-noop"}, nil
}

// MockSMSSender is a mock implementation for testing.
type MockSMSSender struct {
	Sent        []MockSMS
	ShouldFail  bool
	FailError   error
	IsPermanent bool
}

// MockSMS is a message captured by MockSMSSender.
type MockSMS struct {
	Phone string
	Text  string
}

// NewMockSMSSender creates a new mock SMS sender.
func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{
		Sent: make([]MockSMS, 0),
	}
}

// Send implements the adapter.SMSSender interface for testing.
func (m *MockSMSSender) Send(_ context.Context, phone, text string) (*adapter.SendResult, error) {
	if m.ShouldFail {
		code := domainerror.ErrCodeTemporaryDeliveryFailure
		if m.IsPermanent {
			code = domainerror.ErrCodePermanentDeliveryFailure
		}
		return nil, domainerror.NewNotificationError(code, "mock sms failure", m.FailError)
	}

	m.Sent = append(m.Sent, MockSMS{Phone: phone, Text: text})
	return &adapter.SendResult{ProviderID: fmt.Sprintf("mock-sms-%d", len(m.Sent))}, nil
}

// SetFailure configures the mock to fail with the given error.
func (m *MockSMSSender) SetFailure(err error, permanent bool) {
	m.ShouldFail = true
	m.FailError = err
	m.IsPermanent = permanent
}

// Ensure implementations satisfy interfaces.
var (
	_ adapter.SMSSender = (*WebhookSMSSender)(nil)
	_ adapter.SMSSender = (*NoopSMSSender)(nil)
	_ adapter.SMSSender = (*MockSMSSender)(nil)
)
