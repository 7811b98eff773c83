// Package templates renders notification messages.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed *.html *.txt
var templateFS embed.FS

// Renderer renders the notification templates embedded in the binary.
// SMS templates are plain text; e-mail templates are HTML with an optional text part.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// smsTemplates and emailTemplates list every template the worker can be asked for.
var (
	smsTemplates   = []string{"payment_receipt"}
	emailTemplates = []string{"overpayment_review", "balance_discrepancy"}
)

// NewRenderer parses the embedded templates and fails when one the worker needs is missing.
func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}

	r := &Renderer{html: html, text: text}
	for _, name := range smsTemplates {
		if r.text.Lookup(name+".txt") == nil {
			return nil, fmt.Errorf("sms template %s.txt is missing", name)
		}
	}
	for _, name := range emailTemplates {
		if r.html.Lookup(name+".html") == nil {
			return nil, fmt.Errorf("e-mail template %s.html is missing", name)
		}
	}
	return r, nil
}

// RenderEmail renders the HTML body and, when the template has one, the text part.
func (r *Renderer) RenderEmail(name string, data any) (html string, text string, err error) {
	var htmlBuf bytes.Buffer
	if err := r.html.ExecuteTemplate(&htmlBuf, name+".html", data); err != nil {
		return "", "", fmt.Errorf("failed to render e-mail template %s: %w", name, err)
	}
	if r.text.Lookup(name+".txt") == nil {
		return htmlBuf.String(), "", nil
	}

	var textBuf bytes.Buffer
	if err := r.text.ExecuteTemplate(&textBuf, name+".txt", data); err != nil {
		return "", "", fmt.Errorf("failed to render e-mail text part %s: %w", name, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}

// RenderSMS renders a text message. Surrounding whitespace is trimmed since gateways bill by length.
func (r *Renderer) RenderSMS(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.text.ExecuteTemplate(&buf, name+".txt", data); err != nil {
		return "", fmt.Errorf("failed to render sms template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// PaymentReceiptData contains data for the payment receipt SMS.
type PaymentReceiptData struct {
	ClinicName    string
	PatientName   string
	AppointmentID string
	Amount        string
	TotalPaid     string
	Price         string
	FullyPaid     bool
}

// OverpaymentReviewData contains data for the overpayment review e-mail.
type OverpaymentReviewData struct {
	AdminName     string
	AppointmentID string
	Price         string
	TotalPaid     string
	Excess        string
}

// BalanceDiscrepancyData contains data for the balance discrepancy e-mail.
type BalanceDiscrepancyData struct {
	AdminName string
	Items     []DiscrepancyLine
}

// DiscrepancyLine is one doctor row in the balance discrepancy e-mail.
type DiscrepancyLine struct {
	DoctorID        string
	DoctorName      string
	RecordedBalance string
	ExpectedBalance string
	BrokenChain     bool
}
