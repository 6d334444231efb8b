package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// EmailJSTemplateParams values substituted into the EmailJS template
type EmailJSTemplateParams struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// EmailJSRequest EmailJS send API request body
type EmailJSRequest struct {
	ServiceID      string                `json:"service_id"`
	TemplateID     string                `json:"template_id"`
	UserID         string                `json:"user_id"`
	AccessToken    string                `json:"accessToken,omitempty"`
	TemplateParams EmailJSTemplateParams `json:"template_params"`
}

// EmailJSNotifier sends notifications through the EmailJS REST API.
// A send is successful only on HTTP 200; it is never retried.
type EmailJSNotifier struct {
	httpClient *resty.Client
	config     config.EmailJSConfig
	logger     *zap.Logger
}

// NewEmailJSNotifier creates the notifier. timeout bounds each send.
func NewEmailJSNotifier(cfg config.EmailJSConfig, timeout time.Duration, logger *zap.Logger) *EmailJSNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &EmailJSNotifier{
		httpClient: client,
		config:     cfg,
		logger:     logger,
	}
}

// Configured reports whether sends will reach the network
func (n *EmailJSNotifier) Configured() bool {
	return n.config.Configured()
}

// Send delivers one email. Missing credentials, transport errors, timeouts
// and non-200 responses all return false.
func (n *EmailJSNotifier) Send(ctx context.Context, recipient, subject, body string) bool {
	if !n.config.Configured() {
		n.logger.Warn("EmailJS not configured, skipping email send",
			zap.String("recipient", recipient),
		)
		return false
	}

	request := EmailJSRequest{
		ServiceID:   n.config.ServiceID,
		TemplateID:  n.config.TemplateID,
		UserID:      n.config.PublicKey,
		AccessToken: n.config.PrivateKey,
		TemplateParams: EmailJSTemplateParams{
			ToEmail: recipient,
			Subject: subject,
			Message: body,
		},
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		Post(n.config.APIURL)

	if err != nil {
		n.logger.Error("EmailJS API call failed",
			zap.String("recipient", recipient),
			zap.Error(err),
		)
		return false
	}

	if resp.StatusCode() != http.StatusOK {
		n.logger.Error("EmailJS API returned error",
			zap.String("recipient", recipient),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return false
	}

	n.logger.Info("Email sent",
		zap.String("recipient", recipient),
	)
	return true
}
