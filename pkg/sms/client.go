package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/arsmn/go-smsir/smsir"
)

var ErrNoTemplate = errors.New("sms: reschedule template id is not configured")

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client             *smsir.Client
	enabled            bool
	rescheduleTemplate string
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.RescheduleTemplateID == "" {
		return nil, ErrNoTemplate
	}

	return &Client{
		client:             smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled:            true,
		rescheduleTemplate: cfg.SMSIR.RescheduleTemplateID,
	}, nil
}

// SendTemplate sends an sms.ir ultra-fast template message with the given parameters.
// If SMS is disabled, this is a no-op and returns nil.
func (c *Client) SendTemplate(ctx context.Context, phoneNumber, templateID string, params map[string]string) error {
	if !c.enabled {
		return nil
	}

	if phoneNumber == "" {
		return fmt.Errorf("phone number is required")
	}
	if templateID == "" {
		return fmt.Errorf("template ID is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phoneNumber,
		TemplateID: templateID,
	}
	for k, v := range params {
		req.Parameters = append(req.Parameters, smsir.UltraFastParameter{Key: k, Value: v})
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

// SendReschedule tells a patient the new date and time of a moved appointment.
// The template must declare "date" and "time" parameters.
func (c *Client) SendReschedule(ctx context.Context, phoneNumber, date, at string) error {
	return c.SendTemplate(ctx, phoneNumber, c.rescheduleTemplate, map[string]string{
		"date": date,
		"time": at,
	})
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
