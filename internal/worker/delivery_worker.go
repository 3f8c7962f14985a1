// Package worker hosts the out-of-band delivery relay. Delivery is
// best-effort by contract: the persisted notification row is the durable
// record, and a failed webhook or email send is logged and forgotten.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// DeliveryWorker forwards notification events to external channels.
type DeliveryWorker struct {
	cfg        config.NotificationConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDeliveryWorker builds the worker.
func NewDeliveryWorker(cfg config.NotificationConfig, logger *zap.Logger) *DeliveryWorker {
	return &DeliveryWorker{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}
}

// Start subscribes the worker to the dispatcher.
func (w *DeliveryWorker) Start(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventNotificationCreated, w.handleNotificationCreated)
	dispatcher.Subscribe(events.EventTicketOverridden, w.handleTicketOverridden)
}

func (w *DeliveryWorker) handleNotificationCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.NotificationCreatedPayload)
	if !ok {
		return nil
	}
	w.sendEmail(payload.RecipientEmail, payload.Title, payload.Message)
	w.sendWebhook(ctx, event)
	return nil
}

func (w *DeliveryWorker) handleTicketOverridden(ctx context.Context, event events.Event) error {
	w.sendWebhook(ctx, event)
	return nil
}

// sendEmail is a stub: it logs the send that a mail provider integration
// would perform. TODO: wire an SMTP or provider client once one is chosen.
func (w *DeliveryWorker) sendEmail(to, subject, body string) {
	if strings.TrimSpace(w.cfg.EmailFrom) == "" || strings.TrimSpace(to) == "" {
		return
	}
	w.logger.Info("email notification",
		zap.String("from", w.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
}

func (w *DeliveryWorker) sendWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(w.cfg.WebhookURL) == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("webhook payload marshal failed", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		w.logger.Error("webhook request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		w.logger.Warn("webhook delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.logger.Warn("webhook delivery rejected",
			zap.String("event_type", string(event.Type)),
			zap.Int("status", resp.StatusCode))
	}
}
