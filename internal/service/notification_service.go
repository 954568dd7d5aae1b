package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/config"
	"github.com/trugen/triage-service/internal/events"
)

// NotificationService emails submitters when their ticket is resolved.
// Delivery is best-effort: a send failure never blocks or fails resolution.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	send       func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		send:       smtp.SendMail,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved)
}

func (n *NotificationService) handleTicketResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_resolved", zap.String("ticket_id", event.TicketID))
		return nil
	}

	if strings.TrimSpace(n.cfg.SMTPServer) == "" {
		n.logger.Debug("SMTP not configured; skipping resolution email",
			zap.String("ticket_id", event.TicketID),
			zap.String("recipient", payload.UserID))
		return nil
	}

	if err := n.sendResolutionEmail(payload.UserID, event.TicketID, payload.Title, payload.Notes); err != nil {
		n.logger.Warn("resolution email failed",
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return nil
	}
	n.logger.Info("resolution email sent",
		zap.String("ticket_id", event.TicketID),
		zap.String("recipient", payload.UserID))
	return nil
}

func (n *NotificationService) sendResolutionEmail(recipient, ticketID, title, notes string) error {
	subject := fmt.Sprintf("Ticket Resolved: %s - %s", ticketID, title)
	body := fmt.Sprintf(`Hello,

Your support ticket has been resolved.

Ticket ID: %s
Title: %s

Resolution Details:
%s

Thank you for your patience!

Best Regards,
Trugen Support Team
`, ticketID, title, notes)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.cfg.EmailFrom, recipient, subject, body)

	addr := n.cfg.SMTPServer + ":" + n.cfg.SMTPPort
	var a smtp.Auth
	if n.cfg.SMTPUser != "" {
		a = smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPServer)
	}
	return n.send(addr, a, n.cfg.EmailFrom, []string{recipient}, []byte(msg))
}
