package service

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/config"
	"github.com/trugen/triage-service/internal/events"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newNotificationFixture(cfg config.NotificationConfig) (*NotificationService, *[]sentMail) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), cfg)

	var sent []sentMail
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	svc.RegisterHandlers()
	return svc, &sent
}

func resolvedEvent() events.Event {
	return events.Event{
		Type:     events.EventTicketResolved,
		TicketID: "TRU-202601010930-412",
		Payload: events.TicketResolvedPayload{
			UserID: "rahul@example.com",
			Title:  "Video keeps buffering",
			Notes:  "Cleared the CDN cache.",
		},
	}
}

func TestResolutionEmailSent(t *testing.T) {
	svc, sent := newNotificationFixture(config.NotificationConfig{
		SMTPServer: "smtp.example.com",
		SMTPPort:   "587",
		EmailFrom:  "support@trugen.example",
	})

	err := svc.dispatcher.Publish(context.Background(), resolvedEvent())
	require.NoError(t, err)

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	require.Equal(t, "smtp.example.com:587", mail.addr)
	require.Equal(t, "support@trugen.example", mail.from)
	require.Equal(t, []string{"rahul@example.com"}, mail.to)
	require.Contains(t, mail.msg, "Ticket Resolved: TRU-202601010930-412 - Video keeps buffering")
	require.Contains(t, mail.msg, "Cleared the CDN cache.")
}

func TestResolutionEmailSkippedWithoutSMTP(t *testing.T) {
	svc, sent := newNotificationFixture(config.NotificationConfig{})

	err := svc.dispatcher.Publish(context.Background(), resolvedEvent())
	require.NoError(t, err)
	require.Empty(t, *sent)
}
