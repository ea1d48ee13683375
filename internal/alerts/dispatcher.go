// Package alerts forwards moderation events to the admins' chat apps.
package alerts

import (
	"context"
	"log/slog"
	"time"

	"modhub/backend/internal/config"
	"modhub/backend/internal/localization"
	"modhub/backend/internal/logger"
	"modhub/backend/internal/models"
)

const sendTimeout = 10 * time.Second

// Sender delivers one alert text to an external channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Dispatcher is a chathub.Sink. Admin events are queued and sent from Run,
// so publishers never wait on Telegram or Discord.
type Dispatcher struct {
	queue     chan models.Envelope
	senders   []Sender
	localizer *localization.Localizer
	lang      string
	log       *slog.Logger
}

func NewDispatcher(localizer *localization.Localizer, lang string, senders ...Sender) *Dispatcher {
	return &Dispatcher{
		queue:     make(chan models.Envelope, config.AlertQueueSize),
		senders:   senders,
		localizer: localizer,
		lang:      lang,
		log:       logger.WithComponent("alerts"),
	}
}

// Enabled reports whether at least one sender is configured.
func (d *Dispatcher) Enabled() bool {
	return len(d.senders) > 0
}

// Notify queues admin-topic events. When the queue is full the alert is dropped.
func (d *Dispatcher) Notify(topic string, env models.Envelope) {
	if topic != models.TopicAdmin || !d.Enabled() {
		return
	}
	select {
	case d.queue <- env:
	default:
		d.log.Warn("alert queue full, dropping alert", "type", env.Type)
	}
}

// Run sends queued alerts until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-d.queue:
			d.dispatch(ctx, env)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, env models.Envelope) {
	text := d.Message(env)
	for _, s := range d.senders {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := s.Send(sendCtx, text)
		cancel()
		if err != nil {
			d.log.Error("failed to send alert", "sender", s.Name(), "type", env.Type, "error", err)
			continue
		}
		d.log.Debug("alert sent", "sender", s.Name(), "type", env.Type)
	}
}

// Message renders env in the dispatcher's language.
func (d *Dispatcher) Message(env models.Envelope) string {
	switch data := env.Data.(type) {
	case *models.Comment:
		if env.Type == models.EventCommentReported {
			return d.localizer.Format(d.lang, "alert.comment_reported", data.ID, deref(data.ReportReason))
		}
	case *models.User:
		switch env.Type {
		case models.EventUserReported:
			return d.localizer.Format(d.lang, "alert.user_reported", data.ID, deref(data.ReportReason))
		case models.EventUserBanned:
			return d.localizer.Format(d.lang, "alert.user_banned", data.ID)
		case models.EventUserUnbanned:
			return d.localizer.Format(d.lang, "alert.user_unbanned", data.ID)
		}
	case *models.SupportTicket:
		switch env.Type {
		case models.EventSupportTicketCreated:
			return d.localizer.Format(d.lang, "alert.support_ticket_created", data.ID, data.Subject)
		case models.EventSupportTicketResolved:
			return d.localizer.Format(d.lang, "alert.support_ticket_resolved", data.ID)
		}
	}
	return d.localizer.Format(d.lang, "alert.unknown_event", env.Type)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
