package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/hairscan/hairscan-admin/internal/models"
	"github.com/hairscan/hairscan-admin/internal/storage"
)

// Notifier records audit events and fans them out to NATS and an
// optional webhook. Recording never fails the mutation that produced
// the event; failures are logged and dropped.
type Notifier struct {
	store   storage.Store
	nc      *nats.Conn
	webhook *WebhookForwarder
}

// NewNotifier creates a notifier. nc and webhook may be nil.
func NewNotifier(store storage.Store, nc *nats.Conn, webhook *WebhookForwarder) *Notifier {
	return &Notifier{
		store:   store,
		nc:      nc,
		webhook: webhook,
	}
}

// Event is a convenience builder for a single audit event
type Event struct {
	Type          models.EventType
	Level         models.EventLevel
	Description   string
	InstitutionID *uuid.UUID
	EntityID      *uuid.UUID
	Details       models.Variables
}

// Publish writes the event to the audit log and publishes it on the
// event bus.
func (n *Notifier) Publish(ctx context.Context, ev Event) {
	if ev.Level == "" {
		ev.Level = models.EventLevelInfo
	}

	entry := &models.EventLog{
		ID:            uuid.New(),
		CreatedAt:     time.Now(),
		InstitutionID: ev.InstitutionID,
		EntityID:      ev.EntityID,
		Type:          ev.Type,
		Level:         ev.Level,
		Description:   ev.Description,
		Details:       ev.Details,
	}

	if err := n.store.CreateEventLog(ctx, entry); err != nil {
		log.Error().Err(err).Str("type", string(ev.Type)).Msg("Failed to write event log")
	}

	n.broadcast(entry)
}

func (n *Notifier) broadcast(entry *models.EventLog) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event")
		return
	}

	if n.nc != nil {
		subject := entry.Type.Subject()
		if err := n.nc.Publish(subject, data); err != nil {
			log.Error().Err(err).Str("subject", subject).Msg("Failed to publish event")
		}
	}

	if n.webhook != nil {
		n.webhook.Forward(entry.Type, data)
	}
}
