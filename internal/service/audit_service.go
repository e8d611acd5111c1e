package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/checkin-service/internal/events"
	"github.com/spec-kit/checkin-service/internal/repository"
)

// persistedEvents are written to the audit log in addition to being logged.
var persistedEvents = map[events.EventType]bool{
	events.EventTicketFiled:        true,
	events.EventCheckinCompleted:   true,
	events.EventPSAPartialCreation: true,
}

// AuditService records workflow events.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.CheckinRepository
	logger     *zap.Logger
}

// NewAuditService creates the service. repo may be nil, in which case events are only logged.
func NewAuditService(dispatcher events.Dispatcher, repo repository.CheckinRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		repo:       repo,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventClientIdentified, a.handle)
	a.dispatcher.Subscribe(events.EventClientSelectionRequired, a.handle)
	a.dispatcher.Subscribe(events.EventTicketFiled, a.handle)
	a.dispatcher.Subscribe(events.EventCheckinCompleted, a.handle)
	a.dispatcher.Subscribe(events.EventCheckinAbandoned, a.handle)
	a.dispatcher.Subscribe(events.EventPSAWarning, a.handleWarning)
	a.dispatcher.Subscribe(events.EventPSAPartialCreation, a.handleWarning)
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("step", string(event.Step)),
		zap.Any("payload", event.Payload))
	return a.persist(ctx, event)
}

func (a *AuditService) handleWarning(ctx context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("step", string(event.Step)),
		zap.Any("payload", event.Payload))
	return a.persist(ctx, event)
}

func (a *AuditService) persist(ctx context.Context, event events.Event) error {
	if a.repo == nil || !persistedEvents[event.Type] {
		return nil
	}
	entry := &repository.CheckinEvent{
		EventID:       event.ID,
		EventType:     string(event.Type),
		SessionHandle: event.SessionHandle,
		Payload:       payloadMap(event.Payload),
	}
	entry.CompanyID = optional(entry.Payload["company_id"])
	entry.ContactID = optional(entry.Payload["contact_id"])
	entry.TicketID = optional(entry.Payload["ticket_id"])

	if err := a.repo.Create(ctx, entry); err != nil {
		a.logger.Error("audit write failed", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}

// payloadMap flattens a typed payload into the jsonb column shape.
func payloadMap(payload interface{}) map[string]any {
	out := map[string]any{}
	if payload == nil {
		return out
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

func optional(value any) *string {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
