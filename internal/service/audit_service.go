package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/events"
)

// AuditService writes session events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventIdentityRegistered, a.handleIdentityRegistered)
	a.dispatcher.Subscribe(events.EventSessionOpened, a.handleSessionOpened)
	a.dispatcher.Subscribe(events.EventSessionRefreshed, a.handleSessionRefreshed)
}

func (a *AuditService) handleIdentityRegistered(_ context.Context, event events.Event) error {
	a.logger.Info("IdentityRegistered", eventFields(event)...)
	return nil
}

func (a *AuditService) handleSessionOpened(_ context.Context, event events.Event) error {
	a.logger.Info("SessionOpened", eventFields(event)...)
	return nil
}

func (a *AuditService) handleSessionRefreshed(_ context.Context, event events.Event) error {
	fields := eventFields(event)
	if p, ok := event.Payload.(events.SessionRefreshedPayload); ok {
		fields = append(fields, zap.String("previous_session_id", p.PreviousSessionID.String()))
	}
	a.logger.Info("SessionRefreshed", fields...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("identity_id", event.IdentityID.String()),
		zap.String("session_id", event.SessionID.String()),
		zap.Time("at", event.Timestamp),
	}
}
