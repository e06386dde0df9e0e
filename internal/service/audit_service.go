package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/events"
)

// AuditService writes a structured audit line for every committed lifecycle
// transition.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to lifecycle events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketOpened, a.handleEvent("TicketOpened"))
	a.dispatcher.Subscribe(events.EventTicketClaimed, a.handleEvent("TicketClaimed"))
	a.dispatcher.Subscribe(events.EventTicketReleased, a.handleEvent("TicketReleased"))
	a.dispatcher.Subscribe(events.EventTicketClosed, a.handleEvent("TicketClosed"))
}

func (a *AuditService) handleEvent(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		a.logger.Info(name,
			zap.String("thread_id", event.ThreadID),
			zap.String("actor_id", event.ActorID),
			zap.Any("payload", event.Payload))
		return nil
	}
}
