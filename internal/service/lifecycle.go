package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/catalog"
	"github.com/spec-kit/ticket-bot/internal/discord"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/registry"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

// LifecycleConfig holds the fixed ids the lifecycle operates on.
type LifecycleConfig struct {
	GuildID        string
	PanelChannelID string
	LogChannelID   string
	OverseerRoleID string
}

// TicketLifecycle orchestrates the create, claim/unclaim, and close
// transitions. Mutations for a given thread are serialized through a keyed
// mutex, so two simultaneous presses on the same ticket cannot interleave.
type TicketLifecycle struct {
	registry   *registry.Registry
	gateway    discord.Gateway
	catalog    *catalog.Catalog
	archiver   *TranscriptArchiver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        LifecycleConfig
	locks      *keyedMutex
}

// LifecycleDependencies bundles collaborators for the lifecycle.
type LifecycleDependencies struct {
	Registry   *registry.Registry
	Gateway    discord.Gateway
	Catalog    *catalog.Catalog
	Archiver   *TranscriptArchiver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketLifecycle constructs the lifecycle.
func NewTicketLifecycle(cfg LifecycleConfig, deps LifecycleDependencies) *TicketLifecycle {
	return &TicketLifecycle{
		registry:   deps.Registry,
		gateway:    deps.Gateway,
		catalog:    deps.Catalog,
		archiver:   deps.Archiver,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cfg:        cfg,
		locks:      newKeyedMutex(),
	}
}

// OpenTicket performs the NonExistent -> Open(unclaimed) transition: create
// the private thread, provision membership, register the record, and post
// the intro message with claim/close controls.
//
// Failures before the record is registered leave no registry entry. A
// failure on the intro message leaves the thread and record intact for
// manual recovery and is returned for operator logging.
func (l *TicketLifecycle) OpenTicket(ctx context.Context, member *discord.GuildMember, parentChannelID, categoryKey string) (domain.TicketRecord, *discord.Channel, error) {
	category, ok := l.catalog.Get(categoryKey)
	if !ok {
		// Unreachable with the fixed button set; a defect if it happens.
		l.logger.Error("unknown category key in create action", zap.String("category_key", categoryKey))
		return domain.TicketRecord{}, nil, apperrors.NewUnknownCategory(categoryKey)
	}
	creator := member.User

	unlock := l.locks.Lock("user:" + creator.ID)
	defer unlock()

	if existing, found := l.registry.FindOpenTicketFor(creator.ID); found {
		l.logger.Debug("duplicate ticket attempt",
			zap.String("user_id", creator.ID),
			zap.String("existing_thread_id", existing.ThreadID))
		return domain.TicketRecord{}, nil, apperrors.NewDuplicateTicket(creator.ID)
	}

	threadName := fmt.Sprintf("%s - %s", category.Label(), creator.DisplayName())
	reason := fmt.Sprintf("Ticket created by %s", creator.Tag())
	thread, err := l.gateway.StartPrivateThread(ctx, parentChannelID, threadName, reason)
	if err != nil {
		return domain.TicketRecord{}, nil, err
	}

	if err := l.gateway.AddThreadMember(ctx, thread.ID, creator.ID); err != nil {
		return domain.TicketRecord{}, nil, err
	}

	l.provisionRoleMembers(ctx, thread.ID, category.RoleID)
	l.provisionRoleMembers(ctx, thread.ID, l.cfg.OverseerRoleID)

	record, err := l.registry.Create(ctx, thread.ID, creator.ID, category.Key)
	if err != nil {
		return domain.TicketRecord{}, nil, err
	}

	l.publish(events.Event{
		Type:     events.EventTicketOpened,
		ThreadID: thread.ID,
		ActorID:  creator.ID,
		Payload: events.TicketOpenedPayload{
			CategoryKey:   category.Key,
			CreatorUserID: creator.ID,
			ThreadName:    threadName,
		},
	})

	if _, err := l.gateway.CreateMessage(ctx, thread.ID, ticketIntroMessage(category, creator.ID, thread.ID)); err != nil {
		// Thread and record stay for manual recovery.
		l.logger.Error("intro message failed after ticket registration",
			zap.String("thread_id", thread.ID),
			zap.String("category", category.Key),
			zap.String("user_id", creator.ID),
			zap.Error(err))
		return record, thread, err
	}

	l.logger.Info("ticket opened",
		zap.String("thread_id", thread.ID),
		zap.String("category", category.Key),
		zap.String("user_id", creator.ID))
	return record, thread, nil
}

// provisionRoleMembers adds every current holder of a role to the thread.
// Per-member failures are swallowed and reported in aggregate; a member who
// cannot be added must not abort the ticket.
func (l *TicketLifecycle) provisionRoleMembers(ctx context.Context, threadID, roleID string) {
	if roleID == "" {
		return
	}
	members, err := l.gateway.GuildMembersWithRole(ctx, l.cfg.GuildID, roleID)
	if err != nil {
		l.logger.Warn("role member resolution failed",
			zap.String("thread_id", threadID),
			zap.String("role_id", roleID),
			zap.Error(err))
		return
	}
	var failed []string
	for _, member := range members {
		if member.User == nil || member.User.Bot {
			continue
		}
		if err := l.gateway.AddThreadMember(ctx, threadID, member.User.ID); err != nil {
			failed = append(failed, member.User.ID)
		}
	}
	if len(failed) > 0 {
		l.logger.Warn("some role members could not join the thread",
			zap.String("thread_id", threadID),
			zap.String("role_id", roleID),
			zap.Strings("user_ids", failed))
	}
}

// ToggleClaim flips Open(unclaimed) <-> Open(claimed). Unclaiming is open to
// any authorized actor, not only the original claimer. The returned record
// reflects the new state; the caller renders the matching controls.
func (l *TicketLifecycle) ToggleClaim(ctx context.Context, threadID string, member *discord.GuildMember) (domain.TicketRecord, error) {
	unlock := l.locks.Lock("thread:" + threadID)
	defer unlock()

	record, ok := l.registry.Get(threadID)
	if !ok {
		return domain.TicketRecord{}, apperrors.NewNotFound("ticket", map[string]any{"thread_id": threadID})
	}
	category, ok := l.catalog.Get(record.CategoryKey)
	if !ok {
		l.logger.Error("registered ticket references unknown category",
			zap.String("thread_id", threadID),
			zap.String("category_key", record.CategoryKey))
		return domain.TicketRecord{}, apperrors.NewUnknownCategory(record.CategoryKey)
	}

	actor := member.User
	if !member.HasRole(category.RoleID) && !member.HasRole(l.cfg.OverseerRoleID) {
		return domain.TicketRecord{}, apperrors.NewForbidden("you do not have permission to claim this ticket")
	}

	var notice string
	var eventType events.EventType
	if record.Claimed() {
		notice = fmt.Sprintf("🔓 Ticket unclaimed by %s", discord.MentionUser(actor.ID))
		eventType = events.EventTicketReleased
		record, _ = l.registry.SetClaim(ctx, threadID, "")
	} else {
		notice = fmt.Sprintf("✅ Ticket claimed by %s", discord.MentionUser(actor.ID))
		eventType = events.EventTicketClaimed
		record, _ = l.registry.SetClaim(ctx, threadID, actor.ID)
	}

	// The control update and this notice are independent side effects: the
	// toggle has committed, so a failed notice is logged rather than rolled
	// back.
	if _, err := l.gateway.CreateMessage(ctx, threadID, discord.MessagePayload{Content: notice}); err != nil {
		l.logger.Warn("claim notice failed",
			zap.String("thread_id", threadID),
			zap.String("user_id", actor.ID),
			zap.Error(err))
	}

	l.publish(events.Event{
		Type:     eventType,
		ThreadID: threadID,
		ActorID:  actor.ID,
		Payload: events.TicketClaimPayload{
			CategoryKey: record.CategoryKey,
			ClaimedBy:   record.ClaimedBy,
		},
	})
	return record, nil
}

// CloseTicket performs Open(*) -> NonExistent: archive the transcript,
// remove the record, destroy the thread. The record is removed before the
// thread is deleted so the registry never references a dead thread, and
// archival failure never blocks the close; it is returned separately so the
// caller can report it as a follow-up notice.
func (l *TicketLifecycle) CloseTicket(ctx context.Context, threadID string, closer discord.User) (archivalErr, err error) {
	unlock := l.locks.Lock("thread:" + threadID)
	defer unlock()

	record, ok := l.registry.Get(threadID)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"thread_id": threadID})
	}
	category, _ := l.catalog.Get(record.CategoryKey)

	threadName := threadID
	if thread, threadErr := l.gateway.Channel(ctx, threadID); threadErr == nil && thread.Name != "" {
		threadName = thread.Name
	}

	archivalErr = l.archive(ctx, record, category, threadID, threadName, closer)

	removed, _ := l.registry.Remove(ctx, threadID)

	if delErr := l.gateway.DeleteChannel(ctx, threadID, fmt.Sprintf("Ticket closed by %s", closer.Tag())); delErr != nil {
		l.logger.Error("thread deletion failed after close",
			zap.String("thread_id", threadID),
			zap.String("category", record.CategoryKey),
			zap.String("user_id", closer.ID),
			zap.Error(delErr))
		err = delErr
	}

	l.publish(events.Event{
		Type:     events.EventTicketClosed,
		ThreadID: threadID,
		ActorID:  closer.ID,
		Payload: events.TicketClosedPayload{
			CategoryKey:   removed.CategoryKey,
			CreatorUserID: removed.CreatorUserID,
			ClaimedBy:     removed.ClaimedBy,
			CreatedAt:     removed.CreatedAt,
			Archived:      archivalErr == nil,
		},
	})

	l.logger.Info("ticket closed",
		zap.String("thread_id", threadID),
		zap.String("category", record.CategoryKey),
		zap.String("closed_by", closer.ID))
	return archivalErr, err
}

// archive renders the transcript and delivers the summary plus the document
// to the log channel, when one is configured.
func (l *TicketLifecycle) archive(ctx context.Context, record domain.TicketRecord, category domain.Category, threadID, threadName string, closer discord.User) error {
	if l.cfg.LogChannelID == "" {
		return nil
	}
	transcript := l.archiver.Render(ctx, threadID, threadName, record.CreatedAt)

	if _, err := l.gateway.CreateMessage(ctx, l.cfg.LogChannelID, closedLogMessage(record, category, threadName, closer.ID)); err != nil {
		return apperrors.NewArchivalFailure(err, map[string]any{"thread_id": threadID})
	}
	payload := discord.MessagePayload{Content: "📄 **Ticket Transcript**"}
	filename := fmt.Sprintf("transcript-%s.txt", threadID)
	if _, err := l.gateway.CreateMessageWithFile(ctx, l.cfg.LogChannelID, payload, filename, []byte(transcript)); err != nil {
		return apperrors.NewArchivalFailure(err, map[string]any{"thread_id": threadID})
	}
	return nil
}

// Ticket looks up the open record for a thread.
func (l *TicketLifecycle) Ticket(threadID string) (domain.TicketRecord, bool) {
	return l.registry.Get(threadID)
}

// PostPanel publishes the category-selection panel into the configured
// panel channel.
func (l *TicketLifecycle) PostPanel(ctx context.Context) error {
	if l.cfg.PanelChannelID == "" {
		return apperrors.NewNotFound("panel channel", nil)
	}
	_, err := l.gateway.CreateMessage(ctx, l.cfg.PanelChannelID, PanelMessage(l.catalog))
	return err
}

func (l *TicketLifecycle) publish(event events.Event) {
	if l.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := l.dispatcher.Publish(context.Background(), event); err != nil {
		l.logger.Warn("event handler failure",
			zap.String("event_type", string(event.Type)),
			zap.String("thread_id", event.ThreadID),
			zap.Error(err))
	}
}
