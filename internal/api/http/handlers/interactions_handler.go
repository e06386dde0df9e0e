package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/discord"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

// setupCommandName is the admin slash command that posts the ticket panel.
const setupCommandName = "setuptickets"

// Background work started from an acknowledged interaction gets its own
// deadline; the request context dies when the webhook response is sent.
const backgroundTimeout = 2 * time.Minute

// User-facing reply texts. Failure wording is distinct from success so an
// actor is never unsure whether an action took effect.
const (
	replyDuplicateTicket = "❌ You already have an open ticket! Please close your existing ticket before opening a new one."
	replyCreateFailed    = "❌ Failed to create ticket. Please contact an administrator."
	replyClaimForbidden  = "❌ You do not have permission to claim this ticket!"
	replyTicketNotFound  = "❌ Ticket data not found!"
	replyClosing         = "🔒 Closing ticket and generating transcript..."
	replyCloseFailed     = "❌ Error occurred while closing ticket."
	replyArchivalFailed  = "⚠️ Ticket closed, but the transcript could not be delivered to the log channel."
	replyStaleControl    = "❌ This control is not recognized."
	replyNotAdmin        = "❌ You need the Administrator permission to do that."
	replyPanelPosted     = "✅ Ticket panel posted."
	replyPanelFailed     = "❌ Failed to post the ticket panel."
)

// InteractionsHandler decodes interaction webhooks and drives the ticket
// lifecycle.
type InteractionsHandler struct {
	lifecycle *service.TicketLifecycle
	gateway   discord.Gateway
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewInteractionsHandler constructs the handler.
func NewInteractionsHandler(lifecycle *service.TicketLifecycle, gateway discord.Gateway, metrics *observability.Metrics, logger *zap.Logger) *InteractionsHandler {
	return &InteractionsHandler{lifecycle: lifecycle, gateway: gateway, metrics: metrics, logger: logger}
}

// Handle POST /interactions.
func (h *InteractionsHandler) Handle(c *fiber.Ctx) error {
	var interaction discord.Interaction
	if err := c.BodyParser(&interaction); err != nil {
		return apperrors.NewDomainError("BAD_PAYLOAD", "malformed interaction", fiber.StatusBadRequest, nil)
	}

	switch interaction.Type {
	case discord.InteractionTypePing:
		return c.JSON(discord.InteractionResponse{Type: discord.ResponsePong})
	case discord.InteractionTypeApplicationCommand:
		return h.handleCommand(c, &interaction)
	case discord.InteractionTypeMessageComponent:
		return h.handleComponent(c, &interaction)
	default:
		h.logger.Warn("unsupported interaction type", zap.Int("type", interaction.Type))
		return ephemeral(c, replyStaleControl)
	}
}

func (h *InteractionsHandler) handleCommand(c *fiber.Ctx, interaction *discord.Interaction) error {
	if interaction.Data == nil || interaction.Data.Name != setupCommandName {
		return ephemeral(c, replyStaleControl)
	}
	if !isAdministrator(interaction.Member) {
		h.metrics.RecordInteraction("setup", "rejected")
		return ephemeral(c, replyNotAdmin)
	}
	if err := h.lifecycle.PostPanel(c.UserContext()); err != nil {
		h.metrics.RecordInteraction("setup", "error")
		h.logger.Error("panel post failed", zap.Error(err))
		return ephemeral(c, replyPanelFailed)
	}
	h.metrics.RecordInteraction("setup", "ok")
	return ephemeral(c, replyPanelPosted)
}

func (h *InteractionsHandler) handleComponent(c *fiber.Ctx, interaction *discord.Interaction) error {
	if interaction.Data == nil || interaction.Member == nil || interaction.Member.User == nil {
		return ephemeral(c, replyStaleControl)
	}
	action, ok := domain.ParseAction(interaction.Data.CustomID)
	if !ok {
		h.logger.Warn("unrecognized component id", zap.String("custom_id", interaction.Data.CustomID))
		return ephemeral(c, replyStaleControl)
	}

	switch act := action.(type) {
	case domain.CreateTicket:
		return h.handleCreate(c, interaction, act)
	case domain.ToggleClaim:
		return h.handleClaim(c, interaction, act)
	case domain.CloseTicket:
		return h.handleClose(c, interaction, act)
	default:
		return ephemeral(c, replyStaleControl)
	}
}

// handleCreate acknowledges with a deferred ephemeral reply, performs the
// create transition in the background, then rewrites the reply with the
// outcome.
func (h *InteractionsHandler) handleCreate(c *fiber.Ctx, interaction *discord.Interaction, act domain.CreateTicket) error {
	member := interaction.Member
	parentChannelID := interaction.ChannelID
	token := interaction.Token

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		_, thread, err := h.lifecycle.OpenTicket(ctx, member, parentChannelID, act.CategoryKey)
		text := ""
		switch {
		case err == nil:
			h.metrics.RecordInteraction("create", "ok")
			text = "✅ Ticket created! Please check " + discord.MentionChannel(thread.ID)
		case apperrors.HasCode(err, "DUPLICATE_TICKET"):
			h.metrics.RecordInteraction("create", "rejected")
			text = replyDuplicateTicket
		default:
			h.metrics.RecordInteraction("create", "error")
			h.logger.Error("ticket creation failed",
				zap.String("category", act.CategoryKey),
				zap.String("user_id", member.User.ID),
				zap.Error(err))
			text = replyCreateFailed
		}
		if err := h.gateway.EditOriginalResponse(ctx, token, discord.MessagePayload{Content: text}); err != nil {
			h.logger.Warn("create acknowledgement failed", zap.Error(err))
		}
	}()

	return c.JSON(discord.InteractionResponse{
		Type: discord.ResponseDeferredChannelMessage,
		Data: &discord.MessagePayload{Flags: discord.MessageFlagEphemeral},
	})
}

// handleClaim runs the toggle synchronously so the pressed message's
// controls can be swapped in the interaction response itself.
func (h *InteractionsHandler) handleClaim(c *fiber.Ctx, interaction *discord.Interaction, act domain.ToggleClaim) error {
	record, err := h.lifecycle.ToggleClaim(c.UserContext(), act.ThreadID, interaction.Member)
	switch {
	case err == nil:
		h.metrics.RecordInteraction("claim", "ok")
		return c.JSON(discord.InteractionResponse{
			Type: discord.ResponseUpdateMessage,
			Data: &discord.MessagePayload{
				Components: []discord.ActionRow{service.TicketControls(act.ThreadID, record.Claimed())},
			},
		})
	case apperrors.HasCode(err, "FORBIDDEN"):
		h.metrics.RecordInteraction("claim", "rejected")
		return ephemeral(c, replyClaimForbidden)
	case apperrors.HasCode(err, "NOT_FOUND"):
		h.metrics.RecordInteraction("claim", "rejected")
		return ephemeral(c, replyTicketNotFound)
	default:
		h.metrics.RecordInteraction("claim", "error")
		h.logger.Error("claim toggle failed",
			zap.String("thread_id", act.ThreadID),
			zap.String("user_id", interaction.Member.User.ID),
			zap.Error(err))
		return ephemeral(c, replyTicketNotFound)
	}
}

// handleClose acknowledges immediately, then archives and destroys the
// thread in the background; failures surface as ephemeral follow-ups.
func (h *InteractionsHandler) handleClose(c *fiber.Ctx, interaction *discord.Interaction, act domain.CloseTicket) error {
	if _, ok := h.lifecycle.Ticket(act.ThreadID); !ok {
		h.metrics.RecordInteraction("close", "rejected")
		return ephemeral(c, replyTicketNotFound)
	}

	closer := *interaction.Member.User
	token := interaction.Token

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		archivalErr, err := h.lifecycle.CloseTicket(ctx, act.ThreadID, closer)
		if err != nil {
			h.metrics.RecordInteraction("close", "error")
			h.followUp(ctx, token, replyCloseFailed)
			return
		}
		if archivalErr != nil {
			h.metrics.RecordInteraction("close", "ok")
			h.logger.Error("transcript archival failed",
				zap.String("thread_id", act.ThreadID),
				zap.String("user_id", closer.ID),
				zap.Error(archivalErr))
			h.followUp(ctx, token, replyArchivalFailed)
			return
		}
		h.metrics.RecordInteraction("close", "ok")
	}()

	return ephemeral(c, replyClosing)
}

func (h *InteractionsHandler) followUp(ctx context.Context, token, text string) {
	err := h.gateway.FollowUp(ctx, token, discord.MessagePayload{
		Content: text,
		Flags:   discord.MessageFlagEphemeral,
	})
	if err != nil {
		h.logger.Warn("interaction follow-up failed", zap.Error(err))
	}
}

// ephemeral replies with a message visible only to the acting user.
func ephemeral(c *fiber.Ctx, text string) error {
	return c.JSON(discord.InteractionResponse{
		Type: discord.ResponseChannelMessage,
		Data: &discord.MessagePayload{
			Content: text,
			Flags:   discord.MessageFlagEphemeral,
		},
	})
}

// isAdministrator checks the ADMINISTRATOR bit in the member's serialized
// permission set.
func isAdministrator(member *discord.GuildMember) bool {
	if member == nil {
		return false
	}
	perms, err := strconv.ParseUint(member.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return perms&discord.PermissionAdministrator != 0
}
