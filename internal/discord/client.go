package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

// Thread auto-archive policy, in minutes. Matches the one-hour policy the
// panel has always used.
const threadAutoArchiveMinutes = 60

// memberPageSize is the maximum page size of the guild members endpoint.
const memberPageSize = 1000

// Client talks to the Discord REST API.
type Client struct {
	http          *resty.Client
	applicationID string
	logger        *zap.Logger
}

// NewClient builds a REST client from config. The base URL is overridable
// for tests.
func NewClient(cfg config.DiscordConfig, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Authorization", "Bot "+cfg.Token).
		SetHeader("User-Agent", "ticket-bot")

	return &Client{
		http:          httpClient,
		applicationID: cfg.ApplicationID,
		logger:        logger,
	}
}

// StartPrivateThread creates a private thread under a parent channel.
func (c *Client) StartPrivateThread(ctx context.Context, parentChannelID, name, reason string) (*Channel, error) {
	var channel Channel
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Audit-Log-Reason", reason).
		SetBody(StartThreadParams{
			Name:                name,
			AutoArchiveDuration: threadAutoArchiveMinutes,
			Type:                ChannelTypePrivateThread,
		}).
		SetResult(&channel).
		Post("/channels/" + parentChannelID + "/threads")
	if err := c.checkResponse("start thread", resp, err, map[string]any{"parent_channel_id": parentChannelID}); err != nil {
		return nil, err
	}
	return &channel, nil
}

// AddThreadMember adds a user to a thread.
func (c *Client) AddThreadMember(ctx context.Context, threadID, userID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Put("/channels/" + threadID + "/thread-members/" + userID)
	return c.checkResponse("add thread member", resp, err, map[string]any{"thread_id": threadID, "user_id": userID})
}

// GuildMembersWithRole pages through the guild member list and returns the
// current holders of the given role.
func (c *Client) GuildMembersWithRole(ctx context.Context, guildID, roleID string) ([]GuildMember, error) {
	var holders []GuildMember
	after := ""
	for {
		var page []GuildMember
		req := c.http.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(memberPageSize)).
			SetResult(&page)
		if after != "" {
			req.SetQueryParam("after", after)
		}
		resp, err := req.Get("/guilds/" + guildID + "/members")
		if err := c.checkResponse("list guild members", resp, err, map[string]any{"guild_id": guildID, "role_id": roleID}); err != nil {
			return nil, err
		}
		for _, member := range page {
			if member.HasRole(roleID) {
				holders = append(holders, member)
			}
		}
		if len(page) < memberPageSize {
			return holders, nil
		}
		last := page[len(page)-1]
		if last.User == nil {
			return holders, nil
		}
		after = last.User.ID
	}
}

// CreateMessage posts a message to a channel or thread.
func (c *Client) CreateMessage(ctx context.Context, channelID string, payload MessagePayload) (*Message, error) {
	var msg Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&msg).
		Post("/channels/" + channelID + "/messages")
	if err := c.checkResponse("create message", resp, err, map[string]any{"channel_id": channelID}); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateMessageWithFile posts a message with a single file attachment using
// Discord's multipart payload_json convention.
func (c *Client) CreateMessageWithFile(ctx context.Context, channelID string, payload MessagePayload, filename string, file []byte) (*Message, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	var msg Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("payload_json", "", "application/json", bytes.NewReader(payloadJSON)).
		SetMultipartField("files[0]", filename, "text/plain", bytes.NewReader(file)).
		SetResult(&msg).
		Post("/channels/" + channelID + "/messages")
	if err := c.checkResponse("upload file", resp, err, map[string]any{"channel_id": channelID, "filename": filename}); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ChannelMessages fetches up to limit most recent messages, newest first.
func (c *Client) ChannelMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	var msgs []Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&msgs).
		Get("/channels/" + channelID + "/messages")
	if err := c.checkResponse("fetch messages", resp, err, map[string]any{"channel_id": channelID}); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Channel fetches a channel or thread by id.
func (c *Client) Channel(ctx context.Context, channelID string) (*Channel, error) {
	var channel Channel
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&channel).
		Get("/channels/" + channelID)
	if err := c.checkResponse("fetch channel", resp, err, map[string]any{"channel_id": channelID}); err != nil {
		return nil, err
	}
	return &channel, nil
}

// DeleteChannel destroys a channel or thread.
func (c *Client) DeleteChannel(ctx context.Context, channelID, reason string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Audit-Log-Reason", reason).
		Delete("/channels/" + channelID)
	return c.checkResponse("delete channel", resp, err, map[string]any{"channel_id": channelID})
}

// EditOriginalResponse rewrites the deferred reply of an interaction.
func (c *Client) EditOriginalResponse(ctx context.Context, interactionToken string, payload MessagePayload) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Patch(c.webhookPath(interactionToken) + "/messages/@original")
	return c.checkResponse("edit interaction response", resp, err, nil)
}

// FollowUp posts an additional reply to an acknowledged interaction.
func (c *Client) FollowUp(ctx context.Context, interactionToken string, payload MessagePayload) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.webhookPath(interactionToken))
	return c.checkResponse("interaction follow-up", resp, err, nil)
}

func (c *Client) webhookPath(interactionToken string) string {
	return "/webhooks/" + c.applicationID + "/" + url.PathEscape(interactionToken)
}

func (c *Client) checkResponse(op string, resp *resty.Response, err error, details map[string]any) error {
	if err != nil {
		return apperrors.NewGatewayFailure(op, err, details)
	}
	if resp.IsError() {
		c.logger.Warn("discord API error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
		return apperrors.NewGatewayFailure(op, fmt.Errorf("status %d", resp.StatusCode()), details)
	}
	return nil
}
