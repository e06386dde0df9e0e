package discord

import "context"

// Gateway abstracts the Discord REST operations the ticket lifecycle needs.
// Implemented by Client; tests substitute fakes.
type Gateway interface {
	// StartPrivateThread creates a private thread under a parent channel.
	StartPrivateThread(ctx context.Context, parentChannelID, name, reason string) (*Channel, error)
	// AddThreadMember adds a user to a thread.
	AddThreadMember(ctx context.Context, threadID, userID string) error
	// GuildMembersWithRole resolves the current holders of a role.
	GuildMembersWithRole(ctx context.Context, guildID, roleID string) ([]GuildMember, error)
	// CreateMessage posts a message to a channel or thread.
	CreateMessage(ctx context.Context, channelID string, payload MessagePayload) (*Message, error)
	// CreateMessageWithFile posts a message carrying one file attachment.
	CreateMessageWithFile(ctx context.Context, channelID string, payload MessagePayload, filename string, file []byte) (*Message, error)
	// ChannelMessages fetches up to limit most recent messages, newest first.
	ChannelMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
	// Channel fetches a channel or thread by id.
	Channel(ctx context.Context, channelID string) (*Channel, error)
	// DeleteChannel destroys a channel or thread.
	DeleteChannel(ctx context.Context, channelID, reason string) error
	// EditOriginalResponse rewrites the deferred reply of an interaction.
	EditOriginalResponse(ctx context.Context, interactionToken string, payload MessagePayload) error
	// FollowUp posts an additional reply to an acknowledged interaction.
	FollowUp(ctx context.Context, interactionToken string, payload MessagePayload) error
}
