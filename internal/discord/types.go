package discord

import "time"

// Interaction types delivered to the webhook endpoint.
const (
	InteractionTypePing               = 1
	InteractionTypeApplicationCommand = 2
	InteractionTypeMessageComponent   = 3
)

// Interaction response types.
const (
	ResponsePong                   = 1
	ResponseChannelMessage         = 4
	ResponseDeferredChannelMessage = 5
	ResponseUpdateMessage          = 7
)

// MessageFlagEphemeral marks a reply visible only to the acting user.
const MessageFlagEphemeral = 1 << 6

// PermissionAdministrator is the ADMINISTRATOR bit in a member's
// serialized permission set.
const PermissionAdministrator = 1 << 3

// ChannelTypePrivateThread is the channel type for private threads.
const ChannelTypePrivateThread = 12

// Component types and button styles.
const (
	ComponentTypeActionRow = 1
	ComponentTypeButton    = 2

	ButtonStylePrimary   = 1
	ButtonStyleSecondary = 2
	ButtonStyleSuccess   = 3
	ButtonStyleDanger    = 4
)

// User is a Discord user.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
}

// DisplayName prefers the global display name over the login username.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Tag renders the legacy name#discriminator form used in transcripts and
// audit reasons.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// GuildMember is a user's membership in a guild.
type GuildMember struct {
	User        *User    `json:"user,omitempty"`
	Nick        string   `json:"nick,omitempty"`
	Roles       []string `json:"roles"`
	Permissions string   `json:"permissions,omitempty"`
}

// HasRole reports membership in the given role. An empty role id never
// matches.
func (m GuildMember) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// Channel is a guild channel or thread.
type Channel struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	Name     string `json:"name,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// Attachment is an uploaded file reference on a message.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Message is a fetched channel message.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	Author      User         `json:"author"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Embeds      []Embed      `json:"embeds,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Embed is a rich-content block.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is a titled value inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Emoji decorates a button label.
type Emoji struct {
	Name string `json:"name"`
}

// Button is an interactive component.
type Button struct {
	Type     int    `json:"type"`
	Style    int    `json:"style"`
	Label    string `json:"label,omitempty"`
	Emoji    *Emoji `json:"emoji,omitempty"`
	CustomID string `json:"custom_id"`
}

// ActionRow groups up to five buttons.
type ActionRow struct {
	Type       int      `json:"type"`
	Components []Button `json:"components"`
}

// NewActionRow builds a row around the given buttons.
func NewActionRow(buttons ...Button) ActionRow {
	return ActionRow{Type: ComponentTypeActionRow, Components: buttons}
}

// MessagePayload is an outgoing message body.
type MessagePayload struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []ActionRow `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
}

// InteractionData carries the component or command payload of an
// interaction.
type InteractionData struct {
	CustomID      string `json:"custom_id,omitempty"`
	ComponentType int    `json:"component_type,omitempty"`
	Name          string `json:"name,omitempty"`
}

// Interaction is an inbound interaction event.
type Interaction struct {
	ID        string           `json:"id"`
	Type      int              `json:"type"`
	Token     string           `json:"token"`
	GuildID   string           `json:"guild_id,omitempty"`
	ChannelID string           `json:"channel_id,omitempty"`
	Member    *GuildMember     `json:"member,omitempty"`
	Data      *InteractionData `json:"data,omitempty"`
}

// InteractionResponse is the synchronous reply to an interaction.
type InteractionResponse struct {
	Type int             `json:"type"`
	Data *MessagePayload `json:"data,omitempty"`
}

// StartThreadParams configures private thread creation.
type StartThreadParams struct {
	Name                string `json:"name"`
	AutoArchiveDuration int    `json:"auto_archive_duration,omitempty"`
	Type                int    `json:"type"`
	Invitable           bool   `json:"invitable"`
}
