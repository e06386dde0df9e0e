package discord

// Mention helpers render Discord's message formatting for references.

func MentionUser(userID string) string {
	return "<@" + userID + ">"
}

func MentionRole(roleID string) string {
	return "<@&" + roleID + ">"
}

func MentionChannel(channelID string) string {
	return "<#" + channelID + ">"
}
