package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/ticket-bot/internal/catalog"
	"github.com/spec-kit/ticket-bot/internal/discord"
	"github.com/spec-kit/ticket-bot/internal/domain"
)

const panelColor = 0xffc0cb
const closedLogColor = 0x95a5a6

// panelButtonsPerRow caps how many category buttons share an action row.
const panelButtonsPerRow = 4

// PanelMessage builds the category-selection panel posted by /setuptickets.
func PanelMessage(cat *catalog.Catalog) discord.MessagePayload {
	categories := cat.All()

	var desc strings.Builder
	desc.WriteString("Welcome to the **Support System!** We're here to assist with your needs, " +
		"so please remain respectful when using our support system.\n\n" +
		"We have a multitude of support categories, so please review below and select " +
		"the one that best tailors your needs!\n\n")
	desc.WriteString(transcriptSeparator + "\n")
	for _, c := range categories {
		fmt.Fprintf(&desc, "\n**%s %s**\n%s\n", c.Emoji, c.Name, c.Description)
	}

	var rows []discord.ActionRow
	var buttons []discord.Button
	for _, c := range categories {
		buttons = append(buttons, discord.Button{
			Type:     discord.ComponentTypeButton,
			Style:    panelButtonStyle(c.Key),
			Label:    c.Name,
			Emoji:    &discord.Emoji{Name: c.Emoji},
			CustomID: domain.CreateCustomID(c.Key),
		})
		if len(buttons) == panelButtonsPerRow {
			rows = append(rows, discord.NewActionRow(buttons...))
			buttons = nil
		}
	}
	if len(buttons) > 0 {
		rows = append(rows, discord.NewActionRow(buttons...))
	}

	return discord.MessagePayload{
		Embeds: []discord.Embed{{
			Title:       "Support Center",
			Description: desc.String(),
			Color:       panelColor,
			Footer:      &discord.EmbedFooter{Text: "Select a category below to create a ticket"},
		}},
		Components: rows,
	}
}

func panelButtonStyle(categoryKey string) int {
	switch categoryKey {
	case "mr_report", "appeals":
		return discord.ButtonStyleDanger
	case "executive":
		return discord.ButtonStyleSuccess
	default:
		return discord.ButtonStylePrimary
	}
}

// TicketControls builds the claim/close row reflecting the claim state.
func TicketControls(threadID string, claimed bool) discord.ActionRow {
	claim := discord.Button{
		Type:     discord.ComponentTypeButton,
		Style:    discord.ButtonStyleSuccess,
		Label:    "Claim",
		Emoji:    &discord.Emoji{Name: "✋"},
		CustomID: domain.ClaimCustomID(threadID),
	}
	if claimed {
		claim.Style = discord.ButtonStyleSecondary
		claim.Label = "Unclaim"
		claim.Emoji = &discord.Emoji{Name: "🚫"}
	}
	closeBtn := discord.Button{
		Type:     discord.ComponentTypeButton,
		Style:    discord.ButtonStyleDanger,
		Label:    "Close",
		Emoji:    &discord.Emoji{Name: "🔒"},
		CustomID: domain.CloseCustomID(threadID),
	}
	return discord.NewActionRow(claim, closeBtn)
}

// ticketIntroMessage builds the first message of a fresh ticket thread,
// pinging the creator and the responder role.
func ticketIntroMessage(category domain.Category, creatorUserID, threadID string) discord.MessagePayload {
	ping := mentionUser(creatorUserID)
	if category.RoleID != "" {
		ping += " " + mentionRole(category.RoleID)
	}
	return discord.MessagePayload{
		Content: ping,
		Embeds: []discord.Embed{{
			Title: category.Label(),
			Description: fmt.Sprintf("Welcome %s!\n\n%s\n\nA support representative will be with you shortly. "+
				"Please describe your issue in detail.", mentionUser(creatorUserID), category.Description),
			Color: category.Color,
			Fields: []discord.EmbedField{
				{Name: "Ticket Creator", Value: mentionUser(creatorUserID), Inline: true},
				{Name: "Category", Value: category.Name, Inline: true},
				{Name: "Status", Value: "🟢 Open", Inline: true},
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
		Components: []discord.ActionRow{TicketControls(threadID, false)},
	}
}

// closedLogMessage builds the structured summary posted to the log channel.
func closedLogMessage(record domain.TicketRecord, category domain.Category, threadName, closerUserID string) discord.MessagePayload {
	claimedBy := "Unclaimed"
	if record.Claimed() {
		claimedBy = mentionUser(record.ClaimedBy)
	}
	return discord.MessagePayload{
		Embeds: []discord.Embed{{
			Title: "🔒 Ticket Closed",
			Color: closedLogColor,
			Fields: []discord.EmbedField{
				{Name: "Ticket Name", Value: threadName, Inline: true},
				{Name: "Category", Value: category.Name, Inline: true},
				{Name: "Creator", Value: mentionUser(record.CreatorUserID), Inline: true},
				{Name: "Closed By", Value: mentionUser(closerUserID), Inline: true},
				{Name: "Claimed By", Value: claimedBy, Inline: true},
				{Name: "Created At", Value: record.CreatedAt.Local().Format("2006-01-02 15:04:05"), Inline: true},
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
}

func mentionUser(userID string) string {
	return discord.MentionUser(userID)
}

func mentionRole(roleID string) string {
	return discord.MentionRole(roleID)
}
