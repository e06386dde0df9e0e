package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/discord"
)

// transcriptMessageLimit bounds how much history a transcript covers.
const transcriptMessageLimit = 100

const transcriptSeparator = "━━━━━━━━━━━━━━━━━━━━━━━━"

// transcriptPlaceholder replaces a transcript whose history could not be
// fetched. Archival must never abort a close.
const transcriptPlaceholder = "Error generating transcript."

// TranscriptArchiver renders a thread's message history into a plain-text
// document for the log channel.
type TranscriptArchiver struct {
	gateway discord.Gateway
	logger  *zap.Logger
}

// NewTranscriptArchiver constructs the archiver.
func NewTranscriptArchiver(gateway discord.Gateway, logger *zap.Logger) *TranscriptArchiver {
	return &TranscriptArchiver{gateway: gateway, logger: logger}
}

// Render fetches up to the most recent 100 messages of the thread and
// renders them oldest first. Fetch or render failures yield a single-line
// placeholder document rather than an error.
func (a *TranscriptArchiver) Render(ctx context.Context, threadID, threadName string, createdAt time.Time) string {
	messages, err := a.gateway.ChannelMessages(ctx, threadID, transcriptMessageLimit)
	if err != nil {
		a.logger.Warn("transcript history fetch failed", zap.String("thread_id", threadID), zap.Error(err))
		return transcriptPlaceholder
	}
	return renderTranscript(threadName, createdAt, messages)
}

// renderTranscript produces the document from an arbitrary-order message
// slice. The gateway returns newest first; the document is chronological.
func renderTranscript(threadName string, createdAt time.Time, messages []discord.Message) string {
	ordered := make([]discord.Message, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Ticket Transcript: %s\n", threadName)
	fmt.Fprintf(&b, "Created: %s\n", createdAt.Local().Format("2006-01-02 15:04:05"))
	b.WriteString(transcriptSeparator + "\n\n")

	for _, msg := range ordered {
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.Local().Format("15:04:05"), msg.Author.Tag(), msg.Content)
		for _, embed := range msg.Embeds {
			title := embed.Title
			if title == "" {
				title = "No title"
			}
			fmt.Fprintf(&b, "  └─ [Embed: %s]\n", title)
		}
		for _, att := range msg.Attachments {
			fmt.Fprintf(&b, "  └─ [Attachment: %s]\n", att.URL)
		}
	}
	return b.String()
}
