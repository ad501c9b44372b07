package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/PabloGalante/pulsebot/internal/domain"
	"github.com/PabloGalante/pulsebot/internal/observability"
)

// Discord caps messages at 2000 characters; leave room for formatting.
const maxMessageChars = 1900

// Notifier delivers solicitations and reports over Discord. Participants are
// contacted in DMs, reports go to the channel the session was started from.
type Notifier struct {
	session *discordgo.Session
}

func NewNotifier(token string) (*Notifier, error) {
	session, err := discordgo.New(normalizeBotToken(token))
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Notifier{session: session}, nil
}

// Open connects the underlying gateway session.
func (n *Notifier) Open() error {
	if err := n.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.session.Close()
}

func (n *Notifier) Solicit(ctx context.Context, user domain.UserID, session domain.SessionID) error {
	msg := fmt.Sprintf(
		"A feedback session is open. Reply anonymously before the window closes.\nSession: `%s`\nScore 1 (rough week), 2 (okay) or 3 (great), plus what went well and what could improve.",
		session)
	return n.directMessage(ctx, user, msg)
}

func (n *Notifier) Remind(ctx context.Context, user domain.UserID, session domain.SessionID) error {
	msg := fmt.Sprintf("Last call: the feedback window for session `%s` closes in about a minute.", session)
	return n.directMessage(ctx, user, msg)
}

func (n *Notifier) DeliverReport(ctx context.Context, originRef, text string) error {
	for _, chunk := range splitMessage(text, maxMessageChars) {
		if _, err := n.session.ChannelMessageSend(originRef, chunk); err != nil {
			return fmt.Errorf("send report chunk: %w", err)
		}
	}
	observability.LoggerFromContext(ctx).Info("report delivered", "channel_id", originRef)
	return nil
}

func (n *Notifier) directMessage(ctx context.Context, user domain.UserID, content string) error {
	channel, err := n.session.UserChannelCreate(string(user))
	if err != nil {
		return fmt.Errorf("open dm channel for %s: %w", user, err)
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("send dm to %s: %w", user, err)
	}
	return nil
}

// splitMessage breaks text into chunks of at most limit characters,
// preferring line boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		// A single oversized line is split hard.
		for len(line) > limit {
			if b.Len() > 0 {
				chunks = append(chunks, b.String())
				b.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if b.Len()+len(line)+1 > limit {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

func normalizeBotToken(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(token), "bot ") {
		return token
	}
	return "Bot " + token
}
