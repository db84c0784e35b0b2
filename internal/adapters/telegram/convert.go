package telegram

import (
	"time"

	"github.com/mymmrac/telego"

	"github.com/mikey/group-guard/internal/core"
)

// toMessage converts an update into a core message. Updates without a new
// text message (edits, media, service messages) are skipped.
func toMessage(update telego.Update, receivedAt time.Time) (*core.Message, bool) {
	m := update.Message
	if m == nil || m.Text == "" {
		return nil, false
	}

	userID := core.AnonymousUserID
	if m.From != nil {
		userID = m.From.ID
	}

	return &core.Message{
		Chat: core.Chat{
			ID:   m.Chat.ID,
			Type: core.ChatType(m.Chat.Type),
		},
		UserID:     userID,
		MessageID:  m.MessageID,
		Text:       m.Text,
		ReceivedAt: receivedAt,
	}, true
}
