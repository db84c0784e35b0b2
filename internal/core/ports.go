package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDeleteForbidden is returned when the bot lacks the right to delete a message
	ErrDeleteForbidden = errors.New("not enough rights to delete message")
	// ErrMessageGone is returned when the message no longer exists
	ErrMessageGone = errors.New("message to delete not found")
)

// MessageDeleter removes a message from a chat
type MessageDeleter interface {
	// DeleteMessage deletes a single message
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Replier posts a text message into a chat
type Replier interface {
	// Reply sends text to the chat
	Reply(ctx context.Context, chatID int64, text string) error
}

// MemberStatusProvider looks up a user's membership status in a chat
type MemberStatusProvider interface {
	// MemberStatus returns the platform status, e.g. "administrator" or "member"
	MemberStatus(ctx context.Context, chatID, userID int64) (string, error)
}

// BadwordStore is the durable per-chat badword storage
type BadwordStore interface {
	// FindAll returns every word stored for a chat, in creation order
	FindAll(ctx context.Context, chatID int64) ([]string, error)

	// Upsert inserts a word unless it is already present
	Upsert(ctx context.Context, chatID int64, word string) (bool, error)

	// Delete removes a word and returns the number of removed rows
	Delete(ctx context.Context, chatID int64, word string) (int64, error)

	// DeleteAll removes every word of a chat and returns the number removed
	DeleteAll(ctx context.Context, chatID int64) (int64, error)

	// Close releases the underlying connection
	Close() error
}

// HelpResponder answers the bare start alias
type HelpResponder interface {
	SendHelp(ctx context.Context, chatID int64) error
}

// BadwordChecker matches text against the badwords of a chat
type BadwordChecker interface {
	// Check returns the matched word and true when text contains one
	Check(ctx context.Context, chatID int64, text string) (string, bool, error)
}

// RepeatTracker counts repeated messages per SpamKey
type RepeatTracker interface {
	// Observe records one message and returns the verdict for it
	Observe(key SpamKey, now time.Time) Verdict
}
