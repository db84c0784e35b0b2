package core

import (
	"time"
)

// ChatType is the kind of chat a message was posted in
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// IsGroup reports whether moderation applies to chats of this type
func (t ChatType) IsGroup() bool {
	return t == ChatTypeGroup || t == ChatTypeSupergroup
}

// AnonymousUserID stands in for a sender the platform did not identify
const AnonymousUserID int64 = 0

// Chat identifies the chat a message belongs to
type Chat struct {
	ID   int64
	Type ChatType
}

// Message represents an inbound chat message
type Message struct {
	Chat       Chat
	UserID     int64
	MessageID  int
	Text       string
	ReceivedAt time.Time
}

// Action is what the moderation service did with a message
type Action string

const (
	ActionIgnore Action = "ignore"
	ActionAllow  Action = "allow"
	ActionDelete Action = "delete"
	ActionHelp   Action = "help"
)

// Reason names the rule that caused a deletion
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonMention Reason = "mention"
	ReasonLink    Reason = "link"
	ReasonBadword Reason = "badword"
	ReasonRepeat  Reason = "repeat"
)

// Decision is the outcome of evaluating one message
type Decision struct {
	Action Action
	Reason Reason
	// Term is the badword that matched, if any
	Term string
	// DeleteErr is set when the delete attempt failed. It is never
	// propagated to the dispatch loop.
	DeleteErr error
}

// Deleted reports whether a delete was requested and succeeded
func (d Decision) Deleted() bool {
	return d.Action == ActionDelete && d.DeleteErr == nil
}

// SpamKey identifies one repetition stream
type SpamKey struct {
	ChatID int64
	UserID int64
	Text   string
}

// SpamEntry is the tracker state for one SpamKey
type SpamEntry struct {
	LastSeenAt  time.Time
	RepeatCount int
}

// Verdict is the repeat tracker's answer for a single observation
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictFlag
)

func (v Verdict) String() string {
	if v == VerdictFlag {
		return "flag"
	}
	return "allow"
}

// BadwordEntry is one persisted badword of a chat
type BadwordEntry struct {
	ChatID    int64
	Word      string
	CreatedAt time.Time
}

// Member statuses that grant privilege
const (
	MemberStatusCreator       = "creator"
	MemberStatusAdministrator = "administrator"
)
