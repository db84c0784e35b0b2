package whitelist

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
)

// Checker decides whether a user may change a chat's moderation settings.
// Statically privileged ids are checked first; otherwise group and
// supergroup administrators and creators are privileged.
type Checker struct {
	ids     map[int64]struct{}
	members core.MemberStatusProvider
	timeout time.Duration
	logger  *zap.Logger
}

// NewChecker creates a new privilege checker. members may be nil, in which
// case only the static ids are privileged.
func NewChecker(ids []int64, members core.MemberStatusProvider, timeout time.Duration, logger *zap.Logger) *Checker {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	if len(set) > 0 && logger != nil {
		logger.Info("Initialized privileged users", zap.Int64s("user_ids", ids))
	}

	return &Checker{
		ids:     set,
		members: members,
		timeout: timeout,
		logger:  logger,
	}
}

// IsStatic reports whether userID is on the static allow-list
func (c *Checker) IsStatic(userID int64) bool {
	_, ok := c.ids[userID]
	return ok
}

// IsPrivileged reports whether userID is privileged in chat. Lookup
// failures of any kind yield false.
func (c *Checker) IsPrivileged(ctx context.Context, chat core.Chat, userID int64) bool {
	if c.IsStatic(userID) {
		return true
	}
	if !chat.Type.IsGroup() || c.members == nil {
		return false
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	status, err := c.members.MemberStatus(ctx, chat.ID, userID)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Failed to look up member status",
				zap.Int64("chat_id", chat.ID),
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
		return false
	}

	switch status {
	case core.MemberStatusCreator, core.MemberStatusAdministrator:
		return true
	default:
		return false
	}
}
