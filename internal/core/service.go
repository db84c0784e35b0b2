package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/metrics"
	"github.com/mikey/group-guard/internal/patterns"
	"github.com/mikey/group-guard/internal/utils"
)

// StartAlias is the bare start command that group members may send as
// plain text
const StartAlias = ".start"

// ServiceConfig holds the moderation service settings
type ServiceConfig struct {
	// DeleteTimeout bounds a single delete call
	DeleteTimeout time.Duration
}

// ModerationService is the core service for group moderation. It decides
// for every inbound message whether to keep or delete it.
type ModerationService struct {
	badwords      BadwordChecker
	tracker       RepeatTracker
	deleter       MessageDeleter
	help          HelpResponder
	logger        *zap.Logger
	deleteTimeout time.Duration
	now           func() time.Time
}

// NewModerationService creates a new moderation service
func NewModerationService(
	badwords BadwordChecker,
	tracker RepeatTracker,
	deleter MessageDeleter,
	help HelpResponder,
	logger *zap.Logger,
	cfg ServiceConfig,
) *ModerationService {
	return &ModerationService{
		badwords:      badwords,
		tracker:       tracker,
		deleter:       deleter,
		help:          help,
		logger:        logger,
		deleteTimeout: cfg.DeleteTimeout,
		now:           time.Now,
	}
}

// SetClock replaces the time source used for repeat tracking
func (s *ModerationService) SetClock(now func() time.Time) {
	s.now = now
}

// Evaluate applies the moderation rules to msg. Rules run in a fixed
// order (mention, link, badword, repeat) and the first match deletes the
// message. Evaluate never fails: collaborator errors are logged and
// reported in the returned Decision.
func (s *ModerationService) Evaluate(ctx context.Context, msg *Message) Decision {
	start := time.Now()
	d := s.evaluate(ctx, msg)

	metrics.MessagesTotal.WithLabelValues(string(d.Action)).Inc()
	if d.Action != ActionIgnore {
		metrics.EvaluationLatency.Observe(time.Since(start).Seconds())
	}
	return d
}

func (s *ModerationService) evaluate(ctx context.Context, msg *Message) Decision {
	if msg == nil || msg.Text == "" || !msg.Chat.Type.IsGroup() {
		return Decision{Action: ActionIgnore}
	}

	if utils.NormalizeText(msg.Text) == StartAlias {
		if s.help != nil {
			if err := s.help.SendHelp(ctx, msg.Chat.ID); err != nil {
				s.logger.Warn("Failed to send help",
					zap.Int64("chat_id", msg.Chat.ID),
					zap.Error(err))
			}
		}
		return Decision{Action: ActionHelp}
	}

	if patterns.ContainsMention(msg.Text) {
		return s.delete(ctx, msg, ReasonMention, "")
	}

	if patterns.ContainsLink(msg.Text) {
		return s.delete(ctx, msg, ReasonLink, "")
	}

	if s.badwords != nil {
		term, ok, err := s.badwords.Check(ctx, msg.Chat.ID, msg.Text)
		if err != nil {
			// Treated as "no matcher" for this message
			metrics.BadwordLoadErrorsTotal.Inc()
			s.logger.Warn("Failed to check badwords",
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Error(err))
		} else if ok {
			return s.delete(ctx, msg, ReasonBadword, term)
		}
	}

	normalized := utils.NormalizeText(msg.Text)
	if normalized == "" {
		return Decision{Action: ActionAllow}
	}

	key := SpamKey{ChatID: msg.Chat.ID, UserID: msg.UserID, Text: normalized}
	if s.tracker.Observe(key, s.now()) == VerdictFlag {
		return s.delete(ctx, msg, ReasonRepeat, "")
	}

	return Decision{Action: ActionAllow}
}

// delete attempts to remove msg. Failures are logged and counted but never
// returned as errors; deletion is best effort.
func (s *ModerationService) delete(ctx context.Context, msg *Message, reason Reason, term string) Decision {
	d := Decision{Action: ActionDelete, Reason: reason, Term: term}
	metrics.DeletionsTotal.WithLabelValues(string(reason)).Inc()

	fields := []zap.Field{
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Int64("user_id", msg.UserID),
		zap.Int("message_id", msg.MessageID),
		zap.String("reason", string(reason)),
	}
	if term != "" {
		fields = append(fields, zap.String("term", term))
	}

	if s.deleteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deleteTimeout)
		defer cancel()
	}

	err := s.deleter.DeleteMessage(ctx, msg.Chat.ID, msg.MessageID)
	if err == nil {
		s.logger.Info("Message deleted", fields...)
		return d
	}

	d.DeleteErr = err
	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, ErrDeleteForbidden):
		metrics.DeleteFailuresTotal.WithLabelValues("forbidden").Inc()
		s.logger.Warn("Cannot delete message, bot needs admin rights with delete permission", fields...)
	case errors.Is(err, ErrMessageGone):
		metrics.DeleteFailuresTotal.WithLabelValues("gone").Inc()
		s.logger.Debug("Message already gone", fields...)
	default:
		metrics.DeleteFailuresTotal.WithLabelValues("error").Inc()
		s.logger.Error("Failed to delete message", fields...)
	}
	return d
}
