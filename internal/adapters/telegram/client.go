package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mikey/group-guard/internal/core"
)

// NewBot creates a Bot API client that logs through logger
func NewBot(token string, logger *zap.Logger) (*telego.Bot, error) {
	bot, err := telego.NewBot(token, telego.WithLogger(logger.Named("telego").Sugar()))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

// NewLimiter creates the limiter for outbound Bot API calls. A
// non-positive rate disables limiting.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Client performs the outbound Bot API calls the bot needs: deleting
// messages, replying and looking up member status
type Client struct {
	bot     *telego.Bot
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new Bot API client
func NewClient(bot *telego.Bot, limiter *rate.Limiter, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		bot:     bot,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// prepare waits for the rate limiter and applies the request timeout
func (c *Client) prepare(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		if err := c.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}
		return ctx, cancel, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter: %w", err)
	}
	return ctx, func() {}, nil
}

// DeleteMessage deletes a message. Permission problems are reported as
// core.ErrDeleteForbidden and already deleted messages as core.ErrMessageGone.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ctx, cancel, err := c.prepare(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	err = c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
	if err != nil {
		return classifyDeleteError(err)
	}
	return nil
}

// Reply sends a plain text message to the chat
func (c *Client) Reply(ctx context.Context, chatID int64, text string) error {
	ctx, cancel, err := c.prepare(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if _, err := c.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// MemberStatus returns the chat member status of a user, e.g.
// "administrator" or "creator"
func (c *Client) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	ctx, cancel, err := c.prepare(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	member, err := c.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(chatID),
		UserID: userID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat member %d in chat %d: %w", userID, chatID, err)
	}
	return member.MemberStatus(), nil
}

// Username returns the bot's own username
func (c *Client) Username(ctx context.Context) (string, error) {
	ctx, cancel, err := c.prepare(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	me, err := c.bot.GetMe(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get bot info: %w", err)
	}
	return me.Username, nil
}

var (
	forbiddenDescriptions = []string{
		"message can't be deleted",
		"not enough rights",
		"need administrator rights",
		"have no rights",
		"forbidden",
	}
	goneDescriptions = []string{
		"message to delete not found",
		"message_id_invalid",
	}
)

// classifyDeleteError maps Bot API error descriptions onto the core
// sentinel errors
func classifyDeleteError(err error) error {
	desc := strings.ToLower(err.Error())
	for _, d := range goneDescriptions {
		if strings.Contains(desc, d) {
			return fmt.Errorf("%w: %v", core.ErrMessageGone, err)
		}
	}
	for _, d := range forbiddenDescriptions {
		if strings.Contains(desc, d) {
			return fmt.Errorf("%w: %v", core.ErrDeleteForbidden, err)
		}
	}
	return fmt.Errorf("failed to delete message: %w", err)
}
