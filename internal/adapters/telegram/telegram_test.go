package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/group-guard/internal/core"
)

func TestClassifyDeleteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"too old or no rights", errors.New(`telego: deleteMessage: api: 400 "Bad Request: message can't be deleted"`), core.ErrDeleteForbidden},
		{"not enough rights", errors.New(`api: 400 "Bad Request: not enough rights to delete a message"`), core.ErrDeleteForbidden},
		{"kicked", errors.New(`api: 403 "Forbidden: bot was kicked from the supergroup chat"`), core.ErrDeleteForbidden},
		{"already deleted", errors.New(`api: 400 "Bad Request: message to delete not found"`), core.ErrMessageGone},
		{"network", errors.New("dial tcp: i/o timeout"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyDeleteError(tt.err)
			require.Error(t, got)
			if tt.want == nil {
				assert.False(t, errors.Is(got, core.ErrDeleteForbidden))
				assert.False(t, errors.Is(got, core.ErrMessageGone))
				assert.ErrorIs(t, got, tt.err)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestToMessage(t *testing.T) {
	now := time.Now()

	msg, ok := toMessage(telego.Update{Message: &telego.Message{
		MessageID: 10,
		From:      &telego.User{ID: 55},
		Chat:      telego.Chat{ID: -1001, Type: "supergroup"},
		Text:      "hello",
	}}, now)
	require.True(t, ok)
	assert.Equal(t, int64(-1001), msg.Chat.ID)
	assert.Equal(t, core.ChatTypeSupergroup, msg.Chat.Type)
	assert.Equal(t, int64(55), msg.UserID)
	assert.Equal(t, 10, msg.MessageID)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, now, msg.ReceivedAt)
}

func TestToMessageAnonymousSender(t *testing.T) {
	msg, ok := toMessage(telego.Update{Message: &telego.Message{
		MessageID: 3,
		Chat:      telego.Chat{ID: -1001, Type: "group"},
		Text:      "posted as the group",
	}}, time.Now())
	require.True(t, ok)
	assert.Equal(t, core.AnonymousUserID, msg.UserID)
}

func TestToMessageSkipsNonText(t *testing.T) {
	_, ok := toMessage(telego.Update{}, time.Now())
	assert.False(t, ok)

	_, ok = toMessage(telego.Update{Message: &telego.Message{
		Chat:    telego.Chat{ID: -1001, Type: "group"},
		Caption: "photo caption",
	}}, time.Now())
	assert.False(t, ok)

	_, ok = toMessage(telego.Update{EditedMessage: &telego.Message{
		Chat: telego.Chat{ID: -1001, Type: "group"},
		Text: "edited",
	}}, time.Now())
	assert.False(t, ok)
}

func TestNewLimiter(t *testing.T) {
	unlimited := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(context.Background()))
	}

	limited := NewLimiter(1, 1)
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}
