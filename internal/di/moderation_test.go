package di

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mikey/group-guard/internal/adapters/console"
	"github.com/mikey/group-guard/internal/config"
	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/whitelist"
)

func TestPrivilegedUsersLoggedOnce(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(obs)

	v := config.NewEmptyViper()
	v.Set("privileged.user_ids", "11,12")

	container := dig.New()
	require.NoError(t, container.Provide(func() *config.Config { return config.NewFromViper(v) }))
	require.NoError(t, container.Provide(func() *zap.Logger { return logger }))
	require.NoError(t, container.Provide(func() *console.Console { return console.New(&bytes.Buffer{}, nil, logger) }))
	require.NoError(t, container.Provide(func(c *console.Console) core.MemberStatusProvider { return c }))
	require.NoError(t, provideModeration(container))

	require.NoError(t, container.Invoke(func(c *whitelist.Checker) {
		assert.True(t, c.IsStatic(11))
	}))

	n := 0
	for _, e := range logs.All() {
		if strings.Contains(strings.ToLower(e.Message), "privileged users") {
			n++
		}
	}
	assert.Equal(t, 1, n)
}
