package metrics

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCountersExposed(t *testing.T) {
	DeletionsTotal.WithLabelValues("link").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `group_guard_deletions_total{reason="link"}`)
}

func TestRegisterTrackedKeysTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterTrackedKeys(func() int { return 3 })
		RegisterTrackedKeys(func() int { return 4 })
	})
}

func TestServerStartServesMetrics(t *testing.T) {
	s := NewServer("127.0.0.1:0", zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerStartReportsBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewServer(ln.Addr().String(), zap.NewNop())
	assert.Error(t, s.Start())
}
