// Package metrics provides Prometheus instrumentation for the moderation
// bot: message outcomes, deletions by rule, delete failures and admin
// command usage.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// MessagesTotal counts evaluated messages by action:
	// "ignore", "allow", "delete" or "help".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_guard_messages_total",
		Help: "Total number of messages evaluated",
	}, []string{"action"})

	// DeletionsTotal counts delete attempts by the rule that fired.
	DeletionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_guard_deletions_total",
		Help: "Total number of delete attempts by reason",
	}, []string{"reason"})

	// DeleteFailuresTotal counts failed deletes by kind:
	// "forbidden", "gone" or "error".
	DeleteFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_guard_delete_failures_total",
		Help: "Total number of failed delete attempts",
	}, []string{"kind"})

	// BadwordLoadErrorsTotal counts failed badword store reads on the
	// moderation path.
	BadwordLoadErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "group_guard_badword_load_errors_total",
		Help: "Total number of failed badword loads",
	})

	// CommandsTotal counts admin commands by command and result.
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_guard_commands_total",
		Help: "Total number of bot commands handled",
	}, []string{"command", "result"})

	// EvaluationLatency records how long one moderation decision takes,
	// including the delete call.
	EvaluationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "group_guard_evaluation_seconds",
		Help:    "Moderation evaluation latency in seconds",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	})
)

func init() {
	prometheus.MustRegister(
		MessagesTotal,
		DeletionsTotal,
		DeleteFailuresTotal,
		BadwordLoadErrorsTotal,
		CommandsTotal,
		EvaluationLatency,
	)
}

// RegisterTrackedKeys exposes the number of spam-tracker keys as a gauge.
// It is safe to call more than once; later calls are ignored.
func RegisterTrackedKeys(fn func() int) {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "group_guard_spam_tracked_keys",
		Help: "Current number of keys held by the repeat tracker",
	}, func() float64 { return float64(fn()) })

	if err := prometheus.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Server serves /metrics on a dedicated listener
type Server struct {
	srv    *http.Server
	logger *zap.Logger
	addr   string
}

// NewServer creates a metrics server on addr
func NewServer(addr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start binds the listen address and serves in the background. A bind
// failure is returned to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.addr = ln.Addr().String()

	s.logger.Info("Metrics server started", zap.String("address", s.addr))
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once Start succeeded
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the server down
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
