package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/observability"
)

// Observer wraps every tool execution, whichever path it arrives by.
type Observer interface {
	ObserveInvocation(ctx context.Context, tool string, conv Convention, params map[string]any,
		run func() (domain.GeocodeResult, error)) (domain.GeocodeResult, error)
}

// AuditSink receives a record of every tool invocation.
type AuditSink interface {
	Publish(ctx context.Context, inv domain.ToolInvocation) error
}

type nopObserver struct{}

func (nopObserver) ObserveInvocation(_ context.Context, _ string, _ Convention, _ map[string]any,
	run func() (domain.GeocodeResult, error)) (domain.GeocodeResult, error) {
	return run()
}

func orNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// Recorder is the production Observer: it counts and times invocations and
// publishes an audit record when a sink is configured. Audit failures are
// logged and counted, never returned to the agent.
type Recorder struct {
	metrics *observability.Metrics
	audit   AuditSink
	logger  *slog.Logger
}

// NewRecorder creates a Recorder. audit may be nil.
func NewRecorder(metrics *observability.Metrics, audit AuditSink, logger *slog.Logger) *Recorder {
	return &Recorder{metrics: metrics, audit: audit, logger: logger}
}

// ObserveInvocation implements Observer.
func (r *Recorder) ObserveInvocation(ctx context.Context, tool string, conv Convention, params map[string]any,
	run func() (domain.GeocodeResult, error)) (domain.GeocodeResult, error) {
	inv := domain.NewToolInvocation(tool, string(conv), params)
	result, err := run()
	elapsed := inv.Complete(result, err)

	r.metrics.ToolInvocationDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
	outcome := result.Outcome()
	if err != nil {
		outcome = "invalid_params"
		if !errors.Is(err, ErrInvalidParams) {
			outcome = "error"
		}
	}
	r.metrics.ToolInvocations.WithLabelValues(tool, string(conv), outcome).Inc()

	r.logger.Info("tool invoked",
		"tool", tool,
		"convention", conv,
		"invocation_id", inv.ID,
		"ok", inv.OK,
		"error_kind", inv.ErrorKind,
		"duration_ms", inv.DurationMS,
	)

	if r.audit != nil {
		if pubErr := r.audit.Publish(ctx, inv); pubErr != nil {
			r.metrics.AuditPublishErrors.Inc()
			r.logger.Warn("audit publish failed", "invocation_id", inv.ID, "error", pubErr)
		}
	}
	return result, err
}
