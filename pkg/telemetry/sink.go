// Package telemetry implements the retry engine's instrumentation contract on
// top of the SMI observability stack: zerolog structured logs, Prometheus
// counters and histograms, and one OpenTelemetry span per instrumented call.
//
// One Sink is shared by every call site in a migration run. It holds only
// registered metric vectors and a base logger, so concurrent calls need no
// coordination beyond what Prometheus and zerolog already provide.
//
// Example usage:
//
//	sink, err := telemetry.NewSink(logger, registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	policy := retry.New(retryCfg, sink)
package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/storemover/smi/pkg/logging"
	"github.com/storemover/smi/pkg/metrics"
	"github.com/storemover/smi/pkg/retry"
	"github.com/storemover/smi/pkg/tracing"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Sink fans retry lifecycle events out to logs, metrics and traces.
type Sink struct {
	logger *logging.Logger

	successes     *metrics.Counter
	failures      *metrics.Counter
	retryAttempts *metrics.Counter
	retryOutcomes *metrics.Counter
	duration      *metrics.Histogram
}

var _ retry.Instrumenter = (*Sink)(nil)

// NewSink creates a Sink writing through the given logger and registering its
// metrics with reg.
func NewSink(logger *logging.Logger, reg *metrics.Registry) (*Sink, error) {
	s := &Sink{logger: logger.WithComponent("telemetry")}

	var err error
	s.successes, err = reg.NewCounter(metrics.CounterOpts{
		Subsystem: "request",
		Name:      "success_total",
		Help:      "Calls that obtained a response, regardless of its HTTP status",
		Labels:    []string{"operation", "url", "entity", "status", "retries"},
	})
	if err != nil {
		return nil, err
	}

	s.failures, err = reg.NewCounter(metrics.CounterOpts{
		Subsystem: "request",
		Name:      "failure_total",
		Help:      "Calls that terminated with a transport error or cancellation",
		Labels:    []string{"operation", "url", "entity", "retries"},
	})
	if err != nil {
		return nil, err
	}

	s.retryAttempts, err = reg.NewCounter(metrics.CounterOpts{
		Subsystem: "request",
		Name:      "retry_attempts_total",
		Help:      "Retries scheduled by the retry policy",
		Labels:    []string{"operation", "url", "entity", "attempt"},
	})
	if err != nil {
		return nil, err
	}

	s.retryOutcomes, err = reg.NewCounter(metrics.CounterOpts{
		Subsystem: "request",
		Name:      "retry_outcomes_total",
		Help:      "Terminal outcomes of calls that consumed at least one retry",
		Labels:    []string{"operation", "url", "entity", "outcome", "retries"},
	})
	if err != nil {
		return nil, err
	}

	s.duration, err = reg.NewHistogram(metrics.HistogramOpts{
		Subsystem: "request",
		Name:      "duration_seconds",
		Help:      "Total call duration including retry waits",
		Labels:    []string{"operation", "url", "entity", "outcome"},
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// BeginScope opens the per-call telemetry scope: it starts the span named
// after the operation and attaches an operation-scoped logger to the context,
// so every line logged during the call carries the operation fields. The
// release function ends the span and runs on every exit path.
func (s *Sink) BeginScope(ctx context.Context, op retry.Operation) (context.Context, func()) {
	ctx, span := tracing.StartSpan(ctx, op.Name, trace.WithAttributes(
		attribute.String("url", op.URL),
		attribute.String("entity_type", op.EntityType),
	))

	scoped := s.logger.WithFields(map[string]interface{}{
		logging.Operation:  op.Name,
		logging.URL:        op.URL,
		logging.EntityType: op.EntityType,
	})
	ctx = logging.WithContext(ctx, scoped)

	return ctx, func() { span.End() }
}

// RequestStart logs the beginning of the first attempt.
func (s *Sink) RequestStart(ctx context.Context, _ retry.Operation) {
	logging.FromContext(ctx).Debug().Msg("starting request")
}

// RequestSuccess records a call that obtained a response: terminal log line,
// success and retry-outcome counters, duration observation, and span
// attributes plus a success event.
func (s *Sink) RequestSuccess(ctx context.Context, op retry.Operation, elapsed time.Duration, statusCode, retries int) {
	status := strconv.Itoa(statusCode)
	retried := strconv.Itoa(retries)

	logging.FromContext(ctx).Info().
		Int(logging.StatusCode, statusCode).
		Int(logging.Retries, retries).
		Int64(logging.Duration, elapsed.Milliseconds()).
		Str(logging.Outcome, outcomeSuccess).
		Msg("request completed")

	s.successes.Inc(op.Name, op.URL, op.EntityType, status, retried)
	if retries > 0 {
		s.retryOutcomes.Inc(op.Name, op.URL, op.EntityType, outcomeSuccess, retried)
	}
	s.duration.Observe(elapsed.Seconds(), op.Name, op.URL, op.EntityType, outcomeSuccess)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int("retry_count", retries),
	)
	span.AddEvent(outcomeSuccess)
	span.SetStatus(codes.Ok, "")
}

// RequestFailure records a call that terminated with an error: terminal log
// line, failure and retry-outcome counters, duration observation, and an
// errored span with a failure event.
func (s *Sink) RequestFailure(ctx context.Context, op retry.Operation, elapsed time.Duration, err error, retries int) {
	retried := strconv.Itoa(retries)

	logging.FromContext(ctx).Error().
		Err(err).
		Int(logging.Retries, retries).
		Int64(logging.Duration, elapsed.Milliseconds()).
		Str(logging.Outcome, outcomeFailure).
		Msg("request failed")

	s.failures.Inc(op.Name, op.URL, op.EntityType, retried)
	if retries > 0 {
		s.retryOutcomes.Inc(op.Name, op.URL, op.EntityType, outcomeFailure, retried)
	}
	s.duration.Observe(elapsed.Seconds(), op.Name, op.URL, op.EntityType, outcomeFailure)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("retry_count", retries))
	span.AddEvent(outcomeFailure)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Retry records one scheduled retry: a warning line carrying the derived
// context, the retry counter, and a span event.
func (s *Sink) Retry(ctx context.Context, op retry.Operation) {
	logging.FromContext(ctx).Warn().
		Int(logging.RetryAttempt, op.Attempt).
		Int64(logging.RetryDelayMS, op.Delay.Milliseconds()).
		Str(logging.RetryReason, op.Reason).
		Msg("retrying request")

	s.retryAttempts.Inc(op.Name, op.URL, op.EntityType, strconv.Itoa(op.Attempt))

	trace.SpanFromContext(ctx).AddEvent("retry", trace.WithAttributes(
		attribute.Int("attempt", op.Attempt),
		attribute.Int64("delay_ms", op.Delay.Milliseconds()),
		attribute.String("reason", op.Reason),
	))
}
