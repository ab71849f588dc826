package retry

import (
	"context"
	"time"
)

// Instrumenter receives the lifecycle events of one instrumented call. It
// decouples the retry engine from any specific logging/metrics/tracing
// substrate: the engine reports what happened, the implementation decides
// where that goes.
//
// Implementations must be safe for concurrent use; the engine invokes one
// Instrumenter from every in-flight call.
type Instrumenter interface {
	// BeginScope opens a telemetry scope spanning all attempts of one call.
	// The returned context carries whatever correlation state the
	// implementation needs (scoped logger, trace span). The release function
	// is invoked on every exit path of the call.
	BeginScope(ctx context.Context, op Operation) (context.Context, func())

	// RequestStart is called exactly once, before the first attempt.
	RequestStart(ctx context.Context, op Operation)

	// RequestSuccess is called exactly once when a response was obtained and
	// will be returned to the caller, regardless of its HTTP status. An
	// unretried 404 and a 503 that exhausted its budget both land here.
	RequestSuccess(ctx context.Context, op Operation, elapsed time.Duration, statusCode, retries int)

	// RequestFailure is called exactly once when the call terminates with an
	// error instead of a response: a transport error that exhausted its
	// budget, or a cancellation that fired during a retry wait.
	RequestFailure(ctx context.Context, op Operation, elapsed time.Duration, err error, retries int)

	// Retry is called once per scheduled retry, after op has been derived
	// with the new attempt number, delay and reason, and before the delay is
	// awaited.
	Retry(ctx context.Context, op Operation)
}

// Nop is an Instrumenter that discards all events. It satisfies call sites
// that need no telemetry.
type Nop struct{}

// BeginScope returns the context unchanged and a release func that does nothing.
func (Nop) BeginScope(ctx context.Context, _ Operation) (context.Context, func()) {
	return ctx, func() {}
}

func (Nop) RequestStart(context.Context, Operation) {}

func (Nop) RequestSuccess(context.Context, Operation, time.Duration, int, int) {}

func (Nop) RequestFailure(context.Context, Operation, time.Duration, error, int) {}

func (Nop) Retry(context.Context, Operation) {}
