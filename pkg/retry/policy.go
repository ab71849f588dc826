// Package retry drives network calls through a retry/backoff state machine
// with a pluggable instrumentation contract.
//
// A call site builds an Operation describing the logical call, hands the
// Policy a send function, and gets back either a response or the terminal
// error. The policy decides whether and when to retry; it never decides that
// a "bad but valid" response is fatal. Any obtained response is returned
// as-is, including non-retryable error statuses and retryable statuses whose
// budget ran out - callers inspect the status themselves.
//
// Example usage:
//
//	policy := retry.New(retry.Config{
//		MaxRetries: 3,
//		BaseDelay:  250 * time.Millisecond,
//		MaxDelay:   10 * time.Second,
//	}, sink)
//
//	op := retry.NewOperation("CatalogFetch.Products", url, "product")
//	resp, err := policy.Do(ctx, op, func(ctx context.Context) (*http.Response, error) {
//		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
//		return http.DefaultClient.Do(req)
//	})
package retry

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultRetryableStatuses are the HTTP statuses classified as transient when
// Config.RetryableStatuses is not set: request timeout, rate limiting, the
// common transient 5xx codes, and 520 as returned by CDN edges for origin
// failures.
var DefaultRetryableStatuses = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
	520,
}

// SendFunc performs one attempt of the underlying network call. It must
// honor ctx and return either a response or a transport error.
type SendFunc func(ctx context.Context) (*http.Response, error)

// Config holds the retry policy configuration. It is immutable after New.
type Config struct {
	// MaxRetries is the retry budget per call; a call makes at most
	// MaxRetries+1 attempts. Negative values are treated as the default.
	MaxRetries int

	// BaseDelay is the delay before the first retry. Default is 250ms.
	BaseDelay time.Duration

	// MaxDelay clamps the exponential backoff. Default is 10 seconds.
	MaxDelay time.Duration

	// RetryableStatuses replaces DefaultRetryableStatuses entirely when set.
	RetryableStatuses []int
}

const defaultMaxRetries = 3

// withDefaults returns a config with default values applied.
func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = 250 * time.Millisecond
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 10 * time.Second
	}
	if c.RetryableStatuses == nil {
		c.RetryableStatuses = DefaultRetryableStatuses
	}
	return c
}

// Policy is the retry/backoff engine. It holds only read-only configuration
// and the instrumentation sink, so one Policy is safely shared by unlimited
// concurrent calls; all per-call state lives on the stack of Do.
type Policy struct {
	cfg       Config
	retryable map[int]struct{}
	inst      Instrumenter
}

// New creates a Policy from the given configuration. A nil Instrumenter is
// replaced with Nop.
func New(cfg Config, inst Instrumenter) *Policy {
	cfg = cfg.withDefaults()
	if inst == nil {
		inst = Nop{}
	}

	retryable := make(map[int]struct{}, len(cfg.RetryableStatuses))
	for _, status := range cfg.RetryableStatuses {
		retryable[status] = struct{}{}
	}

	return &Policy{
		cfg:       cfg,
		retryable: retryable,
		inst:      inst,
	}
}

// Do executes send under the retry policy and reports each lifecycle event to
// the instrumenter.
//
// Transport errors are retried within budget and then returned unchanged.
// Responses with a retryable status are retried within budget and then
// returned as ordinary responses - a response is always a "success" from the
// policy's point of view. Cancellation during a retry wait is terminal and
// returned immediately, regardless of remaining budget.
func (p *Policy) Do(ctx context.Context, op Operation, send SendFunc, opts ...Option) (*http.Response, error) {
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	start := time.Now()
	ctx, release := p.inst.BeginScope(ctx, op)
	defer release()
	p.inst.RequestStart(ctx, op)

	bo := p.newBackOff()
	attempt := 0
	for {
		resp, err := send(ctx)

		if err != nil {
			if attempt >= p.cfg.MaxRetries {
				return nil, p.fail(ctx, op, call, start, err, attempt)
			}
			op = op.WithRetry(attempt+1, bo.NextBackOff(), err.Error())
			p.inst.Retry(ctx, op)
			if waitErr := p.wait(ctx, op.Delay); waitErr != nil {
				return nil, p.fail(ctx, op, call, start, waitErr, attempt)
			}
			attempt++
			continue
		}

		if _, transient := p.retryable[resp.StatusCode]; transient && attempt < p.cfg.MaxRetries {
			delay := bo.NextBackOff()
			// A server-supplied minimum wait wins over the computed backoff
			// and is not clamped to MaxDelay.
			if hint, ok := retryAfter(resp); ok {
				delay = hint
			}
			discard(resp)
			op = op.WithRetry(attempt+1, delay, "HTTP "+strconv.Itoa(resp.StatusCode))
			p.inst.Retry(ctx, op)
			if waitErr := p.wait(ctx, op.Delay); waitErr != nil {
				return nil, p.fail(ctx, op, call, start, waitErr, attempt)
			}
			attempt++
			continue
		}

		elapsed := time.Since(start)
		p.inst.RequestSuccess(ctx, op, elapsed, resp.StatusCode, attempt)
		if call.onSuccess != nil {
			call.onSuccess(Outcome{
				StatusCode: resp.StatusCode,
				Retries:    attempt,
				Elapsed:    elapsed,
			})
		}
		return resp, nil
	}
}

// fail reports the terminal failure and returns err unchanged.
func (p *Policy) fail(ctx context.Context, op Operation, call callOptions, start time.Time, err error, retries int) error {
	elapsed := time.Since(start)
	p.inst.RequestFailure(ctx, op, elapsed, err, retries)
	if call.onFailure != nil {
		call.onFailure(Outcome{
			Retries: retries,
			Elapsed: elapsed,
			Err:     err,
		})
	}
	return err
}

// newBackOff creates the per-call delay source: BaseDelay doubling each
// retry, clamped at MaxDelay. Randomization is disabled so the schedule is
// exactly min(MaxDelay, BaseDelay*2^attempt).
func (p *Policy) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.BaseDelay
	bo.MaxInterval = p.cfg.MaxDelay
	bo.Multiplier = 2.0
	bo.RandomizationFactor = 0
	return bo
}

// wait blocks for d or until ctx is done, whichever comes first.
func (p *Policy) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryAfter extracts a server-supplied minimum wait from the Retry-After
// header, accepting a delta in (possibly fractional) seconds or an HTTP-date.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second)), true
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d, true
		}
	}

	return 0, false
}

// discard drains and closes the body of a response that is being abandoned
// for a retry, so the underlying connection can be reused.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
