package retry

import "time"

// Outcome is the terminal summary of one call, handed to the optional
// success/failure callbacks. Exactly one callback fires per call.
type Outcome struct {
	// StatusCode is the final HTTP status. Zero when the call terminated with
	// an error instead of a response.
	StatusCode int

	// Retries is the number of retries consumed (attempts minus one).
	Retries int

	// Elapsed is the total wall-clock duration of the call, waits included.
	Elapsed time.Duration

	// Err is set only on the failure path.
	Err error
}

// Failed reports whether the call terminated with an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

type callOptions struct {
	onSuccess func(Outcome)
	onFailure func(Outcome)
}

// Option customizes a single Do invocation.
type Option func(*callOptions)

// OnSuccess registers a callback invoked when the call returns a response.
func OnSuccess(fn func(Outcome)) Option {
	return func(o *callOptions) { o.onSuccess = fn }
}

// OnFailure registers a callback invoked when the call terminates with an error.
func OnFailure(fn func(Outcome)) Option {
	return func(o *callOptions) { o.onFailure = fn }
}
