package retry

import "time"

// Operation identifies one logical network call and carries its retry
// bookkeeping. It is a plain value: deriving the next attempt produces a new
// Operation instead of mutating the old one, so a context handed to the
// instrumentation layer can never be changed underneath it. Two Operations
// with the same field values compare equal, which lets tests assert telemetry
// was invoked with the exact expected context.
type Operation struct {
	// Name identifies the logical call site, e.g. "CatalogFetch.Products".
	Name string

	// URL is the target resource.
	URL string

	// EntityType optionally classifies the resource, e.g. "product" or "plugin".
	EntityType string

	// Attempt is the current attempt number, starting at 0.
	Attempt int

	// Delay is the wait scheduled before this attempt. Zero until a retry
	// has been scheduled.
	Delay time.Duration

	// Reason records why the previous attempt is being retried: the transport
	// error message or "HTTP <status>". Empty until a retry has been scheduled.
	Reason string
}

// NewOperation creates an Operation for a fresh call with attempt 0.
// entityType may be empty when the resource has no useful classification.
func NewOperation(name, url, entityType string) Operation {
	return Operation{
		Name:       name,
		URL:        url,
		EntityType: entityType,
	}
}

// WithRetry derives the Operation describing the next scheduled attempt.
// The receiver is left untouched.
func (o Operation) WithRetry(attempt int, delay time.Duration, reason string) Operation {
	o.Attempt = attempt
	o.Delay = delay
	o.Reason = reason
	return o
}
