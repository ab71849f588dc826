// Package logging provides structured logging with zerolog for the SMI
// migration infrastructure. It supports configurable log levels, output
// formats (JSON/console), and carrying an operation-scoped logger through
// context.Context so every line emitted during a network call is correlated
// with that call.
//
// Example usage:
//
//	cfg := config.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//	logger := logging.New(cfg)
//	logger.Info().Str(logging.Operation, "CatalogFetch.Products").Msg("starting request")
package logging

// Standard field names for structured logging.
// These constants ensure consistent field naming across all components.
const (
	// Operation is the field name for the logical call site, e.g. "CatalogFetch.Products".
	Operation = "operation"

	// URL is the field name for the target resource of a network call.
	URL = "url"

	// EntityType is the field name classifying the resource, e.g. "product".
	EntityType = "entity_type"

	// RetryAttempt is the field name for the attempt number of a scheduled retry.
	RetryAttempt = "retry_attempt"

	// RetryDelayMS is the field name for the scheduled retry delay in milliseconds.
	RetryDelayMS = "retry_delay_ms"

	// RetryReason is the field name recording why an attempt is being retried.
	RetryReason = "retry_reason"

	// Retries is the field name for the total retries consumed by a finished call.
	Retries = "retries"

	// Outcome is the field name for the terminal outcome of a call ("success"/"failure").
	Outcome = "outcome"

	// StatusCode is the field name for the final HTTP status code.
	StatusCode = "status_code"

	// Duration is the field name for call duration in milliseconds.
	Duration = "duration_ms"

	// Component is the field name for the component/package generating the log.
	Component = "component"

	// ServiceName is the field name for the service generating the log.
	ServiceName = "service_name"

	// Error is the field name for error information.
	Error = "error"

	// JobID is the field name for the uuid tagging one capture/provisioning run.
	JobID = "job_id"
)
