package errors

import (
	"fmt"
	"net/http"
)

// FromStatus classifies a non-2xx HTTP status the retry engine handed back
// into a typed error. The engine returns any obtained response as-is; this is
// where call sites decide what a "bad but valid" status means:
//   - 404/410 -> NotFoundError
//   - 401/403 -> UnauthorizedError
//   - 408/429 and 5xx -> TemporaryError (the budget was already spent)
//   - anything else -> PermanentError
//
// resource names what was being fetched or uploaded, e.g. "product listing".
func FromStatus(status int, resource string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return NewNotFound(resource, http.StatusText(status))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewUnauthorized(fmt.Sprintf("%s: HTTP %d", resource, status))
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return NewTemporary(fmt.Sprintf("%s: HTTP %d", resource, status), nil)
	default:
		return NewPermanent(fmt.Sprintf("%s: HTTP %d", resource, status), nil)
	}
}
