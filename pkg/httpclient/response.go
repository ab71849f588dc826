package httpclient

import (
	"encoding/json"
	"net/http"

	"github.com/storemover/smi/pkg/errors"
)

// Response is the fully buffered result of a call. The body has already been
// read, so accessors never fail on transport state and can be called in any
// order.
type Response struct {
	statusCode int
	headers    http.Header
	body       []byte
}

// StatusCode returns the HTTP status code of the final attempt.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Headers returns the response headers of the final attempt.
func (r *Response) Headers() http.Header {
	return r.headers
}

// Header returns the first value of the named response header.
func (r *Response) Header(key string) string {
	return r.headers.Get(key)
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	return r.body
}

// BodyAsString returns the response body as a string.
func (r *Response) BodyAsString() string {
	return string(r.body)
}

// BodyAsJSON unmarshals the response body into v.
func (r *Response) BodyAsJSON(v interface{}) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return errors.Wrap(err, "failed to unmarshal response body")
	}
	return nil
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// IsError reports whether the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.statusCode >= 400
}
