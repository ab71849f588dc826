package httpclient

import (
	"context"
	"io"
	"net/http"

	"github.com/storemover/smi/pkg/retry"
)

// Request accumulates the settings for one logical call. Do builds a fresh
// transport request per attempt from these settings, so a retried request
// never reuses a consumed body reader.
type Request struct {
	client  *Client
	method  string
	url     string
	headers map[string]string
	query   map[string]string
	body    interface{}
	token   string
	user    string
	pass    string
}

// SetMethod sets the HTTP method for the request.
func (r *Request) SetMethod(method string) *Request {
	r.method = method
	return r
}

// SetURL sets the URL for the request.
// Can be relative (appended to the base URL) or absolute.
func (r *Request) SetURL(url string) *Request {
	r.url = url
	return r
}

// WithHeader sets a single header on the request.
func (r *Request) WithHeader(key, value string) *Request {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// WithQuery adds a single query parameter to the request.
func (r *Request) WithQuery(key, value string) *Request {
	if r.query == nil {
		r.query = make(map[string]string)
	}
	r.query[key] = value
	return r
}

// WithJSON sets the request body; it is serialized to JSON on each attempt.
func (r *Request) WithJSON(body interface{}) *Request {
	r.body = body
	return r.WithHeader("Content-Type", "application/json")
}

// WithBody sets the request body as raw bytes.
func (r *Request) WithBody(body []byte) *Request {
	r.body = body
	return r
}

// WithAuthToken sets the Bearer authentication token.
func (r *Request) WithAuthToken(token string) *Request {
	r.token = token
	return r
}

// WithBasicAuth sets basic authentication credentials.
func (r *Request) WithBasicAuth(username, password string) *Request {
	r.user = username
	r.pass = password
	return r
}

// Do executes the request through the client's retry policy under the given
// operation context. The returned Response wraps whatever final response the
// policy handed back - any status, retried or not. Transport errors that
// exhausted the budget and cancellations come back as errors.
func (r *Request) Do(ctx context.Context, op retry.Operation, opts ...retry.Option) (*Response, error) {
	var (
		status  int
		headers http.Header
		body    []byte
	)

	send := func(ctx context.Context) (*http.Response, error) {
		if err := r.client.checkRateLimit(ctx); err != nil {
			return nil, err
		}

		req := r.client.resty.R().SetContext(ctx)
		if len(r.headers) > 0 {
			req.SetHeaders(r.headers)
		}
		if len(r.query) > 0 {
			req.SetQueryParams(r.query)
		}
		if r.body != nil {
			req.SetBody(r.body)
		}
		if r.token != "" {
			req.SetAuthToken(r.token)
		}
		if r.user != "" {
			req.SetBasicAuth(r.user, r.pass)
		}

		res, err := req.Execute(r.method, r.url)
		if err != nil {
			return nil, err
		}

		// Buffer the body here so the retry engine only ever sees an
		// already-drained response.
		b, readErr := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if readErr != nil {
			return nil, readErr
		}

		status = res.StatusCode()
		headers = res.Header()
		body = b
		return &http.Response{
			StatusCode: status,
			Header:     headers,
			Body:       http.NoBody,
		}, nil
	}

	if _, err := r.client.policy.Do(ctx, op, send, opts...); err != nil {
		return nil, err
	}

	return &Response{
		statusCode: status,
		headers:    headers,
		body:       body,
	}, nil
}
