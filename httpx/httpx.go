package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/byte4ever/failsafe"
)

// ErrorClass tells the retry layer how to treat an HTTP status code.
type ErrorClass int

const (
	// Success means the request succeeded (e.g. 2xx).
	Success ErrorClass = iota
	// Retryable means another attempt may succeed (e.g. 429, 503).
	Retryable
	// Fatal means the request must not be repeated (e.g. 400).
	Fatal
)

// String returns the lower-case class name.
func (c ErrorClass) String() string {
	switch c {
	case Success:
		return "success"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return "ErrorClass(" + strconv.Itoa(int(c)) + ")"
	}
}

// Classifier maps an HTTP status code to an ErrorClass.
//
// Pattern: Strategy — caller injects classification logic without
// modifying the adapter.
type Classifier func(statusCode int) ErrorClass

// DefaultClassifier treats 1xx-3xx as success, 408, 429, 500, 502, 503 and
// 504 as retryable, and everything else as fatal.
func DefaultClassifier(statusCode int) ErrorClass {
	switch {
	case statusCode < http.StatusBadRequest:
		return Success
	case statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusTooManyRequests,
		statusCode == http.StatusInternalServerError,
		statusCode == http.StatusBadGateway,
		statusCode == http.StatusServiceUnavailable,
		statusCode == http.StatusGatewayTimeout:
		return Retryable
	default:
		return Fatal
	}
}

// StatusError is returned when the Classifier marks a status code as
// Retryable or Fatal. The response stays accessible for header and body
// inspection, except on attempts that were retried: their bodies are
// drained and closed before the next attempt.
type StatusError struct {
	// Response is the HTTP response that triggered the error.
	Response   *http.Response
	StatusCode int
	Class      ErrorClass
}

// Error returns a human-readable description of the status error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d (%s)", e.StatusCode, e.Class)
}

//nolint:gochecknoglobals // immutable error kinds
var (
	// RetryableStatus matches a [*StatusError] classified [Retryable].
	RetryableStatus = failsafe.ErrorFunc("retryable_status", isRetryableStatus)

	// NetworkError matches transport failures (dial, TLS, reset, timeout)
	// that are not caused by the caller's context ending.
	NetworkError = failsafe.ErrorFunc("network", isNetworkError)
)

// ErrorKinds returns the kinds of this package under their config names,
// ready for failsafe.WithErrorKinds.
func ErrorKinds() map[string]failsafe.ErrorKind {
	return map[string]failsafe.ErrorKind{
		RetryableStatus.String(): RetryableStatus,
		NetworkError.String():    NetworkError,
	}
}

func isRetryableStatus(err error) bool {
	var se *StatusError

	return errors.As(err, &se) && se.Class == Retryable
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ne net.Error

	return errors.As(err, &ne)
}

// Client wraps an http.Client with a failsafe policy and HTTP status code
// classification.
//
// Pattern: Adapter — bridges net/http and the failsafe policy by
// translating HTTP status codes into errors the retry filter can match.
type Client struct {
	hc *http.Client
	p  *failsafe.Policy[*http.Response]
	cl Classifier
}

// NewClient creates a Client that executes HTTP requests through a policy
// built from opts. A nil hc uses http.DefaultClient and a nil cl uses
// [DefaultClassifier].
func NewClient(
	name string,
	hc *http.Client,
	cl Classifier,
	opts ...any,
) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}

	if cl == nil {
		cl = DefaultClassifier
	}

	// Bodies of retried responses are released after user hooks ran.
	opts = append(opts, failsafe.WithHooks(failsafe.Hooks{
		OnRetry: func(ev failsafe.RetryEvent) { releaseBody(ev.Err) },
	}))

	return &Client{
		hc: hc,
		p:  failsafe.NewPolicy[*http.Response](name, opts...),
		cl: cl,
	}
}

// Policy returns the policy requests run under.
func (c *Client) Policy() *failsafe.Policy[*http.Response] { return c.p }

// Do sends req through the policy. Each attempt sends a fresh copy of req;
// a request with a body must set GetBody (http.NewRequest does for common
// readers) to be retried. Non-success statuses come back as a
// [*StatusError].
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	//nolint:wrapcheck // failures surface unchanged
	return c.p.Do(req.Context(), func(ctx context.Context) (*http.Response, error) {
		attempt, err := cloneRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		return c.send(attempt)
	})
}

// Call sends req once, without the policy. Status classification still
// applies.
func (c *Client) Call(req *http.Request) (*http.Response, error) {
	return c.send(req)
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		//nolint:wrapcheck // transport errors surface unchanged
		return nil, err
	}

	class := c.cl(resp.StatusCode)
	if class == Success {
		return resp, nil
	}

	return nil, &StatusError{
		Response:   resp,
		StatusCode: resp.StatusCode,
		Class:      class,
	}
}

func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	attempt := req.Clone(ctx)

	if req.Body == nil || req.Body == http.NoBody || req.GetBody == nil {
		return attempt, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("httpx: replay request body: %w", err)
	}

	attempt.Body = body

	return attempt, nil
}

func releaseBody(err error) {
	var se *StatusError
	if !errors.As(err, &se) || se.Response == nil || se.Response.Body == nil {
		return
	}

	//nolint:errcheck // best-effort drain before reuse of the connection
	_, _ = io.Copy(io.Discard, se.Response.Body)
	_ = se.Response.Body.Close()
}
