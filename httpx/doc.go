// Package httpx provides a retrying HTTP client adapter for the failsafe
// library.
//
// Client wraps a standard http.Client with a failsafe policy and a
// user-provided status code classifier that maps HTTP response codes to
// retryable or fatal errors. Use [RetryableStatus] and [NetworkError] in
// failsafe.RetryOn to pick what gets retried.
package httpx
