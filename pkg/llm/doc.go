// Package llm is the sole point of network I/O: it sends chat-style
// requests to an LLM provider with bounded retries, exponential
// backoff, and model fallback.
//
// Failures are classified before any retry decision: only an
// enumerated set of transient conditions (timeouts, rate limits,
// 5xx) is retried. Client-side errors surface immediately as
// ErrInvalidRequest; exhausted transient failures surface as
// ErrUpstreamUnavailable with the last cause wrapped.
package llm
