package model

import "context"

// LanguageModel is the single interface every provider adapter implements.
// Instances are intended to be shared across concurrent calls: the
// underlying HTTP client and credentials are shared, so implementations
// must be safe for concurrent invocation.
type LanguageModel interface {
	// Provider returns the short provider identifier (e.g. "anthropic").
	Provider() string
	// ModelID returns the concrete model identifier used by this instance.
	ModelID() string
	// Metadata returns capability flags and optional pricing.
	Metadata() Metadata

	// Generate performs one non-streaming call. Errors are *apierror.Error
	// values tagged with one of the kinds in spec.md §7.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Stream performs one streaming call. The returned Streamer yields
	// PartialResponses in the order the provider emits them; cancelling ctx
	// aborts the underlying connection and terminates the stream promptly.
	Stream(ctx context.Context, req *Request) (Streamer, error)
}

// Streamer is a lazy, finite sequence of PartialResponses.
type Streamer interface {
	// Next advances to the next partial response. It returns false when the
	// stream has completed (check Err) or failed.
	Next() bool
	// Current returns the partial response made available by the last
	// successful call to Next.
	Current() PartialResponse
	// Err returns the terminal error, if any, after Next returns false.
	Err() error
	// Close releases the underlying connection. Safe to call multiple
	// times and safe to call before the stream is drained.
	Close() error
}
