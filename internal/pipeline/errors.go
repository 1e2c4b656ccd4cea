package pipeline

import "errors"

var (
	// ErrDataUnavailable means a log file was missing, unreadable, or held a
	// row that would not parse. The read fails as a whole; the caller keeps
	// whatever it rendered last and retries on the next poll.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrUpstreamUnavailable means an upstream fetch failed (non-2xx or
	// network error). The cycle is skipped, logs stay unchanged.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedWindow means a caller-provided time range parsed under
	// none of the accepted formats. Fails the single request, not the
	// process.
	ErrMalformedWindow = errors.New("malformed time window")
)
