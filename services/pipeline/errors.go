package pipeline

import "fmt"

// RateLimitError rejects a fetch whose endpoint budget is exhausted
// in the current window. The caller sees it as a failed read; nothing
// retries on its behalf.
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for endpoint %s", e.Endpoint)
}
