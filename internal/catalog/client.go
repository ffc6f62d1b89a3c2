package catalog

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewClient creates the shared HTTP client for all catalog requests.
// Every network call the harvester makes goes through one client so the
// timeout and User-Agent are applied uniformly.
//
// Design decision: Retries are explicitly disabled. A failed page is a
// soft failure that yields zero records; retrying would multiply request
// volume against a service we are trying to be polite to, and the
// orchestrator's stopping rules already tolerate gaps.
func NewClient(timeout time.Duration, userAgent string) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")
}
