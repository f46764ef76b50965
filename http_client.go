package main

import (
	"net/http"
	"time"
)

// Classification calls get a generous budget; a call that outlives it is
// treated as a ClassificationFailure and falls back. Health probes answer
// fast or not at all, so they get a much tighter one.
const (
	defaultClassifyTimeout = 30 * time.Second
	healthProbeTimeout     = 5 * time.Second
)

var externalHTTPClient = &http.Client{
	Timeout: defaultClassifyTimeout,
}

var healthHTTPClient = &http.Client{
	Timeout: healthProbeTimeout,
}

// ConfigureExternalHTTPClient applies the configured per-call timeout and
// returns the value in effect.
func ConfigureExternalHTTPClient(seconds int) time.Duration {
	if seconds > 0 {
		externalHTTPClient.Timeout = time.Duration(seconds) * time.Second
	}
	return externalHTTPClient.Timeout
}
