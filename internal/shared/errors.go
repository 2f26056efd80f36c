package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey   = fmt.Errorf("missing TMDB API key")
	ErrMissingUsername = fmt.Errorf("missing Letterboxd username")

	// Upstream errors
	ErrTransport          = fmt.Errorf("upstream request failed")
	ErrParse              = fmt.Errorf("unexpected upstream response shape")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Refresh control signals. Not a failure: reported by the refresh
	// engine when a concurrent caller loses the single-flight race.
	ErrRefreshInProgress = fmt.Errorf("refresh already in progress")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
