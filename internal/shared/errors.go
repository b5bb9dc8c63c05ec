package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Browser errors
	ErrBrowserLaunch = fmt.Errorf("failed to launch browser")
	ErrNavigation    = fmt.Errorf("navigation failed")

	// Pipeline errors
	ErrNoTracks       = fmt.Errorf("no tracks extracted")
	ErrBelowThreshold = fmt.Errorf("match ratio below threshold")
	ErrStageDisabled  = fmt.Errorf("stage disabled")

	// Storage errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
