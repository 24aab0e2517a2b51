package shared

import "fmt"

var (

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrLocked             = fmt.Errorf("another sync is already running")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrMissingSecret  = fmt.Errorf("client secret not readable")
	ErrNoCachedToken  = fmt.Errorf("no cached token")
	ErrTimeout        = fmt.Errorf("operation timed out")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")

	// Pipeline errors
	ErrFetchFailed  = fmt.Errorf("fetching subscriptions failed")
	ErrEncodeFailed = fmt.Errorf("encoding OPML failed")
	ErrLoginFailed  = fmt.Errorf("failed to login")
	ErrImportFailed = fmt.Errorf("failed to import opml")

	ErrServiceUnavailable = fmt.Errorf("service not initialized")
	ErrInvalidSchedule    = fmt.Errorf("invalid schedule")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
