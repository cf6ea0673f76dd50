package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Request errors. Every failed server call is exactly one of these two.
	ErrTransport   = fmt.Errorf("transport failure")
	ErrApplication = fmt.Errorf("server reported failure")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNotAdmin         = fmt.Errorf("admin access required")

	// Media errors
	ErrCameraInactive    = fmt.Errorf("camera is not active")
	ErrCameraUnavailable = fmt.Errorf("camera unavailable")
	ErrPlaybackFailed    = fmt.Errorf("playback failed")

	// Service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSongNotFound       = fmt.Errorf("song not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// AppError is an application-level failure: the server answered with success=false.
type AppError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// Is lets [errors.Is] match [ErrApplication].
func (e *AppError) Is(target error) bool {
	return target == ErrApplication
}
