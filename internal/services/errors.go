package services

import (
	"errors"
	"fmt"

	"github.com/desertthunder/moodtune/internal/shared"
)

// AppError is returned when the server answers with success=false. It matches [shared.ErrApplication].
type AppError = shared.AppError

// ServerMessage returns the server-supplied message of an application failure.
func ServerMessage(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}

// UserMessage renders err as the text shown to the user for a failed action.
//
// Application failures surface the server's message verbatim; everything else becomes a generic retry prompt.
func UserMessage(err error, action string) string {
	if msg, ok := ServerMessage(err); ok && msg != "" {
		return fmt.Sprintf("%s failed: %s", action, msg)
	}
	return fmt.Sprintf("%s failed. Please try again.", action)
}

func transportError(method, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", shared.ErrTransport, method, path, err)
}
