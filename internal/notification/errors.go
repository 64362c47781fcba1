package notification

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/frahmantamala/campus-resources/internal"
)

// PartialWriteError reports a decision where the request write and the
// notification write did not both succeed. Nothing is rolled back.
type PartialWriteError struct {
	NotificationID  int64
	Action          string
	RequestErr      error
	NotificationErr error
}

func (e *PartialWriteError) Error() string {
	var parts []string
	if e.RequestErr != nil {
		parts = append(parts, fmt.Sprintf("request write failed: %v", e.RequestErr))
	}
	if e.NotificationErr != nil {
		parts = append(parts, fmt.Sprintf("notification write failed: %v", e.NotificationErr))
	}
	return fmt.Sprintf("%s of notification %d incomplete: %s", e.Action, e.NotificationID, strings.Join(parts, "; "))
}

func (e *PartialWriteError) Unwrap() []error {
	var errs []error
	if e.RequestErr != nil {
		errs = append(errs, e.RequestErr)
	}
	if e.NotificationErr != nil {
		errs = append(errs, e.NotificationErr)
	}
	return errs
}

// RequestApplied is true when only the notification side failed.
func (e *PartialWriteError) RequestApplied() bool {
	return e.RequestErr == nil
}

// AppError renders the failure in the shared error taxonomy.
func (e *PartialWriteError) AppError() *internal.AppError {
	return &internal.AppError{
		Type:       internal.ErrorTypePartialWrite,
		Code:       internal.ErrCodeConfirmIncomplete,
		Message:    e.Error(),
		StatusCode: http.StatusBadGateway,
		Cause:      e,
	}
}
