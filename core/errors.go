package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	NotifierErrorBadInput        = "NOTIFIER_BAD_INPUT"
	NotifierErrorUnauthorized    = "NOTIFIER_UNAUTHORIZED"
	NotifierErrorNotFound        = "NOTIFIER_NOT_FOUND"
	NotifierErrorConflict        = "NOTIFIER_CONFLICT"
	NotifierErrorOperationFailed = "NOTIFIER_OPERATION_FAILED"
	NotifierErrorInternal        = "NOTIFIER_INTERNAL_ERROR"
)

func notifierErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureNotifierErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "signature"):
		return newNotifierError(err.Error(), goerrors.CategoryAuth, NotifierErrorUnauthorized)
	case strings.Contains(msg, "not found"):
		return newNotifierError(err.Error(), goerrors.CategoryNotFound, NotifierErrorNotFound)
	case strings.Contains(msg, "duplicate"), strings.Contains(msg, "already exists"):
		return newNotifierError(err.Error(), goerrors.CategoryConflict, NotifierErrorConflict)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newNotifierError(err.Error(), goerrors.CategoryBadInput, NotifierErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureNotifierErrorEnvelope(mapped)
}

func newNotifierError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureNotifierErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureNotifierErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = notifierHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultNotifierTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultNotifierTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return NotifierErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return NotifierErrorUnauthorized
	case goerrors.CategoryNotFound:
		return NotifierErrorNotFound
	case goerrors.CategoryConflict:
		return NotifierErrorConflict
	case goerrors.CategoryOperation:
		return NotifierErrorOperationFailed
	default:
		return NotifierErrorInternal
	}
}

func notifierHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapError normalizes any error into the notifier error envelope, preserving
// already-categorized rich errors.
func MapError(err error) *goerrors.Error {
	return notifierErrorMapper(err)
}
