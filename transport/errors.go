package transport

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-access-notifier/core"
)

func transportBadInput(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.NotifierErrorBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportInternal(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.NotifierErrorInternal)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// statusFromError maps an error to the HTTP status the handler should write.
func statusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	mapped := core.MapError(err)
	if mapped != nil && mapped.Code > 0 {
		return mapped.Code
	}
	return http.StatusInternalServerError
}
