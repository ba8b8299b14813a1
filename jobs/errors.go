package jobs

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-access-notifier/core"
)

func jobsInternal(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.NotifierErrorInternal)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func jobsOperationFailed(source error, message string, metadata map[string]any) error {
	if source == nil {
		return jobsInternal(message, metadata)
	}
	err := goerrors.Wrap(source, goerrors.CategoryOperation, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.NotifierErrorOperationFailed)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
