package notify

import (
	"net/http"

	"github.com/goliatone/go-access-notifier/core"
	goerrors "github.com/goliatone/go-errors"
)

func notifyError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func notifyWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	if source == nil {
		return notifyError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func notifyOperationFailed(source error, message string, metadata map[string]any) error {
	return notifyWrapError(
		source,
		goerrors.CategoryOperation,
		message,
		http.StatusInternalServerError,
		core.NotifierErrorOperationFailed,
		metadata,
	)
}

func notifyExternal(source error, message string, metadata map[string]any) error {
	return notifyWrapError(
		source,
		goerrors.CategoryExternal,
		message,
		http.StatusBadGateway,
		core.NotifierErrorOperationFailed,
		metadata,
	)
}

func notifyInternal(message string, metadata map[string]any) error {
	return notifyError(
		message,
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		core.NotifierErrorInternal,
		metadata,
	)
}
