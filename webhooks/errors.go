package webhooks

import (
	"net/http"

	"github.com/goliatone/go-access-notifier/core"
	goerrors "github.com/goliatone/go-errors"
)

func webhookError(
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

func webhookWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	if source == nil {
		return webhookError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func webhookBadInput(message string, metadata map[string]any) error {
	return webhookError(
		message,
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		core.NotifierErrorBadInput,
		metadata,
	)
}

func webhookUnauthorized(source error, message string, metadata map[string]any) error {
	return webhookWrapError(
		source,
		goerrors.CategoryAuth,
		message,
		http.StatusUnauthorized,
		core.NotifierErrorUnauthorized,
		metadata,
	)
}
