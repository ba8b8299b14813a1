package locks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-access-notifier/core"
)

// DefaultBaseURL is the production access-control provider API.
const DefaultBaseURL = "https://api.kisi.com"

const defaultClientTimeout = 15 * time.Second
const responseBodyLimit int64 = 1 << 20 // 1 MiB

// Client invokes remote actions on provider locks. Requests authenticate
// with the provider's api-key scheme: "Authorization: KISI-LOGIN <key>".
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient core.HTTPDoer
}

func NewClient(baseURL string, apiKey string) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		BaseURL:    base,
		APIKey:     strings.TrimSpace(apiKey),
		HTTPClient: &http.Client{Timeout: defaultClientTimeout},
	}
}

func (c *Client) Unlock(ctx context.Context, lockID string) error {
	return c.invoke(ctx, lockID, "unlock")
}

func (c *Client) Lock(ctx context.Context, lockID string) error {
	return c.invoke(ctx, lockID, "lock")
}

func (c *Client) Lockdown(ctx context.Context, lockID string) error {
	return c.invoke(ctx, lockID, "lockdown")
}

func (c *Client) invoke(ctx context.Context, lockID string, action string) error {
	if c == nil {
		return lockError("locks: client is not configured", goerrors.CategoryInternal,
			http.StatusInternalServerError, core.NotifierErrorInternal, nil)
	}
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return lockError("locks: provider api key is required", goerrors.CategoryInternal,
			http.StatusInternalServerError, core.NotifierErrorInternal, nil)
	}
	lockID = strings.TrimSpace(lockID)
	if lockID == "" {
		return lockError("locks: lock id is required", goerrors.CategoryBadInput,
			http.StatusBadRequest, core.NotifierErrorBadInput, nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := fmt.Sprintf("%s/locks/%s/%s", base, url.PathEscape(lockID), action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("{}"))
	if err != nil {
		return lockWrapError(err, goerrors.CategoryInternal, "locks: create provider request",
			http.StatusInternalServerError, core.NotifierErrorInternal, map[string]any{
				"lock_id": lockID,
				"action":  action,
			})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "KISI-LOGIN "+apiKey)

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	res, err := client.Do(req)
	if err != nil {
		return lockWrapError(err, goerrors.CategoryExternal, "locks: execute provider request",
			http.StatusBadGateway, core.NotifierErrorOperationFailed, map[string]any{
				"lock_id": lockID,
				"action":  action,
			})
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, responseBodyLimit))
		return lockWrapError(
			fmt.Errorf("locks: provider returned status %d: %s", res.StatusCode, strings.TrimSpace(string(detail))),
			goerrors.CategoryExternal,
			"locks: provider rejected "+action,
			http.StatusBadGateway,
			core.NotifierErrorOperationFailed,
			map[string]any{
				"lock_id":     lockID,
				"action":      action,
				"status_code": res.StatusCode,
			},
		)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, responseBodyLimit))
	return nil
}

func lockError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func lockWrapError(source error, category goerrors.Category, message string, code int, textCode string, metadata map[string]any) error {
	if source == nil {
		return lockError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

var _ core.LockController = (*Client)(nil)
