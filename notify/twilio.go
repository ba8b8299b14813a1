package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-access-notifier/core"
)

// DefaultTwilioBaseURL is the production SMS API endpoint.
const DefaultTwilioBaseURL = "https://api.twilio.com"

const defaultTwilioTimeout = 15 * time.Second
const twilioResponseBodyLimit int64 = 1 << 20 // 1 MiB

// TwilioSender delivers SMS through the Twilio REST API: one form-encoded
// POST per message, basic auth with the account credentials.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Client     core.HTTPDoer
}

func NewTwilioSender(accountSID string, authToken string, fromNumber string) *TwilioSender {
	return &TwilioSender{
		AccountSID: strings.TrimSpace(accountSID),
		AuthToken:  strings.TrimSpace(authToken),
		FromNumber: strings.TrimSpace(fromNumber),
		BaseURL:    DefaultTwilioBaseURL,
		Client:     &http.Client{Timeout: defaultTwilioTimeout},
	}
}

func (s *TwilioSender) Send(ctx context.Context, phone string, body string) error {
	if s == nil {
		return notifyInternal("notify: twilio sender is not configured", nil)
	}
	sid := strings.TrimSpace(s.AccountSID)
	token := strings.TrimSpace(s.AuthToken)
	from := strings.TrimSpace(s.FromNumber)
	if sid == "" || token == "" || from == "" {
		return notifyInternal("notify: twilio credentials are required", nil)
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return notifyInternal("notify: destination phone is required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if base == "" {
		base = DefaultTwilioBaseURL
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", base, url.PathEscape(sid))

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", phone)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return notifyInternal("notify: create sms request", map[string]any{
			"error": err.Error(),
		})
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(sid, token)

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTwilioTimeout}
	}
	res, err := client.Do(req)
	if err != nil {
		return notifyExternal(err, "notify: execute sms request", map[string]any{
			"to": phone,
		})
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, twilioResponseBodyLimit))
		return notifyExternal(
			fmt.Errorf("notify: sms provider returned status %d: %s", res.StatusCode, strings.TrimSpace(string(detail))),
			"notify: sms delivery rejected",
			map[string]any{
				"to":          phone,
				"status_code": res.StatusCode,
			},
		)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, twilioResponseBodyLimit))
	return nil
}

var _ core.NotificationSender = (*TwilioSender)(nil)
