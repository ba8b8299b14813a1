package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/goliatone/go-access-notifier/core"
)

// DefaultSignatureHeader carries the hex HMAC-SHA256 digest of the raw body.
const DefaultSignatureHeader = "X-Signature"

// Verifier authenticates one inbound delivery against its raw bytes.
type Verifier interface {
	Verify(ctx context.Context, req core.InboundRequest) error
}

// HMACVerifier checks the signature header against an HMAC-SHA256 digest of
// the exact body bytes as received. An empty Secret disables verification so
// unsecured development deployments keep working.
type HMACVerifier struct {
	Header string
	Secret string
}

func (v HMACVerifier) Verify(_ context.Context, req core.InboundRequest) error {
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return nil
	}

	headerName := strings.TrimSpace(v.Header)
	if headerName == "" {
		headerName = DefaultSignatureHeader
	}

	header := strings.TrimSpace(headerValue(req.Headers, headerName))
	if header == "" {
		return webhookUnauthorized(
			fmt.Errorf("webhooks: %s signature header is required", headerName),
			"signature verification failed",
			map[string]any{"header": headerName},
		)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(req.Body)
	expected := mac.Sum(nil)

	decoded, err := hex.DecodeString(header)
	if err != nil {
		return webhookUnauthorized(
			fmt.Errorf("webhooks: decode hex signature: %w", err),
			"signature verification failed",
			map[string]any{"header": headerName},
		)
	}
	if subtle.ConstantTimeCompare(decoded, expected) != 1 {
		return webhookUnauthorized(
			fmt.Errorf("webhooks: signature verification failed"),
			"signature verification failed",
			map[string]any{"header": headerName},
		)
	}
	return nil
}

var _ Verifier = HMACVerifier{}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
