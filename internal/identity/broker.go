// Package identity talks to the external assertion broker that exchanges an
// OAuth authorization code for a verified subject/email pair. The provider
// handshake itself lives outside this service.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/janavani/api/internal/apperr"
)

// Assertion is the identity the broker vouches for.
type Assertion struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// Broker exchanges an authorization code for an identity assertion.
type Broker interface {
	Exchange(ctx context.Context, code string) (Assertion, error)
}

// HTTPBroker is the default Broker over a JSON endpoint.
type HTTPBroker struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPBroker builds a broker client for the given base URL.
func NewHTTPBroker(baseURL string) (*HTTPBroker, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("identity: broker url is required")
	}
	return &HTTPBroker{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// Exchange posts the code and returns the asserted identity.
func (b *HTTPBroker) Exchange(ctx context.Context, code string) (Assertion, error) {
	if strings.TrimSpace(code) == "" {
		return Assertion{}, apperr.Validation("authorization code is required")
	}

	form := url.Values{"code": {code}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/exchange", strings.NewReader(form.Encode()))
	if err != nil {
		return Assertion{}, apperr.Internal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Assertion{}, apperr.Wrap(apperr.KindInternal, "BROKER", "identity broker unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Assertion{}, apperr.Unauthenticated("authorization code rejected")
	default:
		return Assertion{}, apperr.Internal(fmt.Errorf("identity broker status %d", resp.StatusCode))
	}

	var assertion Assertion
	if err := json.NewDecoder(resp.Body).Decode(&assertion); err != nil {
		return Assertion{}, apperr.Wrap(apperr.KindInternal, "BROKER", "invalid broker response", err)
	}
	if assertion.Subject == "" || assertion.Email == "" {
		return Assertion{}, apperr.Unauthenticated("broker assertion missing subject or email")
	}

	return assertion, nil
}
