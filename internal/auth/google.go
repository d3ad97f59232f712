package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GoogleIdentity is the verified payload of a Google ID token.
type GoogleIdentity struct {
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates identity-provider credentials out of band.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (GoogleIdentity, error)
}

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// googleVerifier checks ID tokens against Google's tokeninfo endpoint.
type googleVerifier struct {
	clientID string
	client   *http.Client
}

// NewGoogleVerifier constructs the production verifier.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *googleVerifier) Verify(ctx context.Context, credential string) (GoogleIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		tokenInfoURL+"?id_token="+url.QueryEscape(credential), nil)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("google verify: %w", err)
	}
	res, err := v.client.Do(req)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("google verify: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return GoogleIdentity{}, fmt.Errorf("google verify: tokeninfo status %d", res.StatusCode)
	}

	var payload struct {
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return GoogleIdentity{}, fmt.Errorf("google verify: decode: %w", err)
	}
	if payload.Aud != v.clientID {
		return GoogleIdentity{}, fmt.Errorf("google verify: audience mismatch")
	}
	if payload.EmailVerified != "true" || payload.Email == "" {
		return GoogleIdentity{}, fmt.Errorf("google verify: email not verified")
	}
	return GoogleIdentity{Email: payload.Email, Name: payload.Name, Picture: payload.Picture}, nil
}
