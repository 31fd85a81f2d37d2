package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GoogleExchanger exchanges an OAuth authorization code for a profile.
type GoogleExchanger interface {
	Exchange(ctx context.Context, code string) (GoogleProfile, error)
}

// GoogleClient performs the OAuth code exchange against Google.
type GoogleClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	userinfoURL  string
	httpClient   *http.Client
}

// NewGoogleClient constructs a GoogleClient.
func NewGoogleClient(clientID, clientSecret, redirectURI string) *GoogleClient {
	return &GoogleClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokenURL:     "https://oauth2.googleapis.com/token",
		userinfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Exchange swaps the authorization code for an access token and fetches the
// user's profile.
func (c *GoogleClient) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return GoogleProfile{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return GoogleProfile{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return GoogleProfile{}, fmt.Errorf("auth: google token exchange returned status %d", resp.StatusCode)
	}

	var tokenBody struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenBody); err != nil {
		return GoogleProfile{}, err
	}
	if tokenBody.AccessToken == "" {
		return GoogleProfile{}, fmt.Errorf("auth: google token exchange returned no access token")
	}

	infoReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return GoogleProfile{}, err
	}
	infoReq.Header.Set("Authorization", "Bearer "+tokenBody.AccessToken)

	infoResp, err := c.httpClient.Do(infoReq)
	if err != nil {
		return GoogleProfile{}, err
	}
	defer func() {
		_ = infoResp.Body.Close()
	}()
	if infoResp.StatusCode >= 400 {
		return GoogleProfile{}, fmt.Errorf("auth: google userinfo returned status %d", infoResp.StatusCode)
	}

	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(infoResp.Body).Decode(&profile); err != nil {
		return GoogleProfile{}, err
	}
	return GoogleProfile{ID: profile.ID, Email: profile.Email, Name: profile.Name}, nil
}

var _ GoogleExchanger = (*GoogleClient)(nil)
