package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/pingpong42/account/internal/account/domain"
	"github.com/pingpong42/account/pkg/slogx"
)

// 42 Intra OAuth endpoints.
const (
	DefaultAuthURL    = "https://api.intra.42.fr/oauth/authorize"
	DefaultTokenURL   = "https://api.intra.42.fr/oauth/token"
	DefaultProfileURL = "https://api.intra.42.fr/v2/me"

	defaultExchangeTimeout = 10 * time.Second
)

var (
	ErrMissingCode    = errors.New("authorization code is missing")
	ErrExchangeFailed = errors.New("authorization code exchange failed")
)

// OAuthService drives the authorization-code flow against the identity
// provider. Endpoint URLs default to the 42 Intra API and are overridable
// for tests.
type OAuthService struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// AuthURL, TokenURL and ProfileURL default to the 42 Intra endpoints
	// when empty.
	AuthURL    string
	TokenURL   string
	ProfileURL string

	// Timeout bounds the exchange plus profile fetch. Zero means the
	// default of 10 seconds.
	Timeout time.Duration

	// HTTPClient is used for the token exchange and profile fetch.
	// nil means http.DefaultClient.
	HTTPClient *http.Client
}

// LoginParams returns what a frontend needs to build the provider's
// authorize redirect.
type LoginParams struct {
	ClientID    string
	RedirectURI string
}

// LoginParams exposes the provider parameters for the frontend redirect.
// The client secret never leaves the server.
func (s *OAuthService) LoginParams() LoginParams {
	return LoginParams{
		ClientID:    s.ClientID,
		RedirectURI: s.RedirectURI,
	}
}

func (s *OAuthService) config() *oauth2.Config {
	authURL := s.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := s.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  s.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// intraProfile mirrors the fields we consume from the provider's profile
// endpoint. The numeric id becomes the account's user_id.
type intraProfile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
	Image struct {
		Link string `json:"link"`
	} `json:"image"`
}

// Callback exchanges the authorization code for an access token and fetches
// the provider profile. An empty code returns ErrMissingCode; a rejected
// exchange returns ErrExchangeFailed.
func (s *OAuthService) Callback(ctx context.Context, code string) (domain.Profile, error) {
	if code == "" {
		return domain.Profile{}, ErrMissingCode
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultExchangeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.HTTPClient)
	}

	cfg := s.config()
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		slogx.FromContext(ctx).Warn("oauth exchange failed", "err", err)
		return domain.Profile{}, ErrExchangeFailed
	}

	profile, err := s.fetchProfile(ctx, cfg, token)
	if err != nil {
		slogx.FromContext(ctx).Warn("oauth profile fetch failed", "err", err)
		return domain.Profile{}, ErrExchangeFailed
	}

	return profile, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (domain.Profile, error) {
	profileURL := s.ProfileURL
	if profileURL == "" {
		profileURL = DefaultProfileURL
	}

	resp, err := cfg.Client(ctx, token).Get(profileURL)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Profile{}, fmt.Errorf("profile endpoint returned %d", resp.StatusCode)
	}

	var p intraProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return domain.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.ID == 0 {
		return domain.Profile{}, errors.New("profile has no id")
	}

	return domain.Profile{
		UserID: strconv.FormatInt(p.ID, 10),
		Name:   p.Login,
		Email:  p.Email,
		Image:  p.Image.Link,
	}, nil
}
