package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var ErrGoogleUnavailable = errors.New("google login unavailable")

// GoogleProfile is the subset of the userinfo response used to upsert a user.
type GoogleProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
	breaker     *gobreaker.CircuitBreaker[GoogleProfile]
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return newGoogleProvider(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"profile", "email"},
		Endpoint:     google.Endpoint,
	}, googleUserInfoURL)
}

func newGoogleProvider(cfg *oauth2.Config, userInfoURL string) *GoogleProvider {
	cb := gobreaker.NewCircuitBreaker[GoogleProfile](gobreaker.Settings{
		Name:        "google-oauth",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return &GoogleProvider{config: cfg, userInfoURL: userInfoURL, breaker: cb}
}

func (g *GoogleProvider) Enabled() bool {
	return g.config.ClientID != ""
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Profile exchanges the authorization code and fetches the account's profile.
func (g *GoogleProvider) Profile(ctx context.Context, code string) (GoogleProfile, error) {
	profile, err := g.breaker.Execute(func() (GoogleProfile, error) {
		return g.fetchProfile(ctx, code)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return GoogleProfile{}, fmt.Errorf("%w: %v", ErrGoogleUnavailable, err)
	}
	return profile, err
}

func (g *GoogleProvider) fetchProfile(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return GoogleProfile{}, err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return profile, nil
}
