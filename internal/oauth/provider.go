// Package oauth exchanges provider authorization codes for a normalised
// profile. It does not touch local storage.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskhub/pkg/crypto"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var (
	ErrNoAccessToken = errors.New("provider returned no access token")
	ErrInvalidState  = errors.New("invalid oauth state")
	ErrNoProfileID   = errors.New("provider profile has no id")
)

// StateTTL bounds how long a consent round trip may take.
const StateTTL = 10 * time.Minute

// Profile is what the application needs from any provider.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Avatar    string
}

type Provider struct {
	Name       string
	Config     oauth2.Config
	ProfileURL string
	parse      func([]byte) (Profile, error)
	HTTPClient *http.Client
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: "google",
		Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		ProfileURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		parse:      parseGoogle,
	}
}

func NewFacebook(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: "facebook",
		Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Facebook,
			Scopes:       []string{"email", "public_profile"},
		},
		ProfileURL: "https://graph.facebook.com/me?fields=id,email,first_name,last_name,picture.type(large)",
		parse:      parseFacebook,
	}
}

// ConsentURL is where the browser is sent when no code is present.
func (p *Provider) ConsentURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades code for a token and fetches the profile.
func (p *Provider) Exchange(ctx context.Context, code string) (Profile, error) {
	if p.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
	}
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%s exchange: %w", p.Name, err)
	}
	if tok.AccessToken == "" {
		return Profile{}, ErrNoAccessToken
	}

	resp, err := p.Config.Client(ctx, tok).Get(p.ProfileURL)
	if err != nil {
		return Profile{}, fmt.Errorf("%s profile: %w", p.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Profile{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%s profile: status %d", p.Name, resp.StatusCode)
	}

	profile, err := p.parse(body)
	if err != nil {
		return Profile{}, err
	}
	if profile.ID == "" {
		return Profile{}, ErrNoProfileID
	}
	profile.Email = strings.ToLower(profile.Email)
	return profile, nil
}

func parseGoogle(body []byte) (Profile, error) {
	var g struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.Unmarshal(body, &g); err != nil {
		return Profile{}, err
	}
	return Profile{ID: g.ID, Email: g.Email, FirstName: g.GivenName, LastName: g.FamilyName, Avatar: g.Picture}, nil
}

func parseFacebook(body []byte) (Profile, error) {
	var f struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Picture   struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(body, &f); err != nil {
		return Profile{}, err
	}
	return Profile{ID: f.ID, Email: f.Email, FirstName: f.FirstName, LastName: f.LastName, Avatar: f.Picture.Data.URL}, nil
}

// NewState seals provider and an expiry so the callback can prove the
// round trip started here.
func NewState(provider, key string, now time.Time) (string, error) {
	nonce, err := crypto.RandomHex(8)
	if err != nil {
		return "", err
	}
	payload := fmt.Sprintf("%s|%d|%s", provider, now.Add(StateTTL).Unix(), nonce)
	return crypto.Encrypt(payload, key)
}

func VerifyState(state, provider, key string, now time.Time) error {
	payload, err := crypto.Decrypt(state, key)
	if err != nil {
		return ErrInvalidState
	}
	parts := strings.Split(payload, "|")
	if len(parts) != 3 || parts[0] != provider {
		return ErrInvalidState
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || now.Unix() > exp {
		return ErrInvalidState
	}
	return nil
}
