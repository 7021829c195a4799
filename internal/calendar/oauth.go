// Package calendar implements the Google Calendar integration.
package calendar

import (
	"context"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/slides/v1"
)

// OAuthConfig holds Google OAuth configuration
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// DefaultOAuthConfig returns config from environment.
// Drive and Slides scopes are included so the same credential serves both the
// availability engine and slide-deck ingestion.
func DefaultOAuthConfig() OAuthConfig {
	return OAuthConfig{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  "http://localhost:8000/auth/callback",
		Scopes: []string{
			calendar.CalendarReadonlyScope,
			drive.DriveReadonlyScope,
			slides.PresentationsReadonlyScope,
		},
	}
}

// OAuthClient handles OAuth2 authentication for Google APIs
type OAuthClient struct {
	config *oauth2.Config
}

// NewOAuthClient creates a new OAuth client
func NewOAuthClient(cfg OAuthConfig) *OAuthClient {
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the URL for user authorization
func (c *OAuthClient) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange exchanges the authorization code for tokens
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

// Refresh refreshes an expired token
func (c *OAuthClient) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	return c.config.TokenSource(ctx, token).Token()
}

// CalendarService creates a Calendar API service from a token
func (c *OAuthClient) CalendarService(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	client := c.config.Client(ctx, token)
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

// DriveService creates a Drive API service from a token
func (c *OAuthClient) DriveService(ctx context.Context, token *oauth2.Token) (*drive.Service, error) {
	client := c.config.Client(ctx, token)
	return drive.NewService(ctx, option.WithHTTPClient(client))
}

// SlidesService creates a Slides API service from a token
func (c *OAuthClient) SlidesService(ctx context.Context, token *oauth2.Token) (*slides.Service, error) {
	client := c.config.Client(ctx, token)
	return slides.NewService(ctx, option.WithHTTPClient(client))
}

// IsConfigured checks if OAuth credentials are present in the environment
func IsConfigured() bool {
	return os.Getenv("GOOGLE_CLIENT_ID") != "" && os.Getenv("GOOGLE_CLIENT_SECRET") != ""
}
