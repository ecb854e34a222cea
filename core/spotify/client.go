// Package spotify wraps the Spotify Web API behind the two client shapes
// the application needs: an anonymous base client for plain catalog
// searches and a per-request user client built from a stored credential.
// User-only operations performed through the base client are rejected.
package spotify

import (
	"context"
	"errors"
	"fmt"

	"sentisounds/model"

	"github.com/google/uuid"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrAnonymousClient is returned when a user-only operation is attempted
// through the anonymous base client.
var ErrAnonymousClient = errors.New("this operation cannot be performed via a base (non-user) client")

// userScopes is the permission scope requested when linking a user account.
var userScopes = []string{
	spotifyauth.ScopeStreaming,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeUserLibraryRead,
}

// Authenticator owns the application's Spotify credentials and builds
// catalogs bound to either the base principal or a linked user.
type Authenticator struct {
	auth         *spotifyauth.Authenticator
	clientID     string
	clientSecret string
	scope        string
	opts         []spotifyapi.ClientOption
}

// NewAuthenticator creates an Authenticator from the application's client
// credentials.
func NewAuthenticator(clientID, clientSecret, redirectURI string) *Authenticator {
	return &Authenticator{
		auth: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURI),
			spotifyauth.WithScopes(userScopes...),
		),
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scopeString(),
	}
}

func scopeString() string {
	s := ""
	for i, scope := range userScopes {
		if i > 0 {
			s += " "
		}
		s += scope
	}
	return s
}

// AuthURL returns the URL a user visits to link their Spotify account,
// along with the state nonce baked into it.
func (a *Authenticator) AuthURL() (url, state string) {
	state = uuid.New().String()
	return a.auth.AuthURL(state), state
}

// Exchange trades an authorization code for a credential.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*model.SpotifyToken, error) {
	tok, err := a.auth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return model.TokenFromOAuth2(tok, a.scope), nil
}

// BaseCatalog builds the anonymous catalog client using the
// client-credentials flow. It can search but never act as a user.
func (a *Authenticator) BaseCatalog(ctx context.Context) *Catalog {
	config := &clientcredentials.Config{
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return newCatalog(spotifyapi.New(config.Client(ctx), a.opts...), false, a.scope)
}

// UserCatalog builds a catalog client bound to a stored user credential.
// The underlying transport refreshes the token transparently; Token()
// exposes the post-call value so rotation can be persisted.
func (a *Authenticator) UserCatalog(ctx context.Context, token *model.SpotifyToken) *Catalog {
	httpClient := a.auth.Client(ctx, token.OAuth2())
	return newCatalog(spotifyapi.New(httpClient, a.opts...), true, a.scope)
}

// Catalog is one bound Spotify client, either the anonymous base client or
// a per-request user client. The two are never the same value.
type Catalog struct {
	client *spotifyapi.Client
	user   bool
	scope  string
}

func newCatalog(client *spotifyapi.Client, user bool, scope string) *Catalog {
	return &Catalog{client: client, user: user, scope: scope}
}

// IsUserClient reports whether this catalog acts as an authenticated user.
func (c *Catalog) IsUserClient() bool {
	return c.user
}

// EnsureAuthenticated probes the provider with the bound credential. It is
// a liveness check only: any failure reports false, never an error.
func (c *Catalog) EnsureAuthenticated(ctx context.Context) bool {
	if !c.user {
		return false
	}
	_, err := c.client.CurrentUser(ctx)
	return err == nil
}

// Token returns the credential currently held by the underlying transport.
// After a call that triggered a refresh this differs from the token the
// catalog was built with.
func (c *Catalog) Token() (*model.SpotifyToken, error) {
	tok, err := c.client.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read client token: %w", err)
	}
	return model.TokenFromOAuth2(tok, c.scope), nil
}
