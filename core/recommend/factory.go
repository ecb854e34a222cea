package recommend

import (
	"context"

	"sentisounds/core/spotify"
	"sentisounds/model"
)

// spotifyFactory adapts the spotify.Authenticator to the CatalogFactory
// interface.
type spotifyFactory struct {
	auth *spotify.Authenticator
}

// NewSpotifyFactory wraps the application's Spotify authenticator.
func NewSpotifyFactory(auth *spotify.Authenticator) CatalogFactory {
	return &spotifyFactory{auth: auth}
}

func (f *spotifyFactory) Base(ctx context.Context) Catalog {
	return f.auth.BaseCatalog(ctx)
}

func (f *spotifyFactory) ForUser(ctx context.Context, token *model.SpotifyToken) Catalog {
	return f.auth.UserCatalog(ctx, token)
}

func (f *spotifyFactory) AuthURL() (string, string) {
	return f.auth.AuthURL()
}

func (f *spotifyFactory) Exchange(ctx context.Context, code string) (*model.SpotifyToken, error) {
	return f.auth.Exchange(ctx, code)
}
