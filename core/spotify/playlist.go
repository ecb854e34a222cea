package spotify

import (
	"context"
	"errors"
	"fmt"

	spotifyapi "github.com/zmb3/spotify/v2"
)

// ErrPlaylistCreation is returned when the provider's create call yields no
// playlist object.
var ErrPlaylistCreation = errors.New("something went wrong creating this playlist")

// CreatePlaylist creates a private playlist on the acting user's account
// and adds every song ID in a single batch call. It never succeeds for the
// anonymous base client.
func (c *Catalog) CreatePlaylist(ctx context.Context, name, description string, songIDs []string) (string, error) {
	if !c.user {
		return "", ErrAnonymousClient
	}

	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("something went wrong validating this user's existence: %w", err)
	}

	playlist, err := c.client.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPlaylistCreation, err)
	}
	if playlist == nil {
		return "", ErrPlaylistCreation
	}

	ids := make([]spotifyapi.ID, 0, len(songIDs))
	for _, id := range songIDs {
		ids = append(ids, spotifyapi.ID(id))
	}

	if _, err := c.client.AddTracksToPlaylist(ctx, playlist.ID, ids...); err != nil {
		return "", fmt.Errorf("failed to add tracks to playlist: %w", err)
	}

	return playlist.ExternalURLs["spotify"], nil
}
