package spotify

import (
	"context"
	"errors"
	"math/rand"

	"sentisounds/logger"
	"sentisounds/model"

	spotifyapi "github.com/zmb3/spotify/v2"
)

// ErrNoResults is returned only when every requested genre produced zero
// qualifying songs.
var ErrNoResults = errors.New("something went wrong searching for songs from Spotify")

const (
	searchPageSize = 50
	// maxSearchOffset bounds the random starting offset applied per genre
	// search so repeated prompts do not always surface the same songs.
	// This makes results intentionally non-deterministic across calls.
	maxSearchOffset = 30
	// hasTracksBatchSize is the provider's cap on the saved-tracks
	// containment check.
	hasTracksBatchSize = 50
)

// SearchByGenres issues one paginated search per genre, in genre order, and
// concatenates the results. For each genre it accumulates songs whose
// popularity is strictly above popularityFloor, paging forward until
// limitPerGenre qualifying songs are collected or the provider runs out of
// pages; running out of pages is a natural end, not a failure. A genre that
// yields nothing contributes nothing.
func (c *Catalog) SearchByGenres(ctx context.Context, genres []string, limitPerGenre, popularityFloor int) ([]model.Song, error) {
	var all []model.Song

	for _, genre := range genres {
		collected := c.searchGenre(ctx, genre, limitPerGenre, popularityFloor)
		all = append(all, collected...)
	}

	if len(all) == 0 {
		return nil, ErrNoResults
	}

	if c.user {
		c.resolveLikes(ctx, all)
	}

	return all, nil
}

func (c *Catalog) searchGenre(ctx context.Context, genre string, limitPerGenre, popularityFloor int) []model.Song {
	result, err := c.client.Search(ctx, "genre:"+genre, spotifyapi.SearchTypeTrack,
		spotifyapi.Market(spotifyapi.MarketFromToken),
		spotifyapi.Limit(searchPageSize),
		spotifyapi.Offset(rand.Intn(maxSearchOffset)),
	)
	if err != nil {
		// One genre's failed search never aborts the whole request.
		logger.Warn("[Spotify] genre search failed",
			logger.String("genre", genre),
			logger.ErrorField(err))
		return nil
	}
	if result == nil || result.Tracks == nil {
		return nil
	}

	var collected []model.Song
	for {
		for _, track := range result.Tracks.Tracks {
			if int(track.Popularity) > popularityFloor {
				collected = append(collected, normalizeTrack(track))
				if len(collected) >= limitPerGenre {
					return collected
				}
			}
		}

		if err := c.client.NextTrackResults(ctx, result); err != nil {
			if !errors.Is(err, spotifyapi.ErrNoMorePages) {
				logger.Warn("[Spotify] pagination stopped early",
					logger.String("genre", genre),
					logger.ErrorField(err))
			}
			return collected
		}
	}
}

// normalizeTrack projects a raw provider track into the internal Song
// shape. Fields outside the documented subset are dropped.
func normalizeTrack(track spotifyapi.FullTrack) model.Song {
	song := model.Song{
		ID:   string(track.ID),
		Name: track.Name,
		Album: model.Album{
			Name:        track.Album.Name,
			ExternalURL: track.Album.ExternalURLs["spotify"],
		},
		PreviewURL:   track.PreviewURL,
		ExternalURLs: make(map[string]string, len(track.ExternalURLs)+1),
		Explicit:     track.Explicit,
		Popularity:   int(track.Popularity),
		LikedByUser:  false,
	}

	for provider, url := range track.ExternalURLs {
		song.ExternalURLs[provider] = url
	}
	if track.IsPlayable != nil {
		song.IsPlayable = *track.IsPlayable
	}
	for _, image := range track.Album.Images {
		song.Album.Images = append(song.Album.Images, image.URL)
	}
	for _, artist := range track.Artists {
		song.Artists = append(song.Artists, model.Artist{
			Name:        artist.Name,
			ExternalURL: artist.ExternalURLs["spotify"],
		})
	}

	return song
}

// resolveLikes flips LikedByUser on songs the authenticated user has saved.
// Failures leave the default false in place.
func (c *Catalog) resolveLikes(ctx context.Context, songs []model.Song) {
	for start := 0; start < len(songs); start += hasTracksBatchSize {
		end := start + hasTracksBatchSize
		if end > len(songs) {
			end = len(songs)
		}

		ids := make([]spotifyapi.ID, 0, end-start)
		for _, song := range songs[start:end] {
			ids = append(ids, spotifyapi.ID(song.ID))
		}

		liked, err := c.client.UserHasTracks(ctx, ids...)
		if err != nil {
			logger.Warn("[Spotify] saved-tracks check failed", logger.ErrorField(err))
			return
		}
		for i, isLiked := range liked {
			if start+i < len(songs) {
				songs[start+i].LikedByUser = isLiked
			}
		}
	}
}

// LikeSong saves a song to the user's library. Liking an already-liked
// song is a no-op at the provider.
func (c *Catalog) LikeSong(ctx context.Context, songID string) error {
	if !c.user {
		return ErrAnonymousClient
	}
	return c.client.AddTracksToLibrary(ctx, spotifyapi.ID(songID))
}

// UnlikeSong removes a song from the user's library. Unliking an
// already-unliked song is a no-op at the provider.
func (c *Catalog) UnlikeSong(ctx context.Context, songID string) error {
	if !c.user {
		return ErrAnonymousClient
	}
	return c.client.RemoveTracksFromLibrary(ctx, spotifyapi.ID(songID))
}
