// Package recommend composes the genre classifier, the Spotify catalog,
// the YouTube match index and the credential store into the two primary
// flows: recommending songs for a sentiment prompt and exporting a song
// list as a playlist on the user's linked account.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"sentisounds/core/classifier"
	"sentisounds/logger"
	"sentisounds/model"
	"sentisounds/repository"
)

var (
	// ErrMissingPrincipal is returned when an operation requiring a
	// credential is attempted without any email address.
	ErrMissingPrincipal = errors.New("no email address provided")
	// ErrNoLinkedCredential is returned when the principal exists but has
	// no linked Spotify account.
	ErrNoLinkedCredential = errors.New("no Spotify account was found for this email address")
	// ErrUnknownPrincipal is returned when a credential cannot be saved
	// because the principal does not exist or is not verified.
	ErrUnknownPrincipal = errors.New("this email address does not belong to a verified account")
	// ErrLinkBroken is returned when a linked credential fails the
	// provider liveness probe.
	ErrLinkBroken = errors.New("the linked Spotify account could not be verified")
	// ErrNoSongs is returned when an export is requested with an empty
	// song list.
	ErrNoSongs = errors.New("no songs were provided to export")
)

// Catalog is the bound provider client an operation runs against, either
// the anonymous base client or a per-request user client.
type Catalog interface {
	SearchByGenres(ctx context.Context, genres []string, limitPerGenre, popularityFloor int) ([]model.Song, error)
	CreatePlaylist(ctx context.Context, name, description string, songIDs []string) (string, error)
	LikeSong(ctx context.Context, songID string) error
	UnlikeSong(ctx context.Context, songID string) error
	EnsureAuthenticated(ctx context.Context) bool
	Token() (*model.SpotifyToken, error)
	IsUserClient() bool
}

// CatalogFactory builds bound catalogs and handles the OAuth link flow.
type CatalogFactory interface {
	Base(ctx context.Context) Catalog
	ForUser(ctx context.Context, token *model.SpotifyToken) Catalog
	AuthURL() (url, state string)
	Exchange(ctx context.Context, code string) (*model.SpotifyToken, error)
}

// Classifier maps a sanitized prompt to genre labels.
type Classifier interface {
	Genres(ctx context.Context, sanitizedPrompt string) ([]string, error)
}

// Matcher attaches external video links to songs in place.
type Matcher interface {
	MatchBatch(ctx context.Context, songs []model.Song)
	SaveCache() error
}

// Service owns every collaborator the two primary flows need. One Service
// is constructed at startup and shared across requests.
type Service struct {
	tokens          repository.SpotifyTokenRepository
	classifier      Classifier
	catalogs        CatalogFactory
	matcher         Matcher
	songsPerGenre   int
	popularityFloor int
}

// NewService wires the orchestrator.
func NewService(
	tokens repository.SpotifyTokenRepository,
	cls Classifier,
	catalogs CatalogFactory,
	matcher Matcher,
	songsPerGenre, popularityFloor int,
) *Service {
	return &Service{
		tokens:          tokens,
		classifier:      cls,
		catalogs:        catalogs,
		matcher:         matcher,
		songsPerGenre:   songsPerGenre,
		popularityFloor: popularityFloor,
	}
}

// operation runs against a bound catalog inside withCredential.
type operation func(ctx context.Context, catalog Catalog) error

// withCredential resolves the principal's stored credential, binds the
// matching catalog client, runs op, and afterwards, success or failure,
// rolls any provider-side token rotation forward into durable storage.
// The operation's own error propagates unchanged.
func (s *Service) withCredential(ctx context.Context, email string, required bool, op operation) error {
	if required && email == "" {
		return ErrMissingPrincipal
	}

	var previous *model.SpotifyToken
	if email != "" {
		token, err := s.tokens.GetToken(email)
		if err != nil {
			return fmt.Errorf("failed to resolve stored credential: %w", err)
		}
		previous = token
	}
	if required && previous == nil {
		return ErrNoLinkedCredential
	}

	var catalog Catalog
	if previous != nil {
		catalog = s.catalogs.ForUser(ctx, previous)
	} else {
		// Falling back to the base client is only legal for operations
		// that do not require a user credential.
		catalog = s.catalogs.Base(ctx)
	}

	opErr := op(ctx, catalog)

	if err := s.reconcileIfChanged(email, previous, catalog); err != nil {
		logger.Warn("[Recommend] failed to persist rotated credential",
			logger.String("email", email),
			logger.ErrorField(err))
	}

	return opErr
}

// reconcileIfChanged persists the catalog's current token when it differs
// structurally from the one the call started with. It never persists on
// the anonymous path: with no previous credential there is nothing to roll
// forward.
func (s *Service) reconcileIfChanged(email string, previous *model.SpotifyToken, catalog Catalog) error {
	if previous == nil {
		return nil
	}

	current, err := catalog.Token()
	if err != nil {
		return err
	}
	if current == nil || previous.Equal(current) {
		return nil
	}

	affected, err := s.tokens.SaveToken(email, current)
	if err != nil {
		return err
	}
	if affected == 0 {
		// The principal vanished or was never verified; last-writer-wins
		// semantics make this a quiet no-op.
		logger.Debug("[Recommend] rotated credential had no verified principal to land on",
			logger.String("email", email))
		return nil
	}

	logger.Info("[Recommend] persisted rotated credential", logger.String("email", email))
	return nil
}

// Recommend turns a raw sentiment prompt into a matched song list. The
// email is optional: with a linked account the search is personalized and
// liked songs are flagged; otherwise the anonymous base client serves the
// search.
func (s *Service) Recommend(ctx context.Context, rawPrompt, email string) ([]model.Song, error) {
	prompt, err := classifier.Sanitize(rawPrompt)
	if err != nil {
		return nil, err
	}

	genres, err := s.classifier.Genres(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var songs []model.Song
	err = s.withCredential(ctx, email, false, func(ctx context.Context, catalog Catalog) error {
		found, searchErr := catalog.SearchByGenres(ctx, genres, s.songsPerGenre, s.popularityFloor)
		if searchErr != nil {
			return searchErr
		}
		songs = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.matcher.MatchBatch(ctx, songs)
	if err := s.matcher.SaveCache(); err != nil {
		// The lookups themselves succeeded; a failed cache write only
		// costs quota on a later run.
		logger.Warn("[Recommend] failed to save match cache", logger.ErrorField(err))
	}

	return songs, nil
}

// Export creates a private playlist from the song IDs on the principal's
// linked account and returns its URL.
func (s *Service) Export(ctx context.Context, email, name, description string, songIDs []string) (string, error) {
	if len(songIDs) == 0 {
		return "", ErrNoSongs
	}

	var url string
	err := s.withCredential(ctx, email, true, func(ctx context.Context, catalog Catalog) error {
		created, createErr := catalog.CreatePlaylist(ctx, name, description, songIDs)
		if createErr != nil {
			return createErr
		}
		url = created
		return nil
	})
	return url, err
}

// Like saves a song to the principal's linked library.
func (s *Service) Like(ctx context.Context, email, songID string) error {
	return s.withCredential(ctx, email, true, func(ctx context.Context, catalog Catalog) error {
		return catalog.LikeSong(ctx, songID)
	})
}

// Unlike removes a song from the principal's linked library.
func (s *Service) Unlike(ctx context.Context, email, songID string) error {
	return s.withCredential(ctx, email, true, func(ctx context.Context, catalog Catalog) error {
		return catalog.UnlikeSong(ctx, songID)
	})
}

// CheckLink probes the provider with the principal's stored credential.
func (s *Service) CheckLink(ctx context.Context, email string) error {
	return s.withCredential(ctx, email, true, func(ctx context.Context, catalog Catalog) error {
		if !catalog.EnsureAuthenticated(ctx) {
			return ErrLinkBroken
		}
		return nil
	})
}

// AuthLink returns the URL a user visits to link their Spotify account.
func (s *Service) AuthLink() string {
	url, _ := s.catalogs.AuthURL()
	return url
}

// LinkAccount exchanges an authorization code and stores the resulting
// credential for the principal.
func (s *Service) LinkAccount(ctx context.Context, email, code string) error {
	if email == "" {
		return ErrMissingPrincipal
	}

	token, err := s.catalogs.Exchange(ctx, code)
	if err != nil {
		return err
	}

	affected, err := s.tokens.SaveToken(email, token)
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	if affected == 0 {
		return ErrUnknownPrincipal
	}
	return nil
}
