// Package youtube matches songs to their YouTube videos through the Data
// API, with a persistent name-keyed cache in front of the quota-limited
// search endpoint.
//
// The cache is keyed by song display name only, not name+artist: two
// distinct songs sharing a title collide and receive each other's cached
// link. This is a known accuracy trade-off carried over from the original
// design, kept to avoid doubling the lookup space.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sentisounds/logger"
	"sentisounds/model"

	youtubeapi "google.golang.org/api/youtube/v3"
)

const watchURLFormat = "https://www.youtube.com/watch?v=%s"

// MatchIndex looks up a best-effort YouTube match per song. The in-memory
// cache maps song name to video ID, with "" recording a confirmed
// no-match so the lookup is never repeated. It is persisted wholesale to a
// flat JSON file.
type MatchIndex struct {
	service   *youtubeapi.Service
	cachePath string
	workers   int

	mu    sync.Mutex
	cache map[string]string
}

// NewMatchIndex creates a MatchIndex backed by the given service, loading
// any previously persisted cache. A missing or empty cache file starts the
// index cold; that is not an error.
func NewMatchIndex(service *youtubeapi.Service, cachePath string, workers int) (*MatchIndex, error) {
	if workers < 1 {
		workers = 1
	}
	m := &MatchIndex{
		service:   service,
		cachePath: cachePath,
		workers:   workers,
		cache:     make(map[string]string),
	}
	if err := m.loadCache(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MatchIndex) loadCache() error {
	contents, err := os.ReadFile(m.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read match cache file: %w", err)
	}
	if len(contents) == 0 {
		return nil
	}
	if err := json.Unmarshal(contents, &m.cache); err != nil {
		return fmt.Errorf("failed to parse match cache file: %w", err)
	}
	logger.Info("[YouTube] loaded match cache",
		logger.String("path", m.cachePath),
		logger.Int("entries", len(m.cache)))
	return nil
}

// SaveCache serializes the full in-memory cache to the cache file. It is
// meant to run once per batch of matching, not per song.
func (m *MatchIndex) SaveCache() error {
	m.mu.Lock()
	payload, err := json.Marshal(m.cache)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode match cache: %w", err)
	}

	if dir := filepath.Dir(m.cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create match cache directory: %w", err)
		}
	}
	if err := os.WriteFile(m.cachePath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write match cache file: %w", err)
	}
	return nil
}

// Size reports the number of cached name lookups.
func (m *MatchIndex) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// MatchOne attaches the song's YouTube link in place. A cached name is
// answered without a network call; a fresh lookup asks the provider for the
// single most relevant video for "<name> <first artist>". Provider failures
// are swallowed: the song gets an empty link and nothing is cached, so a
// later request may retry.
func (m *MatchIndex) MatchOne(ctx context.Context, song *model.Song) {
	if song.ExternalURLs == nil {
		song.ExternalURLs = make(map[string]string)
	}

	m.mu.Lock()
	id, cached := m.cache[song.Name]
	m.mu.Unlock()

	if cached {
		if id == "" {
			song.ExternalURLs["youtube"] = ""
		} else {
			song.ExternalURLs["youtube"] = fmt.Sprintf(watchURLFormat, id)
		}
		logger.Debug("[YouTube] match cache hit", logger.String("song", song.Name))
		return
	}

	query := song.Name + " " + song.FirstArtistName()
	response, err := m.service.Search.List([]string{"id"}).
		Q(query).
		Type("video").
		MaxResults(1).
		Order("relevance").
		Fields("items(id(videoId))").
		Context(ctx).
		Do()
	if err != nil {
		// Usually quota exhaustion. Treat as no match and cache nothing.
		logger.Warn("[YouTube] search failed",
			logger.String("song", song.Name),
			logger.ErrorField(err))
		song.ExternalURLs["youtube"] = ""
		return
	}

	if len(response.Items) == 0 || response.Items[0].Id == nil || response.Items[0].Id.VideoId == "" {
		// Confirmed no-match: cache the empty string so the lookup is
		// never repeated for this name.
		song.ExternalURLs["youtube"] = ""
		m.mu.Lock()
		m.cache[song.Name] = ""
		m.mu.Unlock()
		return
	}

	videoID := response.Items[0].Id.VideoId
	song.ExternalURLs["youtube"] = fmt.Sprintf(watchURLFormat, videoID)
	m.mu.Lock()
	m.cache[song.Name] = videoID
	m.mu.Unlock()
}

// MatchBatch matches every song with a fixed-size worker pool and returns
// once all songs are processed. Songs are mutated in place, so ordering is
// irrelevant; one song's failed lookup never aborts the batch.
func (m *MatchIndex) MatchBatch(ctx context.Context, songs []model.Song) {
	jobs := make(chan *model.Song)

	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for song := range jobs {
				m.MatchOne(ctx, song)
			}
		}()
	}

	for i := range songs {
		jobs <- &songs[i]
	}
	close(jobs)
	wg.Wait()
}
