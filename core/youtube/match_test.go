package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"sentisounds/model"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

type fakeSearch struct {
	calls   int64
	videoID string
	fail    bool
}

func (f *fakeSearch) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.calls, 1)
		if f.fail {
			http.Error(w, `{"error": {"code": 403, "message": "quota exceeded"}}`, http.StatusForbidden)
			return
		}
		items := []map[string]interface{}{}
		if f.videoID != "" {
			items = append(items, map[string]interface{}{
				"id": map[string]string{"videoId": f.videoID},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	})
}

func newTestIndex(t *testing.T, fake *fakeSearch, cachePath string) (*MatchIndex, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	service, err := youtubeapi.NewService(context.Background(),
		option.WithAPIKey("test-key"),
		option.WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	index, err := NewMatchIndex(service, cachePath, 2)
	if err != nil {
		t.Fatalf("NewMatchIndex failed: %v", err)
	}
	return index, server
}

func song(name, artist string) model.Song {
	return model.Song{
		Name:    name,
		Artists: []model.Artist{{Name: artist}},
	}
}

func TestMatchOne(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches and caches a found video", func(t *testing.T) {
		fake := &fakeSearch{videoID: "vid123"}
		index, _ := newTestIndex(t, fake, filepath.Join(t.TempDir(), "cache.json"))

		s := song("Blue Train", "John Coltrane")
		index.MatchOne(ctx, &s)

		want := "https://www.youtube.com/watch?v=vid123"
		if s.ExternalURLs["youtube"] != want {
			t.Fatalf("youtube url = %q, want %q", s.ExternalURLs["youtube"], want)
		}

		// Same name again: answered from cache, no further provider call.
		s2 := song("Blue Train", "John Coltrane")
		index.MatchOne(ctx, &s2)
		if s2.ExternalURLs["youtube"] != want {
			t.Errorf("cached url = %q, want %q", s2.ExternalURLs["youtube"], want)
		}
		if calls := atomic.LoadInt64(&fake.calls); calls != 1 {
			t.Errorf("provider calls = %d, want 1", calls)
		}
	})

	t.Run("caches a confirmed no-match", func(t *testing.T) {
		fake := &fakeSearch{videoID: ""}
		index, _ := newTestIndex(t, fake, filepath.Join(t.TempDir(), "cache.json"))

		s := song("Obscure B-Side", "Nobody")
		index.MatchOne(ctx, &s)
		if got, ok := s.ExternalURLs["youtube"]; !ok || got != "" {
			t.Fatalf("youtube url = %q (present=%v), want empty and present", got, ok)
		}

		s2 := song("Obscure B-Side", "Nobody")
		index.MatchOne(ctx, &s2)
		if calls := atomic.LoadInt64(&fake.calls); calls != 1 {
			t.Errorf("provider calls = %d, want 1 (no-match should be cached)", calls)
		}
		if index.Size() != 1 {
			t.Errorf("Size = %d, want 1", index.Size())
		}
	})

	t.Run("provider failure is not cached", func(t *testing.T) {
		fake := &fakeSearch{fail: true}
		index, _ := newTestIndex(t, fake, filepath.Join(t.TempDir(), "cache.json"))

		s := song("Quota Victim", "Someone")
		index.MatchOne(ctx, &s)
		if got := s.ExternalURLs["youtube"]; got != "" {
			t.Fatalf("youtube url = %q, want empty", got)
		}
		if index.Size() != 0 {
			t.Fatalf("Size = %d, want 0 (failures are never cached)", index.Size())
		}

		// A later lookup retries the provider.
		s2 := song("Quota Victim", "Someone")
		index.MatchOne(ctx, &s2)
		if calls := atomic.LoadInt64(&fake.calls); calls != 2 {
			t.Errorf("provider calls = %d, want 2", calls)
		}
	})
}

func TestMatchBatch(t *testing.T) {
	fake := &fakeSearch{videoID: "batchvid"}
	index, _ := newTestIndex(t, fake, filepath.Join(t.TempDir(), "cache.json"))

	songs := []model.Song{
		song("Song A", "Artist A"),
		song("Song B", "Artist B"),
		song("Song C", "Artist C"),
		song("Song A", "Artist A2"),
	}
	index.MatchBatch(context.Background(), songs)

	for i, s := range songs {
		if _, ok := s.ExternalURLs["youtube"]; !ok {
			t.Errorf("songs[%d] has no youtube key", i)
		}
	}
	// Three distinct names at most three provider calls; the duplicate may
	// race its twin but never exceeds one call per name-miss.
	if calls := atomic.LoadInt64(&fake.calls); calls > 4 {
		t.Errorf("provider calls = %d, want at most 4", calls)
	}
	if index.Size() != 3 {
		t.Errorf("Size = %d, want 3", index.Size())
	}
}

func TestCachePersistence(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "nested", "cache.json")

	fake := &fakeSearch{videoID: "persisted"}
	index, _ := newTestIndex(t, fake, cachePath)

	s := song("Keeper", "Artist")
	index.MatchOne(context.Background(), &s)
	if err := index.SaveCache(); err != nil {
		t.Fatalf("SaveCache failed: %v", err)
	}

	// A reloaded index answers from the persisted cache without a service.
	reloaded, err := NewMatchIndex(nil, cachePath, 2)
	if err != nil {
		t.Fatalf("NewMatchIndex reload failed: %v", err)
	}
	if reloaded.Size() != 1 {
		t.Fatalf("reloaded Size = %d, want 1", reloaded.Size())
	}

	s2 := song("Keeper", "Artist")
	reloaded.MatchOne(context.Background(), &s2)
	if want := "https://www.youtube.com/watch?v=persisted"; s2.ExternalURLs["youtube"] != want {
		t.Errorf("reloaded url = %q, want %q", s2.ExternalURLs["youtube"], want)
	}
}
