package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"empty", "", "", ErrPromptEmpty},
		{"whitespace only", "   ", "", ErrPromptEmpty},
		{"too short", "sad", "", ErrPromptTooShort},
		{"exactly five chars", "happy", "", ErrPromptTooShort},
		{"too long", strings.Repeat("a", 200), "", ErrPromptTooLong},
		{"caret", "feeling ^great", "", ErrPromptBadChars},
		{"pipe", "mellow | calm", "", ErrPromptBadChars},
		{"backslash", `rainy \ days`, "", ErrPromptBadChars},
		{"valid", "feeling great today", "feeling great today", nil},
		{"trimmed", "  gloomy morning  ", "gloomy morning", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Sanitize(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// newChatServer fakes the chat completions endpoint, replying with the
// given message content.
func newChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func TestGenres(t *testing.T) {
	ctx := context.Background()

	t.Run("parses genre list", func(t *testing.T) {
		server := newChatServer(t, `{"genres": ["Jazz", "blues", "soul", "funk", "r-n-b"]}`)
		defer server.Close()

		client := NewClient("test-key", "test-model", "system", nil, time.Minute)
		client.SetBaseURL(server.URL)

		genres, err := client.Genres(ctx, "feeling smooth tonight")
		if err != nil {
			t.Fatalf("Genres failed: %v", err)
		}
		want := []string{"jazz", "blues", "soul", "funk", "r-n-b"}
		if len(genres) != len(want) {
			t.Fatalf("got %d genres, want %d", len(genres), len(want))
		}
		for i := range want {
			if genres[i] != want[i] {
				t.Errorf("genres[%d] = %q, want %q", i, genres[i], want[i])
			}
		}
	})

	t.Run("empty genre list", func(t *testing.T) {
		server := newChatServer(t, `{"genres": []}`)
		defer server.Close()

		client := NewClient("test-key", "test-model", "system", nil, time.Minute)
		client.SetBaseURL(server.URL)

		if _, err := client.Genres(ctx, "feeling smooth tonight"); !errors.Is(err, ErrNoGenres) {
			t.Errorf("Genres error = %v, want ErrNoGenres", err)
		}
	})

	t.Run("missing genres key", func(t *testing.T) {
		server := newChatServer(t, `{"moods": ["happy"]}`)
		defer server.Close()

		client := NewClient("test-key", "test-model", "system", nil, time.Minute)
		client.SetBaseURL(server.URL)

		if _, err := client.Genres(ctx, "feeling smooth tonight"); err == nil {
			t.Error("expected an error for a reply without the genres key")
		}
	})

	t.Run("reply is not JSON", func(t *testing.T) {
		server := newChatServer(t, "jazz, blues")
		defer server.Close()

		client := NewClient("test-key", "test-model", "system", nil, time.Minute)
		client.SetBaseURL(server.URL)

		if _, err := client.Genres(ctx, "feeling smooth tonight"); err == nil {
			t.Error("expected an error for a non-JSON reply")
		}
	})

	t.Run("no choices in response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
		}))
		defer server.Close()

		client := NewClient("test-key", "test-model", "system", nil, time.Minute)
		client.SetBaseURL(server.URL)

		if _, err := client.Genres(ctx, "feeling smooth tonight"); err == nil {
			t.Error("expected an error for an empty choices list")
		}
	})

	t.Run("API error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient("test-key", "test-model", "system", nil, time.Minute)
		client.SetBaseURL(server.URL)

		if _, err := client.Genres(ctx, "feeling smooth tonight"); err == nil {
			t.Error("expected an error for a non-200 status")
		}
	})
}

func TestParseGenres(t *testing.T) {
	t.Run("numeric entries are stringified", func(t *testing.T) {
		genres, err := parseGenres(`{"genres": ["pop", 80]}`)
		if err != nil {
			t.Fatalf("parseGenres failed: %v", err)
		}
		if genres[1] != "80" {
			t.Errorf("genres[1] = %q, want %q", genres[1], "80")
		}
	})
}
