package model

// Album is the projected subset of a provider album attached to a Song.
type Album struct {
	Name        string   `json:"name"`
	Images      []string `json:"images"`
	ExternalURL string   `json:"externalUrl"`
}

// Artist is the projected subset of a provider artist attached to a Song.
type Artist struct {
	Name        string `json:"name"`
	ExternalURL string `json:"externalUrl"`
}

// Song is the normalized catalog entry served by the recommendation flow.
// It is built from raw Spotify payloads, mutated in place by the YouTube
// match index, and never persisted.
type Song struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Album      Album    `json:"album"`
	Artists    []Artist `json:"artists"`
	PreviewURL string   `json:"previewUrl"`
	// ExternalURLs maps provider name to URL. The "youtube" key is absent
	// until the match index has processed the song; afterwards it is
	// present, possibly as "" when no match was found.
	ExternalURLs map[string]string `json:"externalUrls"`
	Explicit     bool              `json:"explicit"`
	IsPlayable   bool              `json:"isPlayable"`
	Popularity   int               `json:"popularity"`
	LikedByUser  bool              `json:"likedByUser"`
}

// FirstArtistName returns the name of the song's primary artist, or ""
// when the provider supplied none.
func (s *Song) FirstArtistName() string {
	if len(s.Artists) == 0 {
		return ""
	}
	return s.Artists[0].Name
}
