package server

import (
	"net/http"

	"sentisounds/logger"
)

const (
	defaultPlaylistName        = "SentiSounds Playlist"
	defaultPlaylistDescription = "Songs picked by SentiSounds for your mood"
)

// RecommendHandler turns a sentiment prompt into a matched song list. The
// email is optional; without one, or without a linked account, the
// anonymous base client serves the search.
func (h *APIHandler) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	prompt := r.FormValue("prompt")
	email := h.principal(r)

	songs, err := h.recommender.Recommend(r.Context(), prompt, email)
	if err != nil {
		logger.Warn("[Recommend] request failed",
			logger.String("email", email),
			logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, err)
		return
	}

	logger.Info("[Recommend] served songs",
		logger.String("email", email),
		logger.Int("count", len(songs)))
	writeSuccess(w, map[string]interface{}{"songs": songs})
}

// ExportHandler creates a playlist from the posted song IDs on the
// principal's linked Spotify account.
func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}

	email := h.principal(r)
	name := r.FormValue("playlist_name")
	if name == "" {
		name = defaultPlaylistName
	}
	description := r.FormValue("playlist_description")
	if description == "" {
		description = defaultPlaylistDescription
	}

	url, err := h.recommender.Export(r.Context(), email, name, description, songIDs(r))
	if err != nil {
		logger.Warn("[Export] request failed",
			logger.String("email", email),
			logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, err)
		return
	}

	logger.Info("[Export] playlist created",
		logger.String("email", email),
		logger.String("url", url))
	writeSuccess(w, map[string]interface{}{"url": url})
}

// LikeHandler saves a song to the principal's linked library.
func (h *APIHandler) LikeHandler(w http.ResponseWriter, r *http.Request) {
	email := h.principal(r)
	songID := r.FormValue("song_id")

	if err := h.recommender.Like(r.Context(), email, songID); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, nil)
}

// UnlikeHandler removes a song from the principal's linked library.
func (h *APIHandler) UnlikeHandler(w http.ResponseWriter, r *http.Request) {
	email := h.principal(r)
	songID := r.FormValue("song_id")

	if err := h.recommender.Unlike(r.Context(), email, songID); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, nil)
}
