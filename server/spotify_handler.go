package server

import (
	"net/http"

	"sentisounds/logger"
)

// SpotifyAuthLinkHandler returns the URL a user visits to link their
// Spotify account.
func (h *APIHandler) SpotifyAuthLinkHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"url": h.recommender.AuthLink()})
}

// SpotifyAuthenticateHandler exchanges the OAuth code for a credential and
// stores it for the acting principal.
func (h *APIHandler) SpotifyAuthenticateHandler(w http.ResponseWriter, r *http.Request) {
	email := h.principal(r)
	code := r.FormValue("code")

	if err := h.recommender.LinkAccount(r.Context(), email, code); err != nil {
		logger.Warn("[SpotifyLink] failed to link account",
			logger.String("email", email),
			logger.ErrorField(err))
		writeFailure(w, http.StatusBadRequest, err)
		return
	}

	logger.Info("[SpotifyLink] account linked", logger.String("email", email))
	writeSuccess(w, nil)
}

// SpotifyCheckHandler probes whether the stored credential still works.
func (h *APIHandler) SpotifyCheckHandler(w http.ResponseWriter, r *http.Request) {
	email := h.principal(r)

	if err := h.recommender.CheckLink(r.Context(), email); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, nil)
}
