package model

import (
	"time"

	"golang.org/x/oauth2"
)

// SpotifyToken is the stored shape of a user's Spotify credential. At most
// one row per email is authoritative at a time; equality is structural and
// is how a provider-side refresh is detected.
type SpotifyToken struct {
	AccessToken  string `json:"accessToken"`
	TokenType    string `json:"tokenType"`
	Scope        string `json:"scope"`
	ExpiresAt    int64  `json:"expiresAt"`
	RefreshToken string `json:"refreshToken"`
}

// Equal reports whether two tokens are structurally identical.
func (t *SpotifyToken) Equal(other *SpotifyToken) bool {
	if t == nil || other == nil {
		return t == other
	}
	return *t == *other
}

// OAuth2 converts the stored token into the oauth2 shape consumed by the
// Spotify client transport.
func (t *SpotifyToken) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       time.Unix(t.ExpiresAt, 0),
	}
}

// TokenFromOAuth2 converts an oauth2 token back into the stored shape.
func TokenFromOAuth2(tok *oauth2.Token, scope string) *SpotifyToken {
	if tok == nil {
		return nil
	}
	return &SpotifyToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		Scope:        scope,
		ExpiresAt:    tok.Expiry.Unix(),
		RefreshToken: tok.RefreshToken,
	}
}
