package repository

import (
	"database/sql"
	"fmt"

	"sentisounds/model"
)

// SpotifyTokenRepository holds the rotating Spotify credential per user.
// Absence of a token is not an error at this layer; callers decide whether
// a missing credential blocks their operation.
type SpotifyTokenRepository interface {
	// GetToken returns the stored token, or (nil, nil) when none exists.
	GetToken(email string) (*model.SpotifyToken, error)
	// SaveToken upserts the token for a verified user and returns the
	// affected-row count. A count of zero means the principal does not
	// exist or is not verified; that is a no-op, not a failure.
	SaveToken(email string, token *model.SpotifyToken) (int64, error)
}

type mysqlSpotifyTokenRepository struct {
	db *sql.DB
}

// NewMySQLSpotifyTokenRepository creates a new mysqlSpotifyTokenRepository.
func NewMySQLSpotifyTokenRepository(db *sql.DB) SpotifyTokenRepository {
	return &mysqlSpotifyTokenRepository{db: db}
}

func (r *mysqlSpotifyTokenRepository) GetToken(email string) (*model.SpotifyToken, error) {
	query := "SELECT access_token, token_type, scope, expires_at, refresh_token FROM spotify_tokens WHERE email = ?"
	row := r.db.QueryRow(query, email)

	token := &model.SpotifyToken{}
	var scope, refresh sql.NullString
	err := row.Scan(&token.AccessToken, &token.TokenType, &scope, &token.ExpiresAt, &refresh)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan spotify token row for %s: %w", email, err)
	}
	token.Scope = scope.String
	token.RefreshToken = refresh.String
	return token, nil
}

func (r *mysqlSpotifyTokenRepository) SaveToken(email string, token *model.SpotifyToken) (int64, error) {
	// The INSERT ... SELECT keeps the write atomic with the verified check:
	// unknown or unverified principals select zero rows and the upsert
	// lands nowhere.
	query := `
	INSERT INTO spotify_tokens (email, access_token, token_type, scope, expires_at, refresh_token)
	SELECT u.email, ?, ?, ?, ?, ?
	FROM users u WHERE u.email = ? AND u.verified = TRUE
	ON DUPLICATE KEY UPDATE
		access_token = VALUES(access_token),
		token_type = VALUES(token_type),
		scope = VALUES(scope),
		expires_at = VALUES(expires_at),
		refresh_token = VALUES(refresh_token)
	`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare save token statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(token.AccessToken, token.TokenType, token.Scope, token.ExpiresAt, token.RefreshToken, email)
	if err != nil {
		return 0, fmt.Errorf("failed to execute save token statement: %w", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count affected token rows: %w", err)
	}
	return count, nil
}
