package model

import (
	"database/sql"
	"errors"
	"time"
)

// APIKey is a credential for the external integration API. Only a SHA-256
// hash of the secret is persisted; the full key is shown once at creation.
type APIKey struct {
	ID         string       `json:"id"`
	UserID     int64        `json:"user_id"`
	Name       string       `json:"name"`
	KeyPrefix  string       `json:"key_prefix"`
	KeyHash    string       `json:"-"`
	IsRevoked  bool         `json:"is_revoked"`
	LastUsedAt sql.NullTime `json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
}

// CreateAPIKey inserts a new API key row.
func CreateAPIKey(db *sql.DB, key *APIKey) error {
	_, err := db.Exec(`
	INSERT INTO api_keys (id, user_id, name, key_prefix, key_hash)
	VALUES (?, ?, ?, ?, ?)`,
		key.ID, key.UserID, key.Name, key.KeyPrefix, key.KeyHash)
	return err
}

// GetAPIKeyByHash looks up a non-revoked key by the hash of its secret.
func GetAPIKeyByHash(db *sql.DB, hash string) (*APIKey, error) {
	row := db.QueryRow(`
	SELECT id, user_id, COALESCE(name, ''), key_prefix, key_hash, is_revoked, last_used_at, created_at
	FROM api_keys WHERE key_hash = ? AND is_revoked = FALSE`, hash)

	var k APIKey
	err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyPrefix, &k.KeyHash, &k.IsRevoked, &k.LastUsedAt, &k.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("api key not found or revoked")
		}
		return nil, err
	}
	return &k, nil
}

// ListAPIKeysByUser returns all keys owned by the user, newest first.
func ListAPIKeysByUser(db *sql.DB, userID int64) ([]APIKey, error) {
	rows, err := db.Query(`
	SELECT id, user_id, COALESCE(name, ''), key_prefix, key_hash, is_revoked, last_used_at, created_at
	FROM api_keys WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyPrefix, &k.KeyHash, &k.IsRevoked, &k.LastUsedAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey marks a key revoked. Only the owner may revoke their key.
func RevokeAPIKey(db *sql.DB, userID int64, keyID string) error {
	res, err := db.Exec(`UPDATE api_keys SET is_revoked = TRUE WHERE id = ? AND user_id = ?`, keyID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TouchAPIKey records the key's last use. Failures here are non-fatal for the
// request being served.
func TouchAPIKey(db *sql.DB, keyID string) error {
	_, err := db.Exec(`UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, keyID)
	return err
}
