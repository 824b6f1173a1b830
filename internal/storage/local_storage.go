package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TokenKey is the local storage key holding the session token.
const TokenKey = "token"

// LocalStorage is a string key/value store that survives restarts.
type LocalStorage struct {
	db *Database
}

func NewLocalStorage(db *Database) *LocalStorage {
	return &LocalStorage{db: db}
}

// GetItem returns the value for key and whether it was present.
func (s *LocalStorage) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.DB().QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *LocalStorage) SetItem(key, value string) error {
	_, err := s.db.DB().Exec(`
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *LocalStorage) RemoveItem(key string) error {
	if _, err := s.db.DB().Exec("DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

// TokenStore persists the session token under TokenKey.
type TokenStore struct {
	ls *LocalStorage
}

func NewTokenStore(ls *LocalStorage) *TokenStore {
	return &TokenStore{ls: ls}
}

func (t *TokenStore) LoadToken() (string, error) {
	token, _, err := t.ls.GetItem(TokenKey)
	return token, err
}

func (t *TokenStore) SaveToken(token string) error {
	return t.ls.SetItem(TokenKey, token)
}

func (t *TokenStore) ClearToken() error {
	return t.ls.RemoveItem(TokenKey)
}
