package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ainewshub/newshub/internal/cli/client"
	"github.com/ainewshub/newshub/internal/cli/storage"
)

// StorageKey is the durable storage entry holding the session blob
const StorageKey = "auth-storage"

// persistedState is the subset of State that survives restarts.
// IsAuthenticated and IsLoading are deliberately absent.
type persistedState struct {
	Token string      `json:"token"`
	User  client.User `json:"user"`
}

type persistedBlob struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

func encodeBlob(token string, user client.User) (string, error) {
	data, err := json.Marshal(persistedBlob{State: persistedState{Token: token, User: user}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	return string(data), nil
}

func decodeBlob(raw string) (persistedState, error) {
	var blob persistedBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return persistedState{}, fmt.Errorf("failed to parse persisted session: %w", err)
	}
	return blob.State, nil
}

// loadPersisted reads the blob. A missing entry is an empty state.
func loadPersisted(s storage.Storage) (persistedState, error) {
	raw, err := s.Get(StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return persistedState{}, nil
		}
		return persistedState{}, err
	}
	return decodeBlob(raw)
}

// PersistedTokenSource reads the bearer token straight from durable storage
// on every request. It is meant for callers that do not own a Store.
type PersistedTokenSource struct {
	Storage storage.Storage
	Logger  zerolog.Logger
}

// Token returns the persisted token. Storage and parse failures are logged
// and reported as "no token" so the request still goes out.
func (p PersistedTokenSource) Token() (string, error) {
	if p.Storage == nil {
		return "", nil
	}

	state, err := loadPersisted(p.Storage)
	if err != nil {
		p.Logger.Warn().Err(err).Msg("Ignoring unreadable persisted session")
		return "", nil
	}
	return state.Token, nil
}
