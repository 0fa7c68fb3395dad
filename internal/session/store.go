// Package session implements the session cache on Redis. The cache is the
// single source of truth for "is this identity's session still live": a
// refresh token is only honored while an entry exists under the user's id,
// so deleting the entry (logout, TTL expiry) ends the session regardless
// of how long the token itself remains cryptographically valid.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smarthostel/backend/internal/model"
)

// ErrNoSession is returned when no live entry exists for the user id.
var ErrNoSession = errors.New("no session")

// ErrCorrupt is returned when a cached record no longer decodes into a
// valid identity snapshot.
var ErrCorrupt = errors.New("corrupt session record")

const keyPrefix = "session:"

// Store reads and writes identity snapshots keyed by user id.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Save serializes the snapshot and writes it under the user's key with the
// given TTL. Saving over an existing entry renews the TTL, which is how
// refresh extends a session's life.
func (s *Store) Save(ctx context.Context, userID uint64, snap model.Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(userID), payload, ttl).Err()
}

// Get loads and decodes the snapshot for the user id. Absence maps to
// ErrNoSession; a present-but-undecodable record maps to ErrCorrupt.
func (s *Store) Get(ctx context.Context, userID uint64) (model.Snapshot, error) {
	raw, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return model.Snapshot{}, ErrNoSession
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	return Decode(raw)
}

// Delete removes the session entry. Deleting a missing entry is not an
// error; logout is idempotent.
func (s *Store) Delete(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}

// Decode parses a raw cached record into a snapshot, rejecting records
// that lack an id.
func Decode(raw []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return model.Snapshot{}, ErrCorrupt
	}
	if snap.ID == 0 {
		return model.Snapshot{}, ErrCorrupt
	}
	return snap, nil
}

func key(userID uint64) string {
	return keyPrefix + strconv.FormatUint(userID, 10)
}
