package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/CuelineHQ/cueline/internal/model"
)

// StateStore persists the live playback state of a rundown, keyed by rundown
// id and separate from the rundown documents themselves. Missing or corrupt
// state is reported as absence (ok=false), never as a fatal error: a broken
// snapshot must not block playback.
type StateStore interface {
	Save(ctx context.Context, rundownID int, state model.PlaybackState) error
	Load(ctx context.Context, rundownID int) (model.PlaybackState, bool, error)
	Clear(ctx context.Context, rundownID int) error
}

func stateKey(rundownID int) string {
	return fmt.Sprintf("rundown:%d:playback", rundownID)
}

func decodeState(raw []byte) (model.PlaybackState, error) {
	var st model.PlaybackState
	if err := json.Unmarshal(raw, &st); err != nil {
		return model.PlaybackState{}, err
	}
	if st.Elapsed < 0 {
		return model.PlaybackState{}, fmt.Errorf("negative elapsed %d", st.Elapsed)
	}
	return st, nil
}

// RedisStateStore keeps playback state in Redis so a reload of the control
// surfaces resumes where the show left off.
type RedisStateStore struct {
	rdb *redis.Client
}

var _ StateStore = (*RedisStateStore)(nil)

func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb}
}

func (s *RedisStateStore) Save(ctx context.Context, rundownID int, state model.PlaybackState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, stateKey(rundownID), raw, 0).Err(); err != nil {
		log.Error().Err(err).Int("rundown_id", rundownID).Msg("[playback] failed to save state")
		return err
	}
	return nil
}

func (s *RedisStateStore) Load(ctx context.Context, rundownID int) (model.PlaybackState, bool, error) {
	raw, err := s.rdb.Get(ctx, stateKey(rundownID)).Bytes()
	if err == redis.Nil {
		return model.PlaybackState{}, false, nil
	}
	if err != nil {
		log.Error().Err(err).Int("rundown_id", rundownID).Msg("[playback] failed to load state")
		return model.PlaybackState{}, false, err
	}
	st, err := decodeState(raw)
	if err != nil {
		// Corrupt snapshot: treat as never saved.
		log.Warn().Err(err).Int("rundown_id", rundownID).Msg("[playback] discarding corrupt saved state")
		return model.PlaybackState{}, false, nil
	}
	return st, true, nil
}

func (s *RedisStateStore) Clear(ctx context.Context, rundownID int) error {
	if err := s.rdb.Del(ctx, stateKey(rundownID)).Err(); err != nil {
		log.Error().Err(err).Int("rundown_id", rundownID).Msg("[playback] failed to clear state")
		return err
	}
	return nil
}

// MemoryStateStore is an in-memory StateStore used in tests and when Redis is
// not configured. It stores the encoded payload so the decode path matches
// the Redis-backed store.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[int][]byte
}

var _ StateStore = (*MemoryStateStore)(nil)

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[int][]byte)}
}

func (s *MemoryStateStore) Save(_ context.Context, rundownID int, state model.PlaybackState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[rundownID] = raw
	return nil
}

func (s *MemoryStateStore) Load(_ context.Context, rundownID int) (model.PlaybackState, bool, error) {
	s.mu.Lock()
	raw, ok := s.states[rundownID]
	s.mu.Unlock()
	if !ok {
		return model.PlaybackState{}, false, nil
	}
	st, err := decodeState(raw)
	if err != nil {
		log.Warn().Err(err).Int("rundown_id", rundownID).Msg("[playback] discarding corrupt saved state")
		return model.PlaybackState{}, false, nil
	}
	return st, true, nil
}

func (s *MemoryStateStore) Clear(_ context.Context, rundownID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, rundownID)
	return nil
}

// SeedRaw plants an arbitrary payload for a rundown, bypassing encoding.
// Tests use it to simulate storage corruption.
func (s *MemoryStateStore) SeedRaw(rundownID int, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[rundownID] = raw
}
