package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is an exported constant or variable used by the sealbox codec.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrNotFound is returned when no session blob exists for the given ID.
var ErrNotFound = errors.New("session not found")

const minSlidingTTL = time.Second

const saveSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
if existed == 0 then
  redis.call("INCR", KEYS[2])
end
return existed
`

var saveSessionLua = redis.NewScript(saveSessionScript)

const deleteSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
  local count = tonumber(redis.call("GET", KEYS[2]) or "0")
  if count > 1 then
    redis.call("DECR", KEYS[2])
  elseif count == 1 then
    redis.call("DEL", KEYS[2])
  end
end
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

// Store is a Redis-backed blob store for sealed session payloads. It handles
// persistence, expiration, and sliding window renewal. Blobs are opaque to the
// store; sealing and opening happen in the layer above.
type Store struct {
	redis         redis.UniversalClient
	prefix        string
	sliding       bool
	jitterEnabled bool
	jitterRange   time.Duration
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace; sliding, jitterEnabled, and
// jitterRange control expiration behavior.
func NewStore(
	redis redis.UniversalClient,
	prefix string,
	sliding bool,
	jitterEnabled bool,
	jitterRange time.Duration,
) *Store {
	return &Store{
		redis:         redis,
		prefix:        prefix,
		sliding:       sliding,
		jitterEnabled: jitterEnabled,
		jitterRange:   jitterRange,
	}
}

func (s *Store) key(id ID) string {
	return s.prefix + ":" + id.String()
}

func (s *Store) countKey() string {
	return s.prefix + ":count"
}

// Save persists a sealed blob under the session ID with the given TTL. The
// blob replaces any previous value; the active-session counter only moves
// when the key did not exist before.
//
//	Performance: 1 Lua EVALSHA (SET + conditional counter increment).
func (s *Store) Save(ctx context.Context, id ID, sealed string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: non-positive ttl", ErrStoreUnavailable)
	}

	_, err := saveSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.key(id), s.countKey()},
		sealed,
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Get retrieves the sealed blob for a session ID. With sliding expiration
// enabled the key TTL is refreshed to the given window on every read.
//
//	Performance: 1 Redis GET, plus 1 EXPIRE when sliding.
func (s *Store) Get(ctx context.Context, id ID, ttl time.Duration) (string, error) {
	key := s.key(id)

	sealed, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.sliding && ttl > 0 {
		nextTTL, err := s.nextSlidingTTL(ttl)
		if err != nil {
			return "", err
		}

		if err := s.redis.Expire(ctx, key, nextTTL).Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return sealed, nil
}

// Delete removes a session blob and decrements the active-session counter.
// Deleting an absent ID is a no-op.
//
//	Performance: 1 Lua EVALSHA (DEL + conditional counter decrement).
func (s *Store) Delete(ctx context.Context, id ID) error {
	_, err := deleteSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.key(id), s.countKey()},
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Touch refreshes the TTL of an existing session blob without reading it.
// Returns [ErrNotFound] when no blob exists for the ID.
//
//	Performance: 1 Redis EXPIRE.
func (s *Store) Touch(ctx context.Context, id ID, ttl time.Duration) error {
	ok, err := s.redis.Expire(ctx, s.key(id), ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ActiveSessions returns the tracked active-session counter for this prefix.
func (s *Store) ActiveSessions(ctx context.Context) (int, error) {
	count, err := s.redis.Get(ctx, s.countKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) nextSlidingTTL(window time.Duration) (time.Duration, error) {
	nextTTL := window

	if s.jitterEnabled && s.jitterRange > 0 {
		jitter, err := randomJitter(s.jitterRange)
		if err != nil {
			return 0, err
		}
		nextTTL += jitter
	}

	if nextTTL > window {
		nextTTL = window
	}

	minTTL := minSlidingTTL
	if window < minTTL {
		minTTL = window
	}
	if nextTTL < minTTL {
		nextTTL = minTTL
	}

	return nextTTL, nil
}

func randomJitter(jitterRange time.Duration) (time.Duration, error) {
	if jitterRange <= 0 {
		return 0, nil
	}

	max := jitterRange.Nanoseconds()
	if max > (math.MaxInt64-1)/2 {
		return 0, errors.New("jitter range too large")
	}
	span := max*2 + 1

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return 0, err
	}

	return time.Duration(n.Int64() - max), nil
}
