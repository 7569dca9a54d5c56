package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironvault/auth-service/internal/auth/domain"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

const challengeKeyPrefix = "2fa:"

type challengeRecord struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// ChallengeStore keeps pending second-factor attempts in Redis. The key TTL
// tracks the challenge expiry; a missing key therefore covers both "never
// existed" and "expired and evicted", which callers surface as not found.
type ChallengeStore struct {
	client *redis.Client
}

// NewChallengeStore constructs the store on an existing client.
func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) key(id string) string {
	return challengeKeyPrefix + id
}

// Put stores the challenge with a TTL until its expiry.
func (s *ChallengeStore) Put(ctx context.Context, challenge domain.Challenge) error {
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	record := challengeRecord{
		Email:     challenge.Email.String(),
		Code:      challenge.Code,
		CreatedAt: challenge.CreatedAt,
		ExpiresAt: challenge.ExpiresAt,
		Consumed:  challenge.Consumed,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.key(challenge.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

// Get returns the challenge for id, or ErrAttemptNotFound.
func (s *ChallengeStore) Get(ctx context.Context, id string) (*domain.Challenge, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, autherror.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}

	var record challengeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}

	email, err := domain.ParseEmail(record.Email)
	if err != nil {
		return nil, fmt.Errorf("stored email %q is invalid: %w", record.Email, err)
	}

	return &domain.Challenge{
		ID:        id,
		Email:     email,
		Code:      record.Code,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
		Consumed:  record.Consumed,
	}, nil
}

// markConsumedScript flips the consumed flag in a single server-side step so
// two concurrent verifications cannot both observe the unconsumed record.
// Returns -1 when the key is gone, 0 when already consumed, 1 on the flip.
var markConsumedScript = redis.NewScript(`
local data = redis.call("GET", KEYS[1])
if not data then
	return -1
end
local record = cjson.decode(data)
if record.consumed then
	return 0
end
record.consumed = true
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
	redis.call("SET", KEYS[1], cjson.encode(record), "PX", ttl)
else
	redis.call("SET", KEYS[1], cjson.encode(record))
end
return 1
`)

// MarkConsumed flips the consumed flag exactly once, keeping the remaining
// TTL. A second call reports ErrAlreadyConsumed.
func (s *ChallengeStore) MarkConsumed(ctx context.Context, id string) error {
	res, err := markConsumedScript.Run(ctx, s.client, []string{s.key(id)}).Int()
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	switch res {
	case -1:
		return autherror.ErrAttemptNotFound
	case 0:
		return autherror.ErrAlreadyConsumed
	}
	return nil
}

// Remove purges the challenge for id. Removing an absent id is not an error.
func (s *ChallengeStore) Remove(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("remove challenge: %w", err)
	}
	return nil
}
