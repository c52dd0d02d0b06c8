package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/instaloan/auth-service/internal/utils"
	"github.com/instaloan/auth-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

const verificationKeyPrefix = "verify:token:"

// verificationRepository implements VerificationRepository on Redis. A
// challenge is a key hash(token) -> userID with a TTL measured in minutes;
// Redis expiry discards stale challenges without a sweep.
type verificationRepository struct {
	redis *database.Redis
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(redis *database.Redis) VerificationRepository {
	return &verificationRepository{redis: redis}
}

// Create generates a fresh verification secret, stores its hash with the
// given TTL and returns the plaintext secret.
func (r *verificationRepository) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", err
	}

	key := verificationKeyPrefix + utils.HashToken(token)
	if err := r.redis.Client.Set(ctx, key, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store verification challenge: %w", err)
	}

	return token, nil
}

// Consume looks up and deletes the challenge in one atomic GETDEL, so a
// challenge can never be consumed twice. A missing key and an expired key
// look identical to the caller.
func (r *verificationRepository) Consume(ctx context.Context, token string) (string, error) {
	key := verificationKeyPrefix + utils.HashToken(token)

	userID, err := r.redis.Client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("verification challenge not found: %w", ErrNotFound)
		}
		return "", fmt.Errorf("failed to consume verification challenge: %w", err)
	}

	return userID, nil
}
