package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

func InitRedis() {
	url := os.Getenv("REDIS_URL")
	opt, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		log.Fatalf("failed to parse redis url: %v", err)
	}
	RedisClient = redis.NewClient(opt)

	_, err = RedisClient.Ping(context.Background()).Result()
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Println("Redis connection established")
}

// Claimer hands out short-lived exclusive claims shared across workers.
type Claimer struct {
	client *redis.Client
}

func NewClaimer(client *redis.Client) *Claimer {
	return &Claimer{client: client}
}

// Claim atomically acquires key for ttl. Returns false when another worker
// already holds it.
func (c *Claimer) Claim(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim early so a failed post can be retried on the next
// tick instead of waiting out the ttl.
func (c *Claimer) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

func oauthStateKey(state string) string {
	return fmt.Sprintf("oauth_state:%s", state)
}

// SaveOAuthState stores an install-flow state nonce for later verification.
func SaveOAuthState(ctx context.Context, state string) error {
	return RedisClient.Set(ctx, oauthStateKey(state), "1", 15*time.Minute).Err()
}

// ConsumeOAuthState verifies and deletes a state nonce, so each one is
// accepted at most once.
func ConsumeOAuthState(ctx context.Context, state string) bool {
	n, err := RedisClient.Del(ctx, oauthStateKey(state)).Result()
	if err != nil {
		log.Printf("[ERROR] ConsumeOAuthState: %v\n", err)
		return false
	}
	return n == 1
}
