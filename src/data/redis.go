package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix  = "link:"
	streamEvents = "groupgov.proposals"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// SetNonce stores a short-lived link nonce for a user awaiting
// confirmation through the bot.
func SetNonce(ctx context.Context, rdb *redis.Client, userID, nonce string) error {
	return rdb.Set(ctx, noncePrefix+userID, nonce, 5*time.Minute).Err()
}

// ConfirmNonce marks a user's pending nonce as confirmed by the bot.
func ConfirmNonce(ctx context.Context, rdb *redis.Client, userID string) error {
	return rdb.Set(ctx, noncePrefix+userID, "CONFIRMED", 5*time.Minute).Err()
}

func GetAndDelNonce(ctx context.Context, rdb *redis.Client, userID string) (string, error) {
	return rdb.GetDel(ctx, noncePrefix+userID).Result()
}

// PendingNonce reports the nonce a user is expected to confirm, if any.
func PendingNonce(ctx context.Context, rdb *redis.Client, userID string) (string, error) {
	return rdb.Get(ctx, noncePrefix+userID).Result()
}

// PublishEvent appends a proposal lifecycle event to the shared stream.
func PublishEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}
