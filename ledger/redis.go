package ledger

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisLedger struct {
	client *redis.Client
}

func NewRedisLedger(redisURL string) (Ledger, error) {
	parsedURL, err := url.Parse(redisURL)
	if err != nil {
		return nil, err
	}
	redisPassword, _ := parsedURL.User.Password()
	client := redis.NewClient(&redis.Options{
		Addr:     parsedURL.Host,
		Password: redisPassword,
		DB:       0, // Use default DB.
	})
	return redisLedger{client: client}, nil
}

func (rl redisLedger) Record(action Action, orderID uint, txid string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := actionKey(action, orderID)
	return rl.client.Set(ctx, key, txid, 0).Err()
}

func (rl redisLedger) Check(action Action, orderID uint) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := actionKey(action, orderID)
	txid, err := rl.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return txid, true, nil
}
