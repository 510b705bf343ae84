package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fastprodman/seamlesswallet/internal/repos/replays"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wallet:replay"

var _ replays.Replays = (*ReplayRepository)(nil)

type ReplayRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReplayRepository(rdb *redis.Client, ttl time.Duration) *ReplayRepository {
	return &ReplayRepository{rdb: rdb, ttl: ttl}
}

// redisKey escapes every part so a ':' sent by the provider cannot shift
// the boundary between player and transaction id.
func redisKey(k replays.Key) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix,
		url.QueryEscape(k.Type), url.QueryEscape(k.RemoteID), url.QueryEscape(k.ProviderTxID))
}

func (r *ReplayRepository) Get(ctx context.Context, key replays.Key) (replays.Entry, error) {
	data, err := r.rdb.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return replays.Entry{}, replays.ErrMiss
		}

		return replays.Entry{}, fmt.Errorf("get replay: %w", err)
	}

	var e replays.Entry

	err = json.Unmarshal(data, &e)
	if err != nil {
		return replays.Entry{}, fmt.Errorf("decode replay: %w", err)
	}

	return e, nil
}

func (r *ReplayRepository) Put(ctx context.Context, key replays.Key, e replays.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode replay: %w", err)
	}

	err = r.rdb.Set(ctx, redisKey(key), data, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("set replay: %w", err)
	}

	return nil
}
