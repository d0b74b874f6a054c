/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "fleetradar:health:"
	indexSuffix      = "index"
	pingTimeout      = 5 * time.Second
)

// RedisOptions configures a RedisBackend.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// Retention is the key TTL. Entries older than this disappear even
	// without the reaper. Zero keeps keys until they are reaped.
	Retention time.Duration
}

// RedisBackend shares cached health between processes. Each entry is a JSON
// value under its own key; a sorted set indexes keys by fetch time so old
// entries can be reaped.
type RedisBackend struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("%w: %w", errRedisConnect, err)
	}

	return NewRedisBackendWithClient(client, opts.KeyPrefix, opts.Retention), nil
}

// NewRedisBackendWithClient wraps an existing client.
func NewRedisBackendWithClient(client redis.UniversalClient, prefix string, retention time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &RedisBackend{client: client, prefix: prefix, retention: retention}
}

func (b *RedisBackend) key(deviceID string) string {
	return b.prefix + deviceID
}

func (b *RedisBackend) indexKey() string {
	return b.prefix + indexSuffix
}

func (b *RedisBackend) GetEntry(ctx context.Context, deviceID string) (models.CacheEntry, bool, error) {
	data, err := b.client.Get(ctx, b.key(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.CacheEntry{}, false, nil
	}

	if err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("%w: %w", errRedisGet, err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("%w: %w", errDecodeEntry, err)
	}

	return entry, true, nil
}

func (b *RedisBackend) PutEntry(ctx context.Context, entry *models.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", errEncodeEntry, err)
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, b.key(entry.DeviceID), data, b.retention)
		pipe.ZAdd(ctx, b.indexKey(), redis.Z{
			Score:  float64(entry.FetchedAt.Unix()),
			Member: entry.DeviceID,
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errRedisSet, err)
	}

	return nil
}

// reapScript selects and deletes stale entries in one atomic step, so an
// entry rewritten by a concurrent PutEntry keeps its new score and survives.
// KEYS[1] is the index, ARGV[1] the exclusive max score, ARGV[2] the key
// prefix.
var reapScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local deleted = 0
for _, id in ipairs(ids) do
	deleted = deleted + redis.call('DEL', ARGV[2] .. id)
	redis.call('ZREM', KEYS[1], id)
end
return deleted
`)

func (b *RedisBackend) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// the bound is exclusive so entries fetched exactly at cutoff survive
	maxScore := "(" + strconv.FormatInt(cutoff.Unix(), 10)

	n, err := reapScript.Run(ctx, b.client, []string{b.indexKey()}, maxScore, b.prefix).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errRedisDelete, err)
	}

	return n, nil
}

// Ping checks the Redis connection.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
