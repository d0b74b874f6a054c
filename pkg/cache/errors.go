package cache

import "errors"

var (
	errRedisConnect = errors.New("failed to connect to redis")
	errRedisGet     = errors.New("failed to get cache entry")
	errRedisSet     = errors.New("failed to set cache entry")
	errRedisDelete  = errors.New("failed to delete cache entries")
	errEncodeEntry  = errors.New("failed to encode cache entry")
	errDecodeEntry  = errors.New("failed to decode cache entry")
	errNilRefresh   = errors.New("nil refresh function")
	errRefreshPanic = errors.New("refresh panicked")
)
