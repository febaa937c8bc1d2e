package utils

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	rstore "github.com/eko/gocache/store/ristretto/v4"
)

const KeyCacheTTL = time.Hour

func NewCache() (*cache.Cache[[]byte], error) {
	rcache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	store_ := rstore.NewRistretto(rcache)
	manager := cache.New[[]byte](store_)
	return manager, nil
}

// KeyCache remembers public keys returned by the signing oracle per key
// handle so address derivation does not cost a round trip per operation.
type KeyCache struct {
	cached *cache.Cache[[]byte]
}

func NewKeyCache() (*KeyCache, error) {
	c, err := NewCache()
	if err != nil {
		return nil, err
	}
	return &KeyCache{cached: c}, nil
}

func (k *KeyCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if k == nil || k.cached == nil {
		return load(ctx)
	}
	if data, err := k.cached.Get(ctx, key); err == nil && len(data) > 0 {
		return data, nil
	}
	data, err := load(ctx)
	if err != nil {
		return nil, err
	}
	_ = k.cached.Set(ctx, key, data, store.WithExpiration(KeyCacheTTL), store.WithCost(int64(len(data))))
	return data, nil
}
