package redisad

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"villa_catalog/internal/adapters/observability"
	"villa_catalog/internal/domain"
)

// TranslationCache stores translation entries as JSON under
// tr:<contentHash>:<lang>, without expiry.
type TranslationCache struct{ c *redis.Client }

func New(addr, pass string, db int) *TranslationCache {
	return &TranslationCache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func NewWithClient(c *redis.Client) *TranslationCache { return &TranslationCache{c: c} }

func key(hash, lang string) string { return "tr:" + hash + ":" + lang }

func (r *TranslationCache) GetTranslation(ctx context.Context, hash, lang string) (domain.TranslationEntry, bool, error) {
	v, err := r.c.Get(ctx, key(hash, lang)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return domain.TranslationEntry{}, false, nil
	}
	if err != nil {
		return domain.TranslationEntry{}, false, err
	}
	var e domain.TranslationEntry
	if err := json.Unmarshal(v, &e); err != nil {
		return domain.TranslationEntry{}, false, err
	}
	observability.ObserveCache("redis", "hit")
	return e, true, nil
}

func (r *TranslationCache) PutTranslation(ctx context.Context, e domain.TranslationEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key(e.ContentHash, e.TargetLang), b, 0).Err()
}

func (r *TranslationCache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *TranslationCache) Close() error { return r.c.Close() }
