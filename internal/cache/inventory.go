package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix   = "user:%d"
	ObjectKeyPrefix = "admin:%s:%v"
)

const (
	UserTTL   = 5 * time.Minute
	ObjectTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// ObjectKey is the show-view key of one object managed by the admin with code.
func ObjectKey(code string, id any) string {
	return fmt.Sprintf(ObjectKeyPrefix, code, id)
}

// ChildKey nests the key of a child admin's object under its parent's key,
// so InvalidateTree on the parent drops it as well.
func ChildKey(parent, code string, id any) string {
	return parent + ":" + ObjectKey(code, id)
}

// Aside reads key into dest. On a miss it calls fetch, which must fill dest,
// and stores the result for ttl. Redis failures never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	rdb := GetClient()
	if rdb == nil {
		return fetch()
	}

	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		observability.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if b, err := json.Marshal(dest); err == nil {
		_ = rdb.Set(ctx, key, b, ttl).Err()
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if rdb := GetClient(); rdb != nil {
		rdb.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// InvalidateTree drops key and every key nested under it with ChildKey.
func InvalidateTree(ctx context.Context, key string) {
	rdb := GetClient()
	if rdb == nil {
		return
	}
	keys := []string{key}
	iter := rdb.Scan(ctx, 0, globEscaper.Replace(key)+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	rdb.Del(ctx, keys...)
}
