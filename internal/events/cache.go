package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "events:version"

// Cache stores rendered event listings under a version that every mutation
// bumps. Callers resolve the version before querying the store and pass the
// same value to GetList and SetList, so a result read before a mutation can
// never be stored under the version that follows it. Implementations must
// tolerate a nil receiver so the service can run without one.
type Cache interface {
	Version(ctx context.Context) (int64, error)
	GetList(ctx context.Context, version int64, filter Filter) (*ListResult, bool, error)
	SetList(ctx context.Context, version int64, filter Filter, result *ListResult) error
	Invalidate(ctx context.Context) error
}

// RedisCache wraps Redis based caching with versioning controls: a bump of
// the version key orphans every cached listing at once.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache instantiates the cache helper.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Version returns the current listing version.
func (c *RedisCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

// GetList returns a listing cached under version when present.
func (c *RedisCache) GetList(ctx context.Context, version int64, filter Filter) (*ListResult, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	payload, err := c.client.Get(ctx, listKey(version, filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var result ListResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

// SetList stores a listing under version. A version older than the current
// one leaves an orphaned entry that expires with the TTL.
func (c *RedisCache) SetList(ctx context.Context, version int64, filter Filter, result *ListResult) error {
	if c == nil || c.client == nil || result == nil {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listKey(version, filter), payload, c.ttl).Err()
}

// Invalidate bumps the cache version.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func listKey(version int64, filter Filter) string {
	return fmt.Sprintf("events:list:%d:%s", version, filterKey(filter))
}

func filterKey(f Filter) string {
	return strings.Join([]string{
		string(f.Status),
		f.Category,
		strconv.FormatInt(f.OrganizerID, 10),
		strconv.Itoa(f.Page),
		strconv.Itoa(f.PerPage),
	}, "|")
}

var _ Cache = (*RedisCache)(nil)
