package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"shopsense-voice/internal/common/logger"
)

const (
	DefaultCachePrefix = "nlu:zs:"
	DefaultCacheTTL    = 10 * time.Minute
)

// Caching is a redis read-through cache in front of another backend. Cache
// failures are logged and bypassed; backend errors are never cached.
type Caching struct {
	next   Classifier
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCaching(next Classifier, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Caching {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Caching{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		prefix: DefaultCachePrefix,
		logger: log.With(map[string]interface{}{"component": "classifier_cache"}),
	}
}

// CacheKey is the redis key for text under the given label set.
func CacheKey(prefix, text string, labels []string) string {
	sum := sha256.Sum256([]byte(strings.Join(labels, "\x00")))
	return prefix + hex.EncodeToString(sum[:8]) + ":" + text
}

func (c *Caching) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	key := CacheKey(c.prefix, text, labels)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var res Result
		if jsonErr := json.Unmarshal([]byte(cached), &res); jsonErr == nil {
			return res, nil
		}
		c.logger.Warn("discarding corrupt cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("classifier cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	res, err := c.next.Classify(ctx, text, labels)
	if err != nil {
		return Result{}, err
	}

	data, _ := json.Marshal(res)
	if err := c.rdb.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		c.logger.Warn("classifier cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return res, nil
}
