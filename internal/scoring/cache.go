package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "riskserve:score:"

// Cache memoizes interpreted risk results in Redis. Identical feature vectors
// scored against the same model version and blend weight always produce the
// same result, so a hit skips the whole scoring pipeline. The cache is best
// effort: Redis failures are logged at debug and scoring proceeds.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache returns nil when no client is configured; a nil Cache is a no-op.
func NewCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// CacheKey digests one scaled feature row together with the model version and
// blend weight.
func CacheKey(modelVersion string, alpha float64, row []float64) string {
	h := sha256.New()
	h.Write([]byte(modelVersion))
	h.Write([]byte{0})

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(alpha))
	h.Write(buf[:])
	for _, v := range row {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(ctx context.Context, key string) (Prediction, bool) {
	if c == nil {
		return Prediction{}, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "score cache get failed", "error", err)
		}
		return Prediction{}, false
	}
	var pred Prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		c.logger.DebugContext(ctx, "score cache entry corrupt", "error", err)
		return Prediction{}, false
	}
	return pred, true
}

func (c *Cache) Put(ctx context.Context, key string, pred Prediction) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(pred)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "score cache put failed", "error", err)
	}
}
