package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const feedMetaKey = "feed_meta"

// feedMeta accumulates envelope metadata for feed responses.
type feedMeta struct {
	started  time.Time
	cacheHit *bool
}

// WithResponseMeta starts the clock for a feed response and makes cache
// reporting available to the handler.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(feedMetaKey, &feedMeta{started: time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the payload came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if meta := currentMeta(c); meta != nil {
		meta.cacheHit = &hit
	}
}

// ExtractMeta renders the metadata for the envelope. Processing time is taken
// here, right before the handler writes the body. Returns nil outside
// WithResponseMeta.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := currentMeta(c)
	if meta == nil {
		return nil
	}
	out := map[string]interface{}{
		"processing_time_ms": time.Since(meta.started).Milliseconds(),
	}
	if meta.cacheHit != nil {
		out["cache_hit"] = *meta.cacheHit
	}
	return out
}

func currentMeta(c *gin.Context) *feedMeta {
	if c == nil {
		return nil
	}
	value, ok := c.Get(feedMetaKey)
	if !ok {
		return nil
	}
	meta, _ := value.(*feedMeta)
	return meta
}
