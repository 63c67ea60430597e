package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hy-sato/picket/pkg/domain/interfaces"
	"github.com/hy-sato/picket/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
)

// ResolverCache fronts an ImageSource with a bounded, time-limited cache
// keyed by resource code. Capacity eviction (LRU) and TTL expiry are both
// active; an entry past its TTL reads as a miss even before it is reaped.
// Concurrent Resolve calls for the same code are not deduplicated here: the
// per-batch dedup upstream already keeps one resolution per code per batch,
// and the LRU itself is safe under concurrent batches.
type ResolverCache struct {
	source interfaces.ImageSource
	lru    *expirable.LRU[model.ResourceCode, model.ImageSet]
}

// New wraps source with a cache holding at most capacity entries, each
// expiring ttl after insertion. A ttl of 0 disables time-based expiry.
func New(source interfaces.ImageSource, capacity int, ttl time.Duration) *ResolverCache {
	return &ResolverCache{
		source: source,
		lru:    expirable.NewLRU[model.ResourceCode, model.ImageSet](capacity, nil, ttl),
	}
}

// Resolve returns the cached image set for code, fetching and storing it on
// a miss. A fetch error is returned without inserting anything.
func (c *ResolverCache) Resolve(ctx context.Context, code model.ResourceCode) (model.ImageSet, error) {
	if set, ok := c.lru.Get(code); ok {
		ctxlog.From(ctx).Debug("image set cache hit", "code", code)
		return set, nil
	}

	set, err := c.source.FetchSet(ctx, code)
	if err != nil {
		return nil, err
	}

	c.lru.Add(code, set)
	ctxlog.From(ctx).Debug("image set cached",
		"code", code,
		"images", len(set),
		"cached_codes", c.lru.Len(),
	)
	return set, nil
}

// Len returns the number of physically present entries, expired or not.
// Diagnostic only.
func (c *ResolverCache) Len() int {
	return c.lru.Len()
}
