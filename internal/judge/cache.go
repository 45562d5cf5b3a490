package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// FallbackScore is returned when the external judge fails for any reason. A fixed
// constant keeps fallback behavior deterministic and testable; treating failure as
// a mild penalty means one unreachable call never aborts a batch.
const FallbackScore = -0.5

type CacheConfig struct {
	// MinInterval is the minimum delay between live judge invocations. It is not
	// applied when a result is served from cache.
	MinInterval time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{MinInterval: 200 * time.Millisecond}
}

// Cache memoizes judge results by content hash on top of a durable append-only
// store. Repeated judging of the same (question, answer) pair is free and
// idempotent: the stored judgement is returned unchanged without re-invoking the
// external judge.
type Cache struct {
	client Client
	store  Store
	cfg    CacheConfig

	mu    sync.RWMutex
	index map[string]Judgement

	keyMu sync.Mutex
	inFly map[string]*sync.Mutex

	throttleMu sync.Mutex
	lastCall   time.Time

	hits  int64
	calls int64
}

// NewCache replays the durable log into the in-memory index. Entries loaded first
// win: a key never gets overwritten by a later log line.
func NewCache(ctx context.Context, client Client, store Store, cfg CacheConfig) (*Cache, error) {
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay judgement log: %w", err)
	}
	index := make(map[string]Judgement, len(entries))
	for _, entry := range entries {
		if _, ok := index[entry.ID]; ok {
			continue
		}
		index[entry.ID] = entry
	}
	return &Cache{
		client: client,
		store:  store,
		cfg:    cfg,
		index:  index,
		inFly:  map[string]*sync.Mutex{},
	}, nil
}

// Judge returns the cached judgement for the pair, or invokes the external judge,
// persists the result and indexes it. Concurrent calls for distinct keys may run
// in parallel; concurrent calls for the same key collapse into one live call.
func (c *Cache) Judge(ctx context.Context, question, answer string) (Judgement, error) {
	id := ContentKey(question, answer)

	if cached, ok := c.lookup(id); ok {
		return cached, nil
	}

	lock := c.keyLock(id)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have judged the pair while we waited on the key lock.
	if cached, ok := c.lookup(id); ok {
		return cached, nil
	}

	c.throttle()
	score, err := c.client.Judge(ctx, question, answer)
	if err != nil {
		score = fallbackFor(err)
	}

	judgement := Judgement{
		ID:        id,
		Question:  question,
		Answer:    answer,
		Result:    score,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Model:     c.client.Model(),
	}
	if err := c.store.Append(ctx, judgement); err != nil {
		return Judgement{}, fmt.Errorf("persist judgement: %w", err)
	}

	c.mu.Lock()
	c.index[id] = judgement
	c.mu.Unlock()
	return judgement, nil
}

// Stats reports cache hits and live judge calls since startup.
func (c *Cache) Stats() (hits, liveCalls int64, indexed int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.calls, len(c.index)
}

func (c *Cache) lookup(id string) (Judgement, bool) {
	c.mu.RLock()
	cached, ok := c.index[id]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return cached, ok
}

func (c *Cache) keyLock(id string) *sync.Mutex {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	lock, ok := c.inFly[id]
	if !ok {
		lock = &sync.Mutex{}
		c.inFly[id] = lock
	}
	return lock
}

func (c *Cache) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if c.cfg.MinInterval > 0 {
		if wait := c.cfg.MinInterval - time.Since(c.lastCall); wait > 0 {
			time.Sleep(wait)
		}
	}
	c.lastCall = time.Now()
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func fallbackFor(err error) Score {
	reason, marshalErr := json.Marshal(map[string]string{
		"error":  "judge_failed",
		"detail": err.Error(),
	})
	if marshalErr != nil {
		reason = []byte(`{"error":"judge_failed"}`)
	}
	return Score{
		OverallScore: FallbackScore,
		Raw:          reason,
	}
}
