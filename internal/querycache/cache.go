// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package querycache is a read-through cache in front of the backend
// client. Responses are keyed by their request parameters, expire after a
// TTL, and concurrent identical misses share one backend call.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// Backend is the subset of *paperclient.Client the cache wraps.
type Backend interface {
	ListRandomPapers(ctx context.Context, count int) []types.Paper
	GetPaperByID(ctx context.Context, id string) types.PaperLookup
	Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error)
}

// Cache wraps a Backend with the same method set.
type Cache struct {
	backend Backend
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	log     *zap.Logger

	mu      sync.Mutex
	flights map[string]*flight
	seq     uint64
}

// flight is one shared backend call and the callers waiting on it.
type flight struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New returns a Cache over backend. A non-positive ttl disables caching
// but keeps duplicate-call suppression.
func New(backend Backend, store Store, ttl time.Duration, log *zap.Logger) *Cache {
	if store == nil || ttl <= 0 {
		store = NopStore{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		backend: backend,
		store:   store,
		ttl:     ttl,
		log:     log.Named("querycache"),
		flights: make(map[string]*flight),
	}
}

// ListRandomPapers serves the listing from cache. Empty listings are not
// cached because the client also reports transport failures as empty.
func (c *Cache) ListRandomPapers(ctx context.Context, count int) []types.Paper {
	key := "list:" + strconv.Itoa(count)

	var papers []types.Paper
	if c.lookup(ctx, key, &papers) {
		return papers
	}

	v, _ := c.shared(ctx, key, func(fctx context.Context) (any, error) {
		papers := c.backend.ListRandomPapers(fctx, count)
		if len(papers) > 0 {
			c.save(fctx, key, papers)
		}
		return papers, nil
	})
	if papers, ok := v.([]types.Paper); ok {
		return papers
	}
	return []types.Paper{}
}

// GetPaperByID serves a lookup from cache. Only found papers are cached.
func (c *Cache) GetPaperByID(ctx context.Context, id string) types.PaperLookup {
	key := "paper:" + id

	var p types.Paper
	if c.lookup(ctx, key, &p) {
		return types.Found(p)
	}

	v, err := c.shared(ctx, key, func(fctx context.Context) (any, error) {
		res := c.backend.GetPaperByID(fctx, id)
		if res.OK() {
			c.save(fctx, key, res.Paper)
		}
		return res, nil
	})
	if err != nil {
		return types.TransportError(err.Error())
	}
	return v.(types.PaperLookup)
}

// Analyze serves an analysis from cache. Failed analyses are not cached.
func (c *Cache) Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResult, error) {
	key, err := analyzeKey(req)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	var res types.AnalysisResult
	if c.lookup(ctx, key, &res) {
		return res, nil
	}

	v, err := c.shared(ctx, key, func(fctx context.Context) (any, error) {
		res, err := c.backend.Analyze(fctx, req)
		if err != nil {
			return nil, err
		}
		c.save(fctx, key, res)
		return res, nil
	})
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return v.(types.AnalysisResult), nil
}

// Close releases the underlying store.
func (c *Cache) Close() error { return c.store.Close() }

// shared runs fetch once per key across concurrent callers. A caller whose
// context ends stops waiting; the fetch itself is cancelled only when the
// last waiting caller has gone.
func (c *Cache) shared(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	f, ok := c.flights[key]
	if !ok {
		c.seq++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{id: key + "#" + strconv.FormatUint(c.seq, 10), ctx: fctx, cancel: cancel}
		c.flights[key] = f
	}
	f.waiters++
	ch := c.group.DoChan(f.id, func() (any, error) {
		defer c.finish(key, f)
		return fetch(f.ctx)
	})
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		c.leave(key, f)
		return nil, ctx.Err()
	case r := <-ch:
		c.leave(key, f)
		if r.Shared {
			c.log.Debug("shared in-flight request", zap.String("key", key))
		}
		return r.Val, r.Err
	}
}

// leave drops one waiter from f. The last waiter to leave a flight that is
// still running cancels it.
func (c *Cache) leave(key string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if c.flights[key] == f {
		delete(c.flights, key)
		c.log.Debug("cancelling abandoned request", zap.String("key", key))
	}
	f.cancel()
}

// finish retires f once its fetch returns so later callers start afresh.
func (c *Cache) finish(key string, f *flight) {
	c.mu.Lock()
	if c.flights[key] == f {
		delete(c.flights, key)
	}
	c.mu.Unlock()
	f.cancel()
}

func (c *Cache) lookup(ctx context.Context, key string, out any) bool {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// analyzeKey hashes the request so long passages make fixed-size keys.
func analyzeKey(req types.AnalysisRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding analysis cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return "analyze:" + hex.EncodeToString(sum[:]), nil
}
