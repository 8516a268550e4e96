package epv

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Bwillia13x/epv-pm/internal/domain"
)

// Snapshot bundles the full input set of an EPV calculation. Its hash is
// the cache key, so two snapshots differing in any field never collide:
// repeated calls with changed data always recompute instead of silently
// returning a stale result.
type Snapshot struct {
	Symbol       string
	Income       []domain.IncomeStatement
	Balance      []domain.BalanceSheet
	CashFlow     []domain.CashFlowStatement
	Ratios       []domain.FinancialRatios
	CurrentPrice *float64
}

// Key returns the deterministic cache key for the snapshot: the hex
// sha256 of its msgpack encoding.
func (s Snapshot) Key() (string, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:16]), nil
}

type cacheEntry struct {
	symbol    string
	result    *domain.EPVResult
	expiresAt time.Time
}

// SnapshotCache memoizes EPV results keyed by input snapshot hash. It is
// owned by the caller, safe for concurrent use, and expires entries
// after the configured TTL. A zero TTL disables expiry.
type SnapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewSnapshotCache creates a snapshot cache with the given TTL.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached result for a key, if present and unexpired.
func (sc *SnapshotCache) Get(key string) (*domain.EPVResult, bool) {
	sc.mu.RLock()
	entry, ok := sc.entries[key]
	sc.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		sc.mu.Lock()
		delete(sc.entries, key)
		sc.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

// Set stores a result under a key.
func (sc *SnapshotCache) Set(key, symbol string, result *domain.EPVResult) {
	var expiresAt time.Time
	if sc.ttl > 0 {
		expiresAt = time.Now().Add(sc.ttl)
	}

	sc.mu.Lock()
	sc.entries[key] = cacheEntry{symbol: symbol, result: result, expiresAt: expiresAt}
	sc.mu.Unlock()
}

// Invalidate removes all cached results for a symbol.
func (sc *SnapshotCache) Invalidate(symbol string) {
	sc.mu.Lock()
	for key, entry := range sc.entries {
		if entry.symbol == symbol {
			delete(sc.entries, key)
		}
	}
	sc.mu.Unlock()
}

// Purge removes every cached entry.
func (sc *SnapshotCache) Purge() {
	sc.mu.Lock()
	sc.entries = make(map[string]cacheEntry)
	sc.mu.Unlock()
}

// Len reports the number of cached entries, expired or not.
func (sc *SnapshotCache) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.entries)
}

// CalculateEPVCached computes EPV through a caller-owned snapshot cache.
// Identical input snapshots hit the cache; any change to the inputs
// produces a different key and a fresh computation.
func (c *Calculator) CalculateEPVCached(
	cache *SnapshotCache,
	symbol string,
	income []domain.IncomeStatement,
	balance []domain.BalanceSheet,
	cashflow []domain.CashFlowStatement,
	ratios []domain.FinancialRatios,
	currentPrice *float64,
) (*domain.EPVResult, error) {
	snapshot := Snapshot{
		Symbol:       symbol,
		Income:       income,
		Balance:      balance,
		CashFlow:     cashflow,
		Ratios:       ratios,
		CurrentPrice: currentPrice,
	}

	key, err := snapshot.Key()
	if err != nil {
		// Encoding failures should not block valuation; compute fresh.
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Snapshot encoding failed, bypassing cache")
		return c.CalculateEPV(symbol, income, balance, cashflow, ratios, currentPrice)
	}

	if result, ok := cache.Get(key); ok {
		c.log.Debug().Str("symbol", symbol).Str("key", key[:8]).Msg("EPV cache hit")
		return result, nil
	}

	result, err := c.CalculateEPV(symbol, income, balance, cashflow, ratios, currentPrice)
	if err != nil {
		return nil, err
	}
	cache.Set(key, symbol, result)
	return result, nil
}
