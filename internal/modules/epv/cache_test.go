package epv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bwillia13x/epv-pm/internal/domain"
)

func TestSnapshotKey_Deterministic(t *testing.T) {
	income := incomeHistory("KEY", map[int]float64{2022: 900_000, 2023: 1_000_000}, 100_000)

	a := Snapshot{Symbol: "KEY", Income: income}
	b := Snapshot{Symbol: "KEY", Income: income}

	keyA, err := a.Key()
	require.NoError(t, err)
	keyB, err := b.Key()
	require.NoError(t, err)

	assert.Equal(t, keyA, keyB, "identical snapshots hash identically")
	assert.Len(t, keyA, 32)
}

func TestSnapshotKey_SensitiveToInputs(t *testing.T) {
	income := incomeHistory("KEY", map[int]float64{2023: 1_000_000}, 100_000)
	base := Snapshot{Symbol: "KEY", Income: income}
	baseKey, err := base.Key()
	require.NoError(t, err)

	changedIncome := incomeHistory("KEY", map[int]float64{2023: 1_000_001}, 100_000)
	changed := Snapshot{Symbol: "KEY", Income: changedIncome}
	changedKey, err := changed.Key()
	require.NoError(t, err)
	assert.NotEqual(t, baseKey, changedKey, "any input change must change the key")

	priced := Snapshot{Symbol: "KEY", Income: income, CurrentPrice: domain.Float(50)}
	pricedKey, err := priced.Key()
	require.NoError(t, err)
	assert.NotEqual(t, baseKey, pricedKey)
}

func TestSnapshotCache_GetSet(t *testing.T) {
	cache := NewSnapshotCache(time.Hour)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	result := &domain.EPVResult{Symbol: "AAA", EPVPerShare: 12.5}
	cache.Set("k1", "AAA", result)

	got, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, result, got)
	assert.Equal(t, 1, cache.Len())
}

func TestSnapshotCache_Expiry(t *testing.T) {
	cache := NewSnapshotCache(time.Millisecond)
	cache.Set("k1", "AAA", &domain.EPVResult{Symbol: "AAA"})

	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get("k1")
	assert.False(t, ok, "entries past TTL must miss")
}

func TestSnapshotCache_ZeroTTLNeverExpires(t *testing.T) {
	cache := NewSnapshotCache(0)
	cache.Set("k1", "AAA", &domain.EPVResult{Symbol: "AAA"})

	time.Sleep(2 * time.Millisecond)

	_, ok := cache.Get("k1")
	assert.True(t, ok)
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	cache := NewSnapshotCache(time.Hour)
	cache.Set("k1", "AAA", &domain.EPVResult{Symbol: "AAA"})
	cache.Set("k2", "AAA", &domain.EPVResult{Symbol: "AAA"})
	cache.Set("k3", "BBB", &domain.EPVResult{Symbol: "BBB"})

	cache.Invalidate("AAA")

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("k3")
	assert.True(t, ok, "other symbols survive invalidation")
}

func TestSnapshotCache_Purge(t *testing.T) {
	cache := NewSnapshotCache(time.Hour)
	cache.Set("k1", "AAA", &domain.EPVResult{Symbol: "AAA"})
	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func TestCalculateEPVCached_HitAndStaleness(t *testing.T) {
	calc := newTestCalculator()
	cache := NewSnapshotCache(time.Hour)

	income := incomeHistory("CCH", map[int]float64{2021: 800_000, 2022: 900_000, 2023: 1_000_000}, 100_000)

	first, err := calc.CalculateEPVCached(cache, "CCH", income, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := calc.CalculateEPVCached(cache, "CCH", income, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Same(t, first, second, "identical inputs must hit the cache")

	// A changed statement must bypass the old entry, not serve it.
	updated := incomeHistory("CCH", map[int]float64{2021: 800_000, 2022: 900_000, 2023: 1_200_000}, 100_000)
	third, err := calc.CalculateEPVCached(cache, "CCH", updated, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Greater(t, third.NormalizedEarnings, first.NormalizedEarnings)
	assert.Equal(t, 2, cache.Len(), "both snapshots cached under distinct keys")
}
