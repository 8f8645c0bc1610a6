package cache

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/model"
)

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func report(quality string) *analysis.Report {
	return &analysis.Report{Metadata: analysis.Metadata{DataQuality: quality}}
}

func TestReportCache(t *testing.T) {
	t.Run("basic operations", func(t *testing.T) {
		cache := New(time.Minute)
		defer cache.Close()

		_, found := cache.Get("missing")
		assert.False(t, found)

		r := report(analysis.QualityGood)
		cache.Set("k", r)

		got, found := cache.Get("k")
		assert.True(t, found)
		assert.Same(t, r, got)
		assert.Equal(t, 1, cache.Len())

		cache.Clear()
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("expiration", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
		cache := newWithClock(time.Minute, time.Hour, clock.Now)
		defer cache.Close()

		cache.Set("k", report(analysis.QualityGood))
		clock.Advance(30 * time.Second)
		_, found := cache.Get("k")
		assert.True(t, found)

		clock.Advance(time.Minute)
		_, found = cache.Get("k")
		assert.False(t, found)

		cache.purge()
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("error reports are not stored", func(t *testing.T) {
		cache := New(time.Minute)
		defer cache.Close()

		cache.Set("k", report(analysis.QualityError))
		cache.Set("nil", nil)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		cache := New(0)
		assert.Equal(t, DefaultTTL, cache.ttl)
		cache.Close()
		assert.NotPanics(t, cache.Close)
	})
}

func TestGetOrCompute(t *testing.T) {
	cache := New(time.Minute)
	defer cache.Close()

	var calls atomic.Int32
	compute := func() *analysis.Report {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return report(analysis.QualityGood)
	}

	var wg sync.WaitGroup
	results := make([]*analysis.Report, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.GetOrCompute("shared", compute)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Same(t, results[0], r)
	}

	_, cached := cache.GetOrCompute("shared", compute)
	assert.True(t, cached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrCompute_ErrorReportRecomputed(t *testing.T) {
	cache := New(time.Minute)
	defer cache.Close()

	calls := 0
	compute := func() *analysis.Report {
		calls++
		return report(analysis.QualityError)
	}

	_, cached := cache.GetOrCompute("k", compute)
	assert.False(t, cached)
	_, cached = cache.GetOrCompute("k", compute)
	assert.False(t, cached)
	assert.Equal(t, 2, calls)
}

func TestKey(t *testing.T) {
	ref := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	txns := model.MonthlyTransactions{
		model.January:  {{Description: "Lidl", Amount: 20}},
		model.February: {{Description: "Uber", Amount: 9.5}},
	}
	income := model.MonthlyIncome{
		model.January: {{Source: "Salário", Amount: 1200}},
	}

	base := Key(txns, income, ref)
	assert.Len(t, base, 64)

	t.Run("stable", func(t *testing.T) {
		assert.Equal(t, base, Key(txns, income, ref))
	})

	t.Run("same reference day", func(t *testing.T) {
		assert.Equal(t, base, Key(txns, income, ref.Add(17*time.Hour)))
	})

	t.Run("different day in the reference month", func(t *testing.T) {
		assert.NotEqual(t, base, Key(txns, income, ref.AddDate(0, 0, 15)))
	})

	t.Run("different reference month", func(t *testing.T) {
		assert.NotEqual(t, base, Key(txns, income, ref.AddDate(0, 1, 0)))
	})

	t.Run("different amount", func(t *testing.T) {
		changed := model.MonthlyTransactions{
			model.January:  {{Description: "Lidl", Amount: 21}},
			model.February: {{Description: "Uber", Amount: 9.5}},
		}
		assert.NotEqual(t, base, Key(changed, income, ref))
	})

	t.Run("income counts", func(t *testing.T) {
		assert.NotEqual(t, base, Key(txns, nil, ref))
	})

	t.Run("NaN amounts hash", func(t *testing.T) {
		bad := model.MonthlyTransactions{model.January: {{Description: "x", Amount: math.NaN()}}}
		assert.Len(t, Key(bad, nil, ref), 64)
	})
}
