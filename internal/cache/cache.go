// Package cache keeps finished analysis reports in memory so identical
// requests are not recomputed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/model"
)

const (
	// DefaultTTL applies when New is given a non-positive TTL.
	DefaultTTL      = 15 * time.Minute
	cleanupInterval = 5 * time.Minute
)

type entry struct {
	expiry time.Time
	report *analysis.Report
}

// ReportCache is a thread-safe TTL cache of analysis reports.
type ReportCache struct {
	now       func() time.Time
	entries   map[string]entry
	stopCh    chan struct{}
	group     singleflight.Group
	ttl       time.Duration
	closeOnce sync.Once
	mu        sync.RWMutex
}

// New creates a cache with the given TTL and starts its cleanup goroutine.
func New(ttl time.Duration) *ReportCache {
	return newWithClock(ttl, cleanupInterval, time.Now)
}

func newWithClock(ttl, interval time.Duration, now func() time.Time) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &ReportCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     now,
		stopCh:  make(chan struct{}),
	}

	go c.cleanup(interval)

	return c
}

// Get returns a report if it exists and hasn't expired.
func (c *ReportCache) Get(key string) (*analysis.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || c.now().After(e.expiry) {
		return nil, false
	}
	return e.report, true
}

// Set stores a report. Error fallback reports are never stored.
func (c *ReportCache) Set(key string, report *analysis.Report) {
	if report == nil || report.Metadata.DataQuality == analysis.QualityError {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		report: report,
		expiry: c.now().Add(c.ttl),
	}
}

// GetOrCompute returns the cached report for key, or runs compute and caches
// its result. Concurrent callers for the same key share one computation.
// The boolean reports whether the value came from the cache.
func (c *ReportCache) GetOrCompute(key string, compute func() *analysis.Report) (*analysis.Report, bool) {
	if report, ok := c.Get(key); ok {
		return report, true
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if report, ok := c.Get(key); ok {
			return report, nil
		}
		report := compute()
		c.Set(key, report)
		return report, nil
	})

	report, _ := v.(*analysis.Report)
	return report, false
}

// Len returns the number of stored entries, expired ones included.
func (c *ReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *ReportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *ReportCache) Close() {
	c.closeOnce.Do(func() { close(c.stopCh) })
}

func (c *ReportCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.purge()
		}
	}
}

func (c *ReportCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiry) {
			delete(c.entries, key)
		}
	}
}

// Key derives a content hash from the analysis inputs. Months are visited in
// calendar order so map iteration order does not affect the key; the
// reference date takes part at day granularity, so callers should pass the
// same calendar day they analyze with.
func Key(transactions model.MonthlyTransactions, income model.MonthlyIncome, reference time.Time) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "ref:%s\n", reference.Format(time.DateOnly))

	for _, month := range model.Months {
		for _, txn := range transactions[month] {
			_, _ = fmt.Fprintf(h, "t|%s|%s|%q|%v|%s|%d\n",
				month, txn.ID, txn.Description, txn.Amount, txn.Date, txn.Year)
		}
		for _, rec := range income[month] {
			_, _ = fmt.Fprintf(h, "i|%s|%s|%q|%v|%s|%d\n",
				month, rec.ID, rec.Source, rec.Amount, rec.Date, rec.Year)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
