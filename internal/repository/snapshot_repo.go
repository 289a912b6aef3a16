package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/holdings-dashboard/internal/cache"
	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/epeers/holdings-dashboard/internal/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// sourceTimeout bounds a shared source read, which outlives any one caller.
const sourceTimeout = 30 * time.Second

// SharedCache is a cache shared between processes (L2), such as cache.RedisCache.
type SharedCache interface {
	Get(ctx context.Context, table string) ([]models.Record, time.Time, bool, error)
	Set(ctx context.Context, table string, records []models.Record, fetchedAt time.Time, ttl time.Duration) error
	Invalidate(ctx context.Context, table string) error
}

// SnapshotRepository reads whole tables from a TableSource, keeping each
// table for at most the caller's freshness window.
type SnapshotRepository struct {
	source TableSource
	l1     *cache.MemoryCache
	l2     SharedCache // nil when no shared cache is configured
	group  singleflight.Group
	now    func() time.Time
}

// NewSnapshotRepository creates a new SnapshotRepository. shared may be nil.
func NewSnapshotRepository(source TableSource, l1 *cache.MemoryCache, shared SharedCache) *SnapshotRepository {
	if l1 == nil {
		l1 = cache.NewMemoryCache()
	}
	return &SnapshotRepository{
		source: source,
		l1:     l1,
		l2:     shared,
		now:    time.Now,
	}
}

// ReadRows returns every record of table, no older than freshness.
// A freshness of zero or less always reads from the source.
// Failures to reach the source are returned as *UnavailableError.
func (r *SnapshotRepository) ReadRows(ctx context.Context, table string, freshness time.Duration) ([]models.Record, error) {
	if freshness > 0 {
		if records, ok := r.l1.Get(table, freshness); ok {
			log.Debugf("L1 hit for table %s", table)
			return records, nil
		}
		if records, ok := r.readShared(ctx, table, freshness); ok {
			return records, nil
		}
	}

	// Concurrent misses for the same table share one source read, so it must
	// not be cancelled with the request that happened to start it.
	v, err, _ := r.group.Do(table, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sourceTimeout)
		defer cancel()
		return r.fetch(fetchCtx, table, freshness)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Record), nil
}

func (r *SnapshotRepository) readShared(ctx context.Context, table string, freshness time.Duration) ([]models.Record, bool) {
	if r.l2 == nil {
		return nil, false
	}
	records, fetchedAt, ok, err := r.l2.Get(ctx, table)
	if err != nil {
		log.Warnf("Shared cache read failed for table %s: %v", table, err)
		return nil, false
	}
	if !ok || r.now().Sub(fetchedAt) >= freshness {
		return nil, false
	}
	log.Debugf("L2 hit for table %s", table)
	r.l1.SetAt(table, records, fetchedAt)
	return records, true
}

func (r *SnapshotRepository) fetch(ctx context.Context, table string, freshness time.Duration) ([]models.Record, error) {
	fetchedAt := r.now()
	records, err := r.source.ReadTable(ctx, table)
	if err != nil {
		return nil, &UnavailableError{Table: table, Cause: err}
	}
	log.Debugf("Read %d rows from table %s", len(records), table)

	r.l1.SetAt(table, records, fetchedAt)
	if r.l2 != nil && freshness > 0 {
		if err := r.l2.Set(ctx, table, records, fetchedAt, freshness); err != nil {
			log.Warnf("Shared cache write failed for table %s: %v", table, err)
		}
	}
	return records, nil
}

// ListAvailableDates returns the distinct dates in table's date column, newest first.
// Cells that are not dates are ignored.
func (r *SnapshotRepository) ListAvailableDates(ctx context.Context, table string, freshness time.Duration) ([]time.Time, error) {
	records, err := r.ReadRows(ctx, table, freshness)
	if err != nil {
		return nil, err
	}
	if err := columnsOf(records).require(table, "date"); err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(records))
	for _, rec := range records {
		d, err := models.ParseDate(rec["date"])
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return util.DistinctDatesDesc(dates), nil
}

// Invalidate drops the cached copies of the given tables so the next read
// goes to the source.
func (r *SnapshotRepository) Invalidate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		r.l1.Invalidate(table)
		if r.l2 == nil {
			continue
		}
		if err := r.l2.Invalidate(ctx, table); err != nil {
			return fmt.Errorf("failed to invalidate table %s: %w", table, err)
		}
	}
	return nil
}
