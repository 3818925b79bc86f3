package db

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"Gin_postgres_redis_donations/metrics"
	"Gin_postgres_redis_donations/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterStore keeps the advisory platform aggregates in a single row.
// Adjustments are commutative increments, never read-modify-write.
type CounterStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCounterStore(db *gorm.DB, now func() time.Time) *CounterStore {
	return &CounterStore{db: db, now: now}
}

type counterDelta struct {
	counter models.Counter
	delta   int64
}

func validCounter(c models.Counter) bool {
	switch c {
	case models.CounterItemsAvailable, models.CounterItemsDonated, models.CounterTotalDonors:
		return true
	}
	return false
}

// Adjust adds delta to one counter. Failures are logged and dropped.
func (s *CounterStore) Adjust(ctx context.Context, counter models.Counter, delta int64) {
	if delta == 0 {
		return
	}
	if !validCounter(counter) {
		slog.Error("counter adjust rejected", "counter", counter, "delta", delta)
		metrics.CounterAdjustFailures.WithLabelValues(string(counter)).Inc()
		return
	}
	col := string(counter)
	now := s.now()

	row := models.GlobalStats{ID: models.GlobalStatsID, UpdatedAt: now}
	switch counter {
	case models.CounterItemsAvailable:
		row.ItemsAvailable = delta
	case models.CounterItemsDonated:
		row.ItemsDonated = delta
	case models.CounterTotalDonors:
		row.TotalDonors = delta
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			col:          gorm.Expr(models.CounterTable+"."+col+" + ?", delta),
			"updated_at": now,
		}),
	}).Create(&row).Error
	if err != nil {
		slog.Error("counter adjust failed", "counter", counter, "delta", delta, "err", err)
		metrics.CounterAdjustFailures.WithLabelValues(col).Inc()
	}
}

func (s *CounterStore) apply(ctx context.Context, deltas []counterDelta) {
	for _, d := range deltas {
		s.Adjust(ctx, d.counter, d.delta)
	}
}

// Read returns the current aggregate. A missing row reads as zeros.
func (s *CounterStore) Read(ctx context.Context) (models.GlobalStats, error) {
	var gs models.GlobalStats
	err := s.db.WithContext(ctx).First(&gs, "id = ?", models.GlobalStatsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.GlobalStats{ID: models.GlobalStatsID}, nil
	}
	if err != nil {
		return gs, storeErr("read counters", err)
	}
	return gs, nil
}

func (s *CounterStore) Stats(ctx context.Context) (models.PlatformStats, error) {
	gs, err := s.Read(ctx)
	if err != nil {
		return models.PlatformStats{}, err
	}
	return models.PlatformStats{
		TotalItems:     gs.ItemsAvailable + gs.ItemsDonated,
		ItemsDonated:   gs.ItemsDonated,
		ItemsAvailable: gs.ItemsAvailable,
		TotalDonors:    gs.TotalDonors,
		FamiliesHelped: int64(math.Floor(float64(gs.ItemsDonated) * 0.7)),
		Cities:         1,
	}, nil
}

// Reconcile rebuilds all counters from the item table and overwrites the row.
func (s *CounterStore) Reconcile(ctx context.Context) (models.GlobalStats, error) {
	var rows []struct {
		Status models.ItemStatus
		N      int64
	}
	dbc := s.db.WithContext(ctx)
	if err := dbc.Model(&models.Item{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return models.GlobalStats{}, storeErr("reconcile counters", err)
	}
	var donors int64
	if err := dbc.Unscoped().Model(&models.Item{}).Distinct("donor_id").Count(&donors).Error; err != nil {
		return models.GlobalStats{}, storeErr("reconcile counters", err)
	}

	gs := models.GlobalStats{ID: models.GlobalStatsID, TotalDonors: donors, UpdatedAt: s.now()}
	for _, row := range rows {
		switch row.Status {
		case models.ItemAvailable:
			gs.ItemsAvailable = row.N
		case models.ItemDonated:
			gs.ItemsDonated = row.N
		}
	}

	err := dbc.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"items_available": gs.ItemsAvailable,
			"items_donated":   gs.ItemsDonated,
			"total_donors":    gs.TotalDonors,
			"updated_at":      gs.UpdatedAt,
		}),
	}).Create(&gs).Error
	if err != nil {
		return models.GlobalStats{}, storeErr("reconcile counters", err)
	}
	slog.Info("counters reconciled",
		"available", gs.ItemsAvailable, "donated", gs.ItemsDonated, "donors", gs.TotalDonors)
	return gs, nil
}

// statusDeltas is the counter effect of an item moving from one status to
// another. An empty to means the item was removed.
func statusDeltas(from, to models.ItemStatus) []counterDelta {
	if from == to {
		return nil
	}
	var out []counterDelta
	switch from {
	case models.ItemAvailable:
		out = append(out, counterDelta{models.CounterItemsAvailable, -1})
	case models.ItemDonated:
		if to == "" {
			out = append(out, counterDelta{models.CounterItemsDonated, -1})
		}
	}
	switch to {
	case models.ItemAvailable:
		out = append(out, counterDelta{models.CounterItemsAvailable, +1})
	case models.ItemDonated:
		out = append(out, counterDelta{models.CounterItemsDonated, +1})
	}
	return out
}
