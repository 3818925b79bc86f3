package db

import (
	"context"
	"time"

	"Gin_postgres_redis_donations/models"

	"gorm.io/gorm"
)

// QuotaGuard caps how many pending, approved or collected requests a
// requester may open per calendar month in the platform's reference zone.
type QuotaGuard struct {
	db    *gorm.DB
	now   func() time.Time
	loc   *time.Location
	limit int
}

// MonthStart is the first instant of the current month in the reference zone.
func (q *QuotaGuard) MonthStart() time.Time {
	n := q.now().In(q.loc)
	return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, q.loc)
}

func (q *QuotaGuard) ActiveCountThisMonth(ctx context.Context, requesterID string) (int, error) {
	return q.count(q.db.WithContext(ctx), requesterID)
}

// count fetches the requester's active rows, then filters by month in
// memory. tx may be a transaction handle.
func (q *QuotaGuard) count(tx *gorm.DB, requesterID string) (int, error) {
	var created []time.Time
	if err := tx.Model(&models.Request{}).
		Where("requester_id = ? AND status IN ?", requesterID, models.QuotaStatuses).
		Pluck("created_at", &created).Error; err != nil {
		return 0, storeErr("quota", err)
	}
	start := q.MonthStart()
	n := 0
	for _, t := range created {
		if !t.Before(start) {
			n++
		}
	}
	return n, nil
}

func (q *QuotaGuard) Enforce(ctx context.Context, requesterID string) error {
	return q.enforce(q.db.WithContext(ctx), requesterID)
}

func (q *QuotaGuard) enforce(tx *gorm.DB, requesterID string) error {
	n, err := q.count(tx, requesterID)
	if err != nil {
		return err
	}
	if n >= q.limit {
		return ErrMonthlyQuota
	}
	return nil
}

func (q *QuotaGuard) Usage(ctx context.Context, requesterID string) (models.QuotaUsage, error) {
	n, err := q.ActiveCountThisMonth(ctx, requesterID)
	if err != nil {
		return models.QuotaUsage{}, err
	}
	rem := q.limit - n
	if rem < 0 {
		rem = 0
	}
	return models.QuotaUsage{Used: n, Total: q.limit, Remaining: rem}, nil
}
