package db

import (
	"context"
	"time"

	"Gin_postgres_redis_donations/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultQuotaLimit = 3

type Repo struct {
	DB       *gorm.DB
	Counters *CounterStore
	Quota    *QuotaGuard

	now func() time.Time
}

type repoOptions struct {
	now   func() time.Time
	loc   *time.Location
	limit int
}

type Option func(*repoOptions)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) { o.now = now }
}

// WithLocation sets the reference zone for monthly quotas.
func WithLocation(loc *time.Location) Option {
	return func(o *repoOptions) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func WithQuotaLimit(n int) Option {
	return func(o *repoOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

func NewRepo(db *gorm.DB, opts ...Option) *Repo {
	o := repoOptions{now: time.Now, loc: time.UTC, limit: DefaultQuotaLimit}
	for _, fn := range opts {
		fn(&o)
	}
	// 统一存 UTC，SQLite 按文本比较时间
	now := func() time.Time { return o.now().UTC() }
	return &Repo{
		DB:       db,
		Counters: NewCounterStore(db, now),
		Quota:    &QuotaGuard{db: db, now: now, loc: o.loc, limit: o.limit},
		now:      now,
	}
}

// lockItem reads the item row FOR UPDATE. Every transition that touches an
// item or its requests takes this lock first.
func lockItem(tx *gorm.DB, id string) (*models.Item, error) {
	var it models.Item
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&it, "id = ?", id).Error; err != nil {
		return nil, storeErr("item", err)
	}
	return &it, nil
}

// validID guards uuid columns; Postgres rejects malformed input with a
// syntax error rather than an empty result.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// inTx runs fn in one transaction and applies the collected counter deltas
// after commit, on the outer handle.
func (r *Repo) inTx(ctx context.Context, fn func(tx *gorm.DB) ([]counterDelta, error)) error {
	var deltas []counterDelta
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := fn(tx)
		if err != nil {
			return err
		}
		deltas = d
		return nil
	})
	if err != nil {
		return storeErr("transaction", err)
	}
	r.Counters.apply(ctx, deltas)
	return nil
}
