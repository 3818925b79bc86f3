package db

import (
	"context"
	"log/slog"

	"Gin_postgres_redis_donations/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

func (r *Repo) CreateItem(ctx context.Context, donor models.Actor, in models.ItemInput) (*models.Item, error) {
	if donor.ID == "" {
		return nil, forbidden("authentication required")
	}
	in = normalizeInput(in)
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	now := r.now()
	it := &models.Item{
		ID:          uuid.NewString(),
		DonorID:     donor.ID,
		DonorName:   donor.DisplayName(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Condition:   in.Condition,
		Images:      models.StringList(in.Images),
		Status:      models.ItemAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Size != "" {
		size := in.Size
		it.Size = &size
	}
	if err := r.DB.WithContext(ctx).Create(it).Error; err != nil {
		return nil, storeErr("create item", err)
	}

	r.Counters.Adjust(ctx, models.CounterItemsAvailable, +1)
	// 首次发布物品的捐赠者计入 total_donors（含已删除的物品）
	var n int64
	if err := r.DB.WithContext(ctx).Unscoped().Model(&models.Item{}).
		Where("donor_id = ?", donor.ID).
		Count(&n).Error; err != nil {
		slog.Warn("donor item count failed", "donor", donor.ID, "err", err)
	} else if n == 1 {
		r.Counters.Adjust(ctx, models.CounterTotalDonors, +1)
	}
	return it, nil
}

func (r *Repo) GetItem(ctx context.Context, id string) (*models.Item, error) {
	if !validID(id) {
		return nil, notFound("item")
	}
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, storeErr("item", err)
	}
	return &it, nil
}

// ListItems returns items newest first. Filters are exact matches.
func (r *Repo) ListItems(ctx context.Context, f models.ItemFilter) ([]models.Item, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	q := r.DB.WithContext(ctx).Model(&models.Item{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Condition != "" {
		q = q.Where("condition = ?", f.Condition)
	}
	if f.DonorID != "" {
		q = q.Where("donor_id = ?", f.DonorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	items := []models.Item{}
	if err := q.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, storeErr("list items", err)
	}
	return items, nil
}

// UpdateItem applies the descriptive fields present in p. Status is never
// touched here.
func (r *Repo) UpdateItem(ctx context.Context, id, callerID string, p models.ItemPatch) (*models.Item, error) {
	if !validID(id) {
		return nil, notFound("item")
	}
	p = normalizePatch(p)
	if err := validateItemPatch(p); err != nil {
		return nil, err
	}

	var out *models.Item
	err := r.inTx(ctx, func(tx *gorm.DB) ([]counterDelta, error) {
		it, err := lockItem(tx, id)
		if err != nil {
			return nil, err
		}
		if it.DonorID != callerID {
			return nil, forbidden("only the donor can edit this item")
		}

		updates := map[string]any{}
		if p.Name != nil {
			updates["name"] = *p.Name
		}
		if p.Description != nil {
			updates["description"] = *p.Description
		}
		if p.Category != nil {
			updates["category"] = *p.Category
		}
		if p.Condition != nil {
			updates["condition"] = *p.Condition
		}
		if p.Size != nil {
			if *p.Size == "" {
				updates["size"] = nil
			} else {
				updates["size"] = *p.Size
			}
		}
		if p.Images != nil {
			updates["images"] = models.StringList(*p.Images)
		}
		if len(updates) > 0 {
			updates["updated_at"] = r.now()
			if err := tx.Model(&models.Item{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return nil, err
			}
		}

		var fresh models.Item
		if err := tx.First(&fresh, "id = ?", id).Error; err != nil {
			return nil, err
		}
		out = &fresh
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteItem soft-deletes an item the caller owns. Items with pending or
// approved requests cannot be deleted; terminal requests keep their item
// snapshot. The row stays so the donor is not counted again on a new item.
func (r *Repo) DeleteItem(ctx context.Context, id, callerID string) error {
	if !validID(id) {
		return notFound("item")
	}
	return r.inTx(ctx, func(tx *gorm.DB) ([]counterDelta, error) {
		it, err := lockItem(tx, id)
		if err != nil {
			return nil, err
		}
		if it.DonorID != callerID {
			return nil, forbidden("only the donor can delete this item")
		}
		var active int64
		if err := tx.Model(&models.Request{}).
			Where("item_id = ? AND status IN ?", id, models.ActiveStatuses).
			Count(&active).Error; err != nil {
			return nil, err
		}
		if active > 0 {
			return nil, ErrItemHasActiveRequests
		}
		if err := tx.Delete(&models.Item{}, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return statusDeltas(it.Status, ""), nil
	})
}

// setItemStatus moves a locked item to status and returns the counter deltas
// for inTx to apply after commit. Only request transitions call it; they
// hold the item lock and keep the reserved rule.
func (r *Repo) setItemStatus(tx *gorm.DB, it *models.Item, to models.ItemStatus) ([]counterDelta, error) {
	if it.Status == to {
		return nil, nil
	}
	now := r.now()
	if err := tx.Model(&models.Item{}).Where("id = ?", it.ID).
		Updates(map[string]any{"status": to, "updated_at": now}).Error; err != nil {
		return nil, err
	}
	d := statusDeltas(it.Status, to)
	it.Status = to
	it.UpdatedAt = now
	return d, nil
}

func (r *Repo) ItemStats(ctx context.Context) (models.PlatformStats, error) {
	return r.Counters.Stats(ctx)
}

// ListItemRequests is the donor's view of every request on one item.
func (r *Repo) ListItemRequests(ctx context.Context, itemID, callerID string) ([]models.Request, error) {
	it, err := r.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.DonorID != callerID {
		return nil, forbidden("only the donor can list requests for this item")
	}
	reqs := []models.Request{}
	if err := r.DB.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, storeErr("list item requests", err)
	}
	return reqs, nil
}
