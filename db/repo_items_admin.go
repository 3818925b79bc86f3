// db/repo_items_admin.go
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_donations/models"

	"gorm.io/gorm"
)

type AdminItemRow struct {
	// Item fields
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	DonorID   string            `json:"donorId"`
	DonorName string            `json:"donorName"`
	Category  models.Category   `json:"category"`
	Status    models.ItemStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`

	ActiveRequests int64 `json:"activeRequests"`

	// approved/collected request, at most one per item (nullable)
	ClaimRequestID     *string `json:"claimRequestId,omitempty"`
	ClaimRequesterID   *string `json:"claimRequesterId,omitempty"`
	ClaimRequesterName *string `json:"claimRequesterName,omitempty"`
	ClaimStatus        *string `json:"claimStatus,omitempty"`
}

type AdminItemsQuery struct {
	Q      string // 模糊搜索：name/donor_name
	Status models.ItemStatus
	Page   int
	Size   int
}

type PagedAdminItems struct {
	Total int64          `json:"total"`
	Items []AdminItemRow `json:"items"`
}

// ListItemsWithClaims pages items with their active request count and
// current claim, newest first.
func (r *Repo) ListItemsWithClaims(ctx context.Context, q AdminItemsQuery) (*PagedAdminItems, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	offset := (q.Page - 1) * q.Size

	db := r.DB.WithContext(ctx)

	filter := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("i.deleted_at IS NULL")
		if s := strings.TrimSpace(q.Q); s != "" {
			pat := "%" + strings.ToLower(s) + "%"
			tx = tx.Where("LOWER(i.name) LIKE ? OR LOWER(i.donor_name) LIKE ?", pat, pat)
		}
		if q.Status != "" {
			tx = tx.Where("i.status = ?", q.Status)
		}
		return tx
	}

	var total int64
	if err := filter(db.Table(models.ItemTable + " i")).Count(&total).Error; err != nil {
		return nil, storeErr("admin items", err)
	}

	rows := []AdminItemRow{}
	err := filter(db.Table(models.ItemTable+" i")).
		Select(fmt.Sprintf(`
			i.id, i.name, i.donor_id, i.donor_name, i.category, i.status, i.created_at,
			(SELECT COUNT(*) FROM %s a WHERE a.item_id = i.id AND a.status IN ?) AS active_requests,
			c.id             AS claim_request_id,
			c.requester_id   AS claim_requester_id,
			c.requester_name AS claim_requester_name,
			c.status         AS claim_status
		`, models.RequestTable), models.ActiveStatuses).
		Joins(fmt.Sprintf("LEFT JOIN %s c ON c.item_id = i.id AND c.status IN ?", models.RequestTable),
			[]models.RequestStatus{models.RequestApproved, models.RequestCollected}).
		Order("i.created_at DESC").
		Offset(offset).
		Limit(q.Size).
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr("admin items", err)
	}

	return &PagedAdminItems{Total: total, Items: rows}, nil
}
