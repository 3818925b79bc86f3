package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_donations/metrics"
	"Gin_postgres_redis_donations/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ReasonGivenToAnother = "item given to another requester"

// Requests

func observe(transition string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	metrics.Transitions.WithLabelValues(transition, outcome).Inc()
}

func (r *Repo) FindRequestByID(ctx context.Context, id string) (*models.Request, error) {
	if !validID(id) {
		return nil, notFound("request")
	}
	var req models.Request
	if err := r.DB.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, storeErr("request", err)
	}
	return &req, nil
}

// CreateRequest files a pending claim on an item and reserves it.
// Guards run in order: quota, item exists, availability, self-request,
// duplicate pending.
func (r *Repo) CreateRequest(ctx context.Context, requester models.Actor, itemID, message string) (req *models.Request, err error) {
	defer func() { observe("create", err) }()

	if requester.ID == "" {
		return nil, forbidden("authentication required")
	}
	message = strings.TrimSpace(message)
	if err := validateText("message", message, maxMessageLen); err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, validationErr("itemId is required")
	}

	err = r.inTx(ctx, func(tx *gorm.DB) ([]counterDelta, error) {
		if err := r.Quota.enforce(tx, requester.ID); err != nil {
			return nil, err
		}
		if !validID(itemID) {
			return nil, notFound("item")
		}
		it, err := lockItem(tx, itemID)
		if err != nil {
			return nil, err
		}
		if it.Status == models.ItemDonated {
			return nil, ErrItemNotAvailable
		}
		claimed, err := countOnItem(tx, it.ID, models.RequestApproved, models.RequestCollected)
		if err != nil {
			return nil, err
		}
		if claimed > 0 {
			return nil, ErrItemNotAvailable
		}
		if it.DonorID == requester.ID {
			return nil, ErrSelfRequest
		}
		var dup int64
		if err := tx.Model(&models.Request{}).
			Where("item_id = ? AND requester_id = ? AND status = ?", it.ID, requester.ID, models.RequestPending).
			Count(&dup).Error; err != nil {
			return nil, err
		}
		if dup > 0 {
			return nil, ErrDuplicatePending
		}

		now := r.now()
		req = &models.Request{
			ID:              uuid.NewString(),
			ItemID:          it.ID,
			ItemName:        it.Name,
			ItemImage:       it.FirstImage(),
			RequesterID:     requester.ID,
			RequesterName:   requester.DisplayName(),
			RequesterEmail:  requester.Email,
			DonorID:         it.DonorID,
			DonorName:       it.DonorName,
			Message:         message,
			Status:          models.RequestPending,
			StatusChangedAt: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Create(req).Error; err != nil {
			return nil, err
		}
		return r.setItemStatus(tx, it, models.ItemReserved)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveRequest accepts a pending request and stores the pickup details.
func (r *Repo) ApproveRequest(ctx context.Context, id, callerID string, info models.CollectionInfo) (req *models.Request, err error) {
	defer func() { observe("approve", err) }()

	info.Address = strings.TrimSpace(info.Address)
	info.Date = strings.TrimSpace(info.Date)
	info.TimeWindow = strings.TrimSpace(info.TimeWindow)
	info.Notes = strings.TrimSpace(info.Notes)

	err = r.inTx(ctx, func(tx *gorm.DB) ([]counterDelta, error) {
		cur, _, err := lockRequest(tx, id)
		if err != nil {
			return nil, err
		}
		if cur.DonorID != callerID {
			return nil, forbidden("only the donor can approve this request")
		}
		if cur.Status != models.RequestPending {
			return nil, ErrAlreadyResolved
		}
		claimed, err := countOnItem(tx, cur.ItemID, models.RequestApproved, models.RequestCollected)
		if err != nil {
			return nil, err
		}
		if claimed > 0 {
			return nil, ErrItemAlreadyClaimed
		}
		switch {
		case info.Address == "":
			return nil, validationErr("address is required")
		case info.Date == "":
			return nil, validationErr("date is required")
		case info.TimeWindow == "":
			return nil, validationErr("time is required")
		}
		if err := validateText("notes", info.Notes, maxMessageLen); err != nil {
			return nil, err
		}

		now := r.now()
		cur.Status = models.RequestApproved
		cur.Collection = info
		cur.ApprovedAt = &now
		cur.StatusChangedAt = now
		cur.UpdatedAt = now
		if err := tx.Save(cur).Error; err != nil {
			return nil, err
		}
		req = cur
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// RefuseRequest declines a pending request. The item is freed only when no
// other active request remains.
func (r *Repo) RefuseRequest(ctx context.Context, id, callerID, reason string) (req *models.Request, err error) {
	defer func() { observe("refuse", err) }()

	reason = strings.TrimSpace(reason)
	if err := validateText("reason", reason, maxReasonLen); err != nil {
		return nil, err
	}

	err = r.inTx(ctx, func(tx *gorm.DB) ([]counterDelta, error) {
		cur, it, err := lockRequest(tx, id)
		if err != nil {
			return nil, err
		}
		if cur.DonorID != callerID {
			return nil, forbidden("only the donor can refuse this request")
		}
		if cur.Status != models.RequestPending {
			return nil, ErrAlreadyResolved
		}

		now := r.now()
		cur.Status = models.RequestRefused
		cur.RefusalReason = reason
		cur.RefusedAt = &now
		cur.StatusChangedAt = now
		cur.UpdatedAt = now
		if err := tx.Save(cur).Error; err != nil {
			return nil, err
		}
		req = cur
		return r.releaseItem(tx, it)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ConfirmCollection marks an approved request collected, donates the item
// and cancels every sibling still pending.
func (r *Repo) ConfirmCollection(ctx context.Context, id, callerID string) (req *models.Request, err error) {
	defer func() { observe("confirm", err) }()

	err = r.inTx(ctx, func(tx *gorm.DB) ([]counterDelta, error) {
		cur, it, err := lockRequest(tx, id)
		if err != nil {
			return nil, err
		}
		if cur.DonorID != callerID {
			return nil, forbidden("only the donor can confirm collection")
		}
		switch {
		case cur.Status == models.RequestPending:
			return nil, ErrNotApproved
		case cur.Status.Terminal():
			return nil, ErrAlreadyResolved
		}

		now := r.now()
		cur.Status = models.RequestCollected
		cur.CollectedAt = &now
		cur.StatusChangedAt = now
		cur.UpdatedAt = now
		if err := tx.Save(cur).Error; err != nil {
			return nil, err
		}

		if err := tx.Model(&models.Request{}).
			Where("item_id = ? AND id <> ? AND status = ?", cur.ItemID, cur.ID, models.RequestPending).
			Updates(map[string]any{
				"status":              models.RequestCancelled,
				"cancellation_reason": ReasonGivenToAnother,
				"cancelled_at":        now,
				"status_changed_at":   now,
				"updated_at":          now,
			}).Error; err != nil {
			return nil, err
		}
		req = cur

		if it == nil {
			return nil, nil
		}
		return r.setItemStatus(tx, it, models.ItemDonated)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CancelRequest withdraws the caller's own pending or approved request.
func (r *Repo) CancelRequest(ctx context.Context, id, callerID, reason string) (req *models.Request, err error) {
	defer func() { observe("cancel", err) }()

	reason = strings.TrimSpace(reason)
	if err := validateText("reason", reason, maxReasonLen); err != nil {
		return nil, err
	}

	err = r.inTx(ctx, func(tx *gorm.DB) ([]counterDelta, error) {
		cur, it, err := lockRequest(tx, id)
		if err != nil {
			return nil, err
		}
		if cur.RequesterID != callerID {
			return nil, forbidden("only the requester can cancel this request")
		}
		if !cur.Status.Active() {
			return nil, ErrAlreadyResolved
		}

		now := r.now()
		cur.Status = models.RequestCancelled
		cur.CancellationReason = reason
		cur.CancelledAt = &now
		cur.StatusChangedAt = now
		cur.UpdatedAt = now
		if err := tx.Save(cur).Error; err != nil {
			return nil, err
		}
		req = cur
		return r.releaseItem(tx, it)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListMyRequests returns requests received as donor or sent as requester,
// newest first, with the caller's quota snapshot.
func (r *Repo) ListMyRequests(ctx context.Context, userID string, dir models.Direction) (models.MyRequests, error) {
	col := "donor_id"
	switch dir {
	case "", models.DirectionReceived:
	case models.DirectionSent:
		col = "requester_id"
	default:
		return models.MyRequests{}, validationErr("direction must be one of: received sent")
	}

	reqs := []models.Request{}
	if err := r.DB.WithContext(ctx).
		Where(col+" = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return models.MyRequests{}, storeErr("list requests", err)
	}
	usage, err := r.Quota.Usage(ctx, userID)
	if err != nil {
		return models.MyRequests{}, err
	}
	return models.MyRequests{Requests: reqs, Quota: usage}, nil
}

// lockRequest locks the request's item, then re-reads the request under
// that lock. The item is nil when it no longer exists.
func lockRequest(tx *gorm.DB, id string) (*models.Request, *models.Item, error) {
	if !validID(id) {
		return nil, nil, notFound("request")
	}
	var req models.Request
	if err := tx.First(&req, "id = ?", id).Error; err != nil {
		return nil, nil, storeErr("request", err)
	}
	it, err := lockItem(tx, req.ItemID)
	if err != nil {
		if KindOf(err) != KindNotFound {
			return nil, nil, err
		}
		it = nil
	}
	if err := tx.First(&req, "id = ?", id).Error; err != nil {
		return nil, nil, storeErr("request", err)
	}
	return &req, it, nil
}

// releaseItem frees a reserved item when no pending or approved request is
// left on it.
func (r *Repo) releaseItem(tx *gorm.DB, it *models.Item) ([]counterDelta, error) {
	if it == nil || it.Status != models.ItemReserved {
		return nil, nil
	}
	active, err := countOnItem(tx, it.ID, models.ActiveStatuses...)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, nil
	}
	return r.setItemStatus(tx, it, models.ItemAvailable)
}

func countOnItem(tx *gorm.DB, itemID string, statuses ...models.RequestStatus) (int64, error) {
	var n int64
	err := tx.Model(&models.Request{}).
		Where("item_id = ? AND status IN ?", itemID, statuses).
		Count(&n).Error
	return n, err
}
