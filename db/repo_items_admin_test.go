package db

import (
	"context"
	"testing"

	"Gin_postgres_redis_donations/models"
)

func TestListItemsWithClaims(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	coat := mustCreateItem(t, r, donor, "winter coat")
	boots := mustCreateItem(t, r, donor, "rain boots")
	mustCreateItem(t, r, requesterB, "picture books")

	mustCreateRequest(t, r, requesterA, coat.ID)
	claim := mustCreateRequest(t, r, requesterB, coat.ID)
	mustApprove(t, r, claim.ID)
	mustCreateRequest(t, r, requesterA, boots.ID)

	res, err := r.ListItemsWithClaims(ctx, AdminItemsQuery{})
	if err != nil {
		t.Fatalf("ListItemsWithClaims: %v", err)
	}
	if res.Total != 3 || len(res.Items) != 3 {
		t.Fatalf("total = %d, rows = %d, want 3", res.Total, len(res.Items))
	}

	var row *AdminItemRow
	for i := range res.Items {
		if res.Items[i].ID == coat.ID {
			row = &res.Items[i]
		}
	}
	if row == nil {
		t.Fatal("coat missing from listing")
	}
	if row.ActiveRequests != 2 {
		t.Errorf("ActiveRequests = %d, want 2", row.ActiveRequests)
	}
	if row.ClaimRequestID == nil || *row.ClaimRequestID != claim.ID {
		t.Errorf("ClaimRequestID = %v, want %s", row.ClaimRequestID, claim.ID)
	}
	if row.ClaimStatus == nil || *row.ClaimStatus != string(models.RequestApproved) {
		t.Errorf("ClaimStatus = %v", row.ClaimStatus)
	}

	res, err = r.ListItemsWithClaims(ctx, AdminItemsQuery{Q: "BOOTS"})
	if err != nil {
		t.Fatalf("ListItemsWithClaims: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != boots.ID || res.Items[0].ClaimRequestID != nil {
		t.Errorf("search = %+v", res)
	}

	res, err = r.ListItemsWithClaims(ctx, AdminItemsQuery{Status: models.ItemAvailable})
	if err != nil {
		t.Fatalf("ListItemsWithClaims: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("available total = %d, want 1", res.Total)
	}

	res, err = r.ListItemsWithClaims(ctx, AdminItemsQuery{Page: 2, Size: 2})
	if err != nil {
		t.Fatalf("ListItemsWithClaims: %v", err)
	}
	if res.Total != 3 || len(res.Items) != 1 {
		t.Errorf("page 2: total = %d, rows = %d", res.Total, len(res.Items))
	}
}
