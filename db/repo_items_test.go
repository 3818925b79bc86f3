package db

import (
	"context"
	"strings"
	"testing"

	"Gin_postgres_redis_donations/models"
	"Gin_postgres_redis_donations/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestCreateItem(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	in := validInput("  winter coat  ")
	it, err := r.CreateItem(ctx, donor, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if it.Name != "winter coat" {
		t.Errorf("Name = %q, want %q", it.Name, "winter coat")
	}
	if it.Status != models.ItemAvailable {
		t.Errorf("Status = %q, want %q", it.Status, models.ItemAvailable)
	}
	if it.DonorID != donor.ID || it.DonorName != "Dora" {
		t.Errorf("donor = %q/%q", it.DonorID, it.DonorName)
	}
	if it.Size == nil || *it.Size != "M" {
		t.Errorf("Size = %v, want M", it.Size)
	}

	got, err := r.GetItem(ctx, it.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(got.Images) != 1 || got.Images[0] != in.Images[0] {
		t.Errorf("Images did not round-trip: %d entries", len(got.Images))
	}

	gs := readCounters(t, r)
	if gs.ItemsAvailable != 1 || gs.TotalDonors != 1 {
		t.Errorf("counters = %+v, want available=1 donors=1", gs)
	}

	// a second item from the same donor is not a new donor
	mustCreateItem(t, r, donor, "scarf")
	gs = readCounters(t, r)
	if gs.ItemsAvailable != 2 || gs.TotalDonors != 1 {
		t.Errorf("counters = %+v, want available=2 donors=1", gs)
	}
}

func TestCreateItemValidation(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.ItemInput)
		msg    string
	}{
		{"missing name", func(in *models.ItemInput) { in.Name = "   " }, "name is required"},
		{"missing description", func(in *models.ItemInput) { in.Description = "" }, "description is required"},
		{"bad category", func(in *models.ItemInput) { in.Category = "furniture" }, "category must be one of"},
		{"bad condition", func(in *models.ItemInput) { in.Condition = "broken" }, "condition must be one of"},
		{"too many images", func(in *models.ItemInput) {
			in.Images = []string{"", "", "", "", "", ""}
			for i := range in.Images {
				in.Images[i] = testutil.DataImage(8)
			}
		}, "images exceeds"},
		{"not a data uri", func(in *models.ItemInput) { in.Images = []string{"https://example.com/a.png"} }, "data:image"},
		{"not base64", func(in *models.ItemInput) { in.Images = []string{"data:image/png;base64,@@@"} }, "base64"},
		{"image too large", func(in *models.ItemInput) { in.Images = []string{testutil.DataImage(MaxImageBytes + 1)} }, "exceeds 5MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput("coat")
			tt.mutate(&in)
			_, err := r.CreateItem(ctx, donor, in)
			wantErr(t, err, ErrValidation)
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %q, want it to mention %q", err.Error(), tt.msg)
			}
		})
	}

	if gs := readCounters(t, r); gs.ItemsAvailable != 0 {
		t.Errorf("rejected items must not move counters, got %+v", gs)
	}
}

func TestCreateItemImageAtLimit(t *testing.T) {
	r, _ := newTestRepo(t)
	in := validInput("coat")
	in.Images = []string{testutil.DataImage(MaxImageBytes)}
	if _, err := r.CreateItem(context.Background(), donor, in); err != nil {
		t.Fatalf("CreateItem with a 5MB image: %v", err)
	}
}

func TestGetItemNotFound(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		_, err := r.GetItem(ctx, id)
		wantErr(t, err, ErrNotFound)
	}
}

func TestListItems(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	coat := mustCreateItem(t, r, donor, "coat")
	in := validInput("lego")
	in.Category = models.CategoryToys
	in.Condition = models.ConditionNew
	lego, err := r.CreateItem(ctx, requesterB, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	boots := mustCreateItem(t, r, donor, "boots")
	mustCreateRequest(t, r, requesterA, boots.ID)

	all, err := r.ListItems(ctx, models.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != boots.ID || all[2].ID != coat.ID {
		t.Errorf("order = %s,%s,%s, want newest first", all[0].Name, all[1].Name, all[2].Name)
	}

	tests := []struct {
		name   string
		filter models.ItemFilter
		want   []string
	}{
		{"category", models.ItemFilter{Category: models.CategoryToys}, []string{lego.ID}},
		{"condition", models.ItemFilter{Condition: models.ConditionUsed}, []string{boots.ID, coat.ID}},
		{"donor", models.ItemFilter{DonorID: donor.ID}, []string{boots.ID, coat.ID}},
		{"status", models.ItemFilter{Status: models.ItemAvailable}, []string{lego.ID, coat.ID}},
		{"combined", models.ItemFilter{DonorID: donor.ID, Status: models.ItemReserved}, []string{boots.ID}},
		{"limit", models.ItemFilter{Limit: 1}, []string{boots.ID}},
		{"no match", models.ItemFilter{Category: models.CategoryBooks}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ListItems(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListItems: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestUpdateItem(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	it := mustCreateItem(t, r, donor, "coat")

	name := "  warm coat "
	cat := models.CategoryAccessories
	empty := ""
	out, err := r.UpdateItem(ctx, it.ID, donor.ID, models.ItemPatch{
		Name:        &name,
		Category:    &cat,
		Description: &empty,
		Size:        &empty,
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if out.Name != "warm coat" {
		t.Errorf("Name = %q, want %q", out.Name, "warm coat")
	}
	if out.Category != models.CategoryAccessories {
		t.Errorf("Category = %q", out.Category)
	}
	if out.Description != it.Description {
		t.Errorf("empty description must be ignored, got %q", out.Description)
	}
	if out.Size != nil {
		t.Errorf("Size = %q, want cleared", *out.Size)
	}
	if out.Condition != it.Condition || len(out.Images) != 1 {
		t.Error("absent fields must be left untouched")
	}
	if out.Status != models.ItemAvailable {
		t.Errorf("Status = %q, want unchanged", out.Status)
	}
}

func TestUpdateItemReplacesImages(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	it := mustCreateItem(t, r, donor, "coat")

	imgs := []string{testutil.DataImage(10), testutil.DataImage(20)}
	out, err := r.UpdateItem(ctx, it.ID, donor.ID, models.ItemPatch{Images: &imgs})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if len(out.Images) != 2 {
		t.Errorf("len(Images) = %d, want 2", len(out.Images))
	}

	bad := []string{"data:text/plain;base64,aGk="}
	_, err = r.UpdateItem(ctx, it.ID, donor.ID, models.ItemPatch{Images: &bad})
	wantErr(t, err, ErrValidation)

	cond := models.Condition("destroyed")
	_, err = r.UpdateItem(ctx, it.ID, donor.ID, models.ItemPatch{Condition: &cond})
	wantErr(t, err, ErrValidation)
}

func TestUpdateItemForbidden(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	it := mustCreateItem(t, r, donor, "coat")

	name := "mine now"
	_, err := r.UpdateItem(ctx, it.ID, requesterA.ID, models.ItemPatch{Name: &name})
	wantErr(t, err, ErrForbidden)

	_, err = r.UpdateItem(ctx, uuid.NewString(), donor.ID, models.ItemPatch{Name: &name})
	wantErr(t, err, ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	it := mustCreateItem(t, r, donor, "coat")

	wantErr(t, r.DeleteItem(ctx, it.ID, requesterA.ID), ErrForbidden)

	req := mustCreateRequest(t, r, requesterA, it.ID)
	wantErr(t, r.DeleteItem(ctx, it.ID, donor.ID), ErrItemHasActiveRequests)

	if _, err := r.CancelRequest(ctx, req.ID, requesterA.ID, "changed my mind"); err != nil {
		t.Fatalf("CancelRequest: %v", err)
	}
	if err := r.DeleteItem(ctx, it.ID, donor.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	_, err := r.GetItem(ctx, it.ID)
	wantErr(t, err, ErrNotFound)

	if gs := readCounters(t, r); gs.ItemsAvailable != 0 || gs.TotalDonors != 1 {
		t.Errorf("counters = %+v, want available=0 donors=1", gs)
	}

	// the terminal request survives as history
	hist, err := r.FindRequestByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("FindRequestByID: %v", err)
	}
	if hist.ItemName != "coat" {
		t.Errorf("ItemName = %q, want snapshot %q", hist.ItemName, "coat")
	}
}

func TestDonorCountedOnceAfterDelete(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	it := mustCreateItem(t, r, donor, "coat")
	if err := r.DeleteItem(ctx, it.ID, donor.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	mustCreateItem(t, r, donor, "boots")

	if gs := readCounters(t, r); gs.TotalDonors != 1 || gs.ItemsAvailable != 1 {
		t.Errorf("counters = %+v, want donors=1 available=1", gs)
	}
	gs, err := r.Counters.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if gs.TotalDonors != 1 || gs.ItemsAvailable != 1 {
		t.Errorf("Reconcile = %+v, want donors=1 available=1", gs)
	}

	page, err := r.ListItemsWithClaims(ctx, AdminItemsQuery{})
	if err != nil {
		t.Fatalf("ListItemsWithClaims: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "boots" {
		t.Errorf("admin listing = %+v, want only boots", page)
	}
}

func moveItem(t *testing.T, r *Repo, id string, to models.ItemStatus) {
	t.Helper()
	err := r.inTx(context.Background(), func(tx *gorm.DB) ([]counterDelta, error) {
		it, err := lockItem(tx, id)
		if err != nil {
			return nil, err
		}
		return r.setItemStatus(tx, it, to)
	})
	if err != nil {
		t.Fatalf("setItemStatus(%s): %v", to, err)
	}
}

func TestSetItemStatusAppliesDeltas(t *testing.T) {
	r, _ := newTestRepo(t)
	it := mustCreateItem(t, r, donor, "coat")

	moveItem(t, r, it.ID, models.ItemDonated)
	gs := readCounters(t, r)
	if gs.ItemsAvailable != 0 || gs.ItemsDonated != 1 {
		t.Errorf("counters = %+v, want available=0 donated=1", gs)
	}
	if got := itemStatus(t, r, it.ID); got != models.ItemDonated {
		t.Errorf("status = %q, want donated", got)
	}

	// same status is a no-op
	moveItem(t, r, it.ID, models.ItemDonated)
	if gs := readCounters(t, r); gs.ItemsDonated != 1 {
		t.Errorf("ItemsDonated = %d, want 1", gs.ItemsDonated)
	}
}

func TestListItemRequests(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	it := mustCreateItem(t, r, donor, "coat")
	r1 := mustCreateRequest(t, r, requesterA, it.ID)
	r2 := mustCreateRequest(t, r, requesterB, it.ID)

	reqs, err := r.ListItemRequests(ctx, it.ID, donor.ID)
	if err != nil {
		t.Fatalf("ListItemRequests: %v", err)
	}
	if len(reqs) != 2 || reqs[0].ID != r2.ID || reqs[1].ID != r1.ID {
		t.Errorf("got %d requests, want r2 then r1", len(reqs))
	}

	_, err = r.ListItemRequests(ctx, it.ID, requesterA.ID)
	wantErr(t, err, ErrForbidden)
}
