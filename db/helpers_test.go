package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"Gin_postgres_redis_donations/models"
	"Gin_postgres_redis_donations/testutil"
)

var (
	donor      = models.Actor{ID: "donor-1", Name: "Dora", Email: "dora@example.com"}
	requesterA = models.Actor{ID: "req-a", Name: "Ana", Email: "ana@example.com"}
	requesterB = models.Actor{ID: "req-b", Name: "Bruno", Email: "bruno@example.com"}

	brt = time.FixedZone("BRT", -3*60*60)
)

func newTestRepo(t *testing.T) (*Repo, *testutil.Clock) {
	t.Helper()

	conn := testutil.OpenSQLite(t)
	if err := Migrate(conn); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	clk := testutil.NewClock(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC))
	return NewRepo(conn, WithClock(clk.Now), WithLocation(brt)), clk
}

func validInput(name string) models.ItemInput {
	return models.ItemInput{
		Name:        name,
		Description: "gently used, washed",
		Category:    models.CategoryClothing,
		Condition:   models.ConditionUsed,
		Size:        "M",
		Images:      []string{testutil.DataImage(64)},
	}
}

func mustCreateItem(t *testing.T, r *Repo, owner models.Actor, name string) *models.Item {
	t.Helper()
	it, err := r.CreateItem(context.Background(), owner, validInput(name))
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", name, err)
	}
	return it
}

func mustCreateRequest(t *testing.T, r *Repo, who models.Actor, itemID string) *models.Request {
	t.Helper()
	req, err := r.CreateRequest(context.Background(), who, itemID, "I would love this")
	if err != nil {
		t.Fatalf("CreateRequest(%s, %s): %v", who.ID, itemID, err)
	}
	return req
}

func mustApprove(t *testing.T, r *Repo, reqID string) *models.Request {
	t.Helper()
	req, err := r.ApproveRequest(context.Background(), reqID, donor.ID, pickup())
	if err != nil {
		t.Fatalf("ApproveRequest(%s): %v", reqID, err)
	}
	return req
}

func pickup() models.CollectionInfo {
	return models.CollectionInfo{Address: "Rua A, 10", Date: "2025-03-15", TimeWindow: "14h-16h"}
}

func itemStatus(t *testing.T, r *Repo, id string) models.ItemStatus {
	t.Helper()
	it, err := r.GetItem(context.Background(), id)
	if err != nil {
		t.Fatalf("GetItem(%s): %v", id, err)
	}
	return it.Status
}

func requestStatus(t *testing.T, r *Repo, id string) models.RequestStatus {
	t.Helper()
	req, err := r.FindRequestByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindRequestByID(%s): %v", id, err)
	}
	return req.Status
}

func readCounters(t *testing.T, r *Repo) models.GlobalStats {
	t.Helper()
	gs, err := r.Counters.Read(context.Background())
	if err != nil {
		t.Fatalf("Counters.Read: %v", err)
	}
	return gs
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}

func errIs(err, target error) bool { return errors.Is(err, target) }
