package userlogstore_test

import (
	"testing"

	userlogstore "github.com/dalemusser/ejchub/internal/app/store/userlogs"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/testutil"
)

func TestStore_AddAssignsID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	saved, err := store.Add(ctx, models.UserLog{UserID: "u1", Username: "ana", Action: "Login realizado", Timestamp: 1})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected ID to be assigned")
	}
}

func TestStore_ListNewestFirstWithLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, ts := range []int64{100, 300, 200, 400} {
		if _, err := store.Add(ctx, models.UserLog{UserID: "u1", Username: "ana", Action: "x", Timestamp: ts}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 || all[0].Timestamp != 400 || all[3].Timestamp != 100 {
		t.Errorf("unexpected order: %+v", all)
	}

	top, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(top) != 2 || top[1].Timestamp != 300 {
		t.Errorf("unexpected limited list: %+v", top)
	}
}

func TestStore_CountSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userlogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, ts := range []int64{100, 200, 300} {
		if _, err := store.Add(ctx, models.UserLog{Action: "x", Timestamp: ts}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	n, err := store.CountSince(ctx, 200)
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountSince = %d, want 2", n)
	}
}
