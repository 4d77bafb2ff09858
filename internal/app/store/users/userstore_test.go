package userstore_test

import (
	"errors"
	"testing"

	recordstore "github.com/dalemusser/hrms/internal/app/store/records"
	userstore "github.com/dalemusser/hrms/internal/app/store/users"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/indexes"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/hrms/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_CreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := userstore.New(db)
	tctx := testutil.TenantContext(ctx, "acme")

	u, err := store.Create(tctx, models.User{
		Email:     "Ada@Example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Roles:     []string{"owner"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Status != models.StatusActive || u.AuthMethod != models.AuthMethodTrust {
		t.Errorf("defaults not applied: %+v", u)
	}

	got, err := store.GetByEmail(ctx, "  ada@example.COM ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail returned %s, want %s", got.ID.Hex(), u.ID.Hex())
	}

	_, err = store.Create(tctx, models.User{Email: "ada@example.com", FirstName: "A", LastName: "L"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, recordstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListProfilesIsTenantScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "acme", "Ada", "Lovelace", "ada@acme.test", "owner")
	fx.CreateUser(ctx, "acme", "Grace", "Hopper", "grace@acme.test", "hr-manager")
	fx.CreateUser(ctx, "other", "Linus", "T", "linus@other.test", "owner")

	page, err := userstore.New(db).ListProfiles(testutil.TenantContext(ctx, "acme"), models.ListQuery{})
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if page.TotalCount != 2 || len(page.Data) != 2 {
		t.Errorf("expected 2 profiles, got %d/%d", page.TotalCount, len(page.Data))
	}
	for _, p := range page.Data {
		if p.Email == "linus@other.test" {
			t.Error("profile from another tenant leaked")
		}
	}
}

func TestFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "acme", "Ada", "Lovelace", "ada@acme.test", "owner", "hr-manager")
	f := userstore.NewFetcher(db)

	su, err := f.FetchSessionUser(ctx, u.ID.Hex())
	if err != nil {
		t.Fatalf("FetchSessionUser failed: %v", err)
	}
	if su.TenantID != "acme" || su.FullName() != "Ada Lovelace" || len(su.Roles) != 2 {
		t.Errorf("unexpected session user %+v", su)
	}

	tctx := testutil.TenantContext(ctx, "acme")
	if err := userstore.New(db).SetStatus(tctx, u.ID.Hex(), models.StatusDisabled); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if _, err := f.FetchSessionUser(ctx, u.ID.Hex()); !errors.Is(err, auth.ErrUserGone) {
		t.Errorf("disabled user: expected ErrUserGone, got %v", err)
	}
	if _, err := f.FetchSessionUser(ctx, "bogus"); !errors.Is(err, auth.ErrUserGone) {
		t.Errorf("bad id: expected ErrUserGone, got %v", err)
	}
}

func TestStore_EnsureUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := userstore.New(db)

	seed := models.User{TenantID: "acme", Email: "owner@acme.test", FirstName: "O", LastName: "W", Roles: []string{"owner"}}
	_, created, err := store.EnsureUser(ctx, seed)
	if err != nil || !created {
		t.Fatalf("first EnsureUser: created=%v err=%v", created, err)
	}
	seed.PasswordHash = "hash"
	_, created, err = store.EnsureUser(ctx, seed)
	if err != nil || created {
		t.Fatalf("second EnsureUser: created=%v err=%v", created, err)
	}
	got, err := store.GetByEmail(ctx, seed.Email)
	if err != nil {
		t.Fatal(err)
	}
	if got.PasswordHash != "hash" || got.AuthMethod != models.AuthMethodPassword {
		t.Errorf("EnsureUser did not refresh credentials: %+v", got)
	}
}

func TestStore_ExistsIsTenantScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := userstore.New(db)

	ours := fx.CreateUser(ctx, "acme", "Ada", "Lovelace", "ada@example.com")
	theirs := fx.CreateUser(ctx, "globex", "Hank", "Scorpio", "hank@example.com")

	tests := []struct {
		name string
		id   primitive.ObjectID
		want bool
	}{
		{"own tenant", ours.ID, true},
		{"other tenant", theirs.ID, false},
		{"unknown", primitive.NewObjectID(), false},
	}
	tctx := testutil.TenantContext(ctx, "acme")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Exists(tctx, tt.id)
			if err != nil {
				t.Fatalf("Exists: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := store.Exists(ctx, ours.ID); !errors.Is(err, tenant.ErrNoTenant) {
		t.Errorf("Exists without tenant: err = %v, want ErrNoTenant", err)
	}
}
