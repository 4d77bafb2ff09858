package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/hrms/internal/app/store/audit"
	"github.com/dalemusser/hrms/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, audit.Event{
		TenantID:  "acme",
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		IP:        "192.168.1.1",
		Success:   true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{TenantID: "acme"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v not set", events[0].Timestamp)
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	seed := []audit.Event{
		{TenantID: "acme", Category: audit.CategoryRecords, EventType: audit.EventRecordCreated, Entity: "payrolls", ActorID: &userID, Success: true},
		{TenantID: "acme", Category: audit.CategoryRecords, EventType: audit.EventRecordDeleted, Entity: "vacations", ActorID: &userID, Success: true},
		{TenantID: "acme", Category: audit.CategoryAuth, EventType: audit.EventLogout, UserID: &userID, Success: true},
		{TenantID: "globex", Category: audit.CategoryRecords, EventType: audit.EventRecordCreated, Entity: "payrolls", Success: true},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int64
	}{
		{"tenant", audit.QueryFilter{TenantID: "acme"}, 3},
		{"category", audit.QueryFilter{TenantID: "acme", Category: audit.CategoryRecords}, 2},
		{"entity", audit.QueryFilter{Entity: "payrolls"}, 2},
		{"event type", audit.QueryFilter{TenantID: "acme", EventType: audit.EventRecordDeleted}, 1},
		{"user", audit.QueryFilter{UserID: &userID}, 1},
		{"other tenant", audit.QueryFilter{TenantID: "initech"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := store.CountByFilter(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountByFilter: %v", err)
			}
			if n != tt.want {
				t.Errorf("count = %d, want %d", n, tt.want)
			}
			events, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if int64(len(events)) != tt.want {
				t.Errorf("len(events) = %d, want %d", len(events), tt.want)
			}
		})
	}
}

func TestStore_Query_NewestFirstAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	for i := 0; i < 5; i++ {
		if err := store.Log(ctx, audit.Event{
			TenantID:  "acme",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  audit.CategoryRecords,
			EventType: audit.EventRecordUpdated,
			RecordID:  string(rune('a' + i)),
			Success:   true,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	events, err := store.Query(ctx, audit.QueryFilter{TenantID: "acme", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].RecordID != "d" || events[1].RecordID != "c" {
		t.Errorf("got %q,%q; want d,c", events[0].RecordID, events[1].RecordID)
	}

	start := base.Add(3 * time.Minute)
	n, err := store.CountByFilter(ctx, audit.QueryFilter{TenantID: "acme", StartTime: &start})
	if err != nil {
		t.Fatalf("CountByFilter: %v", err)
	}
	if n != 2 {
		t.Errorf("events since start = %d, want 2", n)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, e := range []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedRateLimit},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	events, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 failed logins, got %d", len(events))
	}
}
