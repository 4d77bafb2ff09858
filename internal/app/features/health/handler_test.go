package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hrms/internal/app/features/health"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type response struct {
	Status      string `json:"status"`
	Application string `json:"application"`
	Database    string `json:"database"`
	Message     string `json:"message"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), "HRMS", zap.NewNop())

	rec := httptest.NewRecorder()
	health.Routes(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Status != "ok" || got.Database != "connected" || got.Application != "HRMS" {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestServe_DatabaseUnavailable(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: 200 * time.Millisecond})
	t.Cleanup(timeouts.Reset)

	// Nothing listens on port 1; the ping fails within the timeout.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	handler := health.NewHandler(client, "HRMS", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Status != "error" || got.Database != "disconnected" || got.Message != "Database unavailable" {
		t.Errorf("unexpected response %+v", got)
	}
}
