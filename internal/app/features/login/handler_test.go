package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	"github.com/dalemusser/hrms/internal/app/features/login"
	"github.com/dalemusser/hrms/internal/app/store/audit"
	"github.com/dalemusser/hrms/internal/app/system/auditlog"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/ratelimit"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/hrms/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	h        *login.Handler
	fixtures *testutil.Fixtures
	audit    *audit.Store
	sm       *auth.SessionManager
}

func newEnv(t *testing.T, allowTrust bool, limits ratelimit.LoginConfig) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	limiter := ratelimit.NewLoginLimiter(limits)
	t.Cleanup(limiter.Stop)

	store := audit.New(db)
	al := auditlog.New(store, logger, auditlog.Config{Auth: "db"})
	h := login.NewHandler(db, sm, limiter, al, uierrors.NewErrorLogger(logger), allowTrust, logger)
	return env{h: h, fixtures: testutil.NewFixtures(t, db), audit: store, sm: sm}
}

func postLogin(h *login.Handler, form url.Values, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.HandleLoginPost(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return c
		}
	}
	return nil
}

func countEvents(t *testing.T, e env, eventType string) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := e.audit.CountByFilter(ctx, audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("CountByFilter: %v", err)
	}
	return n
}

func TestHandleLoginPost_TrustSuccessJSON(t *testing.T) {
	e := newEnv(t, true, ratelimit.LoginConfig{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := e.fixtures.CreateUser(ctx, "acme", "Ann", "Lee", "ann@example.com", "owner")

	rec := postLogin(e.h, url.Values{"email": {"ANN@example.com"}, "return": {"/payrolls"}}, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Redirect string            `json:"redirect"`
		User     *auth.SessionUser `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Redirect != "/payrolls" {
		t.Errorf("redirect = %q", body.Redirect)
	}
	if body.User == nil || body.User.ID != u.ID.Hex() || body.User.TenantID != "acme" {
		t.Errorf("user = %+v", body.User)
	}
	if sessionCookie(rec) == nil {
		t.Error("expected a session cookie")
	}
	if n := countEvents(t, e, audit.EventLoginSuccess); n != 1 {
		t.Errorf("login_success events = %d, want 1", n)
	}
}

func TestHandleLoginPost_HTMLRedirect(t *testing.T) {
	e := newEnv(t, true, ratelimit.LoginConfig{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fixtures.CreateUser(ctx, "acme", "Ann", "Lee", "ann@example.com")

	tests := []struct {
		ret  string
		want string
	}{
		{"", login.DefaultRedirect},
		{"/vacations", "/vacations"},
		{"https://evil.example", login.DefaultRedirect},
		{"//evil.example", login.DefaultRedirect},
	}
	for _, tt := range tests {
		rec := postLogin(e.h, url.Values{"email": {"ann@example.com"}, "return": {tt.ret}}, "text/html")
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("return %q: status = %d", tt.ret, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != tt.want {
			t.Errorf("return %q: Location = %q, want %q", tt.ret, loc, tt.want)
		}
	}
}

func TestHandleLoginPost_MissingEmail(t *testing.T) {
	e := newEnv(t, true, ratelimit.LoginConfig{})
	rec := postLogin(e.h, url.Values{}, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandleLoginPost_UnknownUser(t *testing.T) {
	e := newEnv(t, true, ratelimit.LoginConfig{})
	rec := postLogin(e.h, url.Values{"email": {"ghost@example.com"}}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Error("no session expected")
	}
	if n := countEvents(t, e, audit.EventLoginFailedUserNotFound); n != 1 {
		t.Errorf("user-not-found events = %d, want 1", n)
	}
}

func TestHandleLoginPost_TrustDisabled(t *testing.T) {
	e := newEnv(t, false, ratelimit.LoginConfig{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fixtures.CreateUser(ctx, "acme", "Ann", "Lee", "ann@example.com")

	rec := postLogin(e.h, url.Values{"email": {"ann@example.com"}}, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHandleLoginPost_Password(t *testing.T) {
	e := newEnv(t, false, ratelimit.LoginConfig{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := e.fixtures.CreateUser(ctx, "acme", "Pat", "Lee", "pat@example.com")

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	_, err = e.fixtures.DB().Collection(models.EntityUsers).UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"auth_method": models.AuthMethodPassword, "password_hash": string(hash)}})
	if err != nil {
		t.Fatalf("set password: %v", err)
	}

	rec := postLogin(e.h, url.Values{"email": {"pat@example.com"}, "password": {"wrong"}}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", rec.Code)
	}
	if n := countEvents(t, e, audit.EventLoginFailedWrongPassword); n != 1 {
		t.Errorf("wrong-password events = %d, want 1", n)
	}

	rec = postLogin(e.h, url.Values{"email": {"pat@example.com"}, "password": {"s3cret-pass"}}, "")
	if rec.Code != http.StatusOK {
		t.Errorf("right password: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleLoginPost_DisabledUser(t *testing.T) {
	e := newEnv(t, true, ratelimit.LoginConfig{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := e.fixtures.CreateUser(ctx, "acme", "Dee", "Lee", "dee@example.com")
	if _, err := e.fixtures.DB().Collection(models.EntityUsers).UpdateOne(ctx,
		bson.M{"_id": u.ID}, bson.M{"$set": bson.M{"status": models.StatusDisabled}}); err != nil {
		t.Fatalf("disable: %v", err)
	}

	rec := postLogin(e.h, url.Values{"email": {"dee@example.com"}}, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if n := countEvents(t, e, audit.EventLoginFailedUserDisabled); n != 1 {
		t.Errorf("user-disabled events = %d, want 1", n)
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	e := newEnv(t, true, ratelimit.LoginConfig{EmailBurst: 2, EmailEvery: time.Hour})

	for i := 0; i < 2; i++ {
		postLogin(e.h, url.Values{"email": {"ghost@example.com"}}, "")
	}
	rec := postLogin(e.h, url.Values{"email": {"ghost@example.com"}}, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if n := countEvents(t, e, audit.EventLoginFailedRateLimit); n != 1 {
		t.Errorf("rate-limit events = %d, want 1", n)
	}
}

func TestLoginThenSessionRoundTrip(t *testing.T) {
	e := newEnv(t, true, ratelimit.LoginConfig{})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fixtures.CreateUser(ctx, "acme", "Ann", "Lee", "ann@example.com", "hr-manager")

	rec := postLogin(e.h, url.Values{"email": {"ann@example.com"}}, "")
	c := sessionCookie(rec)
	if c == nil {
		t.Fatal("no session cookie")
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(c)
	me := httptest.NewRecorder()
	e.sm.LoadSessionUser(http.HandlerFunc(e.h.ServeMe)).ServeHTTP(me, req)

	var body struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		Name            string `json:"name"`
		Role            string `json:"role"`
	}
	if err := json.Unmarshal(me.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.IsAuthenticated || body.Name != "Ann Lee" || body.Role != "hr-manager" {
		t.Errorf("me = %+v", body)
	}
}

func TestServeMe_Anonymous(t *testing.T) {
	h := &login.Handler{}
	rec := httptest.NewRecorder()
	h.ServeMe(rec, httptest.NewRequest("GET", "/me", nil))
	if !strings.Contains(rec.Body.String(), `"isAuthenticated":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
