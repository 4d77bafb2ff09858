package users_test

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
	"github.com/dalemusser/hrms/internal/app/features/records"
	"github.com/dalemusser/hrms/internal/app/features/users"
	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/fetch"
	"github.com/dalemusser/hrms/internal/app/system/ratelimit"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/hrms/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const tenantID = "tenant-a"

type env struct {
	db     *mongo.Database
	router http.Handler
	h      *users.Handler
	fx     *testutil.Fixtures
	owner  models.User
	actor  *auth.SessionUser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := users.NewHandler(db, records.Deps{
		Cache:  fetch.New(fetch.Options{Size: 32}, zap.NewNop()),
		ErrLog: uierrors.NewErrorLogger(zap.NewNop()),
		Meta:   appmeta.Default(),
		Log:    zap.NewNop(),
	})
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, tenantID, "Olive", "Owner", "owner@example.com", "Owner")

	return &env{
		db:     db,
		router: users.Routes(h, sm),
		h:      h,
		fx:     fx,
		owner:  owner,
		actor:  &auth.SessionUser{ID: owner.ID.Hex(), Email: owner.Email, Roles: owner.Roles, TenantID: tenantID},
	}
}

func (e *env) do(method, target, body string, u *auth.SessionUser) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = auth.WithTestUser(req, u)
	req = req.WithContext(tenant.WithTenant(req.Context(), &tenant.Info{ID: u.TenantID}))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) models.Paginated[models.User] {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body=%s", rec.Code, rec.Body.String())
	}
	var p models.Paginated[models.User]
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestList_TenantScoped(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateUser(ctx, "tenant-b", "Other", "Tenant", "other@example.com", "Owner")

	p := decodePage(t, e.do(http.MethodGet, "/", "", e.actor))
	if p.TotalCount != 1 || p.Data[0].Email != "owner@example.com" {
		t.Errorf("list = %+v, want only the tenant's user", p)
	}
}

func TestCreate_InvalidatesList(t *testing.T) {
	e := newEnv(t)

	decodePage(t, e.do(http.MethodGet, "/", "", e.actor))

	body := `{"email":"New.Hire@Example.com","first_name":"New","last_name":"Hire","roles":["Employee"]}`
	rec := e.do(http.MethodPost, "/", body, e.actor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body=%s", rec.Code, rec.Body.String())
	}
	var created models.User
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	if created.TenantID != tenantID || created.Status != models.StatusActive || created.AuthMethod != models.AuthMethodTrust {
		t.Errorf("created = %+v", created)
	}

	if p := decodePage(t, e.do(http.MethodGet, "/", "", e.actor)); p.TotalCount != 2 {
		t.Errorf("TotalCount after create = %d, want 2", p.TotalCount)
	}
	if p := decodePage(t, e.do(http.MethodGet, "/?email=new.hire@example.com", "", e.actor)); p.TotalCount != 1 {
		t.Errorf("email filter TotalCount = %d, want 1", p.TotalCount)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	e := newEnv(t)

	body := `{"email":"OWNER@example.com","first_name":"Dup","last_name":"User"}`
	rec := e.do(http.MethodPost, "/", body, e.actor)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var res uierrors.Body
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if len(res.Fields) != 1 || res.Fields[0].Field != "email" {
		t.Errorf("fields = %+v, want email error", res.Fields)
	}
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/", `{"email":"not-an-email","first_name":"A","last_name":"B","auth_method":"google"}`, e.actor)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var res uierrors.Body
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	got := map[string]bool{}
	for _, f := range res.Fields {
		got[f.Field] = true
	}
	if !got["email"] || !got["auth_method"] {
		t.Errorf("fields = %+v, want email and auth_method errors", res.Fields)
	}
}

func TestStatus(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	emp := e.fx.CreateUser(ctx, tenantID, "Erin", "Employee", "erin@example.com", "Employee")

	tests := []struct {
		name string
		id   string
		body string
		want int
	}{
		{"disable employee", emp.ID.Hex(), `{"status":"disabled"}`, http.StatusNoContent},
		{"enable employee", emp.ID.Hex(), `{"status":"active"}`, http.StatusNoContent},
		{"unknown status", emp.ID.Hex(), `{"status":"archived"}`, http.StatusUnprocessableEntity},
		{"not json", emp.ID.Hex(), `status=disabled`, http.StatusBadRequest},
		{"self disable", e.owner.ID.Hex(), `{"status":"disabled"}`, http.StatusForbidden},
		{"unknown user", "000000000000000000000000", `{"status":"active"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodPut, "/"+tt.id+"/status", tt.body, e.actor)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	rec := e.do(http.MethodGet, "/"+emp.ID.Hex(), "", e.actor)
	var got models.User
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != models.StatusActive {
		t.Errorf("final status = %q, want active", got.Status)
	}
}

func TestWrites_EmployeeForbidden(t *testing.T) {
	e := newEnv(t)
	emp := &auth.SessionUser{ID: "x", Email: "e@example.com", Roles: []string{"Employee"}, TenantID: tenantID}

	if rec := e.do(http.MethodPost, "/", `{"email":"a@b.co","first_name":"A","last_name":"B"}`, emp); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCreate_PasswordUserCanSignIn(t *testing.T) {
	e := newEnv(t)

	body := `{"email":"pat@example.com","first_name":"Pat","last_name":"Payroll","roles":["Employee"],"auth_method":"password","password":"correct-horse"}`
	rec := e.do(http.MethodPost, "/", body, e.actor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body=%s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "correct-horse") || strings.Contains(rec.Body.String(), "password_hash") {
		t.Errorf("response leaks the password: %s", rec.Body.String())
	}

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	limiter := ratelimit.NewLoginLimiter(ratelimit.LoginConfig{IPBurst: 10, IPEvery: time.Second, EmailBurst: 10, EmailEvery: time.Second})
	t.Cleanup(limiter.Stop)
	lh := login.NewHandler(e.db, sm, limiter, nil, uierrors.NewErrorLogger(zap.NewNop()), false, zap.NewNop())

	signIn := func(password string) int {
		form := url.Values{"email": {"pat@example.com"}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		lh.HandleLoginPost(rec, req)
		return rec.Code
	}
	if code := signIn("wrong-password"); code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", code)
	}
	if code := signIn("correct-horse"); code != http.StatusOK {
		t.Errorf("sign-in status = %d, want 200", code)
	}
}

func TestCreate_PasswordMethodRequiresPassword(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/", `{"email":"a@b.co","first_name":"A","last_name":"B","auth_method":"password"}`, e.actor)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var res uierrors.Body
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if len(res.Fields) != 1 || res.Fields[0].Field != "password" {
		t.Errorf("fields = %+v, want a password error", res.Fields)
	}
	if p := decodePage(t, e.do(http.MethodGet, "/", "", e.actor)); p.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1 (nothing written)", p.TotalCount)
	}
}
