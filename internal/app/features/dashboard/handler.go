// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	evaluationstore "github.com/dalemusser/hrms/internal/app/store/evaluations"
	payrollstore "github.com/dalemusser/hrms/internal/app/store/payrolls"
	timetrackingstore "github.com/dalemusser/hrms/internal/app/store/timetrackings"
	userstore "github.com/dalemusser/hrms/internal/app/store/users"
	vacationstore "github.com/dalemusser/hrms/internal/app/store/vacations"
	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/fetch"
	"github.com/dalemusser/hrms/internal/app/system/rolegate"
	"github.com/dalemusser/hrms/internal/app/system/stats"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DateFormat is the layout of the greeting date.
const DateFormat = "Monday, January 2, 2006"

// LatestPayrollsSize is the number of payrolls shown on the dashboard.
const LatestPayrollsSize = 5

// profileFilter keeps profile pages apart from full user pages in the cache.
const profileFilter = "projection=profile"

type Handler struct {
	Cache         *fetch.Cache
	Payrolls      *payrollstore.Store
	Vacations     *vacationstore.Store
	TimeTrackings *timetrackingstore.Store
	Evaluations   *evaluationstore.Store
	Users         *userstore.Store
	Meta          appmeta.Metadata
	Log           *zap.Logger

	// Now is the clock used for the greeting date.
	Now func() time.Time
}

func NewHandler(db *mongo.Database, cache *fetch.Cache, meta appmeta.Metadata, logger *zap.Logger) *Handler {
	return &Handler{
		Cache:         cache,
		Payrolls:      payrollstore.New(db),
		Vacations:     vacationstore.New(db),
		TimeTrackings: timetrackingstore.New(db),
		Evaluations:   evaluationstore.New(db),
		Users:         userstore.New(db),
		Meta:          meta,
		Log:           logger,
		Now:           time.Now,
	}
}

// Section is one independently loaded list on the page.
type Section[T any] struct {
	Data       []T    `json:"data"`
	TotalCount int64  `json:"totalCount"`
	IsLoading  bool   `json:"is_loading"`
	Error      string `json:"error,omitempty"`
}

// CurrentUser is the signed-in user card.
type CurrentUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// View is the dashboard view model.
type View struct {
	ApplicationName string                       `json:"application_name"`
	TenantName      string                       `json:"tenant_name"`
	AddOns          []string                     `json:"add_ons"`
	GreetingEmail   string                       `json:"greeting_email"`
	Date            string                       `json:"date"`
	Stats           []stats.Summary              `json:"stats"`
	LatestPayrolls  Section[models.Payroll]      `json:"latest_payrolls"`
	AllUsers        *Section[models.UserProfile] `json:"all_users,omitempty"`
	CurrentUser     CurrentUser                  `json:"current_user"`
}

func watch[T any](ctx context.Context, c *fetch.Cache, tid, entity, filter string, limit int64, load func(context.Context, models.ListQuery) (models.Paginated[T], error)) *fetch.Handle[T] {
	lq := models.ListQuery{Limit: limit, Offset: 0}
	key := fetch.Key{Tenant: tid, Entity: entity, Filter: filter, Limit: lq.Limit, Offset: lq.Offset}
	return fetch.Watch[T](ctx, c, key, func(ctx context.Context) (models.Paginated[T], error) {
		return load(ctx, lq)
	})
}

// ServeDashboard handles GET /. Every section loads concurrently; a section
// that fails or is still loading when its budget ends is reported as such
// and the page is still served.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Body{Error: "Sign in required."})
		return
	}
	ctx := r.Context()
	tid := tenant.IDFromContext(ctx)

	evals := watch(ctx, h.Cache, tid, models.EntityPerformanceEvaluations, "", 1,
		func(ctx context.Context, lq models.ListQuery) (models.Paginated[models.PerformanceEvaluation], error) {
			return h.Evaluations.List(ctx, models.PerformanceEvaluationQuery{}, lq)
		})
	defer evals.Close()
	vacations := watch(ctx, h.Cache, tid, models.EntityVacations, "", 1,
		func(ctx context.Context, lq models.ListQuery) (models.Paginated[models.Vacation], error) {
			return h.Vacations.List(ctx, models.VacationQuery{}, lq)
		})
	defer vacations.Close()
	tracks := watch(ctx, h.Cache, tid, models.EntityTimeTrackings, "", 1,
		func(ctx context.Context, lq models.ListQuery) (models.Paginated[models.TimeTracking], error) {
			return h.TimeTrackings.List(ctx, models.TimeTrackingQuery{}, lq)
		})
	defer tracks.Close()
	payrolls := watch(ctx, h.Cache, tid, models.EntityPayrolls, "", LatestPayrollsSize, func(ctx context.Context, lq models.ListQuery) (models.Paginated[models.Payroll], error) {
		return h.Payrolls.List(ctx, models.PayrollQuery{}, lq)
	})
	defer payrolls.Close()

	var profiles *fetch.Handle[models.UserProfile]
	if rolegate.ShowAllUsers(u, h.Meta) {
		profiles = watch(ctx, h.Cache, tid, models.EntityUsers, profileFilter, 0, h.Users.ListProfiles)
		defer profiles.Close()
	}

	statCtx, cancelStats := context.WithTimeout(ctx, timeouts.StatWait())
	for _, done := range []<-chan struct{}{evals.Done(), vacations.Done(), tracks.Done()} {
		select {
		case <-done:
		case <-statCtx.Done():
		}
	}
	cancelStats()

	view := View{
		ApplicationName: h.Meta.ApplicationName,
		TenantName:      h.Meta.TenantName,
		AddOns:          h.Meta.Clone().AddOns,
		GreetingEmail:   u.Email,
		Date:            h.Now().Format(DateFormat),
		Stats: stats.Aggregate(stats.NoTrend{},
			stats.FromHandle("Performance Evaluations", evals),
			stats.FromHandle("Vacations", vacations),
			stats.FromHandle("Time Trackings", tracks),
		),
		CurrentUser: currentUser(u),
	}

	listCtx, cancelLists := context.WithTimeout(ctx, timeouts.Medium())
	defer cancelLists()
	view.LatestPayrolls = section(listCtx, h.Log, "payrolls", payrolls)
	if profiles != nil {
		s := section(listCtx, h.Log, "users", profiles)
		view.AllUsers = &s
	}

	uierrors.WriteJSON(w, http.StatusOK, view)
}

func section[T any](ctx context.Context, log *zap.Logger, name string, h *fetch.Handle[T]) Section[T] {
	st, err := h.Wait(ctx)
	if err != nil || st.IsLoading {
		return Section[T]{Data: []T{}, IsLoading: true}
	}
	if st.Err != nil {
		log.Warn("dashboard section failed", zap.String("section", name), zap.Error(st.Err))
		return Section[T]{Data: []T{}, Error: "Could not load " + name + "."}
	}
	data := st.Data.Data
	if data == nil {
		data = []T{}
	}
	return Section[T]{Data: data, TotalCount: st.Data.TotalCount}
}

func currentUser(u *auth.SessionUser) CurrentUser {
	name := u.FullName()
	if name == "" {
		name = "-"
	}
	return CurrentUser{Name: name, Email: u.Email, Role: u.PrimaryRole()}
}
