// Package payrolls serves the payroll endpoints and the payslip PDF.
package payrolls

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/hrms/internal/app/features/records"
	payrollstore "github.com/dalemusser/hrms/internal/app/store/payrolls"
	userstore "github.com/dalemusser/hrms/internal/app/store/users"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/schemas"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Handler is the generic records handler plus the payslip endpoint.
type Handler struct {
	*records.Handler[models.Payroll, models.PayrollQuery]
	Users *userstore.Store
}

// NewHandler wires the payroll store into a records handler.
func NewHandler(db *mongo.Database, deps records.Deps) *Handler {
	return &Handler{
		Handler: records.NewHandler(Resource(payrollstore.New(db)), deps),
		Users:   userstore.New(db),
	}
}

// Resource describes payrolls to the generic handler.
func Resource(store records.Store[models.Payroll, models.PayrollQuery]) records.Resource[models.Payroll, models.PayrollQuery] {
	return records.Resource[models.Payroll, models.PayrollQuery]{
		Entity: models.EntityPayrolls,
		Label:  "payroll",
		Store:  store,
		ParseQuery: func(r *http.Request) models.PayrollQuery {
			return models.PayrollQuery{ID: query.Get(r, "id"), UserID: query.Get(r, "user_id")}
		},
		FilterKey: func(q models.PayrollQuery) string {
			return records.FilterKey("id", q.ID, "user_id", q.UserID)
		},
		Build: func(body []byte) (models.Payroll, inputval.Result) {
			in, res := schemas.Decode[schemas.PayrollInput](body)
			var p models.Payroll
			if !res.HasErrors() {
				in.Apply(&p)
			}
			return p, res
		},
		ID:        func(p models.Payroll) string { return p.ID.Hex() },
		CSVHeader: []string{"id", "pay_date", "user_id", "gross_salary", "deductions", "net_salary"},
		CSVRow: func(p models.Payroll) []string {
			return []string{
				p.ID.Hex(),
				p.PayDate.Format(inputval.DateLayout),
				p.UserID.Hex(),
				money(p.GrossSalary),
				money(p.Deductions),
				money(p.NetSalary),
			}
		},
		UserRefs: func(p models.Payroll) map[string]primitive.ObjectID {
			return map[string]primitive.ObjectID{"user_id": p.UserID}
		},
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
