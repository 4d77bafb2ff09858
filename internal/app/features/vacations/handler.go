// Package vacations serves the vacation endpoints.
package vacations

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/hrms/internal/app/features/records"
	vacationstore "github.com/dalemusser/hrms/internal/app/store/vacations"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/schemas"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Handler = records.Handler[models.Vacation, models.VacationQuery]

func NewHandler(db *mongo.Database, deps records.Deps) *Handler {
	return records.NewHandler(Resource(vacationstore.New(db)), deps)
}

// Resource describes vacations to the generic handler.
func Resource(store records.Store[models.Vacation, models.VacationQuery]) records.Resource[models.Vacation, models.VacationQuery] {
	return records.Resource[models.Vacation, models.VacationQuery]{
		Entity: models.EntityVacations,
		Label:  "vacation",
		Store:  store,
		ParseQuery: func(r *http.Request) models.VacationQuery {
			return models.VacationQuery{ID: query.Get(r, "id"), UserID: query.Get(r, "user_id")}
		},
		FilterKey: func(q models.VacationQuery) string {
			return records.FilterKey("id", q.ID, "user_id", q.UserID)
		},
		Build: func(body []byte) (models.Vacation, inputval.Result) {
			in, res := schemas.Decode[schemas.VacationInput](body)
			var v models.Vacation
			if !res.HasErrors() {
				in.Apply(&v)
			}
			return v, res
		},
		ID:        func(v models.Vacation) string { return v.ID.Hex() },
		CSVHeader: []string{"id", "user_id", "start_date", "end_date", "days_taken"},
		CSVRow: func(v models.Vacation) []string {
			return []string{
				v.ID.Hex(),
				v.UserID.Hex(),
				v.StartDate.Format(inputval.DateLayout),
				v.EndDate.Format(inputval.DateLayout),
				strconv.Itoa(v.DaysTaken),
			}
		},
		UserRefs: func(v models.Vacation) map[string]primitive.ObjectID {
			return map[string]primitive.ObjectID{"user_id": v.UserID}
		},
	}
}
