// Package timetrackings serves the time tracking endpoints.
package timetrackings

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/hrms/internal/app/features/records"
	timetrackingstore "github.com/dalemusser/hrms/internal/app/store/timetrackings"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/schemas"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Handler = records.Handler[models.TimeTracking, models.TimeTrackingQuery]

func NewHandler(db *mongo.Database, deps records.Deps) *Handler {
	return records.NewHandler(Resource(timetrackingstore.New(db)), deps)
}

// Resource describes time trackings to the generic handler.
func Resource(store records.Store[models.TimeTracking, models.TimeTrackingQuery]) records.Resource[models.TimeTracking, models.TimeTrackingQuery] {
	return records.Resource[models.TimeTracking, models.TimeTrackingQuery]{
		Entity: models.EntityTimeTrackings,
		Label:  "time tracking",
		Store:  store,
		ParseQuery: func(r *http.Request) models.TimeTrackingQuery {
			return models.TimeTrackingQuery{ID: query.Get(r, "id"), UserID: query.Get(r, "user_id")}
		},
		FilterKey: func(q models.TimeTrackingQuery) string {
			return records.FilterKey("id", q.ID, "user_id", q.UserID)
		},
		Build: func(body []byte) (models.TimeTracking, inputval.Result) {
			in, res := schemas.Decode[schemas.TimeTrackingInput](body)
			var t models.TimeTracking
			if !res.HasErrors() {
				in.Apply(&t)
			}
			return t, res
		},
		ID:        func(t models.TimeTracking) string { return t.ID.Hex() },
		CSVHeader: []string{"id", "user_id", "date", "hours_worked"},
		CSVRow: func(t models.TimeTracking) []string {
			return []string{
				t.ID.Hex(),
				t.UserID.Hex(),
				t.Date.Format(inputval.DateLayout),
				strconv.FormatFloat(t.HoursWorked, 'f', -1, 64),
			}
		},
		UserRefs: func(t models.TimeTracking) map[string]primitive.ObjectID {
			return map[string]primitive.ObjectID{"user_id": t.UserID}
		},
	}
}
