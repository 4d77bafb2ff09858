// Package evaluations serves the performance evaluation endpoints.
package evaluations

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/hrms/internal/app/features/records"
	evaluationstore "github.com/dalemusser/hrms/internal/app/store/evaluations"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/schemas"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Handler = records.Handler[models.PerformanceEvaluation, models.PerformanceEvaluationQuery]

func NewHandler(db *mongo.Database, deps records.Deps) *Handler {
	return records.NewHandler(Resource(evaluationstore.New(db)), deps)
}

// Resource describes performance evaluations to the generic handler.
func Resource(store records.Store[models.PerformanceEvaluation, models.PerformanceEvaluationQuery]) records.Resource[models.PerformanceEvaluation, models.PerformanceEvaluationQuery] {
	return records.Resource[models.PerformanceEvaluation, models.PerformanceEvaluationQuery]{
		Entity: models.EntityPerformanceEvaluations,
		Label:  "performance evaluation",
		Store:  store,
		ParseQuery: func(r *http.Request) models.PerformanceEvaluationQuery {
			return models.PerformanceEvaluationQuery{
				ID:          query.Get(r, "id"),
				Comments:    query.Get(r, "comments"),
				UserID:      query.Get(r, "user_id"),
				EvaluatorID: query.Get(r, "evaluator_id"),
			}
		},
		FilterKey: func(q models.PerformanceEvaluationQuery) string {
			return records.FilterKey(
				"id", q.ID,
				"comments", q.Comments,
				"user_id", q.UserID,
				"evaluator_id", q.EvaluatorID,
			)
		},
		Build: func(body []byte) (models.PerformanceEvaluation, inputval.Result) {
			in, res := schemas.Decode[schemas.PerformanceEvaluationInput](body)
			var e models.PerformanceEvaluation
			if !res.HasErrors() {
				in.Apply(&e)
			}
			return e, res
		},
		ID:        func(e models.PerformanceEvaluation) string { return e.ID.Hex() },
		CSVHeader: []string{"id", "user_id", "evaluator_id", "evaluation_date", "score", "comments"},
		CSVRow: func(e models.PerformanceEvaluation) []string {
			return []string{
				e.ID.Hex(),
				e.UserID.Hex(),
				e.EvaluatorID.Hex(),
				e.EvaluationDate.Format(inputval.DateLayout),
				strconv.FormatFloat(e.Score, 'f', -1, 64),
				e.Comments,
			}
		},
		UserRefs: func(e models.PerformanceEvaluation) map[string]primitive.ObjectID {
			return map[string]primitive.ObjectID{"user_id": e.UserID, "evaluator_id": e.EvaluatorID}
		},
	}
}
