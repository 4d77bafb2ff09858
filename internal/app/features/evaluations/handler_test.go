package evaluations_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/hrms/internal/app/features/evaluations"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func body(score, comments string) string {
	b := `{"evaluation_date":"2024-04-30","score":` + score +
		`,"user_id":"` + primitive.NewObjectID().Hex() +
		`","evaluator_id":"` + primitive.NewObjectID().Hex() + `"`
	if comments != "" {
		b += `,"comments":` + comments
	}
	return b + "}"
}

func TestResource_Build(t *testing.T) {
	res := evaluations.Resource(nil)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", body("88", `"Solid quarter"`), ""},
		{"no comments", body("0", ""), ""},
		{"score above range", body("101", ""), "score"},
		{"score below range", body("-5", ""), "score"},
		{"missing evaluator", `{"evaluation_date":"2024-04-30","score":50,"user_id":"` + primitive.NewObjectID().Hex() + `"}`, "evaluator_id"},
		{"bad date", `{"evaluation_date":"30/04/2024","score":50,"user_id":"` + primitive.NewObjectID().Hex() + `","evaluator_id":"` + primitive.NewObjectID().Hex() + `"}`, "evaluation_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r := res.Build([]byte(tt.body))
			if tt.wantField == "" {
				if r.HasErrors() {
					t.Errorf("unexpected errors: %s", r.All())
				}
				return
			}
			if _, ok := r.Fields()[tt.wantField]; !ok {
				t.Errorf("errors = %v, want one on %q", r.Fields(), tt.wantField)
			}
		})
	}
}

func TestResource_BuildStripsMarkup(t *testing.T) {
	res := evaluations.Resource(nil)
	e, r := res.Build([]byte(body("75", `"<b>Great</b> work<script>x()</script>"`)))
	if r.HasErrors() {
		t.Fatalf("Build: %s", r.All())
	}
	if e.Comments != "Great work" {
		t.Errorf("Comments = %q, want %q", e.Comments, "Great work")
	}
	if row := res.CSVRow(e); row[4] != "75" || row[5] != "Great work" {
		t.Errorf("row = %v", row)
	}
}

func TestResource_FilterKey(t *testing.T) {
	res := evaluations.Resource(nil)
	req := httptest.NewRequest("GET", "/?evaluator_id=e1&user_id=u1", nil)
	if got := res.FilterKey(res.ParseQuery(req)); got != "evaluator_id=e1&user_id=u1" {
		t.Errorf("FilterKey = %q", got)
	}
}
