package stats

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/hrms/internal/app/system/fetch"
	"github.com/dalemusser/hrms/internal/domain/models"
	"go.uber.org/zap"
)

func count(n int64) *int64 { return &n }

// static is a Source with a fixed snapshot.
type static struct {
	Name    string
	Count   *int64
	Loading bool
}

func (s static) Title() string { return s.Name }
func (s static) Snapshot() (*int64, bool) { return s.Count, s.Loading }

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
		want    []Summary
	}{
		{
			name: "keeps order and counts",
			sources: []Source{
				static{Name: "Performance Evaluations", Count: count(12)},
				static{Name: "Vacations", Count: count(0)},
				static{Name: "Time Trackings", Count: count(40)},
			},
			want: []Summary{
				{Title: "Performance Evaluations", Result: count(12)},
				{Title: "Vacations", Result: count(0)},
				{Title: "Time Trackings", Result: count(40)},
			},
		},
		{
			name: "loading kept, missing count dropped",
			sources: []Source{
				static{Name: "A", Loading: true},
				static{Name: "B"},
				static{Name: "C", Count: count(2)},
			},
			want: []Summary{
				{Title: "A", IsLoading: true},
				{Title: "C", Result: count(2)},
			},
		},
		{
			name:    "no sources",
			sources: nil,
			want:    []Summary{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(NoTrend{}, tt.sources...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Aggregate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	sources := []Source{
		static{Name: "X", Count: count(5)},
		static{Name: "Y", Loading: true},
		static{Name: "Z", Count: count(9)},
	}
	first := Aggregate(nil, sources...)
	second := Aggregate(nil, sources...)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregate not idempotent: %+v vs %+v", first, second)
	}
}

type fixedTrend int

func (f fixedTrend) Change(string, int64) *int {
	v := int(f)
	return &v
}

func TestAggregate_Trend(t *testing.T) {
	got := Aggregate(fixedTrend(12), static{Name: "A", Count: count(1)}, static{Name: "B", Loading: true})
	if got[0].Change == nil || *got[0].Change != 12 {
		t.Errorf("resolved card change = %v", got[0].Change)
	}
	if got[1].Change != nil {
		t.Error("loading card should carry no change")
	}
	if Aggregate(nil, static{Name: "A", Count: count(1)})[0].Change != nil {
		t.Error("default trend should leave change nil")
	}
}

func TestFromHandle(t *testing.T) {
	c := fetch.New(fetch.Options{Size: 8}, zap.NewNop())
	ok := fetch.Watch(context.Background(), c, fetch.Key{Tenant: "t", Entity: models.EntityVacations, Limit: 1},
		func(ctx context.Context) (models.Paginated[models.Vacation], error) {
			return models.Paginated[models.Vacation]{TotalCount: 31}, nil
		})
	failed := fetch.Watch(context.Background(), c, fetch.Key{Tenant: "t", Entity: models.EntityPayrolls, Limit: 1},
		func(ctx context.Context) (models.Paginated[models.Payroll], error) {
			return models.Paginated[models.Payroll]{}, errors.New("down")
		})
	gate := make(chan struct{})
	defer close(gate)
	pending := fetch.Watch(context.Background(), c, fetch.Key{Tenant: "t", Entity: models.EntityTimeTrackings, Limit: 1},
		func(ctx context.Context) (models.Paginated[models.TimeTracking], error) {
			<-gate
			return models.Paginated[models.TimeTracking]{}, nil
		})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _ = ok.Wait(ctx)
	_, _ = failed.Wait(ctx)

	got := Aggregate(nil,
		FromHandle("Vacations", ok),
		FromHandle("Payrolls", failed),
		FromHandle("Time Trackings", pending),
	)
	want := []Summary{
		{Title: "Vacations", Result: count(31)},
		{Title: "Time Trackings", IsLoading: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate() = %+v, want %+v", got, want)
	}
}
