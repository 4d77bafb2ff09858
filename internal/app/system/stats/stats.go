// Package stats builds the dashboard stat cards from list fetches.
package stats

import (
	"github.com/dalemusser/hrms/internal/app/system/fetch"
)

// Summary is one stat card. Result is meaningful only once IsLoading is
// false; Change is the trend percentage, nil when no trend is known.
type Summary struct {
	Title     string `json:"title"`
	Result    *int64 `json:"result,omitempty"`
	IsLoading bool   `json:"is_loading"`
	Change    *int   `json:"change,omitempty"`
}

// Source yields one card's count.
// Snapshot reports (nil, true) while loading and (nil, false) when the
// load finished without a usable count.
type Source interface {
	Title() string
	Snapshot() (count *int64, loading bool)
}

// Trend supplies the change indicator for a resolved card.
type Trend interface {
	Change(title string, count int64) *int
}

// NoTrend leaves Change unset.
type NoTrend struct{}

func (NoTrend) Change(string, int64) *int { return nil }

// Aggregate turns sources into summaries in input order. Loading sources
// are kept as loading cards; resolved sources without a count are dropped.
func Aggregate(trend Trend, sources ...Source) []Summary {
	if trend == nil {
		trend = NoTrend{}
	}
	out := make([]Summary, 0, len(sources))
	for _, s := range sources {
		count, loading := s.Snapshot()
		if loading {
			out = append(out, Summary{Title: s.Title(), IsLoading: true})
			continue
		}
		if count == nil {
			continue
		}
		n := *count
		out = append(out, Summary{
			Title:  s.Title(),
			Result: &n,
			Change: trend.Change(s.Title(), n),
		})
	}
	return out
}

type handleSource[T any] struct {
	title string
	h     *fetch.Handle[T]
}

// FromHandle adapts a fetch handle: its count is the page's TotalCount.
func FromHandle[T any](title string, h *fetch.Handle[T]) Source {
	return handleSource[T]{title: title, h: h}
}

func (s handleSource[T]) Title() string { return s.title }

func (s handleSource[T]) Snapshot() (*int64, bool) {
	st := s.h.State()
	if st.IsLoading {
		return nil, true
	}
	if st.Err != nil || st.Data == nil {
		return nil, false
	}
	n := st.Data.TotalCount
	return &n, false
}
