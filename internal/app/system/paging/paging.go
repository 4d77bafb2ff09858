// Package paging parses limit/offset list queries and computes the page
// range shown next to a list.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of rows in a list page.
const PageSize = 20

// MaxLimit caps client-requested page sizes.
const MaxLimit = 100

// ParseListQuery reads "limit" and "offset" from the query string.
// Missing or invalid values fall back to PageSize and 0.
func ParseListQuery(r *http.Request) models.ListQuery {
	return Normalize(models.ListQuery{
		Limit:  parseInt(query.Get(r, "limit")),
		Offset: parseInt(query.Get(r, "offset")),
	})
}

func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Normalize clamps q: Limit into 1..MaxLimit (PageSize when unset) and
// Offset to >= 0.
func Normalize(q models.ListQuery) models.ListQuery {
	if q.Limit <= 0 {
		q.Limit = PageSize
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// ApplyToFind sets skip, limit and a newest-first sort on sortField.
func ApplyToFind(find *options.FindOptions, q models.ListQuery, sortField string) *options.FindOptions {
	q = Normalize(q)
	return find.
		SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(q.Offset).
		SetLimit(q.Limit)
}

// Range holds display values for one page of a list.
type Range struct {
	Start      int64 `json:"start"` // 1-based; 0 when the page is empty
	End        int64 `json:"end"`
	Total      int64 `json:"total"`
	PrevOffset int64 `json:"prev_offset"`
	NextOffset int64 `json:"next_offset"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// ComputeRange derives the display range for q given shown rows and the
// total count.
func ComputeRange(q models.ListQuery, shown int, total int64) Range {
	q = Normalize(q)
	prev := q.Offset - q.Limit
	if prev < 0 {
		prev = 0
	}
	r := Range{
		Total:      total,
		PrevOffset: prev,
		NextOffset: q.Offset + int64(shown),
		HasPrev:    q.Offset > 0,
	}
	if shown > 0 {
		r.Start = q.Offset + 1
		r.End = q.Offset + int64(shown)
	}
	r.HasNext = r.NextOffset < total
	return r
}
