// Package recordstore is the tenant-scoped CRUD core shared by the
// entity stores. Every filter it sends carries tenant_id.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/hrms/internal/app/system/paging"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no record with the given id exists in the
// caller's tenant.
var ErrNotFound = errors.New("record not found")

// ExportLimit caps the number of rows All returns.
const ExportLimit = 10000

// Collection is a tenant-scoped view over one collection of T.
type Collection[T any] struct {
	c         *mongo.Collection
	sortField string
}

// NewCollection wraps db.Collection(name); lists sort newest-first on sortField.
func NewCollection[T any](db *mongo.Database, name, sortField string) Collection[T] {
	return Collection[T]{c: db.Collection(name), sortField: sortField}
}

// Raw exposes the underlying collection for index setup and tests.
func (c Collection[T]) Raw() *mongo.Collection { return c.c }

// List returns one page of records matching filter plus the total count.
func (c Collection[T]) List(ctx context.Context, filter bson.M, q models.ListQuery) (models.Paginated[T], error) {
	if err := tenant.FilterCtx(ctx, filter); err != nil {
		return models.Paginated[T]{}, err
	}
	total, err := c.c.CountDocuments(ctx, filter)
	if err != nil {
		return models.Paginated[T]{}, fmt.Errorf("count %s: %w", c.c.Name(), err)
	}
	cur, err := c.c.Find(ctx, filter, paging.ApplyToFind(options.Find(), q, c.sortField))
	if err != nil {
		return models.Paginated[T]{}, fmt.Errorf("find %s: %w", c.c.Name(), err)
	}
	defer cur.Close(ctx)

	data := make([]T, 0)
	if err := cur.All(ctx, &data); err != nil {
		return models.Paginated[T]{}, fmt.Errorf("decode %s: %w", c.c.Name(), err)
	}
	return models.Paginated[T]{Data: data, TotalCount: total}, nil
}

// All returns every matching record (up to ExportLimit), newest first.
func (c Collection[T]) All(ctx context.Context, filter bson.M) ([]T, error) {
	if err := tenant.FilterCtx(ctx, filter); err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: c.sortField, Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(ExportLimit)
	cur, err := c.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.c.Name(), err)
	}
	defer cur.Close(ctx)
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.c.Name(), err)
	}
	return out, nil
}

// Get loads one record by hex id.
func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	filter, err := c.idFilter(ctx, id)
	if err != nil {
		return out, err
	}
	if err := c.c.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return out, ErrNotFound
		}
		return out, fmt.Errorf("get %s: %w", c.c.Name(), err)
	}
	return out, nil
}

// Insert stores doc. The caller sets its id, tenant and timestamps.
func (c Collection[T]) Insert(ctx context.Context, doc T) error {
	if _, err := c.c.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s: %w", c.c.Name(), err)
	}
	return nil
}

// Replace overwrites the record with id in the caller's tenant.
func (c Collection[T]) Replace(ctx context.Context, id string, doc T) error {
	filter, err := c.idFilter(ctx, id)
	if err != nil {
		return err
	}
	res, err := c.c.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("replace %s: %w", c.c.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record with id from the caller's tenant.
func (c Collection[T]) Delete(ctx context.Context, id string) error {
	filter, err := c.idFilter(ctx, id)
	if err != nil {
		return err
	}
	res, err := c.c.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.c.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c Collection[T]) idFilter(ctx context.Context, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrNotFound
	}
	filter := bson.M{"_id": oid}
	if err := tenant.FilterCtx(ctx, filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// MatchID adds an exact-match condition on an ObjectID field. Empty values
// are ignored; a value that is not an ObjectID matches nothing.
func MatchID(filter bson.M, field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if oid, err := primitive.ObjectIDFromHex(value); err == nil {
		filter[field] = oid
		return
	}
	filter[field] = value
}

// MatchString adds an exact-match condition on a string field.
// Empty values are ignored.
func MatchString(filter bson.M, field, value string) {
	if value != "" {
		filter[field] = value
	}
}
