package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database/internal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type document struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d document) comment() (wally.Comment, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return wally.Comment{}, fmt.Errorf("parse uuid: %w", err)
	}
	return wally.Comment{
		ID:        id,
		Name:      d.Name,
		Text:      d.Comment,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

type repo struct {
	coll *mongo.Collection
}

func (r *repo) Put(ctx context.Context, name, text string) (wally.Comment, error) {
	// BSON dates carry milliseconds
	doc := document{
		ID:        uuid.NewString(),
		Name:      name,
		Comment:   text,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return wally.Comment{}, fmt.Errorf("put: %w", err)
	}

	c, err := doc.comment()
	if err != nil {
		return wally.Comment{}, fmt.Errorf("put: %w", err)
	}
	return c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("delete: %w", wally.ErrNotFound)
	}

	return nil
}

func (r *repo) List(ctx context.Context, q wally.ListQuery) (wally.ListResult, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return wally.ListResult{}, fmt.Errorf("list: %w: %w", wally.ErrInvalidInput, err)
	}
	limit := internal.PageSize(q.Limit)

	filter := bson.D{}
	if q.Cursor != "" {
		filter = bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "created_at", Value: bson.D{{Key: "$gt", Value: cursor.CreatedAt}}}},
			bson.D{
				{Key: "created_at", Value: cursor.CreatedAt},
				{Key: "_id", Value: bson.D{{Key: "$gt", Value: cursor.ID}}},
			},
		}}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit + 1))

	found, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return wally.ListResult{}, fmt.Errorf("list: %w", err)
	}

	var docs []document
	if err := found.All(ctx, &docs); err != nil {
		return wally.ListResult{}, fmt.Errorf("list: decode: %w", err)
	}

	items := make([]wally.Comment, 0, len(docs))
	for _, d := range docs {
		c, err := d.comment()
		if err != nil {
			return wally.ListResult{}, fmt.Errorf("list: %w", err)
		}
		items = append(items, c)
	}

	var nextCursor string
	if len(items) > limit {
		last := items[limit-1]
		nextCursor = internal.EncodeCursor(last.CreatedAt, last.ID.String())
		items = items[:limit]
	}

	return wally.ListResult{Items: items, NextCursor: nextCursor}, nil
}
