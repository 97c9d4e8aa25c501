package store

import (
	"context"
	"fmt"
	"time"

	"eventbeta/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection backs a Collection with MongoDB. Push semantics come from
// a collection change stream: any committed change triggers a re-read of the
// filtered, ordered snapshot which is delivered whole to the subscriber.
type MongoCollection[T any] struct {
	coll    *mongo.Collection
	orderBy string
	timeout time.Duration
}

// NewMongoCollection wraps coll. Snapshots are ordered by the orderBy field
// ascending, with _id as tiebreak so the order is total.
func NewMongoCollection[T any](coll *mongo.Collection, orderBy string) *MongoCollection[T] {
	return &MongoCollection[T]{
		coll:    coll,
		orderBy: orderBy,
		timeout: 10 * time.Second,
	}
}

func (c *MongoCollection[T]) Create(ctx context.Context, id string, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fields, err := toFields(doc)
	if err != nil {
		return err
	}
	fields["_id"] = id

	if _, err := c.coll.InsertOne(ctx, fields); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (c *MongoCollection[T]) Update(ctx context.Context, id string, fields Filter) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCollection[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCollection[T]) GetOne(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return out, ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("failed to get document: %w", err)
	}
	return out, nil
}

func (c *MongoCollection[T]) Subscribe(ctx context.Context, filter Filter, fn SnapshotFunc[T]) (*Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	stream, err := c.coll.Watch(streamCtx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	snapshot, err := c.query(streamCtx, filter)
	if err != nil {
		stream.Close(context.Background())
		cancel()
		return nil, err
	}
	fn(snapshot)

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			snapshot, err := c.query(streamCtx, filter)
			if err != nil {
				if streamCtx.Err() != nil {
					return
				}
				logger.WithError(err).Error("Failed to refresh snapshot after change event")
				continue
			}
			fn(snapshot)
		}
	}()

	return NewSubscription(cancel), nil
}

func (c *MongoCollection[T]) query(ctx context.Context, filter Filter) ([]T, error) {
	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: c.orderBy, Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := c.coll.Find(qctx, bson.M(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer cursor.Close(qctx)

	var docs []T
	if err := cursor.All(qctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return docs, nil
}
