// Package engage is the counter ledger for user engagement. It lives in the
// document store, deliberately apart from the relational store of record:
// counter writes are single-document atomic operations and are not
// coordinated with relational transactions.
package engage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/janavani/api/internal/apperr"
	"github.com/janavani/api/internal/mdb"
)

// EventKind selects the ledger an engagement event is recorded in.
type EventKind string

const (
	IssueLike     EventKind = "issue_like"
	IssueSupport  EventKind = "issue_support"
	IssueShare    EventKind = "issue_share"
	CommentLike   EventKind = "comment_like"
	ThreadSupport EventKind = "thread_support"
)

// Event is a single engagement record keyed by (entity, subject).
type Event struct {
	EntityID  string    `bson:"entity_id"`
	UserID    string    `bson:"user_id"`
	Platform  string    `bson:"platform,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// EntityCount pairs an entity with an aggregated event count.
type EntityCount struct {
	EntityID string `bson:"_id"`
	Count    int64  `bson:"count"`
}

// Counter is the engagement surface the rest of the system depends on.
type Counter interface {
	Toggle(ctx context.Context, kind EventKind, entityID, userID string) (bool, error)
	RecordShare(ctx context.Context, entityID, userID, platform string) error
	IncrementView(ctx context.Context, entityID string) error
	Count(ctx context.Context, kind EventKind, entityID string) (int64, error)
	ViewCount(ctx context.Context, entityID string) (int64, error)
	IsSet(ctx context.Context, kind EventKind, entityID, userID string) (bool, error)
	DistinctPlatforms(ctx context.Context, entityID string) ([]string, error)
	TopSupported(ctx context.Context, limit int) ([]EntityCount, error)
}

// Store implements Counter on MongoDB.
type Store struct {
	db *mongo.Database
}

// NewStore wraps the mongo database handle.
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) collection(kind EventKind) (*mongo.Collection, error) {
	switch kind {
	case IssueLike:
		return s.db.Collection(mdb.CollIssueLikes), nil
	case IssueSupport:
		return s.db.Collection(mdb.CollIssueSupports), nil
	case IssueShare:
		return s.db.Collection(mdb.CollIssueShares), nil
	case CommentLike:
		return s.db.Collection(mdb.CollCommentLikes), nil
	case ThreadSupport:
		return s.db.Collection(mdb.CollThreadSupports), nil
	}
	return nil, apperr.Validation("unknown engagement kind")
}

// Toggle flips the membership state for (entityID, userID): an existing
// record is removed and reported off, otherwise one record is inserted and
// reported on. There is exactly one write path; the unique index on
// (entity_id, user_id) keeps concurrent togglers from double-inserting.
func (s *Store) Toggle(ctx context.Context, kind EventKind, entityID, userID string) (bool, error) {
	if kind == IssueShare {
		return false, apperr.Validation("shares are recorded, not toggled")
	}

	coll, err := s.collection(kind)
	if err != nil {
		return false, err
	}

	filter := bson.M{"entity_id": entityID, "user_id": userID}

	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	_, err = coll.InsertOne(ctx, Event{
		EntityID:  entityID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// Lost the race against another toggle of the same pair; the
		// record exists, which is the state this call was producing.
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, apperr.Internal(err)
	}
	return true, nil
}

// RecordShare appends a share event. Shares are never toggled; a repeat on
// the same platform trips the (entity_id, user_id, platform) unique index.
func (s *Store) RecordShare(ctx context.Context, entityID, userID, platform string) error {
	if platform == "" {
		return apperr.Validation("platform is required")
	}

	_, err := s.db.Collection(mdb.CollIssueShares).InsertOne(ctx, Event{
		EntityID:  entityID,
		UserID:    userID,
		Platform:  platform,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("already shared on this platform")
		}
		return apperr.Internal(err)
	}
	return nil
}

// IncrementView bumps the per-entity view counter with a single atomic
// upsert, so concurrent callers never lose updates and never create more
// than one counter document per entity.
func (s *Store) IncrementView(ctx context.Context, entityID string) error {
	res := s.db.Collection(mdb.CollIssueViews).FindOneAndUpdate(ctx,
		bson.M{"entity_id": entityID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetUpsert(true),
	)
	if err := res.Err(); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.Internal(err)
	}
	return nil
}

// Count returns the number of events of a kind recorded for the entity.
func (s *Store) Count(ctx context.Context, kind EventKind, entityID string) (int64, error) {
	coll, err := s.collection(kind)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{"entity_id": entityID})
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

// ViewCount reads the accumulated view counter, zero when no document exists.
func (s *Store) ViewCount(ctx context.Context, entityID string) (int64, error) {
	var doc struct {
		Views int64 `bson:"views"`
	}
	err := s.db.Collection(mdb.CollIssueViews).FindOne(ctx, bson.M{"entity_id": entityID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return doc.Views, nil
}

// IsSet reports whether (entityID, userID) currently holds an event of kind.
func (s *Store) IsSet(ctx context.Context, kind EventKind, entityID, userID string) (bool, error) {
	coll, err := s.collection(kind)
	if err != nil {
		return false, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{"entity_id": entityID, "user_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, apperr.Internal(err)
	}
	return n > 0, nil
}

// DistinctPlatforms lists the platforms the entity has been shared on.
func (s *Store) DistinctPlatforms(ctx context.Context, entityID string) ([]string, error) {
	values, err := s.db.Collection(mdb.CollIssueShares).Distinct(ctx, "platform", bson.M{"entity_id": entityID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	platforms := make([]string, 0, len(values))
	for _, v := range values {
		if p, ok := v.(string); ok {
			platforms = append(platforms, p)
		}
	}
	return platforms, nil
}

// TopSupported aggregates the most supported issues.
func (s *Store) TopSupported(ctx context.Context, limit int) ([]EntityCount, error) {
	if limit <= 0 {
		limit = 3
	}

	cursor, err := s.db.Collection(mdb.CollIssueSupports).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$entity_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer cursor.Close(ctx)

	var out []EntityCount
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
