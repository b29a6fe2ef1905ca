package mdb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names for the engagement document store.
const (
	CollIssueLikes     = "issue_likes"
	CollIssueSupports  = "issue_supports"
	CollIssueShares    = "issue_shares"
	CollCommentLikes   = "comment_likes"
	CollThreadSupports = "thread_supports"
	CollIssueViews     = "issue_views"
)

// Connect opens the Mongo client and checks connectivity.
func Connect(ctx context.Context, url string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return client, nil
}

// EnsureIndexes creates the uniqueness constraints the engagement store
// relies on. At-most-one like/support per (entity, subject) and one view
// counter document per entity are enforced here, not in application code.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	pairUnique := []mongo.IndexModel{{
		Keys:    bson.D{{Key: "entity_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}}

	for _, coll := range []string{CollIssueLikes, CollIssueSupports, CollCommentLikes, CollThreadSupports} {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, pairUnique); err != nil {
			return err
		}
	}

	_, err := db.Collection(CollIssueShares).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "entity_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "platform", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(CollIssueViews).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "entity_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
