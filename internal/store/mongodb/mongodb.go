package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Steve1314/ChatBackend/internal/store"
)

// Store implements store.Store backed by MongoDB collections.
type Store struct {
	client        *mongo.Client
	users         *mongo.Collection
	chats         *mongo.Collection
	messages      *mongo.Collection
	media         *mongo.Collection
	calls         *mongo.Collection
	notifications *mongo.Collection
	log           *zerolog.Logger
}

// New connects to MongoDB, verifies the connection and ensures indexes.
func New(ctx context.Context, uri, database string, logger *zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:        client,
		users:         db.Collection("users"),
		chats:         db.Collection("chats"),
		messages:      db.Collection("messages"),
		media:         db.Collection("media"),
		calls:         db.Collection("calls"),
		notifications: db.Collection("notifications"),
		log:           logger,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return s, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	groups := []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}}},
		{s.chats, []mongo.IndexModel{{
			Keys: bson.D{{Key: "members", Value: 1}},
		}, {
			Keys: bson.D{{Key: "lastMessageAt", Value: -1}},
		}}},
		{s.messages, []mongo.IndexModel{{
			Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: 1}},
		}}},
		{s.calls, []mongo.IndexModel{{
			Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: -1}},
		}}},
		{s.notifications, []mongo.IndexModel{{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
		}}},
	}

	for _, g := range groups {
		if _, err := g.col.Indexes().CreateMany(indexCtx, g.models); err != nil {
			return fmt.Errorf("indexes for %s: %w", g.col.Name(), err)
		}
	}
	return nil
}

// objectID parses a hex document ID; unknown or malformed IDs behave as
// missing documents.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return oid, nil
}

// mapErr converts driver sentinel errors to store errors.
func mapErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return store.ErrNotFound
	}
	return err
}
