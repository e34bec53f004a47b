package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Steve1314/ChatBackend/internal/store"
)

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      string             `bson:"user"`
	Type      string             `bson:"type"`
	Title     string             `bson:"title,omitempty"`
	Body      string             `bson:"body,omitempty"`
	Meta      map[string]any     `bson:"meta,omitempty"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *notificationDoc) toStore() *store.Notification {
	return &store.Notification{
		ID:        d.ID.Hex(),
		UserID:    d.User,
		Type:      d.Type,
		Title:     d.Title,
		Body:      d.Body,
		Meta:      d.Meta,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

// CreateNotification inserts a notification document.
func (s *Store) CreateNotification(ctx context.Context, n *store.Notification) (*store.Notification, error) {
	doc := notificationDoc{
		User:      n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Meta:      n.Meta,
		CreatedAt: time.Now().UTC(),
	}
	if doc.Type == "" {
		doc.Type = "message"
	}

	res, err := s.notifications.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toStore(), nil
}

// ListNotificationsForUser lists a user's notifications, newest first.
func (s *Store) ListNotificationsForUser(ctx context.Context, userID string) ([]*store.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.notifications.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*store.Notification
	for cur.Next(ctx) {
		var doc notificationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toStore())
	}
	return out, cur.Err()
}
