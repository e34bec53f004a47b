package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Steve1314/ChatBackend/internal/store"
)

type readReceiptDoc struct {
	User   string    `bson:"user"`
	ReadAt time.Time `bson:"readAt"`
}

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Chat      string             `bson:"chat"`
	Sender    string             `bson:"sender"`
	Text      string             `bson:"text,omitempty"`
	Media     []string           `bson:"media,omitempty"`
	Status    string             `bson:"status"`
	ReadBy    []readReceiptDoc   `bson:"readBy,omitempty"`
	Deleted   bool               `bson:"deleted"`
	DeletedAt *time.Time         `bson:"deletedAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *messageDoc) toStore() *store.Message {
	readBy := make([]store.ReadReceipt, 0, len(d.ReadBy))
	for _, r := range d.ReadBy {
		readBy = append(readBy, store.ReadReceipt{UserID: r.User, ReadAt: r.ReadAt})
	}
	return &store.Message{
		ID:        d.ID.Hex(),
		ChatID:    d.Chat,
		SenderID:  d.Sender,
		Text:      d.Text,
		MediaIDs:  d.Media,
		Status:    store.MessageStatus(d.Status),
		ReadBy:    readBy,
		Deleted:   d.Deleted,
		DeletedAt: d.DeletedAt,
		CreatedAt: d.CreatedAt,
	}
}

// CreateMessage inserts a message document.
func (s *Store) CreateMessage(ctx context.Context, m *store.Message) (*store.Message, error) {
	doc := messageDoc{
		Chat:      m.ChatID,
		Sender:    m.SenderID,
		Text:      m.Text,
		Media:     m.MediaIDs,
		Status:    string(m.Status),
		CreatedAt: time.Now().UTC(),
	}
	if doc.Status == "" {
		doc.Status = string(store.MessageStatusSent)
	}

	res, err := s.messages.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toStore(), nil
}

// GetMessageByID retrieves a message by hex ID.
func (s *Store) GetMessageByID(ctx context.Context, id string) (*store.Message, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc messageDoc
	if err := s.messages.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}

// ListMessagesForChat lists a chat's messages in chronological order.
func (s *Store) ListMessagesForChat(ctx context.Context, chatID string) ([]*store.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := s.messages.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*store.Message
	for cur.Next(ctx) {
		var doc messageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toStore())
	}
	return out, cur.Err()
}

// MarkMessageDeleted soft-deletes a message so read receipts survive.
func (s *Store) MarkMessageDeleted(ctx context.Context, id string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"deleted": true, "deletedAt": at}}
	res, err := s.messages.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
