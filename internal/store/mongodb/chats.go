package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Steve1314/ChatBackend/internal/store"
)

type chatDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Type          string             `bson:"type"`
	Name          string             `bson:"name,omitempty"`
	Description   string             `bson:"description,omitempty"`
	Members       []string           `bson:"members"`
	Admin         string             `bson:"admin,omitempty"`
	LastMessage   string             `bson:"lastMessage,omitempty"`
	LastMessageAt time.Time          `bson:"lastMessageAt"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *chatDoc) toStore() *store.Chat {
	return &store.Chat{
		ID:            d.ID.Hex(),
		Type:          store.ChatType(d.Type),
		Name:          d.Name,
		Description:   d.Description,
		MemberIDs:     d.Members,
		AdminID:       d.Admin,
		LastMessageID: d.LastMessage,
		LastMessageAt: d.LastMessageAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// CreateChat inserts a new chat document.
func (s *Store) CreateChat(ctx context.Context, c *store.Chat) (*store.Chat, error) {
	now := time.Now().UTC()
	doc := chatDoc{
		Type:          string(c.Type),
		Name:          c.Name,
		Description:   c.Description,
		Members:       c.MemberIDs,
		Admin:         c.AdminID,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if doc.Type == "" {
		doc.Type = string(store.ChatTypePrivate)
	}

	res, err := s.chats.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toStore(), nil
}

// GetChatByID retrieves a chat by hex ID.
func (s *Store) GetChatByID(ctx context.Context, id string) (*store.Chat, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc chatDoc
	if err := s.chats.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}

// GetPrivateChat finds the private chat with exactly the two given members.
func (s *Store) GetPrivateChat(ctx context.Context, userA, userB string) (*store.Chat, error) {
	filter := bson.M{
		"type":    string(store.ChatTypePrivate),
		"members": bson.M{"$all": bson.A{userA, userB}, "$size": 2},
	}
	var doc chatDoc
	if err := s.chats.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}

// ListChatsForUser lists chats the user belongs to, most recently active first.
func (s *Store) ListChatsForUser(ctx context.Context, userID string) ([]*store.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	cur, err := s.chats.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*store.Chat
	for cur.Next(ctx) {
		var doc chatDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toStore())
	}
	return out, cur.Err()
}

// IsChatMember reports whether the user belongs to the chat.
func (s *Store) IsChatMember(ctx context.Context, chatID, userID string) (bool, error) {
	oid, err := objectID(chatID)
	if err != nil {
		return false, nil
	}
	count, err := s.chats.CountDocuments(ctx, bson.M{"_id": oid, "members": userID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TouchChat records the latest message on the chat.
func (s *Store) TouchChat(ctx context.Context, chatID, lastMessageID string, at time.Time) error {
	oid, err := objectID(chatID)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"lastMessage":   lastMessageID,
		"lastMessageAt": at,
		"updatedAt":     time.Now().UTC(),
	}}
	_, err = s.chats.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}
