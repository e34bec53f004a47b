package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Steve1314/ChatBackend/internal/store"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	AvatarURL    string             `bson:"avatarUrl,omitempty"`
	Status       string             `bson:"status,omitempty"`
	LastSeen     time.Time          `bson:"lastSeen,omitempty"`
	TypingIn     string             `bson:"typingIn,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *userDoc) toStore() *store.User {
	return &store.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		AvatarURL:    d.AvatarURL,
		Status:       d.Status,
		LastSeen:     d.LastSeen,
		TypingIn:     d.TypingIn,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// CreateUser inserts a new user document.
func (s *Store) CreateUser(ctx context.Context, u *store.User) (*store.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		AvatarURL:    u.AvatarURL,
		Status:       u.Status,
		LastSeen:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if doc.Status == "" {
		doc.Status = "Hey there! I am using ChatApp."
	}

	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toStore(), nil
}

// GetUserByID retrieves a user by hex ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}

// ListUsersByEmails retrieves users matching any of the given emails.
func (s *Store) ListUsersByEmails(ctx context.Context, emails []string) ([]*store.User, error) {
	return s.findUsers(ctx, bson.M{"email": bson.M{"$in": emails}})
}

// ListUsersByIDs retrieves users matching any of the given hex IDs.
func (s *Store) ListUsersByIDs(ctx context.Context, ids []string) ([]*store.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return s.findUsers(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (s *Store) findUsers(ctx context.Context, filter bson.M) ([]*store.User, error) {
	cur, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*store.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toStore())
	}
	return out, cur.Err()
}

// UpdateUserProfile updates profile fields by email; nil fields are untouched.
func (s *Store) UpdateUserProfile(ctx context.Context, email string, name, avatarURL, status *string) (*store.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if avatarURL != nil {
		set["avatarUrl"] = *avatarURL
	}
	if status != nil {
		set["status"] = *status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := s.users.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}

// UpdateUserActivity stamps lastSeen and the chat the user is typing in.
func (s *Store) UpdateUserActivity(ctx context.Context, userID, typingIn string) (*store.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"lastSeen":  time.Now().UTC(),
		"typingIn":  typingIn,
		"updatedAt": time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}
