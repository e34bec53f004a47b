package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Steve1314/ChatBackend/internal/store"
)

type callParticipantDoc struct {
	User     string     `bson:"user"`
	JoinedAt *time.Time `bson:"joinedAt,omitempty"`
	LeftAt   *time.Time `bson:"leftAt,omitempty"`
	Duration int64      `bson:"duration,omitempty"`
}

type callDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Chat            string               `bson:"chat"`
	Caller          string               `bson:"caller"`
	Receivers       []string             `bson:"receivers,omitempty"`
	Type            string               `bson:"type"`
	Status          string               `bson:"status"`
	StartedAt       *time.Time           `bson:"startedAt,omitempty"`
	EndedAt         *time.Time           `bson:"endedAt,omitempty"`
	Duration        int64                `bson:"duration"`
	Participants    []callParticipantDoc `bson:"participants,omitempty"`
	RejectionReason string               `bson:"rejectionReason,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func (d *callDoc) toStore() *store.Call {
	participants := make([]store.CallParticipant, 0, len(d.Participants))
	for _, p := range d.Participants {
		participants = append(participants, store.CallParticipant{
			UserID:   p.User,
			JoinedAt: p.JoinedAt,
			LeftAt:   p.LeftAt,
			Duration: p.Duration,
		})
	}
	return &store.Call{
		ID:              d.ID.Hex(),
		ChatID:          d.Chat,
		CallerID:        d.Caller,
		ReceiverIDs:     d.Receivers,
		Type:            store.CallType(d.Type),
		Status:          store.CallStatus(d.Status),
		StartedAt:       d.StartedAt,
		EndedAt:         d.EndedAt,
		Duration:        d.Duration,
		Participants:    participants,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func participantsToDoc(in []store.CallParticipant) []callParticipantDoc {
	out := make([]callParticipantDoc, 0, len(in))
	for _, p := range in {
		out = append(out, callParticipantDoc{
			User:     p.UserID,
			JoinedAt: p.JoinedAt,
			LeftAt:   p.LeftAt,
			Duration: p.Duration,
		})
	}
	return out
}

// CreateCall inserts a call document.
func (s *Store) CreateCall(ctx context.Context, c *store.Call) (*store.Call, error) {
	now := time.Now().UTC()
	doc := callDoc{
		Chat:         c.ChatID,
		Caller:       c.CallerID,
		Receivers:    c.ReceiverIDs,
		Type:         string(c.Type),
		Status:       string(c.Status),
		StartedAt:    c.StartedAt,
		Participants: participantsToDoc(c.Participants),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if doc.Type == "" {
		doc.Type = string(store.CallTypeAudio)
	}
	if doc.Status == "" {
		doc.Status = string(store.CallStatusRinging)
	}

	res, err := s.calls.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toStore(), nil
}

// GetCallByID retrieves a call by hex ID.
func (s *Store) GetCallByID(ctx context.Context, id string) (*store.Call, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc callDoc
	if err := s.calls.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toStore(), nil
}

// UpdateCall replaces the mutable lifecycle fields of a call.
func (s *Store) UpdateCall(ctx context.Context, c *store.Call) error {
	oid, err := objectID(c.ID)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"status":          string(c.Status),
		"startedAt":       c.StartedAt,
		"endedAt":         c.EndedAt,
		"duration":        c.Duration,
		"participants":    participantsToDoc(c.Participants),
		"rejectionReason": c.RejectionReason,
		"updatedAt":       time.Now().UTC(),
	}}
	res, err := s.calls.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListCallsForChat lists a chat's calls, newest first, up to limit.
func (s *Store) ListCallsForChat(ctx context.Context, chatID string, limit int) ([]*store.Call, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.calls.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*store.Call
	for cur.Next(ctx) {
		var doc callDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toStore())
	}
	return out, cur.Err()
}

// DeleteCall removes a call record.
func (s *Store) DeleteCall(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.calls.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
