package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Steve1314/ChatBackend/internal/store"
)

type mediaDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Filename  string             `bson:"filename"`
	MimeType  string             `bson:"mimetype"`
	Size      int64              `bson:"size"`
	Path      string             `bson:"path"`
	Uploader  string             `bson:"uploader"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *mediaDoc) toStore() *store.Media {
	return &store.Media{
		ID:         d.ID.Hex(),
		Filename:   d.Filename,
		MimeType:   d.MimeType,
		Size:       d.Size,
		Path:       d.Path,
		UploaderID: d.Uploader,
		CreatedAt:  d.CreatedAt,
	}
}

// CreateMedia inserts media metadata.
func (s *Store) CreateMedia(ctx context.Context, m *store.Media) (*store.Media, error) {
	doc := mediaDoc{
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		Size:      m.Size,
		Path:      m.Path,
		Uploader:  m.UploaderID,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.media.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toStore(), nil
}

// ListMediaByIDs retrieves media matching any of the given hex IDs.
func (s *Store) ListMediaByIDs(ctx context.Context, ids []string) ([]*store.Media, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	cur, err := s.media.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*store.Media
	for cur.Next(ctx) {
		var doc mediaDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toStore())
	}
	return out, cur.Err()
}
