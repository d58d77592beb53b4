package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
)

// Taxonomy collection names.
const (
	CollectionCategories = "categories"
	CollectionTypes      = "types"
	CollectionTags       = "tags"
	CollectionFrameworks = "frameworks"
)

// TermRepository persists one taxonomy kind (categories, types, tags or
// frameworks); each kind gets its own instance bound to its collection.
type TermRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewTermRepository(db *mongo.Database, collection string, logger *zap.Logger) *TermRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coll := db.Collection(collection)
	index := mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := coll.Indexes().CreateOne(ctx, index); err != nil {
		logger.Warn("Failed to create index for taxonomy collection (may already exist)",
			zap.String("collection", collection), zap.Error(err))
	}

	return &TermRepository{collection: coll, logger: logger.Named("TermRepository").With(zap.String("collection", collection))}
}

func (r *TermRepository) Create(ctx context.Context, term *entity.Term) error {
	if term.ID.IsZero() {
		term.ID = primitive.NewObjectID()
	}
	now := time.Now()
	term.CreatedAt = now
	term.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, term)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate taxonomy name", zap.String("name", term.Name))
			return ErrDuplicateName
		}
		r.logger.Error("Database error during taxonomy creation", zap.String("name", term.Name), zap.Error(err))
		return err
	}
	return nil
}

func (r *TermRepository) Update(ctx context.Context, term *entity.Term) error {
	term.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":       term.Name,
		"slug":       term.Slug,
		"updated_at": term.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": term.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		r.logger.Error("Database error during taxonomy update", zap.String("termID", term.ID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TermRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Database error during taxonomy delete", zap.String("termID", id.Hex()), zap.Error(err))
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TermRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Term, error) {
	var term entity.Term
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&term)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Error("Database error fetching taxonomy entry", zap.String("termID", id.Hex()), zap.Error(err))
		return nil, err
	}
	return &term, nil
}

func (r *TermRepository) List(ctx context.Context) ([]*entity.Term, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		r.logger.Error("Database error listing taxonomy entries", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var terms []*entity.Term
	if err := cursor.All(ctx, &terms); err != nil {
		r.logger.Error("Error decoding taxonomy entries", zap.Error(err))
		return nil, err
	}
	return terms, nil
}
