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

// ProductRepository persists catalog products in the "products" collection.
type ProductRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewProductRepository(db *mongo.Database, logger *zap.Logger) *ProductRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.Collection("products")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("Failed to create indexes for products collection (may already exist)", zap.Error(err))
	}

	return &ProductRepository{collection: collection, logger: logger.Named("ProductRepository")}
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate slug during product creation", zap.String("slug", product.Slug))
			return ErrDuplicateName
		}
		r.logger.Error("Database error during product creation", zap.String("name", product.Name), zap.Error(err))
		return err
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		r.logger.Error("Database error during product update", zap.String("productID", product.ID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Database error during product delete", zap.String("productID", id.Hex()), zap.Error(err))
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Error("Database error fetching product", zap.String("productID", id.Hex()), zap.Error(err))
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Error("Database error fetching product by slug", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &product, nil
}

// FindByFilter lists products matching the storefront filter with
// pagination and sorting.
func (r *ProductRepository) FindByFilter(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	query := bson.M{}
	if filter.Query != "" {
		query["$or"] = []bson.M{
			{"name": bson.M{"$regex": filter.Query, "$options": "i"}},
			{"description": bson.M{"$regex": filter.Query, "$options": "i"}},
			{"slug": bson.M{"$regex": filter.Query, "$options": "i"}},
		}
	}
	if filter.CategoryID != "" {
		query["category_id"] = filter.CategoryID
	}
	if filter.TypeID != "" {
		query["type_id"] = filter.TypeID
	}
	if filter.TagID != "" {
		query["tag_ids"] = filter.TagID
	}
	if filter.FrameworkID != "" {
		query["framework_ids"] = filter.FrameworkID
	}
	if filter.MinPrice > 0 && filter.MaxPrice > 0 {
		query["price"] = bson.M{"$gte": filter.MinPrice, "$lte": filter.MaxPrice}
	} else if filter.MinPrice > 0 {
		query["price"] = bson.M{"$gte": filter.MinPrice}
	} else if filter.MaxPrice > 0 {
		query["price"] = bson.M{"$lte": filter.MaxPrice}
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	sortField := "created_at"
	switch filter.SortBy {
	case "price":
		sortField = "price"
	case "name":
		sortField = "name"
	}
	sortOrder := -1
	if filter.SortOrder == "asc" {
		sortOrder = 1
	}

	findOptions := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: sortField, Value: sortOrder}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		r.logger.Error("Database error during product search", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		r.logger.Error("Error decoding product search results", zap.Error(err))
		return nil, err
	}
	return products, nil
}
