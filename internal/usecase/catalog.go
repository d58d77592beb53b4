package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/messaging/nats"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/platform/metrics"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/pricing"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product data")
	ErrDuplicateSlug   = errors.New("product slug already exists")
)

// ProductStore is the persistence contract for catalog products.
type ProductStore interface {
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Product, error)
	FindByFilter(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
}

// ProductCache is a read-through cache on product by id; a miss is
// (nil, nil).
type ProductCache interface {
	Get(ctx context.Context, id string) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher fans catalog mutations out to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ProductView is a product with its render-time pricing attached.
type ProductView struct {
	*entity.Product
	Pricing pricing.Quote `json:"pricing"`
}

// CatalogUsecase owns product and taxonomy management plus the
// storefront read paths.
type CatalogUsecase struct {
	products ProductStore
	cache    ProductCache
	events   EventPublisher
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewCatalogUsecase(products ProductStore, cache ProductCache, events EventPublisher, mx *metrics.Metrics, logger *zap.Logger) *CatalogUsecase {
	return &CatalogUsecase{
		products: products,
		cache:    cache,
		events:   events,
		metrics:  mx,
		logger:   logger.Named("CatalogUsecase"),
	}
}

// CreateProduct validates and persists a new product. Free products are
// forced to price zero; discount values are validated at write time so
// the evaluator never sees a percentage outside [0,100].
func (c *CatalogUsecase) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if err := c.normalizeAndValidate(product); err != nil {
		return nil, err
	}
	if err := c.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	c.metrics.ProductsCreatedTotal.Inc()
	c.publish(ctx, nats.SubjectProductCreated, product)
	c.logger.Info("Product created", zap.String("productID", product.ID.Hex()), zap.String("slug", product.Slug))
	return product, nil
}

func (c *CatalogUsecase) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	if product.ID.IsZero() {
		return nil, ErrInvalidProduct
	}
	if err := c.normalizeAndValidate(product); err != nil {
		return nil, err
	}
	if err := c.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	c.invalidate(ctx, product.ID.Hex())
	c.publish(ctx, nats.SubjectProductUpdated, product)
	return product, nil
}

func (c *CatalogUsecase) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := c.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	c.invalidate(ctx, id.Hex())
	c.publish(ctx, nats.SubjectProductDeleted, map[string]string{"id": id.Hex()})
	return nil
}

// GetProduct reads through the cache and attaches the pricing quote as of
// today.
func (c *CatalogUsecase) GetProduct(ctx context.Context, id primitive.ObjectID, today time.Time) (*ProductView, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, id.Hex())
		if err != nil {
			c.logger.Warn("Product cache read failed, falling back to store", zap.String("productID", id.Hex()), zap.Error(err))
		} else if cached != nil {
			return c.view(cached, today), nil
		}
	}

	product, err := c.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, product); err != nil {
			c.logger.Warn("Product cache write failed", zap.String("productID", id.Hex()), zap.Error(err))
		}
	}
	return c.view(product, today), nil
}

// GetProductBySlug serves the storefront's pretty-URL read path. Slug
// lookups bypass the id-keyed cache.
func (c *CatalogUsecase) GetProductBySlug(ctx context.Context, slug string, today time.Time) (*ProductView, error) {
	product, err := c.products.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return c.view(product, today), nil
}

// SearchProducts lists products matching the filter with pricing quotes.
func (c *CatalogUsecase) SearchProducts(ctx context.Context, filter entity.ProductFilter, today time.Time) ([]*ProductView, error) {
	products, err := c.products.FindByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]*ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, c.view(p, today))
	}
	return views, nil
}

func (c *CatalogUsecase) view(product *entity.Product, today time.Time) *ProductView {
	return &ProductView{
		Product: product,
		Pricing: pricing.NewQuote(product.Price, product.Discount, today),
	}
}

func (c *CatalogUsecase) normalizeAndValidate(product *entity.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	switch product.PaymentType {
	case entity.PaymentFree:
		product.Price = 0
	case entity.PaymentPaid, "":
		product.PaymentType = entity.PaymentPaid
	default:
		return fmt.Errorf("%w: unknown payment type %q", ErrInvalidProduct, product.PaymentType)
	}

	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}

	if d := product.Discount; d != nil {
		switch d.Type {
		case entity.DiscountPercentage:
			if d.Value < 0 || d.Value > 100 {
				return fmt.Errorf("%w: percentage discount must be between 0 and 100", ErrInvalidProduct)
			}
		case entity.DiscountFixed:
			if d.Value < 0 {
				return fmt.Errorf("%w: fixed discount must not be negative", ErrInvalidProduct)
			}
		default:
			return fmt.Errorf("%w: unknown discount type %q", ErrInvalidProduct, d.Type)
		}
		if d.Until != "" {
			if _, err := time.Parse(pricing.DateLayout, d.Until); err != nil {
				return fmt.Errorf("%w: discount end date must be YYYY-MM-DD", ErrInvalidProduct)
			}
		}
	}
	return nil
}

func (c *CatalogUsecase) invalidate(ctx context.Context, id string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, id); err != nil {
		c.logger.Warn("Product cache invalidation failed", zap.String("productID", id), zap.Error(err))
	}
}

func (c *CatalogUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, subject, data); err != nil {
		c.logger.Warn("Catalog event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Slugify lowercases a name and collapses runs of non-alphanumerics into
// single dashes.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
