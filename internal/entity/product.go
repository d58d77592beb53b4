package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PaymentType string

const (
	PaymentFree PaymentType = "free"
	PaymentPaid PaymentType = "paid"
)

// Discount is an optional descriptor attached to a product. Until is a
// calendar date ("2006-01-02"); an empty Until means the discount never
// expires by date.
type Discount struct {
	Type  DiscountType `bson:"type" json:"type"`
	Value float64      `bson:"value" json:"value"`
	Until string       `bson:"until,omitempty" json:"until,omitempty"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	PaymentType PaymentType        `bson:"payment_type" json:"paymentType"`

	CategoryID   string   `bson:"category_id,omitempty" json:"categoryId,omitempty"`
	TypeID       string   `bson:"type_id,omitempty" json:"typeId,omitempty"`
	FrameworkIDs []string `bson:"framework_ids,omitempty" json:"frameworkIds,omitempty"`
	TagIDs       []string `bson:"tag_ids,omitempty" json:"tagIds,omitempty"`
	Images       []string `bson:"images,omitempty" json:"images,omitempty"`

	Discount *Discount `bson:"discount,omitempty" json:"discount,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ProductFilter describes the storefront search/listing query.
type ProductFilter struct {
	Query       string
	CategoryID  string
	TypeID      string
	TagID       string
	FrameworkID string
	MinPrice    float64
	MaxPrice    float64
	Page        int64
	Limit       int64
	SortBy      string
	SortOrder   string
}
