package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryTops        Category = "tops"
	CategoryDresses     Category = "dresses"
	CategoryPants       Category = "pants"
	CategoryAccessories Category = "accessories"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTops, CategoryDresses, CategoryPants, CategoryAccessories:
		return true
	}
	return false
}

var (
	ErrProductNoImages = errors.New("product must have at least one image")
	ErrProductBadPrice = errors.New("product price must be greater than 0")
	ErrProductCategory = errors.New("category must be one of: tops, dresses, pants, accessories")
	ErrProductNoTitle  = errors.New("product title is required")
)

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	Category     Category           `bson:"category" json:"category"`
	Images       []string           `bson:"images" json:"images"`
	Sizes        []string           `bson:"sizes,omitempty" json:"sizes"`
	Colors       []string           `bson:"colors,omitempty" json:"colors"`
	Material     string             `bson:"material,omitempty" json:"material,omitempty"`
	Stock        int                `bson:"stock" json:"stock"`
	IsNewArrival bool               `bson:"isNewArrival" json:"isNewArrival"`
	IsFeatured   bool               `bson:"isFeatured" json:"isFeatured"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	Rating       float64            `bson:"rating" json:"rating"`
	ReviewCount  int                `bson:"reviewCount" json:"reviewCount"`
	Tags         []string           `bson:"tags,omitempty" json:"tags"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Image is derived on read and never stored.
	Image string `bson:"-" json:"image"`
}

// FirstImage returns the lead image or "" when the product has none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Normalize enforces the write-side invariants: at least one image, positive
// price, known category, stock clamped to zero and default tags.
func (p *Product) Normalize() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return ErrProductNoTitle
	}
	if len(p.Images) == 0 {
		return ErrProductNoImages
	}
	if p.Price <= 0 {
		return ErrProductBadPrice
	}
	p.Category = Category(strings.ToLower(string(p.Category)))
	if !p.Category.Valid() {
		return ErrProductCategory
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	if len(p.Tags) == 0 {
		p.Tags = append(p.Tags, string(p.Category))
		for _, w := range strings.Fields(strings.ToLower(p.Title)) {
			if len(w) > 2 {
				p.Tags = append(p.Tags, w)
			}
		}
	}
	return nil
}
