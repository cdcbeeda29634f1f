// Package seed loads a starter catalogue into an empty product store.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

var sizes = []string{"XS", "S", "M", "L", "XL"}

// Catalogue returns the sample products, inactive and unsaved.
func Catalogue() []domain.Product {
	return []domain.Product{
		{
			Title:        "Parisian Silk Blouse",
			Description:  "Silk blouse with mother-of-pearl buttons and soft pleating.",
			Price:        4500,
			Category:     domain.CategoryTops,
			Images:       []string{"https://images.unsplash.com/photo-1564557287817-3785e38ec1f5?w=600&h=800&fit=crop"},
			Sizes:        sizes,
			Colors:       []string{"Ivory Pearl", "Blush Rose", "Midnight Navy"},
			Material:     "100% Mulberry Silk",
			Stock:        25,
			IsNewArrival: true,
			IsFeatured:   true,
			Rating:       4.8,
			ReviewCount:  34,
			Tags:         []string{"elegant", "silk", "parisian", "luxury"},
		},
		{
			Title:        "Grace Kelly Midi Dress",
			Description:  "A-line midi dress with subtle pleating and a concealed back zipper.",
			Price:        5800,
			Category:     domain.CategoryDresses,
			Images:       []string{"https://images.unsplash.com/photo-1515372039744-b8f02a3ae446?w=600&h=800&fit=crop"},
			Sizes:        sizes,
			Colors:       []string{"Classic Black", "Royal Navy", "Wine Burgundy"},
			Material:     "Premium Ponte Knit",
			Stock:        18,
			IsNewArrival: true,
			IsFeatured:   true,
			Rating:       4.9,
			ReviewCount:  52,
			Tags:         []string{"midi", "aline", "classic", "hollywood"},
		},
		{
			Title:       "Executive Power Trousers",
			Description: "High-waisted tailored trousers with pressed creases and side pockets.",
			Price:       3900,
			Category:    domain.CategoryPants,
			Images:      []string{"https://images.unsplash.com/photo-1594633313593-bab3825d0caf?w=600&h=800&fit=crop"},
			Sizes:       sizes,
			Colors:      []string{"Jet Black", "Charcoal Gray", "Camel Tan"},
			Material:    "Italian Wool Blend",
			Stock:       22,
			IsFeatured:  true,
			Rating:      4.7,
			ReviewCount: 28,
			Tags:        []string{"highwaisted", "tailored", "executive"},
		},
		{
			Title:        "Garden Party Wrap Dress",
			Description:  "Wrap dress in a botanical print with an adjustable tie waist.",
			Price:        4200,
			Category:     domain.CategoryDresses,
			Images:       []string{"https://images.unsplash.com/photo-1469334031218-e382a71b716b?w=600&h=800&fit=crop"},
			Sizes:        sizes,
			Colors:       []string{"Rose Garden", "Lavender Fields", "Sage Meadow"},
			Material:     "Silk Chiffon",
			Stock:        14,
			IsNewArrival: true,
			Rating:       4.6,
			ReviewCount:  21,
			Tags:         []string{"floral", "wrap", "feminine", "garden"},
		},
		{
			Title:       "Palazzo Goddess Pants",
			Description: "Wide-leg palazzo pants for casual days and evenings out.",
			Price:       3200,
			Category:    domain.CategoryPants,
			Images:      []string{"https://images.unsplash.com/photo-1541099649105-f69ad21f3246?w=600&h=800&fit=crop"},
			Sizes:       sizes,
			Colors:      []string{"Midnight Black", "Ivory Cream", "Terracotta Sunset"},
			Material:    "Viscose Blend",
			Stock:       20,
			IsFeatured:  true,
			Rating:      4.5,
			ReviewCount: 18,
			Tags:        []string{"palazzo", "wideleg", "flowing"},
		},
		{
			Title:       "Minimalist Turtleneck",
			Description: "Turtleneck in organic cotton with a clean, close fit.",
			Price:       2800,
			Category:    domain.CategoryTops,
			Images:      []string{"https://images.unsplash.com/photo-1434389677669-e08b4cac3105?w=600&h=800&fit=crop"},
			Sizes:       sizes,
			Colors:      []string{"Pure White", "Charcoal Black", "Oatmeal Beige"},
			Material:    "100% Organic Cotton",
			Stock:       30,
			Rating:      4.4,
			ReviewCount: 67,
			Tags:        []string{"minimalist", "essential", "organic"},
		},
		{
			Title:        "Evening Goddess Gown",
			Description:  "Beaded evening gown in silk satin.",
			Price:        8900,
			Category:     domain.CategoryDresses,
			Images:       []string{"https://images.unsplash.com/photo-1566479179817-c0c46b1dc79a?w=600&h=800&fit=crop"},
			Sizes:        sizes,
			Colors:       []string{"Midnight Black", "Champagne Gold", "Deep Emerald"},
			Material:     "Silk Satin with Beading",
			Stock:        5,
			IsNewArrival: true,
			IsFeatured:   true,
			Rating:       5.0,
			ReviewCount:  12,
			Tags:         []string{"evening", "gown", "luxury"},
		},
		{
			Title:       "Pearl Drop Earrings",
			Description: "Freshwater pearl drops on gold-plated hooks.",
			Price:       1900,
			Category:    domain.CategoryAccessories,
			Images:      []string{"https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=600&h=800&fit=crop"},
			Colors:      []string{"Gold", "Silver"},
			Material:    "Freshwater Pearl",
			Stock:       40,
			Rating:      4.6,
			ReviewCount: 15,
			Tags:        []string{"pearl", "earrings", "jewelry"},
		},
	}
}

// Products inserts the catalogue when the store holds no products at all and
// returns how many were written.
func Products(ctx context.Context, repo repository.ProductRepository, log zerolog.Logger) (int, error) {
	existing, err := repo.Count(ctx, repository.ProductFilter{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		log.Info().Int64("existing", existing).Msg("catalogue not empty, skipping seed")
		return 0, nil
	}

	items := Catalogue()
	for i := range items {
		p := &items[i]
		p.IsActive = true
		if err := repo.Create(ctx, p); err != nil {
			return i, fmt.Errorf("seed %q: %w", p.Title, err)
		}
	}
	log.Info().Int("products", len(items)).Msg("sample catalogue seeded")
	return len(items), nil
}
