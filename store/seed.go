package store

import (
	"context"
	"fmt"
	"log/slog"
)

type seedProduct struct {
	name        string
	description string
	price       float64
	discount    float64
	category    string
}

var seedCategories = []Category{
	{Name: "Electronics", Slug: "electronics", Description: strPtr("Electronic devices and gadgets")},
	{Name: "Books", Slug: "books", Description: strPtr("Books and literature")},
	{Name: "Clothing", Slug: "clothing", Description: strPtr("Clothing and fashion")},
	{Name: "Home & Garden", Slug: "home-garden", Description: strPtr("Home and garden products")},
	{Name: "Sports & Outdoors", Slug: "sports-outdoors", Description: strPtr("Sports equipment and outdoor gear")},
}

var seedProducts = []seedProduct{
	{"MacBook Pro", "Powerful laptop", 2499, 0, "electronics"},
	{"iPad Air", "Tablet device", 599, 10, "electronics"},
	{"AirPods Pro", "Wireless earbuds", 249, 0, "electronics"},
	{"Clean Code", "Programming book", 45, 15, "books"},
	{"The Pragmatic Programmer", "Essential read for developers", 50, 0, "books"},
	{"Nike Running Shoes", "Comfortable running shoes", 120, 20, "clothing"},
	{"Adidas T-Shirt", "Cotton t-shirt", 35, 0, "clothing"},
	{"Garden Tools Set", "Complete gardening set", 89, 10, "home-garden"},
	{"LED Lamp", "Energy efficient lamp", 25, 0, "home-garden"},
	{"Yoga Mat", "Non-slip yoga mat", 40, 5, "sports-outdoors"},
	{"Dumbbells Set", "20kg adjustable dumbbells", 150, 0, "sports-outdoors"},
}

// SeedDemoData populates the demo catalog. It is a no-op when any category
// already exists, so restarting a dev instance does not duplicate rows.
func (s *Store) SeedDemoData(ctx context.Context) error {
	existing, err := s.ListCategories(ctx, &FindCategory{})
	if err != nil {
		return fmt.Errorf("failed to check existing categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	categoryBySlug := make(map[string]int32, len(seedCategories))
	for _, c := range seedCategories {
		category := c
		created, err := s.CreateCategory(ctx, &category)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Slug, err)
		}
		categoryBySlug[created.Slug] = created.ID
	}

	for _, p := range seedProducts {
		categoryID := categoryBySlug[p.category]
		description := p.description
		if _, err := s.CreateProduct(ctx, &Product{
			Name:        p.name,
			Description: &description,
			Price:       p.price,
			Discount:    p.discount,
			CategoryID:  &categoryID,
		}); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
	}

	slog.Info("seeded demo catalog", "categories", len(seedCategories), "products", len(seedProducts))
	return nil
}

func strPtr(s string) *string {
	return &s
}
