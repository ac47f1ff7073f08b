// Package catalog implements product and category services on top of the
// store. Besides plain CRUD, ProductService exposes map-in/map-out handlers
// used as assistant tool implementations; those never return a Go error for
// domain failures — they report an "error" key so the model can react.
package catalog

import (
	"context"
	"fmt"
	"math"

	"github.com/shopmind/shopmind/notifier"
	"github.com/shopmind/shopmind/store"
)

// ProductService owns catalog product operations.
type ProductService struct {
	store    *store.Store
	notifier notifier.Notifier
}

func NewProductService(st *store.Store, n notifier.Notifier) *ProductService {
	return &ProductService{store: st, notifier: n}
}

// GetAll returns all products.
func (s *ProductService) GetAll(ctx context.Context) ([]*store.Product, error) {
	return s.store.ListProducts(ctx, &store.FindProduct{})
}

// Find returns the product with the given id, or nil when absent.
func (s *ProductService) Find(ctx context.Context, id int32) (*store.Product, error) {
	return s.store.GetProduct(ctx, &store.FindProduct{ID: &id})
}

// Create persists a new product and emits product.created.
func (s *ProductService) Create(ctx context.Context, create *store.Product) (*store.Product, error) {
	product, err := s.store.CreateProduct(ctx, create)
	if err != nil {
		return nil, err
	}
	notifier.Emit(ctx, s.notifier, notifier.TopicProducts, notifier.Event{
		Name:    notifier.EventProductCreated,
		Payload: map[string]any{"id": product.ID, "name": product.Name, "price": product.Price},
	})
	return product, nil
}

// Update applies a partial update and emits product.updated.
func (s *ProductService) Update(ctx context.Context, update *store.UpdateProduct) (*store.Product, error) {
	product, err := s.store.UpdateProduct(ctx, update)
	if err != nil {
		return nil, err
	}
	notifier.Emit(ctx, s.notifier, notifier.TopicProducts, notifier.Event{
		Name:    notifier.EventProductUpdated,
		Payload: map[string]any{"id": product.ID, "name": product.Name, "price": product.Price},
	})
	return product, nil
}

// Delete removes a product and emits product.deleted.
func (s *ProductService) Delete(ctx context.Context, id int32) error {
	if err := s.store.DeleteProduct(ctx, &store.DeleteProduct{ID: id}); err != nil {
		return err
	}
	notifier.Emit(ctx, s.notifier, notifier.TopicProducts, notifier.Event{
		Name:    notifier.EventProductDeleted,
		Payload: map[string]any{"id": id},
	})
	return nil
}

// resolveCategory matches a free-text category name against the category
// table by name or slug.
func (s *ProductService) resolveCategory(ctx context.Context, name string) (*store.Category, error) {
	category, err := s.store.GetCategory(ctx, &store.FindCategory{Name: &name})
	if err != nil {
		return nil, err
	}
	if category == nil {
		category, err = s.store.GetCategory(ctx, &store.FindCategory{Slug: &name})
		if err != nil {
			return nil, err
		}
	}
	return category, nil
}

func productMap(p *store.Product) map[string]any {
	m := map[string]any{
		"id":       p.ID,
		"name":     p.Name,
		"price":    p.Price,
		"discount": p.Discount,
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.CategoryID != nil {
		m["category_id"] = *p.CategoryID
	}
	return m
}

func productMaps(products []*store.Product) []map[string]any {
	out := make([]map[string]any, len(products))
	for i, p := range products {
		out[i] = productMap(p)
	}
	return out
}

// ListProducts is the list_products tool handler. Accepts an optional
// free-text "category" filter.
func (s *ProductService) ListProducts(ctx context.Context, args map[string]any) (map[string]any, error) {
	find := &store.FindProduct{}
	category, hasCategory := stringArg(args, "category")
	if hasCategory {
		find.CategoryName = &category
	}

	products, err := s.store.ListProducts(ctx, find)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	payload := map[string]any{"count": len(products)}
	if hasCategory {
		payload["category"] = category
	}
	notifier.Emit(ctx, s.notifier, notifier.TopicProducts, notifier.Event{
		Name:    notifier.EventProductsListed,
		Payload: payload,
	})

	return map[string]any{"products": productMaps(products)}, nil
}

// GetProduct is the get_product tool handler.
func (s *ProductService) GetProduct(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, ok := intArg(args, "id")
	if !ok {
		return map[string]any{"error": "id is required"}, nil
	}

	product, err := s.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return map[string]any{"error": "Product not found"}, nil
	}

	return map[string]any{"product": productMap(product)}, nil
}

// CreateProduct is the create_product tool handler.
func (s *ProductService) CreateProduct(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, hasName := stringArg(args, "name")
	price, hasPrice := floatArg(args, "price")
	categoryName, hasCategory := stringArg(args, "category")
	if !hasName || !hasPrice || !hasCategory {
		return map[string]any{"error": "name, price and category are required"}, nil
	}

	category, err := s.resolveCategory(ctx, categoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return map[string]any{"error": fmt.Sprintf("Unknown category: %s", categoryName)}, nil
	}

	create := &store.Product{
		Name:       name,
		Price:      price,
		CategoryID: &category.ID,
	}
	if description, ok := stringArg(args, "description"); ok {
		create.Description = &description
	}
	if discount, ok := floatArg(args, "discount"); ok {
		create.Discount = discount
	}

	product, err := s.Create(ctx, create)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return map[string]any{"product": productMap(product), "message": "Product created successfully"}, nil
}

// UpdateProduct is the update_product tool handler. Only keys explicitly
// present in the arguments are applied.
func (s *ProductService) UpdateProduct(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, ok := intArg(args, "id")
	if !ok {
		return map[string]any{"error": "id is required"}, nil
	}

	existing, err := s.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return map[string]any{"error": "Product not found"}, nil
	}

	update := &store.UpdateProduct{ID: id}
	changed := false
	if name, ok := stringArg(args, "name"); ok {
		update.Name, changed = &name, true
	}
	if description, ok := stringArg(args, "description"); ok {
		update.Description, changed = &description, true
	}
	if price, ok := floatArg(args, "price"); ok {
		update.Price, changed = &price, true
	}
	if discount, ok := floatArg(args, "discount"); ok {
		update.Discount, changed = &discount, true
	}
	if categoryName, ok := stringArg(args, "category"); ok {
		category, err := s.resolveCategory(ctx, categoryName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		if category == nil {
			return map[string]any{"error": fmt.Sprintf("Unknown category: %s", categoryName)}, nil
		}
		update.CategoryID, changed = &category.ID, true
	}

	if !changed {
		return map[string]any{"product": productMap(existing), "message": "Nothing to update"}, nil
	}

	product, err := s.Update(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return map[string]any{"product": productMap(product), "message": "Product updated successfully"}, nil
}

// DeleteProduct is the delete_product tool handler.
func (s *ProductService) DeleteProduct(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, ok := intArg(args, "id")
	if !ok {
		return map[string]any{"error": "id is required"}, nil
	}

	product, err := s.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return map[string]any{"error": "Product not found"}, nil
	}

	if err := s.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return map[string]any{"message": "Product deleted successfully"}, nil
}

// SearchProducts is the search_products tool handler. Matches on product
// name and/or category, case-insensitive substring.
func (s *ProductService) SearchProducts(ctx context.Context, args map[string]any) (map[string]any, error) {
	find := &store.FindProduct{}
	if category, ok := stringArg(args, "category"); ok {
		find.CategoryName = &category
	}
	if name, ok := stringArg(args, "name"); ok {
		find.NameSearch = &name
	}

	products, err := s.store.ListProducts(ctx, find)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	if len(products) == 0 {
		return map[string]any{"products": []map[string]any{}, "message": "No products found"}, nil
	}

	return map[string]any{"products": productMaps(products)}, nil
}

// ApplyDiscount is the apply_discount tool handler. Reduces the price of
// every product in a category by the given percentage.
func (s *ProductService) ApplyDiscount(ctx context.Context, args map[string]any) (map[string]any, error) {
	categoryName, hasCategory := stringArg(args, "category")
	percent, hasPercent := floatArg(args, "discount_percent")
	if !hasCategory || !hasPercent {
		return map[string]any{"error": "category and discount_percent are required"}, nil
	}
	if percent < 0 || percent > 100 {
		return map[string]any{"error": "discount_percent must be between 0 and 100"}, nil
	}

	products, err := s.store.ListProducts(ctx, &store.FindProduct{CategoryName: &categoryName})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if len(products) == 0 {
		return map[string]any{"error": fmt.Sprintf("No products found in category '%s'", categoryName)}, nil
	}

	updated := 0
	for _, p := range products {
		newPrice := math.Round(p.Price*(1-percent/100)*100) / 100
		if _, err := s.Update(ctx, &store.UpdateProduct{ID: p.ID, Price: &newPrice}); err != nil {
			return nil, fmt.Errorf("failed to discount product %d: %w", p.ID, err)
		}
		updated++
	}

	return map[string]any{
		"message": fmt.Sprintf("Applied %.0f%% discount to %d products in category '%s'", percent, updated, categoryName),
		"count":   updated,
	}, nil
}
