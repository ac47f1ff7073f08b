package catalog

import (
	"context"

	"github.com/shopmind/shopmind/store"
)

// CategoryService owns catalog category operations.
type CategoryService struct {
	store *store.Store
}

func NewCategoryService(st *store.Store) *CategoryService {
	return &CategoryService{store: st}
}

func (s *CategoryService) GetAll(ctx context.Context) ([]*store.Category, error) {
	return s.store.ListCategories(ctx, &store.FindCategory{})
}

func (s *CategoryService) Find(ctx context.Context, id int32) (*store.Category, error) {
	return s.store.GetCategory(ctx, &store.FindCategory{ID: &id})
}

func (s *CategoryService) FindBySlug(ctx context.Context, slug string) (*store.Category, error) {
	return s.store.GetCategory(ctx, &store.FindCategory{Slug: &slug})
}

func (s *CategoryService) Create(ctx context.Context, create *store.Category) (*store.Category, error) {
	return s.store.CreateCategory(ctx, create)
}

func (s *CategoryService) Update(ctx context.Context, update *store.UpdateCategory) (*store.Category, error) {
	return s.store.UpdateCategory(ctx, update)
}

func (s *CategoryService) Delete(ctx context.Context, id int32) error {
	return s.store.DeleteCategory(ctx, &store.DeleteCategory{ID: id})
}
