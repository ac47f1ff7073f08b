package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopmind/shopmind/store"
)

type categoryResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	CreatedTs   int64   `json:"created_ts"`
	UpdatedTs   int64   `json:"updated_ts"`
}

func convertCategory(c *store.Category) *categoryResponse {
	return &categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedTs:   c.CreatedTs,
		UpdatedTs:   c.UpdatedTs,
	}
}

// ListCategories returns all categories.
//
// GET /api/v1/categories
func (s *APIV1Service) ListCategories(c echo.Context) error {
	categories, err := s.Categories.GetAll(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to list categories")
	}
	responses := make([]*categoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = convertCategory(category)
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": responses})
}

type upsertCategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

// CreateCategory creates a category.
//
// POST /api/v1/categories
func (s *APIV1Service) CreateCategory(c echo.Context) error {
	request := &upsertCategoryRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}
	if request.Name == nil || *request.Name == "" || request.Slug == nil || *request.Slug == "" {
		return errorJSON(c, http.StatusUnprocessableEntity, "name and slug are required")
	}

	category, err := s.Categories.Create(c.Request().Context(), &store.Category{
		Name:        *request.Name,
		Slug:        *request.Slug,
		Description: request.Description,
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to create category")
	}
	return c.JSON(http.StatusCreated, map[string]any{"category": convertCategory(category)})
}

// GetCategory returns one category by id.
//
// GET /api/v1/categories/:id
func (s *APIV1Service) GetCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	category, err := s.Categories.Find(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get category")
	}
	if category == nil {
		return errorJSON(c, http.StatusNotFound, "Category not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"category": convertCategory(category)})
}

// UpdateCategory applies a partial update.
//
// PUT /api/v1/categories/:id
func (s *APIV1Service) UpdateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	existing, err := s.Categories.Find(ctx, id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get category")
	}
	if existing == nil {
		return errorJSON(c, http.StatusNotFound, "Category not found")
	}

	request := &upsertCategoryRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}

	category, err := s.Categories.Update(ctx, &store.UpdateCategory{
		ID:          id,
		Name:        request.Name,
		Slug:        request.Slug,
		Description: request.Description,
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to update category")
	}
	return c.JSON(http.StatusOK, map[string]any{"category": convertCategory(category)})
}

// DeleteCategory removes a category. Products referencing it keep existing
// with a cleared category reference.
//
// DELETE /api/v1/categories/:id
func (s *APIV1Service) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	category, err := s.Categories.Find(ctx, id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get category")
	}
	if category == nil {
		return errorJSON(c, http.StatusNotFound, "Category not found")
	}

	if err := s.Categories.Delete(ctx, id); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to delete category")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Category deleted successfully"})
}
