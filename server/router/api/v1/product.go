package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopmind/shopmind/store"
)

type productResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	CategoryID  *int32  `json:"category_id,omitempty"`
	CreatedTs   int64   `json:"created_ts"`
	UpdatedTs   int64   `json:"updated_ts"`
}

func convertProduct(p *store.Product) *productResponse {
	return &productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Discount:    p.Discount,
		CategoryID:  p.CategoryID,
		CreatedTs:   p.CreatedTs,
		UpdatedTs:   p.UpdatedTs,
	}
}

// ListProducts returns catalog products, optionally filtered by the category
// query parameter (name or slug).
//
// GET /api/v1/products
func (s *APIV1Service) ListProducts(c echo.Context) error {
	find := &store.FindProduct{}
	if category := c.QueryParam("category"); category != "" {
		find.CategoryName = &category
	}
	if name := c.QueryParam("name"); name != "" {
		find.NameSearch = &name
	}

	products, err := s.Store.ListProducts(c.Request().Context(), find)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to list products")
	}
	responses := make([]*productResponse, len(products))
	for i, product := range products {
		responses[i] = convertProduct(product)
	}
	return c.JSON(http.StatusOK, map[string]any{"products": responses})
}

type upsertProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Discount    *float64 `json:"discount"`
	CategoryID  *int32   `json:"category_id"`
}

// CreateProduct creates a catalog product.
//
// POST /api/v1/products
func (s *APIV1Service) CreateProduct(c echo.Context) error {
	request := &upsertProductRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}
	if request.Name == nil || *request.Name == "" || request.Price == nil {
		return errorJSON(c, http.StatusUnprocessableEntity, "name and price are required")
	}
	if request.CategoryID != nil {
		category, err := s.Categories.Find(c.Request().Context(), *request.CategoryID)
		if err != nil {
			return errorJSON(c, http.StatusInternalServerError, "failed to resolve category")
		}
		if category == nil {
			return errorJSON(c, http.StatusUnprocessableEntity, "unknown category_id")
		}
	}

	create := &store.Product{
		Name:        *request.Name,
		Description: request.Description,
		Price:       *request.Price,
		CategoryID:  request.CategoryID,
	}
	if request.Discount != nil {
		create.Discount = *request.Discount
	}

	product, err := s.Products.Create(c.Request().Context(), create)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to create product")
	}
	return c.JSON(http.StatusCreated, map[string]any{"product": convertProduct(product)})
}

// GetProduct returns one product by id.
//
// GET /api/v1/products/:id
func (s *APIV1Service) GetProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := s.Products.Find(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get product")
	}
	if product == nil {
		return errorJSON(c, http.StatusNotFound, "Product not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"product": convertProduct(product)})
}

// UpdateProduct applies a partial update: only fields present in the body
// change.
//
// PUT /api/v1/products/:id
func (s *APIV1Service) UpdateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	existing, err := s.Products.Find(ctx, id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get product")
	}
	if existing == nil {
		return errorJSON(c, http.StatusNotFound, "Product not found")
	}

	request := &upsertProductRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, http.StatusBadRequest, "malformed request body")
	}
	if request.CategoryID != nil {
		category, err := s.Categories.Find(ctx, *request.CategoryID)
		if err != nil {
			return errorJSON(c, http.StatusInternalServerError, "failed to resolve category")
		}
		if category == nil {
			return errorJSON(c, http.StatusUnprocessableEntity, "unknown category_id")
		}
	}

	product, err := s.Products.Update(ctx, &store.UpdateProduct{
		ID:          id,
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		Discount:    request.Discount,
		CategoryID:  request.CategoryID,
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to update product")
	}
	return c.JSON(http.StatusOK, map[string]any{"product": convertProduct(product)})
}

// DeleteProduct removes a product.
//
// DELETE /api/v1/products/:id
func (s *APIV1Service) DeleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	product, err := s.Products.Find(ctx, id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to get product")
	}
	if product == nil {
		return errorJSON(c, http.StatusNotFound, "Product not found")
	}

	if err := s.Products.Delete(ctx, id); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to delete product")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Product deleted successfully"})
}
