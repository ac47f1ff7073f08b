// Package v1 implements the REST API surface.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/shopmind/shopmind/assistant"
	"github.com/shopmind/shopmind/catalog"
	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	// Assistant is nil when no LLM is configured; only /chat is gated on it.
	Assistant  *assistant.Service
	Products   *catalog.ProductService
	Categories *catalog.CategoryService
}

func NewAPIV1Service(
	p *profile.Profile,
	st *store.Store,
	assistantService *assistant.Service,
	products *catalog.ProductService,
	categories *catalog.CategoryService,
) *APIV1Service {
	return &APIV1Service{
		Profile:    p,
		Store:      st,
		Assistant:  assistantService,
		Products:   products,
		Categories: categories,
	}
}

// RegisterRoutes wires all v1 endpoints onto the given group.
func (s *APIV1Service) RegisterRoutes(g *echo.Group) {
	g.POST("/chat/message", s.ChatMessage)

	g.GET("/conversations", s.ListConversations)
	g.POST("/conversations", s.CreateConversation)
	g.GET("/conversations/:id", s.GetConversation)
	g.DELETE("/conversations/:id", s.DeleteConversation)
	g.POST("/conversations/:id/archive", s.ArchiveConversation)
	g.GET("/conversations/:id/messages", s.ListConversationMessages)

	g.GET("/products", s.ListProducts)
	g.POST("/products", s.CreateProduct)
	g.GET("/products/:id", s.GetProduct)
	g.PUT("/products/:id", s.UpdateProduct)
	g.DELETE("/products/:id", s.DeleteProduct)

	g.GET("/categories", s.ListCategories)
	g.POST("/categories", s.CreateCategory)
	g.GET("/categories/:id", s.GetCategory)
	g.PUT("/categories/:id", s.UpdateCategory)
	g.DELETE("/categories/:id", s.DeleteCategory)
}
