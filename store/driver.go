package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all the methods that the store needs to implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate brings the schema up to the current version.
	Migrate(ctx context.Context) error

	// Conversation model related methods.
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)

	// Message model related methods.
	CreateMessage(ctx context.Context, create *CreateMessage) (*Message, error)
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)
	UpdateMessage(ctx context.Context, update *UpdateMessage) (*Message, error)

	// ToolExecution model related methods.
	CreateToolExecution(ctx context.Context, create *CreateToolExecution) (*ToolExecution, error)
	ListToolExecutions(ctx context.Context, find *FindToolExecution) ([]*ToolExecution, error)
	CompleteToolExecution(ctx context.Context, complete *CompleteToolExecution) (*ToolExecution, error)

	// Product model related methods.
	CreateProduct(ctx context.Context, create *Product) (*Product, error)
	ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error)
	UpdateProduct(ctx context.Context, update *UpdateProduct) (*Product, error)
	DeleteProduct(ctx context.Context, delete *DeleteProduct) error

	// Category model related methods.
	CreateCategory(ctx context.Context, create *Category) (*Category, error)
	ListCategories(ctx context.Context, find *FindCategory) ([]*Category, error)
	UpdateCategory(ctx context.Context, update *UpdateCategory) (*Category, error)
	DeleteCategory(ctx context.Context, delete *DeleteCategory) error
}
