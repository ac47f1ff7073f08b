package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/shopmind/shopmind/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Conversation operations.

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.Status == "" {
		create.Status = ConversationStatusActive
	}
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	return s.driver.CreateConversation(ctx, create)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// GetConversation returns the conversation matching find, or nil when absent.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	list, err := s.driver.ListConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	if update.UpdatedTs == nil {
		now := time.Now().Unix()
		update.UpdatedTs = &now
	}
	return s.driver.UpdateConversation(ctx, update)
}

// FindOrCreateActiveConversation returns the single active conversation for
// the given owner, creating one when none exists. Authenticated users get at
// most one implicit active conversation; anonymous callers get one per
// session token. Exactly one of userID/sessionID should be set.
func (s *Store) FindOrCreateActiveConversation(ctx context.Context, userID *int32, sessionID *string) (*Conversation, error) {
	status := ConversationStatusActive
	find := &FindConversation{Status: &status}
	if userID != nil {
		find.UserID = userID
	} else if sessionID != nil {
		find.SessionID = sessionID
	}

	if userID != nil || sessionID != nil {
		existing, err := s.GetConversation(ctx, find)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	create := &Conversation{Status: ConversationStatusActive}
	if userID != nil {
		create.UserID = userID
	} else {
		create.SessionID = sessionID
	}
	return s.CreateConversation(ctx, create)
}

// GetConversationContext returns the most recent limit user/assistant
// messages of a conversation, oldest-first. System and function roles are
// excluded from the context window.
func (s *Store) GetConversationContext(ctx context.Context, conversationID int32, limit int) ([]*Message, error) {
	return s.driver.ListMessages(ctx, &FindMessage{
		ConversationID: &conversationID,
		Roles:          []MessageRole{MessageRoleUser, MessageRoleAssistant},
		Limit:          limit,
	})
}

// Message operations.

func (s *Store) CreateMessage(ctx context.Context, create *CreateMessage) (*Message, error) {
	return s.driver.CreateMessage(ctx, create)
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}

func (s *Store) UpdateMessage(ctx context.Context, update *UpdateMessage) (*Message, error) {
	return s.driver.UpdateMessage(ctx, update)
}

// ToolExecution operations.

func (s *Store) CreateToolExecution(ctx context.Context, create *CreateToolExecution) (*ToolExecution, error) {
	return s.driver.CreateToolExecution(ctx, create)
}

func (s *Store) ListToolExecutions(ctx context.Context, find *FindToolExecution) ([]*ToolExecution, error) {
	return s.driver.ListToolExecutions(ctx, find)
}

func (s *Store) CompleteToolExecution(ctx context.Context, complete *CompleteToolExecution) (*ToolExecution, error) {
	return s.driver.CompleteToolExecution(ctx, complete)
}

// Product operations.

func (s *Store) CreateProduct(ctx context.Context, create *Product) (*Product, error) {
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	return s.driver.CreateProduct(ctx, create)
}

func (s *Store) ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error) {
	return s.driver.ListProducts(ctx, find)
}

// GetProduct returns the product matching find, or nil when absent.
func (s *Store) GetProduct(ctx context.Context, find *FindProduct) (*Product, error) {
	list, err := s.driver.ListProducts(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateProduct(ctx context.Context, update *UpdateProduct) (*Product, error) {
	if update.UpdatedTs == nil {
		now := time.Now().Unix()
		update.UpdatedTs = &now
	}
	return s.driver.UpdateProduct(ctx, update)
}

func (s *Store) DeleteProduct(ctx context.Context, delete *DeleteProduct) error {
	return s.driver.DeleteProduct(ctx, delete)
}

// Category operations.

func (s *Store) CreateCategory(ctx context.Context, create *Category) (*Category, error) {
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	return s.driver.CreateCategory(ctx, create)
}

func (s *Store) ListCategories(ctx context.Context, find *FindCategory) ([]*Category, error) {
	return s.driver.ListCategories(ctx, find)
}

// GetCategory returns the category matching find, or nil when absent.
func (s *Store) GetCategory(ctx context.Context, find *FindCategory) (*Category, error) {
	list, err := s.driver.ListCategories(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateCategory(ctx context.Context, update *UpdateCategory) (*Category, error) {
	if update.UpdatedTs == nil {
		now := time.Now().Unix()
		update.UpdatedTs = &now
	}
	return s.driver.UpdateCategory(ctx, update)
}

func (s *Store) DeleteCategory(ctx context.Context, delete *DeleteCategory) error {
	return s.driver.DeleteCategory(ctx, delete)
}
