package assistant

import (
	"context"

	"github.com/shopmind/shopmind/ai/llm"
	"github.com/shopmind/shopmind/catalog"
)

// ToolHandler executes one tool call. Domain failures are reported through an
// "error" key in the result map so the model can react; a returned Go error
// marks the execution as failed.
type ToolHandler func(ctx context.Context, args map[string]any) (map[string]any, error)

type tool struct {
	descriptor llm.ToolDescriptor
	handler    ToolHandler
}

// Registry is the immutable set of tools the assistant declares to the model.
type Registry struct {
	tools map[string]tool
	order []string
}

// NewRegistry builds the registry over the catalog product service. The tool
// set is fixed at construction.
func NewRegistry(products *catalog.ProductService) *Registry {
	r := &Registry{tools: make(map[string]tool)}
	r.register(llm.ToolDescriptor{
		Name:        "list_products",
		Description: "Get a list of all products. Can filter by category.",
		Parameters: `{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "Optional category to filter products"}
			}
		}`,
	}, products.ListProducts)
	r.register(llm.ToolDescriptor{
		Name:        "get_product",
		Description: "Get details of a specific product by ID",
		Parameters: `{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Product ID"}
			},
			"required": ["id"]
		}`,
	}, products.GetProduct)
	r.register(llm.ToolDescriptor{
		Name:        "create_product",
		Description: "Create a new product",
		Parameters: `{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Product name"},
				"description": {"type": "string", "description": "Product description"},
				"price": {"type": "number", "description": "Product price"},
				"category": {"type": "string", "description": "Product category"},
				"discount": {"type": "number", "description": "Discount percentage"}
			},
			"required": ["name", "price", "category"]
		}`,
	}, products.CreateProduct)
	r.register(llm.ToolDescriptor{
		Name:        "update_product",
		Description: "Update an existing product",
		Parameters: `{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Product ID"},
				"name": {"type": "string", "description": "Product name"},
				"description": {"type": "string", "description": "Product description"},
				"price": {"type": "number", "description": "Product price"},
				"category": {"type": "string", "description": "Product category"},
				"discount": {"type": "number", "description": "Discount percentage"}
			},
			"required": ["id"]
		}`,
	}, products.UpdateProduct)
	r.register(llm.ToolDescriptor{
		Name:        "delete_product",
		Description: "Delete a product by ID",
		Parameters: `{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Product ID to delete"}
			},
			"required": ["id"]
		}`,
	}, products.DeleteProduct)
	r.register(llm.ToolDescriptor{
		Name:        "search_products",
		Description: "Search products by category or name.",
		Parameters: `{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "Product category to filter by"},
				"name": {"type": "string", "description": "Product name to search for"}
			}
		}`,
	}, products.SearchProducts)
	r.register(llm.ToolDescriptor{
		Name:        "apply_discount",
		Description: "Apply a discount to products in a specific category. Reduces the price by the specified percentage.",
		Parameters: `{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "The product category to apply discount to"},
				"discount_percent": {"type": "number", "description": "The discount percentage (0-100)"}
			},
			"required": ["category", "discount_percent"]
		}`,
	}, products.ApplyDiscount)
	return r
}

func (r *Registry) register(descriptor llm.ToolDescriptor, handler ToolHandler) {
	r.tools[descriptor.Name] = tool{descriptor: descriptor, handler: handler}
	r.order = append(r.order, descriptor.Name)
}

// Descriptors returns the declared tool set in registration order.
func (r *Registry) Descriptors() []llm.ToolDescriptor {
	descriptors := make([]llm.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.tools[name].descriptor)
	}
	return descriptors
}

// Execute runs the named tool. An unknown name is a contained failure, not a
// turn abort: the model receives it as a regular result.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, ok := r.tools[name]
	if !ok {
		return map[string]any{"error": "Unknown function"}, nil
	}
	return t.handler(ctx, args)
}
