package store

// Product is a flat catalog record. Categorization is normalized through
// CategoryID; Discount is a percentage in [0, 100].
type Product struct {
	ID          int32
	Name        string
	Description *string
	Price       float64
	Discount    float64
	CategoryID  *int32
	CreatedTs   int64
	UpdatedTs   int64
}

type FindProduct struct {
	ID         *int32
	CategoryID *int32
	// CategoryName matches the referenced category by name or slug,
	// case-insensitive substring.
	CategoryName *string
	// NameSearch matches the product name, case-insensitive substring.
	NameSearch *string
	Limit      int
}

type UpdateProduct struct {
	ID          int32
	Name        *string
	Description *string
	Price       *float64
	Discount    *float64
	CategoryID  *int32
	UpdatedTs   *int64
}

type DeleteProduct struct {
	ID int32
}
