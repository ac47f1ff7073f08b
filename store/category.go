package store

type Category struct {
	ID          int32
	Name        string
	Slug        string
	Description *string
	CreatedTs   int64
	UpdatedTs   int64
}

type FindCategory struct {
	ID   *int32
	Slug *string
	Name *string
}

type UpdateCategory struct {
	ID          int32
	Name        *string
	Slug        *string
	Description *string
	UpdatedTs   *int64
}

type DeleteCategory struct {
	ID int32
}
