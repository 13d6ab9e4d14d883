package model

type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"name"`
}

type Item struct {
	ID         int64  `json:"item_id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

// ListItem is an item on a list joined with its name and category name,
// the shape the list view works with.
type ListItem struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
}
