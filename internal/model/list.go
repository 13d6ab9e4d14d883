package model

import "time"

type GroceryList struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creation_date"`
	UpdateDate   time.Time `json:"update_date"`
}

// ListMember is a user's membership row on a list, joined with their username.
type ListMember struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ListSummary is a list as shown on the dashboard: the viewer's own role
// plus everyone else on the list.
type ListSummary struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Role        string       `json:"role"`
	LastUpdated time.Time    `json:"last_updated"`
	OtherUsers  []ListMember `json:"other_users"`
}
