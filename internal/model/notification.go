package model

import (
	"encoding/json"
	"time"
)

type Notification struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"-"`
	Icon            string          `json:"icon"`
	Message         string          `json:"message"`
	Actionable      bool            `json:"actionable"`
	ActionType      *string         `json:"action_type"`
	RequestedListID *int64          `json:"requested_list_id"`
	Unread          bool            `json:"unread"`
	CreatedAt       time.Time       `json:"created_at"`
	Data            json.RawMessage `json:"data"`
}
