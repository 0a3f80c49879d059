package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	About     string    `json:"about,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
