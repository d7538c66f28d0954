package model

import "time"

// Comment is an immutable free-text annotation, so it carries no UpdatedAt.
type Comment struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
