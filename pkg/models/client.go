package models

import "time"

// Client is a person or company a provider onboards.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"  validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Company   string    `json:"company,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
