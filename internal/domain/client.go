package domain

import "time"

type Client struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Plate     string    `json:"plate"`
	Rentals   []Rental  `json:"rentals,omitempty"` // Active rentals with their boxes, when requested
	CreatedOn time.Time `json:"createdOn"`
}
