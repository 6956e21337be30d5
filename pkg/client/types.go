package client

import "time"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// CartLine is a product snapshot with the quantity held in the cart.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

type Coupon struct {
	Code               string    `json:"code"`
	DiscountPercentage float64   `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
	IsActive           bool      `json:"isActive"`
}
