package catalog

import "time"

type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	CategoryID   int64     `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	BottleSize   string    `json:"bottle_size,omitempty"`
	Price        int64     `json:"price"`
	CartonSize   int       `json:"carton_size"`
	Description  string    `json:"description,omitempty"`
	Origin       string    `json:"origin,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Populated on reads: per-godown breakdown and the sum.
	Godowns    []GodownStock `json:"godowns,omitempty"`
	TotalStock int           `json:"total_stock"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type GodownStock struct {
	GodownID   int64  `json:"godown_id"`
	GodownName string `json:"godown_name"`
	Quantity   int    `json:"quantity"`
}

type Godown struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location,omitempty"`
	Capacity     int    `json:"capacity,omitempty"`
	Description  string `json:"description,omitempty"`
	ProductCount int    `json:"product_count"`
}
