package models

// Order is a purchase placed by a user
type Order struct {
	ID              int      `json:"id"`
	Status          string   `json:"status"`
	Total           *float64 `json:"total,omitempty"`
	ShippingAddress string   `json:"shippingAddress"`
	// Products holds snapshots of the ordered products as they were at order time
	Products []map[string]any `json:"products,omitempty"`
	UserID   *int             `json:"userId,omitempty"`
}

// OrderWithRelations is an order with its optionally included owner
type OrderWithRelations struct {
	Order
	User *User `json:"user,omitempty"`
}
