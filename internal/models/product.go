package models

// Product is an item for sale owned by a user
type Product struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Image  string `json:"image,omitempty"` // resolved path of the stored image
	Price  int    `json:"price"`
	UserID *int   `json:"userId,omitempty"`
}

// ProductWithRelations is a product with its optionally included owner
type ProductWithRelations struct {
	Product
	User *User `json:"user,omitempty"`
}
