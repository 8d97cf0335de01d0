package models

// Count is the result of count and bulk update operations
type Count struct {
	Count int64 `json:"count"`
}
