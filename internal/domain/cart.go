package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartLineItem is one (product, size, quantity) tuple embedded in a user's cart.
// The pair (ProductID, Size) is unique within a cart.
type CartLineItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size" json:"size"`
}

// CartEntry is a line item with its product resolved.
type CartEntry struct {
	ID       primitive.ObjectID `json:"_id"`
	Product  Product            `json:"product"`
	Quantity int                `json:"quantity"`
	Size     string             `json:"size"`
}

// FindLineItem returns the index of the line item matching productID and size, or -1.
func FindLineItem(items []CartLineItem, productID primitive.ObjectID, size string) int {
	for i, item := range items {
		if item.ProductID == productID && item.Size == size {
			return i
		}
	}
	return -1
}
