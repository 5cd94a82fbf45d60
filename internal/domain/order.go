package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderLine struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size" json:"size"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      primitive.ObjectID `bson:"user" json:"user"`
	Address     string             `bson:"address" json:"address"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	Products    []OrderLine        `bson:"products" json:"products"`
	TotalAmount string             `bson:"totalAmount" json:"totalAmount"`
	Status      OrderStatus        `bson:"status" json:"status"`
	DayToShip   time.Time          `bson:"dayToShip" json:"dayToShip"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
