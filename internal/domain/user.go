package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "Admin"

	AccountLocal  = "Local"
	AccountGoogle = "GOOGLE"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Email        string               `bson:"email" json:"email"`
	Password     string               `bson:"password,omitempty" json:"-"`
	Name         string               `bson:"name" json:"name"`
	Role         string               `bson:"role" json:"role"`
	Sex          string               `bson:"sex,omitempty" json:"sex,omitempty"`
	PhoneNumber  string               `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	ProfileImage []string             `bson:"profileImage" json:"profileImage"`
	Orders       []primitive.ObjectID `bson:"orders" json:"orders"`
	Type         string               `bson:"type" json:"type"`
	SocialLogin  bool                 `bson:"socialLogin" json:"socialLogin"`
	Cart         []CartLineItem       `bson:"cart" json:"cart"`
	// Version is bumped on every cart write and guards it against lost updates.
	Version   int64      `bson:"version" json:"-"`
	Deleted   bool       `bson:"deleted" json:"-"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"-"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID.Hex(),
		Email: u.Email,
		Role:  u.Role,
		Sex:   u.Sex,
	}
}
