package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SizeVariant is one size of a product and how many units are in stock for it.
type SizeVariant struct {
	Size     string `bson:"size" json:"size"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

type Review struct {
	User      primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Price         string             `bson:"price" json:"price"`
	Sizes         []SizeVariant      `bson:"sizes" json:"sizes"`
	Colors        []string           `bson:"colors" json:"colors"`
	PreviewImages []string           `bson:"previewImages" json:"previewImages"`
	ProductImages []string           `bson:"productImages" json:"productImages"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
	SalesPercent  int                `bson:"salesPercent" json:"salesPercent"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Size returns the variant with the exact label, if the product defines it.
func (p *Product) Size(label string) (SizeVariant, bool) {
	for _, s := range p.Sizes {
		if s.Size == label {
			return s, true
		}
	}
	return SizeVariant{}, false
}
