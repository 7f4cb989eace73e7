package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Family groups a parent account with the patients registered as their
// children.
type Family struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FamilyName string               `bson:"familyName" json:"familyName"`
	ParentID   primitive.ObjectID   `bson:"parentId" json:"parentId"`
	Children   []primitive.ObjectID `bson:"children" json:"children"`
	CreatedAt  time.Time            `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt  time.Time            `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// TotalMembers counts the parent plus registered children.
func (f *Family) TotalMembers() int {
	n := len(f.Children)
	if !f.ParentID.IsZero() {
		n++
	}
	return n
}
