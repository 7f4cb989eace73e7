package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles accepted by the users collection.
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleParent = "parent"
)

// ValidRole reports whether role is one of the fixed enumeration.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RoleParent:
		return true
	}
	return false
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName    string             `bson:"fullName" json:"fullName"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"` // bcrypt hash, hidden from JSON
	Role        string             `bson:"role" json:"role"`
	PhoneNumber string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	IsVerified  bool               `bson:"isVerified" json:"isVerified"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
