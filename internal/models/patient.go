package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Patient struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Gender    string             `bson:"gender" json:"gender"` // "male" or "female"
	BirthDate string             `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	ParentID  primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	DoctorID  primitive.ObjectID `bson:"doctorId,omitempty" json:"doctorId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// FullName joins first and last name the way the clinic UI displays patients.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age computes the patient's age in whole years at the given reference time.
// Returns -1 when no birth date is recorded.
func (p *Patient) Age(now time.Time) int {
	if p.BirthDate == "" {
		return -1
	}
	birth, err := time.Parse("2006-01-02", p.BirthDate)
	if err != nil {
		return -1
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
