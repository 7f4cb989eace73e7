package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vaccination record statuses.
const (
	VaccinationDone    = "done"
	VaccinationPending = "pending"
)

type VaccinationRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID        primitive.ObjectID `bson:"patientId" json:"patientId"`
	Vaccine          string             `bson:"vaccine" json:"vaccine"`
	DateAdministered *time.Time         `bson:"dateAdministered,omitempty" json:"dateAdministered,omitempty"`
	DueDate          time.Time          `bson:"dueDate" json:"dueDate"`
	Status           string             `bson:"status" json:"status"`
	Notified         bool               `bson:"notified" json:"notified"`
	AdministeredBy   primitive.ObjectID `bson:"administeredBy,omitempty" json:"administeredBy,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt        time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
