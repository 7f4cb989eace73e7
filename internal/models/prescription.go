package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prescription statuses.
const (
	PrescriptionActive    = "Active"
	PrescriptionCompleted = "Completed"
	PrescriptionCancelled = "Cancelled"
)

type Prescription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID  primitive.ObjectID `bson:"patientId" json:"patientId"`
	Medication string             `bson:"medication" json:"medication"`
	Dosage     string             `bson:"dosage" json:"dosage"`
	Frequency  string             `bson:"frequency" json:"frequency"`
	StartDate  time.Time          `bson:"startDate" json:"startDate"`
	EndDate    *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}
