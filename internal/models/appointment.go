package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Appointment types.
const (
	AppointmentConsultation = "consultation"
	AppointmentVaccination  = "vaccination"
	AppointmentFollowUp     = "follow-up"
)

type Appointment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	DoctorID  primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	Date      time.Time          `bson:"date" json:"date"`
	Time      string             `bson:"time" json:"time"` // clinic slot, e.g. "14:30"
	Type      string             `bson:"type" json:"type"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
