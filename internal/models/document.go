package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is an uploaded file attached to a patient record (scans, lab
// results, referral letters). The file itself lives on disk; URL points at
// the static /uploads route.
type Document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	Title     string             `bson:"title" json:"title"`
	URL       string             `bson:"url" json:"url"`
	Type      string             `bson:"type" json:"type"` // mimetype, e.g. "image/png"
	FileName  string             `bson:"fileName" json:"fileName"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}
