package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GrowthRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	HeightCm  float64            `bson:"heightCm" json:"heightCm"`
	WeightKg  float64            `bson:"weightKg" json:"weightKg"`
	BMI       float64            `bson:"bmi" json:"bmi"`
	Date      time.Time          `bson:"date" json:"date"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// ComputeBMI derives body mass index from height and weight. Height is in
// centimeters; a zero height yields zero rather than a division error.
func ComputeBMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return weightKg / (m * m)
}
