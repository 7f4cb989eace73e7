package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erbaiy/PediTrack-api/internal/models"
)

type createGrowthRecordRequest struct {
	PatientID string  `json:"patientId" binding:"required"`
	HeightCm  float64 `json:"heightCm" binding:"required,gt=0"`
	WeightKg  float64 `json:"weightKg" binding:"required,gt=0"`
	Date      string  `json:"date" binding:"required"`
}

// CreateGrowthRecord stores a measurement; BMI is derived server-side.
func (h *Handler) CreateGrowthRecord(c *gin.Context) {
	var req createGrowthRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	record := models.GrowthRecord{
		ID:        primitive.NewObjectID(),
		PatientID: patientID,
		HeightCm:  req.HeightCm,
		WeightKg:  req.WeightKg,
		BMI:       models.ComputeBMI(req.HeightCm, req.WeightKg),
		Date:      date,
		CreatedAt: time.Now(),
	}
	if _, err := h.DB.Collection("growth_records").InsertOne(c.Request.Context(), record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create growth record"})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetGrowthRecords lists a patient's measurements oldest first, the order a
// growth curve is drawn in.
func (h *Handler) GetGrowthRecords(c *gin.Context) {
	patientID, ok := objectIDParam(c, "patientId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := h.DB.Collection("growth_records").Find(c.Request.Context(), bson.M{"patientId": patientID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve growth records"})
		return
	}
	defer cursor.Close(c.Request.Context())

	records := make([]models.GrowthRecord, 0)
	if err := cursor.All(c.Request.Context(), &records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode growth records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// DeleteGrowthRecord removes a measurement.
func (h *Handler) DeleteGrowthRecord(c *gin.Context) {
	recordID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	res, err := h.DB.Collection("growth_records").DeleteOne(c.Request.Context(), bson.M{"_id": recordID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete growth record"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Growth record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Growth record deleted"})
}
