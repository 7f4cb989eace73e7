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

type createPrescriptionRequest struct {
	PatientID  string `json:"patientId" binding:"required"`
	Medication string `json:"medication" binding:"required"`
	Dosage     string `json:"dosage" binding:"required"`
	Frequency  string `json:"frequency" binding:"required"`
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate"`
	Notes      string `json:"notes"`
}

// CreatePrescription records a new prescription, Active by default.
func (h *Handler) CreatePrescription(c *gin.Context) {
	var req createPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format"})
		return
	}

	rx := models.Prescription{
		ID:         primitive.NewObjectID(),
		PatientID:  patientID,
		Medication: req.Medication,
		Dosage:     req.Dosage,
		Frequency:  req.Frequency,
		StartDate:  startDate,
		Notes:      req.Notes,
		Status:     models.PrescriptionActive,
		CreatedAt:  time.Now(),
	}
	if req.EndDate != "" {
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format"})
			return
		}
		rx.EndDate = &endDate
	}

	if _, err := h.DB.Collection("prescriptions").InsertOne(c.Request.Context(), rx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create prescription"})
		return
	}
	c.JSON(http.StatusCreated, rx)
}

// GetPrescriptions lists prescriptions, optionally by patient or status.
func (h *Handler) GetPrescriptions(c *gin.Context) {
	filter := bson.M{}
	if pid := c.Query("patientId"); pid != "" {
		if oid, err := primitive.ObjectIDFromHex(pid); err == nil {
			filter["patientId"] = oid
		}
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	cursor, err := h.DB.Collection("prescriptions").Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve prescriptions"})
		return
	}
	defer cursor.Close(c.Request.Context())

	prescriptions := make([]models.Prescription, 0)
	if err := cursor.All(c.Request.Context(), &prescriptions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode prescriptions"})
		return
	}
	c.JSON(http.StatusOK, prescriptions)
}

// UpdatePrescriptionStatus moves a prescription through its lifecycle.
func (h *Handler) UpdatePrescriptionStatus(c *gin.Context) {
	rxID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prescription ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=Active Completed Cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	res, err := h.DB.Collection("prescriptions").UpdateOne(c.Request.Context(),
		bson.M{"_id": rxID}, bson.M{"$set": bson.M{"status": req.Status}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prescription"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prescription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prescription updated successfully"})
}

// DeletePrescription removes a prescription record.
func (h *Handler) DeletePrescription(c *gin.Context) {
	rxID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prescription ID"})
		return
	}

	res, err := h.DB.Collection("prescriptions").DeleteOne(c.Request.Context(), bson.M{"_id": rxID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete prescription"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prescription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prescription deleted"})
}
