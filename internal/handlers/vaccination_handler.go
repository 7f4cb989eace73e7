package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erbaiy/PediTrack-api/internal/middleware"
	"github.com/erbaiy/PediTrack-api/internal/models"
)

type createVaccinationRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	Vaccine   string `json:"vaccine" binding:"required"`
	DueDate   string `json:"dueDate" binding:"required"`
}

// CreateVaccination schedules a vaccine dose for a patient.
func (h *Handler) CreateVaccination(c *gin.Context) {
	var req createVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date format"})
		return
	}

	record := models.VaccinationRecord{
		ID:        primitive.NewObjectID(),
		PatientID: patientID,
		Vaccine:   req.Vaccine,
		DueDate:   dueDate,
		Status:    models.VaccinationPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := h.DB.Collection("vaccinations").InsertOne(c.Request.Context(), record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vaccination record"})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetVaccinations lists records, optionally filtered by patient or status.
func (h *Handler) GetVaccinations(c *gin.Context) {
	filter := bson.M{}
	if pid := c.Query("patientId"); pid != "" {
		if oid, err := primitive.ObjectIDFromHex(pid); err == nil {
			filter["patientId"] = oid
		}
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	cursor, err := h.DB.Collection("vaccinations").Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vaccination records"})
		return
	}
	defer cursor.Close(c.Request.Context())

	records := make([]models.VaccinationRecord, 0)
	if err := cursor.All(c.Request.Context(), &records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode vaccination records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// MarkVaccinationDone records an administered dose, stamped with the
// authenticated doctor.
func (h *Handler) MarkVaccinationDone(c *gin.Context) {
	recordID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	set := bson.M{
		"status":           models.VaccinationDone,
		"dateAdministered": time.Now(),
		"updatedAt":        time.Now(),
	}
	if doctorID, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID)); err == nil {
		set["administeredBy"] = doctorID
	}

	res, err := h.DB.Collection("vaccinations").UpdateOne(c.Request.Context(), bson.M{"_id": recordID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vaccination record"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vaccination record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vaccination marked as done"})
}

// DeleteVaccination removes a record.
func (h *Handler) DeleteVaccination(c *gin.Context) {
	recordID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	res, err := h.DB.Collection("vaccinations").DeleteOne(c.Request.Context(), bson.M{"_id": recordID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vaccination record"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vaccination record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vaccination record deleted"})
}
