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

type createAppointmentRequest struct {
	PatientID string `json:"patientId" binding:"required"`
	DoctorID  string `json:"doctorId" binding:"required"`
	Date      string `json:"date" binding:"required"` // RFC3339 or "2006-01-02"
	Time      string `json:"time" binding:"required"`
	Type      string `json:"type" binding:"omitempty,oneof=consultation vaccination follow-up"`
	Notes     string `json:"notes"`
}

// CreateAppointment books a visit for a patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	doctorID, err := primitive.ObjectIDFromHex(req.DoctorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	// The patient must exist before a slot is booked against them.
	if err := h.DB.Collection("patients").FindOne(c.Request.Context(), bson.M{"_id": patientID}).Err(); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	aptType := req.Type
	if aptType == "" {
		aptType = models.AppointmentConsultation
	}

	apt := models.Appointment{
		ID:        primitive.NewObjectID(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      req.Time,
		Type:      aptType,
		Notes:     req.Notes,
		Status:    models.AppointmentPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := h.DB.Collection("appointments").InsertOne(c.Request.Context(), apt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create appointment"})
		return
	}
	c.JSON(http.StatusCreated, apt)
}

// GetAppointments lists appointments, filtered by date range, status, doctor
// or patient. Parents are restricted to their own children's appointments.
func (h *Handler) GetAppointments(c *gin.Context) {
	filter := bson.M{}

	if c.GetString(middleware.CtxUserRole) == models.RoleParent {
		parentID, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}
		patientIDs, err := h.childPatientIDs(c, parentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve appointments"})
			return
		}
		filter["patientId"] = bson.M{"$in": patientIDs}
	} else {
		if pid := c.Query("patientId"); pid != "" {
			if oid, err := primitive.ObjectIDFromHex(pid); err == nil {
				filter["patientId"] = oid
			}
		}
		if did := c.Query("doctorId"); did != "" {
			if oid, err := primitive.ObjectIDFromHex(did); err == nil {
				filter["doctorId"] = oid
			}
		}
	}

	if startStr := c.Query("startDate"); startStr != "" {
		if start, err := time.Parse("2006-01-02", startStr); err == nil {
			filter["date"] = bson.M{"$gte": start}
		}
	}
	if endStr := c.Query("endDate"); endStr != "" {
		if end, err := time.Parse("2006-01-02", endStr); err == nil {
			end = end.Add(23*time.Hour + 59*time.Minute)
			if f, ok := filter["date"].(bson.M); ok {
				f["$lte"] = end
			} else {
				filter["date"] = bson.M{"$lte": end}
			}
		}
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := h.DB.Collection("appointments").Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve appointments"})
		return
	}
	defer cursor.Close(c.Request.Context())

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(c.Request.Context(), &appointments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode appointments"})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// GetAppointment returns a single appointment.
func (h *Handler) GetAppointment(c *gin.Context) {
	aptID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	var apt models.Appointment
	if err := h.DB.Collection("appointments").FindOne(c.Request.Context(), bson.M{"_id": aptID}).Decode(&apt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}
	c.JSON(http.StatusOK, apt)
}

// UpdateAppointment applies a partial update. Doctors and admins only
// (enforced by the route's role guard).
func (h *Handler) UpdateAppointment(c *gin.Context) {
	aptID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	var req struct {
		Date   *string `json:"date"`
		Time   *string `json:"time"`
		Type   *string `json:"type"`
		Notes  *string `json:"notes"`
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	set := bson.M{}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		set["date"] = date
	}
	if req.Time != nil {
		set["time"] = *req.Time
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}
	if req.Status != nil {
		switch *req.Status {
		case models.AppointmentPending, models.AppointmentConfirmed,
			models.AppointmentCancelled, models.AppointmentCompleted:
			set["status"] = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	set["updatedAt"] = time.Now()

	res, err := h.DB.Collection("appointments").UpdateOne(c.Request.Context(), bson.M{"_id": aptID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update appointment"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment updated successfully"})
}

// CancelAppointment flips an appointment to cancelled.
func (h *Handler) CancelAppointment(c *gin.Context) {
	aptID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	res, err := h.DB.Collection("appointments").UpdateOne(c.Request.Context(),
		bson.M{"_id": aptID},
		bson.M{"$set": bson.M{"status": models.AppointmentCancelled, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel appointment"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully"})
}

// childPatientIDs resolves the patient records belonging to a parent.
func (h *Handler) childPatientIDs(c *gin.Context, parentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := h.DB.Collection("patients").Find(c.Request.Context(), bson.M{"parentId": parentID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(c.Request.Context())

	var patients []models.Patient
	if err := cursor.All(c.Request.Context(), &patients); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(patients))
	for _, p := range patients {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
