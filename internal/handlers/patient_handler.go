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

type createPatientRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Gender    string `json:"gender" binding:"required,oneof=male female"`
	BirthDate string `json:"birthDate"`
	ParentID  string `json:"parentId"`
	DoctorID  string `json:"doctorId"`
}

// patientResponse adds the derived age and full name to the stored record.
type patientResponse struct {
	models.Patient
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
}

func toPatientResponse(p models.Patient) patientResponse {
	return patientResponse{Patient: p, FullName: p.FullName(), Age: p.Age(time.Now())}
}

// CreatePatient registers a new patient record.
func (h *Handler) CreatePatient(c *gin.Context) {
	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient := models.Patient{
		ID:        primitive.NewObjectID(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.ParentID != "" {
		oid, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent ID"})
			return
		}
		patient.ParentID = oid
	}
	if req.DoctorID != "" {
		oid, err := primitive.ObjectIDFromHex(req.DoctorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
			return
		}
		patient.DoctorID = oid
	}

	if _, err := h.DB.Collection("patients").InsertOne(c.Request.Context(), patient); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create patient"})
		return
	}
	c.JSON(http.StatusCreated, toPatientResponse(patient))
}

// GetPatients lists patients. Parents only see their own children; doctors
// and admins see everything, optionally narrowed by query filters.
func (h *Handler) GetPatients(c *gin.Context) {
	filter := bson.M{}

	if c.GetString(middleware.CtxUserRole) == models.RoleParent {
		parentID, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}
		filter["parentId"] = parentID
	} else {
		if pid := c.Query("parentId"); pid != "" {
			if oid, err := primitive.ObjectIDFromHex(pid); err == nil {
				filter["parentId"] = oid
			}
		}
		if did := c.Query("doctorId"); did != "" {
			if oid, err := primitive.ObjectIDFromHex(did); err == nil {
				filter["doctorId"] = oid
			}
		}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})
	cursor, err := h.DB.Collection("patients").Find(c.Request.Context(), filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve patients"})
		return
	}
	defer cursor.Close(c.Request.Context())

	var patients []models.Patient
	if err := cursor.All(c.Request.Context(), &patients); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode patients"})
		return
	}

	out := make([]patientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// GetPatient returns a single patient record.
func (h *Handler) GetPatient(c *gin.Context) {
	patientID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	var patient models.Patient
	if err := h.DB.Collection("patients").FindOne(c.Request.Context(), bson.M{"_id": patientID}).Decode(&patient); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}
	c.JSON(http.StatusOK, toPatientResponse(patient))
}

// UpdatePatient applies a partial update.
func (h *Handler) UpdatePatient(c *gin.Context) {
	patientID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Gender    *string `json:"gender"`
		BirthDate *string `json:"birthDate"`
		DoctorID  *string `json:"doctorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	set := bson.M{}
	if req.FirstName != nil {
		set["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		set["lastName"] = *req.LastName
	}
	if req.Gender != nil {
		if *req.Gender != "male" && *req.Gender != "female" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gender"})
			return
		}
		set["gender"] = *req.Gender
	}
	if req.BirthDate != nil {
		set["birthDate"] = *req.BirthDate
	}
	if req.DoctorID != nil {
		oid, err := primitive.ObjectIDFromHex(*req.DoctorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
			return
		}
		set["doctorId"] = oid
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}
	set["updatedAt"] = time.Now()

	res, err := h.DB.Collection("patients").UpdateOne(c.Request.Context(), bson.M{"_id": patientID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update patient"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient updated successfully"})
}

// DeletePatient removes a patient record.
func (h *Handler) DeletePatient(c *gin.Context) {
	patientID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	res, err := h.DB.Collection("patients").DeleteOne(c.Request.Context(), bson.M{"_id": patientID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete patient"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
}
