package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/erbaiy/PediTrack-api/internal/models"
)

type createFamilyRequest struct {
	FamilyName string   `json:"familyName" binding:"required,min=2,max=100"`
	ParentID   string   `json:"parentId" binding:"required"`
	Children   []string `json:"children"`
}

// CreateFamily groups a parent account with their registered children.
func (h *Handler) CreateFamily(c *gin.Context) {
	var req createFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parentID, err := primitive.ObjectIDFromHex(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent ID"})
		return
	}
	children := make([]primitive.ObjectID, 0, len(req.Children))
	for _, id := range req.Children {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child ID"})
			return
		}
		children = append(children, oid)
	}

	family := models.Family{
		ID:         primitive.NewObjectID(),
		FamilyName: req.FamilyName,
		ParentID:   parentID,
		Children:   children,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if _, err := h.DB.Collection("families").InsertOne(c.Request.Context(), family); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create family"})
		return
	}
	c.JSON(http.StatusCreated, family)
}

// GetFamilies lists families, optionally by parent.
func (h *Handler) GetFamilies(c *gin.Context) {
	filter := bson.M{}
	if pid := c.Query("parentId"); pid != "" {
		if oid, err := primitive.ObjectIDFromHex(pid); err == nil {
			filter["parentId"] = oid
		}
	}

	cursor, err := h.DB.Collection("families").Find(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve families"})
		return
	}
	defer cursor.Close(c.Request.Context())

	families := make([]models.Family, 0)
	if err := cursor.All(c.Request.Context(), &families); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode families"})
		return
	}
	c.JSON(http.StatusOK, families)
}

// GetFamily returns a single family group.
func (h *Handler) GetFamily(c *gin.Context) {
	familyID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid family ID"})
		return
	}

	var family models.Family
	if err := h.DB.Collection("families").FindOne(c.Request.Context(), bson.M{"_id": familyID}).Decode(&family); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
		return
	}
	c.JSON(http.StatusOK, family)
}

// AddFamilyChild attaches a patient to the family. Adding the same child
// twice is a no-op thanks to $addToSet.
func (h *Handler) AddFamilyChild(c *gin.Context) {
	familyID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid family ID"})
		return
	}

	var req struct {
		ChildID string `json:"childId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	childID, err := primitive.ObjectIDFromHex(req.ChildID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child ID"})
		return
	}

	res, err := h.DB.Collection("families").UpdateOne(c.Request.Context(),
		bson.M{"_id": familyID},
		bson.M{"$addToSet": bson.M{"children": childID}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update family"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Child added to family"})
}

// RemoveFamilyChild detaches a patient from the family.
func (h *Handler) RemoveFamilyChild(c *gin.Context) {
	familyID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid family ID"})
		return
	}
	childID, err := primitive.ObjectIDFromHex(c.Param("childId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child ID"})
		return
	}

	res, err := h.DB.Collection("families").UpdateOne(c.Request.Context(),
		bson.M{"_id": familyID},
		bson.M{"$pull": bson.M{"children": childID}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update family"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Child removed from family"})
}

// DeleteFamily removes a family group. Patient records are untouched.
func (h *Handler) DeleteFamily(c *gin.Context) {
	familyID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid family ID"})
		return
	}

	res, err := h.DB.Collection("families").DeleteOne(c.Request.Context(), bson.M{"_id": familyID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete family"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Family deleted"})
}
