package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erbaiy/PediTrack-api/internal/models"
)

// UploadDocument accepts a multipart file and attaches it to a patient.
// Files are stored under the configured upload directory with a uuid name
// so uploads can never collide or traverse paths.
func (h *Handler) UploadDocument(c *gin.Context) {
	patientID, err := primitive.ObjectIDFromHex(c.PostForm("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	if err := h.DB.Collection("patients").FindOne(c.Request.Context(), bson.M{"_id": patientID}).Err(); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	if err := os.MkdirAll(h.Cfg.App.UploadDir, 0o755); err != nil {
		h.Log.Error("failed to create upload directory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	fileName := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(h.Cfg.App.UploadDir, fileName)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.Log.Error("failed to save uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	doc := models.Document{
		ID:        primitive.NewObjectID(),
		PatientID: patientID,
		Title:     title,
		URL:       fmt.Sprintf("/uploads/%s", fileName),
		Type:      file.Header.Get("Content-Type"),
		FileName:  fileName,
		CreatedAt: time.Now(),
	}
	if _, err := h.DB.Collection("documents").InsertOne(c.Request.Context(), doc); err != nil {
		os.Remove(dst)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document record"})
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GetDocuments lists a patient's documents, newest first.
func (h *Handler) GetDocuments(c *gin.Context) {
	patientID, ok := objectIDParam(c, "patientId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("documents").Find(c.Request.Context(), bson.M{"patientId": patientID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documents"})
		return
	}
	defer cursor.Close(c.Request.Context())

	documents := make([]models.Document, 0)
	if err := cursor.All(c.Request.Context(), &documents); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode documents"})
		return
	}
	c.JSON(http.StatusOK, documents)
}

// DeleteDocument removes the record and the file on disk. A missing file is
// not an error: the record is the source of truth.
func (h *Handler) DeleteDocument(c *gin.Context) {
	docID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	var doc models.Document
	if err := h.DB.Collection("documents").FindOne(c.Request.Context(), bson.M{"_id": docID}).Decode(&doc); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	if _, err := h.DB.Collection("documents").DeleteOne(c.Request.Context(), bson.M{"_id": docID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	if doc.FileName != "" {
		if err := os.Remove(filepath.Join(h.Cfg.App.UploadDir, doc.FileName)); err != nil && !os.IsNotExist(err) {
			h.Log.Warn("failed to remove document file", "file", doc.FileName, "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
