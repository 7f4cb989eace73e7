// Package handlers wires HTTP requests to the clinic's collections and to the
// auth service. Each module gets its own file; everything hangs off the same
// Handler.
package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/erbaiy/PediTrack-api/internal/auth"
	"github.com/erbaiy/PediTrack-api/internal/config"
)

type Handler struct {
	DB   *mongo.Database
	Auth *auth.Service
	Cfg  *config.Config
	Log  *slog.Logger
}

func NewHandler(db *mongo.Database, authSvc *auth.Service, cfg *config.Config, log *slog.Logger) *Handler {
	return &Handler{
		DB:   db,
		Auth: authSvc,
		Cfg:  cfg,
		Log:  log,
	}
}

// objectIDParam parses a route parameter as a Mongo ObjectID.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
