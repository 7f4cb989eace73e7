package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erbaiy/PediTrack-api/internal/auth"
	"github.com/erbaiy/PediTrack-api/internal/config"
	"github.com/erbaiy/PediTrack-api/internal/handlers"
	"github.com/erbaiy/PediTrack-api/internal/mail"
	"github.com/erbaiy/PediTrack-api/internal/middleware"
	"github.com/erbaiy/PediTrack-api/internal/models"
	"github.com/erbaiy/PediTrack-api/internal/services"
	"github.com/erbaiy/PediTrack-api/internal/token"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Error("failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.Mongo.Database)
	log.Info("connected to MongoDB", slog.String("database", cfg.Mongo.Database))

	userStore := auth.NewMongoUserStore(db)
	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.Error("failed to create indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	codec := token.NewCodec(cfg.JWT)
	mailer := mail.NewSMTPMailer(cfg.Mail, log)
	authSvc := auth.NewService(userStore, mailer, codec, cfg.App.FrontendURL, log)
	authn := middleware.NewAuthenticator(codec, cfg, log)
	h := handlers.NewHandler(db, authSvc, cfg, log)

	reminderCtx, stopReminders := context.WithCancel(context.Background())
	defer stopReminders()
	go services.NewReminderService(db, mailer, log).Run(reminderCtx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Authorization"},
		AllowCredentials: true,
	}))

	// Uploaded patient documents are served statically; records in the
	// documents collection point here.
	r.Static("/uploads", cfg.App.UploadDir)

	clinical := authn.RequireRoles(models.RoleDoctor, models.RoleAdmin)
	adminOnly := authn.RequireRoles(models.RoleAdmin)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register/user", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", h.Logout)
		authRoutes.GET("/verify-email", h.VerifyEmail)
		authRoutes.POST("/forgot-password", h.ForgotPassword)
		authRoutes.POST("/reset-password", h.ResetPassword)
		authRoutes.POST("/refresh-token", h.RefreshToken)
		authRoutes.GET("/me", authn.RequireAuth(), h.Me)

		authRoutes.GET("/users", adminOnly, h.ListUsers)
		authRoutes.PUT("/users/:id/role", adminOnly, h.UpdateUserRole)
		authRoutes.DELETE("/users/:id", adminOnly, h.DeleteUser)
	}

	api := r.Group("/api")
	api.Use(authn.RequireAuth())
	{
		api.GET("/patients", h.GetPatients)
		api.GET("/patients/:id", h.GetPatient)
		api.POST("/patients", clinical, h.CreatePatient)
		api.PUT("/patients/:id", clinical, h.UpdatePatient)
		api.DELETE("/patients/:id", clinical, h.DeletePatient)

		api.GET("/appointments", h.GetAppointments)
		api.GET("/appointments/:id", h.GetAppointment)
		api.POST("/appointments", h.CreateAppointment)
		api.PUT("/appointments/:id", clinical, h.UpdateAppointment)
		api.PATCH("/appointments/:id/cancel", h.CancelAppointment)

		api.GET("/vaccinations", h.GetVaccinations)
		api.POST("/vaccinations", clinical, h.CreateVaccination)
		api.PATCH("/vaccinations/:id/done", clinical, h.MarkVaccinationDone)
		api.DELETE("/vaccinations/:id", clinical, h.DeleteVaccination)

		api.GET("/growth/:patientId", h.GetGrowthRecords)
		api.POST("/growth", clinical, h.CreateGrowthRecord)
		api.DELETE("/growth/:id", clinical, h.DeleteGrowthRecord)

		api.GET("/prescriptions", h.GetPrescriptions)
		api.POST("/prescriptions", clinical, h.CreatePrescription)
		api.PATCH("/prescriptions/:id/status", clinical, h.UpdatePrescriptionStatus)
		api.DELETE("/prescriptions/:id", clinical, h.DeletePrescription)

		api.GET("/documents/:patientId", h.GetDocuments)
		api.POST("/documents", clinical, h.UploadDocument)
		api.DELETE("/documents/:id", clinical, h.DeleteDocument)

		api.GET("/families", h.GetFamilies)
		api.GET("/families/:id", h.GetFamily)
		api.POST("/families", clinical, h.CreateFamily)
		api.POST("/families/:id/children", clinical, h.AddFamilyChild)
		api.DELETE("/families/:id/children/:childId", clinical, h.RemoveFamilyChild)
		api.DELETE("/families/:id", clinical, h.DeleteFamily)

		api.GET("/dashboard/stats", clinical, h.GetDashboardStats)
	}

	log.Info("starting server", slog.String("port", cfg.App.Port), slog.String("env", cfg.App.Env))
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
