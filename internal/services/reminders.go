// Package services holds background work that runs beside the HTTP API.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/erbaiy/PediTrack-api/internal/mail"
	"github.com/erbaiy/PediTrack-api/internal/models"
)

// ReminderService emails parents about vaccine doses coming due. Each record
// is notified at most once: the notified flag flips before the window closes.
type ReminderService struct {
	db        *mongo.Database
	mailer    mail.Mailer
	log       *slog.Logger
	daysAhead int
	interval  time.Duration
}

func NewReminderService(db *mongo.Database, mailer mail.Mailer, log *slog.Logger) *ReminderService {
	return &ReminderService{
		db:        db,
		mailer:    mailer,
		log:       log,
		daysAhead: 3,
		interval:  time.Hour,
	}
}

// Run scans on a fixed interval until the context is cancelled. Meant to be
// started in its own goroutine from main.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.SendDueReminders(ctx); err != nil {
			s.log.Error("vaccine reminder scan failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SendDueReminders emails the parent of every pending, un-notified dose due
// within the lookahead window, then marks each record notified. A failed send
// leaves the record un-notified for the next scan.
func (s *ReminderService) SendDueReminders(ctx context.Context) error {
	records, err := s.upcomingDue(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		parent, patient, err := s.lookupRecipients(ctx, rec.PatientID)
		if err != nil {
			s.log.Warn("vaccine reminder skipped", slog.String("record", rec.ID.Hex()), slog.String("error", err.Error()))
			continue
		}

		subject, body := reminderEmail(patient, &rec)
		if err := s.mailer.Send(parent.Email, subject, body); err != nil {
			s.log.Error("vaccine reminder email failed", slog.String("to", parent.Email), slog.String("error", err.Error()))
			continue
		}

		if _, err := s.db.Collection("vaccinations").UpdateOne(ctx,
			bson.M{"_id": rec.ID}, bson.M{"$set": bson.M{"notified": true, "updatedAt": time.Now()}}); err != nil {
			s.log.Error("failed to mark record notified", slog.String("record", rec.ID.Hex()), slog.String("error", err.Error()))
			continue
		}
		s.log.Info("vaccine reminder sent", slog.String("to", parent.Email), slog.String("vaccine", rec.Vaccine))
	}
	return nil
}

// upcomingDue matches pending, un-notified records due between now and the
// lookahead horizon.
func (s *ReminderService) upcomingDue(ctx context.Context) ([]models.VaccinationRecord, error) {
	now := time.Now()
	cursor, err := s.db.Collection("vaccinations").Find(ctx, bson.M{
		"status":   models.VaccinationPending,
		"notified": false,
		"dueDate":  bson.M{"$gte": now, "$lte": now.AddDate(0, 0, s.daysAhead)},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.VaccinationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ReminderService) lookupRecipients(ctx context.Context, patientID primitive.ObjectID) (*models.User, *models.Patient, error) {
	var patient models.Patient
	if err := s.db.Collection("patients").FindOne(ctx, bson.M{"_id": patientID}).Decode(&patient); err != nil {
		return nil, nil, fmt.Errorf("patient lookup: %w", err)
	}
	var parent models.User
	if err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": patient.ParentID}).Decode(&parent); err != nil {
		return nil, nil, fmt.Errorf("parent lookup: %w", err)
	}
	if parent.Email == "" {
		return nil, nil, fmt.Errorf("parent has no email address")
	}
	return &parent, &patient, nil
}

func reminderEmail(patient *models.Patient, rec *models.VaccinationRecord) (subject, html string) {
	subject = fmt.Sprintf("Vaccine reminder: %s for %s", rec.Vaccine, patient.FullName())
	html = fmt.Sprintf(
		`<p>Hello,</p><p>This is a reminder that <strong>%s</strong> is due for the <strong>%s</strong> vaccine on <strong>%s</strong>.</p><p>Please contact the clinic to confirm the appointment.</p>`,
		patient.FullName(), rec.Vaccine, rec.DueDate.Format("January 2, 2006"),
	)
	return subject, html
}
