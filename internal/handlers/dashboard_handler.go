package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erbaiy/PediTrack-api/internal/middleware"
	"github.com/erbaiy/PediTrack-api/internal/models"
)

// Flat per-act pricing used for the revenue estimate. The figure is an
// approximation for the dashboard card, not an invoice.
const (
	consultationPrice = 45
	vaccinationPrice  = 25
	workdaysPerMonth  = 22
)

type recentPatientStat struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	LastVisit string `json:"lastVisit"`
	Status    string `json:"status"`
}

type upcomingAppointmentStat struct {
	ID      string `json:"id"`
	Patient string `json:"patient"`
	Time    string `json:"time"`
	Type    string `json:"type"`
	Urgent  bool   `json:"urgent"`
}

type vaccineAlertStat struct {
	Patient string `json:"patient"`
	Vaccine string `json:"vaccine"`
	DueDate string `json:"dueDate"`
}

type monthlyStats struct {
	Consultations []int64  `json:"consultations"`
	Vaccinations  []int64  `json:"vaccinations"`
	NewPatients   []int64  `json:"newPatients"`
	Months        []string `json:"months"`
}

type dashboardStats struct {
	TotalPatients        int64                     `json:"totalPatients"`
	AppointmentsToday    int64                     `json:"appointmentsToday"`
	VaccinesThisMonth    int64                     `json:"vaccinesThisMonth"`
	VaccinesLastMonth    int64                     `json:"vaccinesLastMonth"`
	Revenue              int64                     `json:"revenue"`
	RecentPatients       []recentPatientStat       `json:"recentPatients"`
	UpcomingAppointments []upcomingAppointmentStat `json:"upcomingAppointments"`
	VaccineAlerts        []vaccineAlertStat        `json:"vaccineAlerts"`
	MonthlyStats         monthlyStats              `json:"monthlyStats"`
}

// GetDashboardStats aggregates the practice overview: patient counts, today's
// schedule, vaccination activity and a six-month trend. Doctors see their own
// practice; admins see the clinic's doctor.
func (h *Handler) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	doctorID, err := h.dashboardDoctorID(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No doctor account found"})
		return
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0)
	lastMonthStart := startOfMonth.AddDate(0, -1, 0)

	stats := dashboardStats{}

	stats.TotalPatients, err = h.DB.Collection("patients").CountDocuments(ctx, bson.M{"doctorId": doctorID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard stats"})
		return
	}

	stats.AppointmentsToday, err = h.DB.Collection("appointments").CountDocuments(ctx, bson.M{
		"doctorId": doctorID,
		"date":     bson.M{"$gte": startOfDay, "$lt": endOfDay},
		"status":   bson.M{"$ne": models.AppointmentCancelled},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard stats"})
		return
	}

	stats.VaccinesThisMonth, _ = h.countVaccinesDone(ctx, startOfMonth, endOfMonth)
	stats.VaccinesLastMonth, _ = h.countVaccinesDone(ctx, lastMonthStart, startOfMonth)

	// Estimate: today's load projected across a working month, plus vaccines.
	stats.Revenue = stats.AppointmentsToday*workdaysPerMonth*consultationPrice +
		stats.VaccinesThisMonth*vaccinationPrice

	stats.RecentPatients = h.recentPatients(ctx, doctorID, now)
	stats.UpcomingAppointments = h.upcomingAppointments(ctx, doctorID, startOfDay, endOfDay)
	stats.VaccineAlerts = h.vaccineAlerts(ctx, now)
	stats.MonthlyStats = h.monthlyStats(ctx, doctorID, now)

	c.JSON(http.StatusOK, stats)
}

// dashboardDoctorID scopes the dashboard. A doctor sees their own numbers;
// anyone else gets the clinic's doctor account.
func (h *Handler) dashboardDoctorID(c *gin.Context) (primitive.ObjectID, error) {
	if c.GetString(middleware.CtxUserRole) == models.RoleDoctor {
		if oid, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID)); err == nil {
			return oid, nil
		}
	}
	var doctor models.User
	if err := h.DB.Collection("users").FindOne(c.Request.Context(), bson.M{"role": models.RoleDoctor}).Decode(&doctor); err != nil {
		return primitive.NilObjectID, err
	}
	return doctor.ID, nil
}

func (h *Handler) countVaccinesDone(ctx context.Context, from, to time.Time) (int64, error) {
	return h.DB.Collection("vaccinations").CountDocuments(ctx, bson.M{
		"dateAdministered": bson.M{"$gte": from, "$lt": to},
		"status":           models.VaccinationDone,
	})
}

// recentPatients lists patients seen in the last week, most recent first.
func (h *Handler) recentPatients(ctx context.Context, doctorID primitive.ObjectID, now time.Time) []recentPatientStat {
	oneWeekAgo := now.AddDate(0, 0, -7)
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(4)
	cursor, err := h.DB.Collection("appointments").Find(ctx, bson.M{
		"doctorId": doctorID,
		"status":   models.AppointmentCompleted,
		"date":     bson.M{"$gte": oneWeekAgo},
	}, findOptions)
	if err != nil {
		return []recentPatientStat{}
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return []recentPatientStat{}
	}

	out := make([]recentPatientStat, 0, len(appointments))
	for _, apt := range appointments {
		patient, ok := h.lookupPatient(ctx, apt.PatientID)
		stat := recentPatientStat{
			LastVisit: apt.Date.Format("2006-01-02"),
			Status:    apt.Status,
		}
		if ok {
			stat.ID = patient.ID.Hex()
			stat.Name = patient.FullName()
			stat.Age = patient.Age(now)
		}
		out = append(out, stat)
	}
	return out
}

// upcomingAppointments lists today's confirmed appointments in slot order.
// A consultation noted "urgent" is flagged.
func (h *Handler) upcomingAppointments(ctx context.Context, doctorID primitive.ObjectID, startOfDay, endOfDay time.Time) []upcomingAppointmentStat {
	findOptions := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cursor, err := h.DB.Collection("appointments").Find(ctx, bson.M{
		"doctorId": doctorID,
		"date":     bson.M{"$gte": startOfDay, "$lt": endOfDay},
		"status":   models.AppointmentConfirmed,
	}, findOptions)
	if err != nil {
		return []upcomingAppointmentStat{}
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return []upcomingAppointmentStat{}
	}

	out := make([]upcomingAppointmentStat, 0, len(appointments))
	for _, apt := range appointments {
		stat := upcomingAppointmentStat{
			ID:     apt.ID.Hex(),
			Time:   apt.Time,
			Type:   apt.Type,
			Urgent: apt.Type == models.AppointmentConsultation && strings.Contains(apt.Notes, "urgent"),
		}
		if patient, ok := h.lookupPatient(ctx, apt.PatientID); ok {
			stat.Patient = patient.FullName()
		}
		out = append(out, stat)
	}
	return out
}

// vaccineAlerts surfaces the three soonest pending doses due within a week.
func (h *Handler) vaccineAlerts(ctx context.Context, now time.Time) []vaccineAlertStat {
	nextWeek := now.AddDate(0, 0, 7)
	findOptions := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}).SetLimit(3)
	cursor, err := h.DB.Collection("vaccinations").Find(ctx, bson.M{
		"dueDate": bson.M{"$lte": nextWeek},
		"status":  models.VaccinationPending,
	}, findOptions)
	if err != nil {
		return []vaccineAlertStat{}
	}
	defer cursor.Close(ctx)

	var records []models.VaccinationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return []vaccineAlertStat{}
	}

	out := make([]vaccineAlertStat, 0, len(records))
	for _, rec := range records {
		stat := vaccineAlertStat{
			Vaccine: rec.Vaccine,
			DueDate: rec.DueDate.Format("2006-01-02"),
		}
		if patient, ok := h.lookupPatient(ctx, rec.PatientID); ok {
			stat.Patient = patient.FullName()
		}
		out = append(out, stat)
	}
	return out
}

// monthlyStats computes the six-month trend ending this month.
func (h *Handler) monthlyStats(ctx context.Context, doctorID primitive.ObjectID, now time.Time) monthlyStats {
	stats := monthlyStats{
		Consultations: make([]int64, 0, 6),
		Vaccinations:  make([]int64, 0, 6),
		NewPatients:   make([]int64, 0, 6),
		Months:        make([]string, 0, 6),
	}

	for i := 5; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)
		stats.Months = append(stats.Months, monthStart.Format("Jan"))

		consultations, _ := h.DB.Collection("appointments").CountDocuments(ctx, bson.M{
			"doctorId": doctorID,
			"date":     bson.M{"$gte": monthStart, "$lt": monthEnd},
			"status":   models.AppointmentCompleted,
		})
		stats.Consultations = append(stats.Consultations, consultations)

		vaccinations, _ := h.countVaccinesDone(ctx, monthStart, monthEnd)
		stats.Vaccinations = append(stats.Vaccinations, vaccinations)

		newPatients, _ := h.DB.Collection("patients").CountDocuments(ctx, bson.M{
			"doctorId":  doctorID,
			"createdAt": bson.M{"$gte": monthStart, "$lt": monthEnd},
		})
		stats.NewPatients = append(stats.NewPatients, newPatients)
	}
	return stats
}

func (h *Handler) lookupPatient(ctx context.Context, id primitive.ObjectID) (*models.Patient, bool) {
	var patient models.Patient
	if err := h.DB.Collection("patients").FindOne(ctx, bson.M{"_id": id}).Decode(&patient); err != nil {
		return nil, false
	}
	return &patient, true
}
