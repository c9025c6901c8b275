package services

import (
	"time"

	"equiptrack/internal/models"
	"equiptrack/internal/qr"
	"equiptrack/internal/repository"

	"go.uber.org/zap"
)

// AdminEquipmentStore is the equipment persistence the admin surface needs.
type AdminEquipmentStore interface {
	ListAll() ([]models.Equipment, error)
	FinalizeIdentity(id, artifact, url string) error
	CountAll() (int64, error)
	CountByStatus() ([]repository.GroupCount, error)
	CountByCategory() ([]repository.GroupCount, error)
	UpcomingService(now time.Time, days, limit int) ([]models.Equipment, error)
	CountByOwner() ([]repository.OwnerEquipmentCount, error)
}

// AdminUserStore is the account persistence the admin surface needs.
type AdminUserStore interface {
	CountAll() (int64, error)
	ListRecent(limit int) ([]models.User, error)
	ListAll() ([]models.User, error)
}

type AdminService struct {
	equipment AdminEquipmentStore
	users     AdminUserStore
	baseURL   string
	now       func() time.Time
	log       *zap.Logger
}

func NewAdminService(equipment AdminEquipmentStore, users AdminUserStore, baseURL string, log *zap.Logger) *AdminService {
	return &AdminService{
		equipment: equipment,
		users:     users,
		baseURL:   baseURL,
		now:       time.Now,
		log:       log,
	}
}

// AnalyticsSummary is the headline block of the analytics report.
type AnalyticsSummary struct {
	TotalUsers       int64 `json:"total_users"`
	TotalEquipment   int64 `json:"total_equipment"`
	ActiveEquipment  int64 `json:"active_equipment"`
	UnderMaintenance int64 `json:"under_maintenance"`
}

// AnalyticsReport aggregates fleet-wide numbers for the admin dashboard.
type AnalyticsReport struct {
	Summary             AnalyticsSummary                 `json:"summary"`
	EquipmentByStatus   []repository.GroupCount          `json:"equipment_by_status"`
	EquipmentByCategory []repository.GroupCount          `json:"equipment_by_category"`
	RecentUsers         []*models.UserResponse           `json:"recent_users"`
	UpcomingService     []models.Equipment               `json:"upcoming_service"`
	UsersWithEquipment  []repository.OwnerEquipmentCount `json:"users_with_equipment_count"`
}

// Analytics gathers the admin dashboard report.
func (s *AdminService) Analytics() (*AnalyticsReport, error) {
	report := &AnalyticsReport{}

	totalUsers, err := s.users.CountAll()
	if err != nil {
		return nil, err
	}
	totalEquipment, err := s.equipment.CountAll()
	if err != nil {
		return nil, err
	}

	byStatus, err := s.equipment.CountByStatus()
	if err != nil {
		return nil, err
	}
	byCategory, err := s.equipment.CountByCategory()
	if err != nil {
		return nil, err
	}

	report.Summary = AnalyticsSummary{
		TotalUsers:     totalUsers,
		TotalEquipment: totalEquipment,
	}
	for _, row := range byStatus {
		switch row.Key {
		case "Active":
			report.Summary.ActiveEquipment = row.Count
		case "Under Maintenance":
			report.Summary.UnderMaintenance = row.Count
		}
	}
	report.EquipmentByStatus = byStatus
	report.EquipmentByCategory = byCategory

	recent, err := s.users.ListRecent(10)
	if err != nil {
		return nil, err
	}
	report.RecentUsers = make([]*models.UserResponse, 0, len(recent))
	for i := range recent {
		report.RecentUsers = append(report.RecentUsers, recent[i].ToResponse())
	}

	upcoming, err := s.equipment.UpcomingService(s.now(), 30, 10)
	if err != nil {
		return nil, err
	}
	report.UpcomingService = upcoming

	withCounts, err := s.equipment.CountByOwner()
	if err != nil {
		return nil, err
	}
	report.UsersWithEquipment = withCounts

	return report, nil
}

// Users returns every account without credentials.
func (s *AdminService) Users() ([]*models.UserResponse, error) {
	users, err := s.users.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out, nil
}

// RegenReport is the outcome of one bulk QR regeneration run.
type RegenReport struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// RegenerateQRCodes re-derives the identity artifact of every equipment
// record against the current public base URL. Used after a base URL
// configuration change; printed labels resolve again once their records
// are updated. Individual failures are logged and counted, never fatal to
// the batch.
func (s *AdminService) RegenerateQRCodes() (*RegenReport, error) {
	all, err := s.equipment.ListAll()
	if err != nil {
		return nil, err
	}

	report := &RegenReport{Total: len(all)}
	for i := range all {
		eq := &all[i]

		artifact, url, err := qr.Regenerate(s.baseURL, eq.ID)
		if err != nil {
			s.log.Error("failed to regenerate qr code",
				zap.String("equipment_id", eq.ID), zap.String("title", eq.Title), zap.Error(err))
			report.Failed++
			continue
		}

		if err := s.equipment.FinalizeIdentity(eq.ID, artifact, url); err != nil {
			s.log.Error("failed to store regenerated qr code",
				zap.String("equipment_id", eq.ID), zap.String("title", eq.Title), zap.Error(err))
			report.Failed++
			continue
		}

		s.log.Info("regenerated qr code",
			zap.String("equipment_id", eq.ID), zap.String("url", url))
		report.Updated++
	}

	s.log.Info("qr code regeneration complete",
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.Int("total", report.Total))

	return report, nil
}
