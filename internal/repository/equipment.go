package repository

import (
	"errors"
	"time"

	"equiptrack/internal/apperrors"
	"equiptrack/internal/models"

	"gorm.io/gorm"
)

// ListFilter narrows an owner's equipment listing.
type ListFilter struct {
	Status   string
	Category string
	Search   string
}

// GroupCount is one row of a group-by aggregate.
type GroupCount struct {
	Key   string `json:"key" gorm:"column:key"`
	Count int64  `json:"count" gorm:"column:count"`
}

// OwnerEquipmentCount pairs an account with its equipment count.
type OwnerEquipmentCount struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Company        string    `json:"company,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	EquipmentCount int64     `json:"equipment_count"`
}

// EquipmentRepository owns persisted equipment records.
type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// Create persists a new record. The caller is expected to follow up with
// FinalizeIdentity once the storage id is known.
func (r *EquipmentRepository) Create(eq *models.Equipment) error {
	return r.db.Create(eq).Error
}

// FinalizeIdentity atomically stores both identity fields.
func (r *EquipmentRepository) FinalizeIdentity(id, artifact, url string) error {
	res := r.db.Model(&models.Equipment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"qr_code":      artifact,
		"qr_code_data": url,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Resource: "equipment", ID: id}
	}
	return nil
}

// FindByID loads a record with its service history, oldest entry first.
func (r *EquipmentRepository) FindByID(id string) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.db.Preload("ServiceHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("service_entries.recorded_at ASC, service_entries.id ASC")
	}).First(&eq, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "equipment", ID: id}
		}
		return nil, err
	}
	return &eq, nil
}

// FindWithOwner loads a record together with its owning account, for the
// public scan projection.
func (r *EquipmentRepository) FindWithOwner(id string) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.db.Preload("Owner").Preload("ServiceHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("service_entries.recorded_at ASC, service_entries.id ASC")
	}).First(&eq, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "equipment", ID: id}
		}
		return nil, err
	}
	return &eq, nil
}

// FindBySerialNumber resolves the record holding a serial number, used for
// the uniqueness check at create and update.
func (r *EquipmentRepository) FindBySerialNumber(serial string) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.db.First(&eq, "serial_number = ?", serial).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "equipment"}
		}
		return nil, err
	}
	return &eq, nil
}

// ListByOwner returns one account's equipment, newest first, with optional
// status/category filters and a free-text search across title, model,
// serial number and description.
func (r *EquipmentRepository) ListByOwner(ownerID string, f ListFilter) ([]models.Equipment, error) {
	q := r.db.Where("user_id = ?", ownerID)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR model LIKE ? OR serial_number LIKE ? OR description LIKE ?",
			like, like, like, like)
	}

	var list []models.Equipment
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save writes back a fetched-and-mutated record. Updates are
// last-writer-wins; there is no optimistic concurrency token.
func (r *EquipmentRepository) Save(eq *models.Equipment) error {
	return r.db.Save(eq).Error
}

// AppendServiceEntry appends one history entry and persists the derived
// equipment fields (LastServiceDate, NotificationSent) in one transaction.
// Entries are immutable once appended.
func (r *EquipmentRepository) AppendServiceEntry(eq *models.Equipment, entry *models.ServiceEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		entry.EquipmentID = eq.ID
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Equipment{}).Where("id = ?", eq.ID).Updates(map[string]interface{}{
			"last_service_date": eq.LastServiceDate,
			"notification_sent": eq.NotificationSent,
		}).Error
	})
}

// FindRemindersDue is the scheduler's read path: equipment whose expiry
// falls inside [from, to] and whose reminder was not yet dispatched, with
// the owning account resolved for contact lookup. Reads always hit storage;
// reminder decisions must never run on cached state.
func (r *EquipmentRepository) FindRemindersDue(from, to time.Time) ([]models.Equipment, error) {
	var list []models.Equipment
	err := r.db.Preload("Owner").
		Where("service_expiry_date >= ? AND service_expiry_date <= ? AND notification_sent = ?", from, to, false).
		Order("service_expiry_date ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// MarkNotified persists a confirmed dispatch for one record. Called
// per record during a sweep, before the next record is considered.
func (r *EquipmentRepository) MarkNotified(id string) error {
	res := r.db.Model(&models.Equipment{}).Where("id = ?", id).Update("notification_sent", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Resource: "equipment", ID: id}
	}
	return nil
}

// Delete removes a record and its service history. Hard delete, no
// tombstone.
func (r *EquipmentRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("equipment_id = ?", id).Delete(&models.ServiceEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Equipment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperrors.NotFoundError{Resource: "equipment", ID: id}
		}
		return nil
	})
}

// ListAll returns every equipment record, for administrative batch
// operations.
func (r *EquipmentRepository) ListAll() ([]models.Equipment, error) {
	var list []models.Equipment
	if err := r.db.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DashboardStats aggregates one owner's inventory counters.
func (r *EquipmentRepository) DashboardStats(ownerID string, now time.Time) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	base := func() *gorm.DB {
		return r.db.Model(&models.Equipment{}).Where("user_id = ?", ownerID)
	}

	if err := base().Count(&stats.TotalEquipment).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", "Active").Count(&stats.ActiveEquipment).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", "Under Maintenance").Count(&stats.UnderMaintenance).Error; err != nil {
		return nil, err
	}

	weekAhead := now.AddDate(0, 0, 7)
	if err := base().Where("service_expiry_date >= ? AND service_expiry_date <= ?", now, weekAhead).
		Count(&stats.UpcomingService).Error; err != nil {
		return nil, err
	}
	if err := base().Where("service_expiry_date < ?", now).Count(&stats.OverdueService).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// CountAll returns the total number of equipment records.
func (r *EquipmentRepository) CountAll() (int64, error) {
	var n int64
	err := r.db.Model(&models.Equipment{}).Count(&n).Error
	return n, err
}

// CountByStatus groups all equipment by lifecycle status.
func (r *EquipmentRepository) CountByStatus() ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.Model(&models.Equipment{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// CountByCategory groups all equipment by category.
func (r *EquipmentRepository) CountByCategory() ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.Model(&models.Equipment{}).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	return rows, err
}

// UpcomingService returns equipment with service due inside the next
// `days` days, soonest first, with owners resolved.
func (r *EquipmentRepository) UpcomingService(now time.Time, days, limit int) ([]models.Equipment, error) {
	var list []models.Equipment
	err := r.db.Preload("Owner").
		Where("service_expiry_date >= ? AND service_expiry_date <= ?", now, now.AddDate(0, 0, days)).
		Order("service_expiry_date ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// CountByOwner returns every account with its equipment count, newest
// account first.
func (r *EquipmentRepository) CountByOwner() ([]OwnerEquipmentCount, error) {
	var rows []OwnerEquipmentCount
	err := r.db.Table("users").
		Select("users.id, users.name, users.email, users.company, users.created_at, COUNT(equipment.id) AS equipment_count").
		Joins("LEFT JOIN equipment ON equipment.user_id = users.id").
		Group("users.id, users.name, users.email, users.company, users.created_at").
		Order("users.created_at DESC").
		Scan(&rows).Error
	return rows, err
}
