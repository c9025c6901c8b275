package repository

import (
	"testing"
	"time"

	"equiptrack/internal/apperrors"
	"equiptrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Equipment{}, &models.ServiceEntry{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Dana", Email: email, PasswordHash: "x", Role: "user"}
	require.NoError(t, NewUserRepository(db).Create(u))
	return u
}

func seedEquipment(t *testing.T, repo *EquipmentRepository, ownerID, title string, mutate func(*models.Equipment)) *models.Equipment {
	t.Helper()
	eq := &models.Equipment{
		Title:       title,
		Model:       "M-1",
		Description: "test asset",
		UserID:      ownerID,
		QRCode:      "pending",
		QRCodeData:  "pending:" + title,
	}
	if mutate != nil {
		mutate(eq)
	}
	require.NoError(t, repo.Create(eq))
	return eq
}

func TestCreateAssignsDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")

	eq := seedEquipment(t, repo, owner.ID, "Drill", nil)
	require.NotEmpty(t, eq.ID)

	got, err := repo.FindByID(eq.ID)
	require.NoError(t, err)
	assert.Equal(t, "Other", got.Category)
	assert.Equal(t, "Active", got.Status)
	assert.Equal(t, 90, got.ServiceIntervalDays)
	assert.False(t, got.NotificationSent)
}

func TestFinalizeIdentity(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")
	eq := seedEquipment(t, repo, owner.ID, "Drill", nil)

	err := repo.FinalizeIdentity(eq.ID, "data:image/png;base64,AAAA", "https://t.example.com/equipment/scan/"+eq.ID)
	require.NoError(t, err)

	got, err := repo.FindByID(eq.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", got.QRCode)
	assert.Equal(t, "https://t.example.com/equipment/scan/"+eq.ID, got.QRCodeData)

	err = repo.FinalizeIdentity("no-such-id", "x", "y")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)

	_, err := repo.FindByID("missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindWithOwnerResolvesAccount(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")
	eq := seedEquipment(t, repo, owner.ID, "Drill", nil)

	got, err := repo.FindWithOwner(eq.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "dana@example.com", got.Owner.Email)
}

func TestListByOwnerFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")
	other := seedUser(t, db, "eli@example.com")

	seedEquipment(t, repo, owner.ID, "Bench Drill", func(eq *models.Equipment) {
		eq.Status = "Active"
		eq.Category = "Tools"
	})
	seedEquipment(t, repo, owner.ID, "Oscilloscope", func(eq *models.Equipment) {
		eq.Status = "Under Maintenance"
		eq.Category = "Electronics"
	})
	seedEquipment(t, repo, other.ID, "Forklift", nil)

	all, err := repo.ListByOwner(owner.ID, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := repo.ListByOwner(owner.ID, ListFilter{Status: "Active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Bench Drill", active[0].Title)

	tools, err := repo.ListByOwner(owner.ID, ListFilter{Category: "Electronics"})
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "Oscilloscope", tools[0].Title)

	search, err := repo.ListByOwner(owner.ID, ListFilter{Search: "drill"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "Bench Drill", search[0].Title)
}

func TestFindRemindersDue(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")

	now := time.Now()
	inWindow := seedEquipment(t, repo, owner.ID, "Due Soon", func(eq *models.Equipment) {
		d := now.AddDate(0, 0, 3)
		eq.ServiceExpiryDate = &d
	})
	seedEquipment(t, repo, owner.ID, "Already Sent", func(eq *models.Equipment) {
		d := now.AddDate(0, 0, 3)
		eq.ServiceExpiryDate = &d
		eq.NotificationSent = true
	})
	seedEquipment(t, repo, owner.ID, "Far Out", func(eq *models.Equipment) {
		d := now.AddDate(0, 0, 30)
		eq.ServiceExpiryDate = &d
	})
	seedEquipment(t, repo, owner.ID, "No Date", nil)

	due, err := repo.FindRemindersDue(now.AddDate(0, 0, -1), now.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, inWindow.ID, due[0].ID)
	require.NotNil(t, due[0].Owner)
	assert.Equal(t, "dana@example.com", due[0].Owner.Email)
}

func TestMarkNotified(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")
	eq := seedEquipment(t, repo, owner.ID, "Drill", nil)

	require.NoError(t, repo.MarkNotified(eq.ID))

	got, err := repo.FindByID(eq.ID)
	require.NoError(t, err)
	assert.True(t, got.NotificationSent)

	err = repo.MarkNotified("no-such-id")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAppendServiceEntryPersistsDerivedFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")
	eq := seedEquipment(t, repo, owner.ID, "Drill", func(eq *models.Equipment) {
		eq.NotificationSent = true
	})

	serviceDate := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	eq.LastServiceDate = &serviceDate
	eq.NotificationSent = false

	entry := &models.ServiceEntry{
		ServiceDate: serviceDate,
		Description: "Replaced chuck",
		PerformedBy: "ACME Service",
	}
	require.NoError(t, repo.AppendServiceEntry(eq, entry))

	got, err := repo.FindByID(eq.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastServiceDate)
	assert.False(t, got.NotificationSent)
	require.Len(t, got.ServiceHistory, 1)
	assert.Equal(t, "Replaced chuck", got.ServiceHistory[0].Description)

	// A second entry appends; nothing is overwritten.
	second := &models.ServiceEntry{ServiceDate: serviceDate.AddDate(0, 1, 0), Description: "Lubrication"}
	require.NoError(t, repo.AppendServiceEntry(eq, second))

	got, err = repo.FindByID(eq.ID)
	require.NoError(t, err)
	require.Len(t, got.ServiceHistory, 2)
	assert.Equal(t, "Replaced chuck", got.ServiceHistory[0].Description)
	assert.Equal(t, "Lubrication", got.ServiceHistory[1].Description)
}

func TestDeleteRemovesHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")
	eq := seedEquipment(t, repo, owner.ID, "Drill", nil)

	entry := &models.ServiceEntry{ServiceDate: time.Now(), Description: "Initial check"}
	require.NoError(t, repo.AppendServiceEntry(eq, entry))

	require.NoError(t, repo.Delete(eq.ID))

	_, err := repo.FindByID(eq.ID)
	assert.True(t, apperrors.IsNotFound(err))

	var orphaned int64
	require.NoError(t, db.Model(&models.ServiceEntry{}).Where("equipment_id = ?", eq.ID).Count(&orphaned).Error)
	assert.Zero(t, orphaned)

	err = repo.Delete("no-such-id")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	owner := seedUser(t, db, "dana@example.com")

	now := time.Now()
	seedEquipment(t, repo, owner.ID, "Active Soon", func(eq *models.Equipment) {
		eq.Status = "Active"
		d := now.AddDate(0, 0, 3)
		eq.ServiceExpiryDate = &d
	})
	seedEquipment(t, repo, owner.ID, "In Shop", func(eq *models.Equipment) {
		eq.Status = "Under Maintenance"
		d := now.AddDate(0, 0, -3)
		eq.ServiceExpiryDate = &d
	})
	seedEquipment(t, repo, owner.ID, "Retired Unit", func(eq *models.Equipment) {
		eq.Status = "Retired"
	})

	stats, err := repo.DashboardStats(owner.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalEquipment)
	assert.Equal(t, int64(1), stats.ActiveEquipment)
	assert.Equal(t, int64(1), stats.UnderMaintenance)
	assert.Equal(t, int64(1), stats.UpcomingService)
	assert.Equal(t, int64(1), stats.OverdueService)
}

func TestAdminAggregates(t *testing.T) {
	db := newTestDB(t)
	repo := NewEquipmentRepository(db)
	dana := seedUser(t, db, "dana@example.com")
	eli := seedUser(t, db, "eli@example.com")

	seedEquipment(t, repo, dana.ID, "A", func(eq *models.Equipment) {
		eq.Status = "Active"
		eq.Category = "Tools"
	})
	seedEquipment(t, repo, dana.ID, "B", func(eq *models.Equipment) {
		eq.Status = "Retired"
		eq.Category = "Tools"
	})
	seedEquipment(t, repo, eli.ID, "C", func(eq *models.Equipment) {
		eq.Status = "Active"
		eq.Category = "Vehicles"
	})

	total, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	byStatus, err := repo.CountByStatus()
	require.NoError(t, err)
	statusCounts := map[string]int64{}
	for _, row := range byStatus {
		statusCounts[row.Key] = row.Count
	}
	assert.Equal(t, int64(2), statusCounts["Active"])
	assert.Equal(t, int64(1), statusCounts["Retired"])

	byCategory, err := repo.CountByCategory()
	require.NoError(t, err)
	categoryCounts := map[string]int64{}
	for _, row := range byCategory {
		categoryCounts[row.Key] = row.Count
	}
	assert.Equal(t, int64(2), categoryCounts["Tools"])
	assert.Equal(t, int64(1), categoryCounts["Vehicles"])

	byOwner, err := repo.CountByOwner()
	require.NoError(t, err)
	ownerCounts := map[string]int64{}
	for _, row := range byOwner {
		ownerCounts[row.Email] = row.EquipmentCount
	}
	assert.Equal(t, int64(2), ownerCounts["dana@example.com"])
	assert.Equal(t, int64(1), ownerCounts["eli@example.com"])
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	u := &models.User{Name: "Dana", Email: "dana@example.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, repo.Create(u))
	require.NotEmpty(t, u.ID)

	byEmail, err := repo.FindByEmail("dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.FindByEmail("nobody@example.com")
	assert.True(t, apperrors.IsNotFound(err))

	byID, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", byID.Email)

	n, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
