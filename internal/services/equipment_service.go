package services

import (
	"time"

	"equiptrack/internal/apperrors"
	"equiptrack/internal/models"
	"equiptrack/internal/qr"
	"equiptrack/internal/reminder"
	"equiptrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublicEquipmentReader is the deliberately unauthenticated scan path: any
// caller holding a valid id (typically from a printed QR label) may read
// the record, including minimal owner contact info.
type PublicEquipmentReader interface {
	Scan(id string) (*models.Equipment, error)
}

// OwnerEquipmentManager is the authenticated CRUD surface. Every operation
// verifies that the caller owns the record, after confirming it exists.
type OwnerEquipmentManager interface {
	Create(ownerID string, req models.EquipmentCreate) (*models.Equipment, error)
	Get(ownerID, id string) (*models.Equipment, error)
	List(ownerID string, f repository.ListFilter) ([]models.Equipment, error)
	Update(ownerID, id string, req models.EquipmentUpdate) (*models.Equipment, error)
	Delete(ownerID, id string) error
	AddServiceEntry(ownerID, id string, req models.ServiceEntryInput) (*models.Equipment, error)
	DashboardStats(ownerID string) (*models.DashboardStats, error)
}

// EquipmentStore is the persistence contract the service depends on.
type EquipmentStore interface {
	Create(eq *models.Equipment) error
	FinalizeIdentity(id, artifact, url string) error
	FindByID(id string) (*models.Equipment, error)
	FindWithOwner(id string) (*models.Equipment, error)
	FindBySerialNumber(serial string) (*models.Equipment, error)
	ListByOwner(ownerID string, f repository.ListFilter) ([]models.Equipment, error)
	Save(eq *models.Equipment) error
	AppendServiceEntry(eq *models.Equipment, entry *models.ServiceEntry) error
	Delete(id string) error
	DashboardStats(ownerID string, now time.Time) (*models.DashboardStats, error)
}

// EquipmentService implements both capability interfaces on one store.
type EquipmentService struct {
	store   EquipmentStore
	baseURL string
	now     func() time.Time
	log     *zap.Logger
}

func NewEquipmentService(store EquipmentStore, baseURL string, log *zap.Logger) *EquipmentService {
	return &EquipmentService{
		store:   store,
		baseURL: baseURL,
		now:     time.Now,
		log:     log,
	}
}

// Create persists a new record and finalizes its QR identity. A codec
// failure aborts the whole creation: the placeholder record is removed so
// no equipment ever survives with broken identity fields.
func (s *EquipmentService) Create(ownerID string, req models.EquipmentCreate) (*models.Equipment, error) {
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	if req.SerialNumber != "" {
		if err := s.checkSerialAvailable(req.SerialNumber, ""); err != nil {
			return nil, err
		}
	}

	eq := models.Equipment{
		Title:                 req.Title,
		Model:                 req.Model,
		Description:           req.Description,
		Category:              req.Category,
		Location:              req.Location,
		Status:                req.Status,
		PurchaseDate:          req.PurchaseDate,
		PurchasePrice:         req.PurchasePrice,
		ServiceExpiryDate:     req.ServiceExpiryDate,
		CalibrationExpiryDate: req.CalibrationExpiryDate,
		ServiceIntervalDays:   req.ServiceIntervalDays,
		UserID:                ownerID,
		// Placeholder identity until the storage id is known. The suffix
		// keeps the unique index on qr_code_data happy under concurrent
		// creates.
		QRCode:     "pending",
		QRCodeData: "pending:" + uuid.NewString(),
	}
	if req.SerialNumber != "" {
		eq.SerialNumber = &req.SerialNumber
	}

	if err := s.store.Create(&eq); err != nil {
		return nil, err
	}

	artifact, url, err := qr.Regenerate(s.baseURL, eq.ID)
	if err != nil {
		if delErr := s.store.Delete(eq.ID); delErr != nil {
			s.log.Error("failed to roll back equipment after codec error",
				zap.String("equipment_id", eq.ID), zap.Error(delErr))
		}
		return nil, err
	}

	if err := s.store.FinalizeIdentity(eq.ID, artifact, url); err != nil {
		return nil, err
	}
	eq.QRCode = artifact
	eq.QRCodeData = url

	return &eq, nil
}

// Get returns one record for its owner.
func (s *EquipmentService) Get(ownerID, id string) (*models.Equipment, error) {
	return s.ownedEquipment(ownerID, id)
}

// List returns the owner's equipment, filtered.
func (s *EquipmentService) List(ownerID string, f repository.ListFilter) ([]models.Equipment, error) {
	return s.store.ListByOwner(ownerID, f)
}

// Update applies a partial update. The notification flag is re-armed only
// when the service expiry date actually changes; updates restating the
// stored value leave it alone.
func (s *EquipmentService) Update(ownerID, id string, req models.EquipmentUpdate) (*models.Equipment, error) {
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	eq, err := s.ownedEquipment(ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.SerialNumber != nil && *req.SerialNumber != "" {
		current := ""
		if eq.SerialNumber != nil {
			current = *eq.SerialNumber
		}
		if *req.SerialNumber != current {
			if err := s.checkSerialAvailable(*req.SerialNumber, eq.ID); err != nil {
				return nil, err
			}
		}
	}

	if req.Title != nil {
		eq.Title = *req.Title
	}
	if req.Model != nil {
		eq.Model = *req.Model
	}
	if req.Description != nil {
		eq.Description = *req.Description
	}
	if req.SerialNumber != nil {
		if *req.SerialNumber == "" {
			eq.SerialNumber = nil
		} else {
			eq.SerialNumber = req.SerialNumber
		}
	}
	if req.Category != nil {
		eq.Category = *req.Category
	}
	if req.Location != nil {
		eq.Location = *req.Location
	}
	if req.Status != nil {
		eq.Status = *req.Status
	}
	if req.PurchaseDate != nil {
		eq.PurchaseDate = req.PurchaseDate
	}
	if req.PurchasePrice != nil {
		eq.PurchasePrice = req.PurchasePrice
	}
	if req.ServiceIntervalDays != nil {
		eq.ServiceIntervalDays = *req.ServiceIntervalDays
	}
	if req.CalibrationExpiryDate != nil {
		eq.CalibrationExpiryDate = req.CalibrationExpiryDate
	}
	if req.ServiceExpiryDate != nil {
		if reminder.ExpiryChanged(eq.ServiceExpiryDate, req.ServiceExpiryDate) {
			reminder.Rearm(eq)
		}
		eq.ServiceExpiryDate = req.ServiceExpiryDate
	}

	if err := s.store.Save(eq); err != nil {
		return nil, err
	}
	return eq, nil
}

// Delete removes a record. Only the owner may delete; the scheduler never
// deletes anything.
func (s *EquipmentService) Delete(ownerID, id string) error {
	if _, err := s.ownedEquipment(ownerID, id); err != nil {
		return err
	}
	return s.store.Delete(id)
}

// AddServiceEntry appends one immutable service-history entry, moves
// LastServiceDate to the entry's date and re-arms the reminder.
func (s *EquipmentService) AddServiceEntry(ownerID, id string, req models.ServiceEntryInput) (*models.Equipment, error) {
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	eq, err := s.ownedEquipment(ownerID, id)
	if err != nil {
		return nil, err
	}

	entry := models.ServiceEntry{
		ServiceDate: req.ServiceDate,
		Description: req.Description,
		PerformedBy: req.PerformedBy,
		Cost:        req.Cost,
		Notes:       req.Notes,
	}

	serviceDate := req.ServiceDate
	eq.LastServiceDate = &serviceDate
	reminder.Rearm(eq)

	if err := s.store.AppendServiceEntry(eq, &entry); err != nil {
		return nil, err
	}

	return s.store.FindByID(eq.ID)
}

// DashboardStats summarizes the owner's inventory.
func (s *EquipmentService) DashboardStats(ownerID string) (*models.DashboardStats, error) {
	return s.store.DashboardStats(ownerID, s.now())
}

// Scan is the public read path. Any failure collapses into the same
// not-found error so callers cannot distinguish deleted, never-existed or
// malformed ids.
func (s *EquipmentService) Scan(id string) (*models.Equipment, error) {
	eq, err := s.store.FindWithOwner(id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		s.log.Error("scan lookup failed", zap.String("equipment_id", id), zap.Error(err))
		return nil, &apperrors.NotFoundError{Resource: "equipment", ID: id}
	}
	return eq, nil
}

// ownedEquipment loads a record and verifies ownership. Existence is
// checked first so "not found" and "not yours" stay distinguishable.
func (s *EquipmentService) ownedEquipment(ownerID, id string) (*models.Equipment, error) {
	eq, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if eq.UserID != ownerID {
		return nil, &apperrors.ForbiddenError{Action: "access this equipment"}
	}
	return eq, nil
}

func (s *EquipmentService) checkSerialAvailable(serial, selfID string) error {
	existing, err := s.store.FindBySerialNumber(serial)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return &apperrors.ConflictError{Message: "equipment with this serial number already exists"}
	}
	return nil
}
