package handlers

import (
	"encoding/json"
	"net/http"

	"equiptrack/internal/models"
	"equiptrack/internal/qr"
	"equiptrack/internal/repository"
	"equiptrack/internal/services"

	"github.com/gorilla/mux"
)

type EquipmentHandler struct {
	manager services.OwnerEquipmentManager
	reader  services.PublicEquipmentReader
	baseURL string
}

func NewEquipmentHandler(manager services.OwnerEquipmentManager, reader services.PublicEquipmentReader, baseURL string) *EquipmentHandler {
	return &EquipmentHandler{manager: manager, reader: reader, baseURL: baseURL}
}

// List returns the caller's equipment, with optional status/category
// filters and free-text search.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)

	filter := repository.ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}

	list, err := h.manager.List(claims.UserID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"count":     len(list),
		"equipment": list,
	})
}

// Get returns a single record for its owner
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)
	id := mux.Vars(r)["id"]

	eq, err := h.manager.Get(claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"equipment": eq,
	})
}

// Create registers new equipment and finalizes its QR identity
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)

	var req models.EquipmentCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eq, err := h.manager.Create(claims.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Equipment created successfully",
		"equipment": eq,
	})
}

// Update applies a partial update to an owned record
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)
	id := mux.Vars(r)["id"]

	var req models.EquipmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eq, err := h.manager.Update(claims.UserID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"equipment": eq,
	})
}

// Delete removes an owned record
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)
	id := mux.Vars(r)["id"]

	if err := h.manager.Delete(claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Equipment removed")
}

// AddService appends one service-history entry
func (h *EquipmentHandler) AddService(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)
	id := mux.Vars(r)["id"]

	var req models.ServiceEntryInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eq, err := h.manager.AddServiceEntry(claims.UserID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"equipment": eq,
	})
}

// Dashboard returns the owner's inventory counters
func (h *EquipmentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r)

	stats, err := h.manager.DashboardStats(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// Scan is the public QR lookup. Every failure collapses into one generic
// message so ids cannot be probed for "deleted" vs "never existed".
func (h *EquipmentHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	eq, err := h.reader.Scan(id)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Equipment not found or invalid code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"equipment": eq,
	})
}

// ScanRedirect serves printed QR labels that point at the API host instead
// of the frontend, from before the base URL was fixed.
func (h *EquipmentHandler) ScanRedirect(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	http.Redirect(w, r, qr.BuildReference(h.baseURL, id), http.StatusMovedPermanently)
}
