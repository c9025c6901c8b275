package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"equiptrack/internal/models"
	"equiptrack/internal/services"
)

type AdminHandler struct {
	authService  *services.AuthService
	adminService *services.AdminService
}

func NewAdminHandler(authService *services.AuthService, adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{authService: authService, adminService: adminService}
}

// Login authenticates against the configured admin credentials
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLogin
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.authService.AdminLogin(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, "Invalid admin credentials")
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"role":    "admin",
		"token":   token,
	})
}

// Analytics returns the fleet-wide dashboard report
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.adminService.Analytics()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Users lists every account
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.Users()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

// RegenerateQRCodes re-derives every equipment's QR identity against the
// current public base URL and reports per-record outcomes.
func (h *AdminHandler) RegenerateQRCodes(w http.ResponseWriter, r *http.Request) {
	report, err := h.adminService.RegenerateQRCodes()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"report":  report,
	})
}
