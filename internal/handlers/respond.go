package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"equiptrack/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": status < 400,
		"message": message,
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Clients can tell
// "doesn't exist" from "not yours" from "taken".
func writeError(w http.ResponseWriter, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "validation failed",
			"errors":  verr.Fields,
		})
		return
	}

	switch {
	case apperrors.IsNotFound(err):
		writeMessage(w, http.StatusNotFound, err.Error())
	case apperrors.IsForbidden(err):
		writeMessage(w, http.StatusForbidden, err.Error())
	case apperrors.IsConflict(err):
		writeMessage(w, http.StatusConflict, err.Error())
	case apperrors.IsCodec(err):
		writeMessage(w, http.StatusInternalServerError, "Failed to generate QR code")
	default:
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}
