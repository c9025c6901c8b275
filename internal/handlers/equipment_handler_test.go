package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"equiptrack/internal/apperrors"
	"equiptrack/internal/models"
	"equiptrack/internal/repository"
	"equiptrack/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeManager returns canned results per call.
type fakeManager struct {
	eq  *models.Equipment
	err error
}

func (f *fakeManager) Create(ownerID string, req models.EquipmentCreate) (*models.Equipment, error) {
	return f.eq, f.err
}

func (f *fakeManager) Get(ownerID, id string) (*models.Equipment, error) { return f.eq, f.err }

func (f *fakeManager) List(ownerID string, filter repository.ListFilter) ([]models.Equipment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Equipment{*f.eq}, nil
}

func (f *fakeManager) Update(ownerID, id string, req models.EquipmentUpdate) (*models.Equipment, error) {
	return f.eq, f.err
}

func (f *fakeManager) Delete(ownerID, id string) error { return f.err }

func (f *fakeManager) AddServiceEntry(ownerID, id string, req models.ServiceEntryInput) (*models.Equipment, error) {
	return f.eq, f.err
}

func (f *fakeManager) DashboardStats(ownerID string) (*models.DashboardStats, error) {
	return &models.DashboardStats{}, f.err
}

type fakeReader struct {
	eq  *models.Equipment
	err error
}

func (f *fakeReader) Scan(id string) (*models.Equipment, error) { return f.eq, f.err }

// fakeValidator accepts exactly one token.
type fakeValidator struct {
	token  string
	claims *services.JWTClaims
}

func (f *fakeValidator) ValidateToken(token string) (*services.JWTClaims, error) {
	if token != f.token {
		return nil, errors.New("invalid token")
	}
	return f.claims, nil
}

func newHandlerRouter(manager services.OwnerEquipmentManager, reader services.PublicEquipmentReader) *mux.Router {
	h := NewEquipmentHandler(manager, reader, "https://tracker.example.com")
	protect := NewAuthMiddleware(&fakeValidator{
		token:  "good-token",
		claims: &services.JWTClaims{UserID: "owner-1", Role: "user"},
	})

	r := mux.NewRouter()
	r.HandleFunc("/api/equipment/scan/{id}", h.Scan).Methods("GET")
	r.Handle("/api/equipment", protect.Protect(h.List)).Methods("GET")
	r.Handle("/api/equipment", protect.Protect(h.Create)).Methods("POST")
	r.Handle("/api/equipment/{id}", protect.Protect(h.Get)).Methods("GET")
	r.HandleFunc("/equipment/scan/{id}", h.ScanRedirect).Methods("GET")
	return r
}

func doRequest(t *testing.T, router *mux.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestScanIsPublicAndGeneric(t *testing.T) {
	eq := &models.Equipment{ID: "eq-1", Title: "Drill"}
	router := newHandlerRouter(&fakeManager{}, &fakeReader{eq: eq})

	// No token needed.
	rec := doRequest(t, router, "GET", "/api/equipment/scan/eq-1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, true, payload["success"])

	// Any failure yields the same generic message.
	for _, scanErr := range []error{
		&apperrors.NotFoundError{Resource: "equipment", ID: "x"},
		errors.New("backend down"),
	} {
		router = newHandlerRouter(&fakeManager{}, &fakeReader{err: scanErr})
		rec = doRequest(t, router, "GET", "/api/equipment/scan/x", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		payload = decodeBody(t, rec)
		assert.Equal(t, "Equipment not found or invalid code", payload["message"])
	}
}

func TestProtectRejectsBadTokens(t *testing.T) {
	router := newHandlerRouter(&fakeManager{eq: &models.Equipment{ID: "eq-1"}}, &fakeReader{})

	rec := doRequest(t, router, "GET", "/api/equipment", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, "GET", "/api/equipment", "bad-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, "GET", "/api/equipment", "good-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", &apperrors.NotFoundError{Resource: "equipment", ID: "x"}, http.StatusNotFound},
		{"forbidden", &apperrors.ForbiddenError{Action: "access this equipment"}, http.StatusForbidden},
		{"conflict", &apperrors.ConflictError{Message: "serial taken"}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newHandlerRouter(&fakeManager{err: tt.err}, &fakeReader{})
			rec := doRequest(t, router, "GET", "/api/equipment/eq-1", "good-token", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestValidationErrorsCarryFieldDetail(t *testing.T) {
	verr := apperrors.NewValidation(map[string]string{"title": "is required"})
	router := newHandlerRouter(&fakeManager{err: verr}, &fakeReader{})

	rec := doRequest(t, router, "POST", "/api/equipment", "good-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload := decodeBody(t, rec)
	fields, ok := payload["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "is required", fields["title"])
}

func TestCreateReturnsCreatedEnvelope(t *testing.T) {
	eq := &models.Equipment{ID: "eq-1", Title: "Drill", QRCodeData: "https://tracker.example.com/equipment/scan/eq-1"}
	router := newHandlerRouter(&fakeManager{eq: eq}, &fakeReader{})

	rec := doRequest(t, router, "POST", "/api/equipment", "good-token", `{"title":"Drill","model":"M","description":"d"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, true, payload["success"])
	equipment, ok := payload["equipment"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "eq-1", equipment["id"])
}

func TestScanRedirect(t *testing.T) {
	router := newHandlerRouter(&fakeManager{}, &fakeReader{})

	rec := doRequest(t, router, "GET", "/equipment/scan/eq-1", "", "")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://tracker.example.com/equipment/scan/eq-1", rec.Header().Get("Location"))
}
