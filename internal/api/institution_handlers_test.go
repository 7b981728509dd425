package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairscan/hairscan-admin/internal/auth"
	"github.com/hairscan/hairscan-admin/internal/config"
	"github.com/hairscan/hairscan-admin/internal/notify"
	"github.com/hairscan/hairscan-admin/internal/storage"
	"github.com/hairscan/hairscan-admin/pkg/crypto"
)

func testServer(t *testing.T) (*RESTServer, string) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Name = "hairscan-admin-test"
	cfg.JWT = config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}

	store := storage.NewMemoryStore()
	require.NoError(t, storage.Seed(context.Background(), store, "unused-hash"))

	notifier := notify.NewNotifier(store, nil, nil)
	server := NewRESTServer(cfg, store, notifier)

	admin, err := store.GetUser(context.Background(), storage.SeedAdminID)
	require.NoError(t, err)

	token, _, err := auth.NewJWTManager(&cfg.JWT).GenerateTokenPair(admin)
	require.NoError(t, err)

	return server, token
}

func doRequest(t *testing.T, server *RESTServer, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListInstitutionsRequiresAuth(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "", http.MethodGet, "/api/v1/institutions/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListInstitutionsReturnsSeedData(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodGet, "/api/v1/institutions/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(5), body["total"])

	insts := body["institutions"].([]interface{})
	first := insts[0].(map[string]interface{})
	assert.Equal(t, "서울모발클리닉", first["name"])
	// Derived label is present alongside the enum
	assert.Equal(t, "active", first["licenseStatus"])
	assert.Equal(t, "정식 라이선스", first["licenseType"])
}

func TestListInstitutionsSearchFilter(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodGet, "/api/v1/institutions/?search=305-86", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total"])
}

func TestListInstitutionsDateRange(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodGet,
		"/api/v1/institutions/?start_date=2025-02-01&end_date=2025-05-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["total"])
}

func TestListInstitutionsBadDate(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodGet, "/api/v1/institutions/?start_date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateInstitution(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodPost, "/api/v1/institutions/", map[string]interface{}{
		"name":             "새로운클리닉",
		"category":         "clinic",
		"representative":   "김영희",
		"businessNumber":   "999-88-77766",
		"registrationDate": "2025-08-15",
		"seatLimit":        30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "none", body["licenseStatus"])
	assert.Equal(t, "-", body["licenseType"])
	assert.Equal(t, float64(1), body["version"])
}

func TestCreateInstitutionDuplicateBusinessNumber(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodPost, "/api/v1/institutions/", map[string]interface{}{
		"name":           "중복클리닉",
		"category":       "clinic",
		"representative": "김영희",
		"businessNumber": "120-81-34567",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateInstitutionInvalidCategory(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodPost, "/api/v1/institutions/", map[string]interface{}{
		"name":           "이상한기관",
		"category":       "spa",
		"representative": "김영희",
		"businessNumber": "111-22-33344",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveInstitutionIdempotent(t *testing.T) {
	server, token := testServer(t)

	path := fmt.Sprintf("/api/v1/institutions/%s/approve", storage.SeedInstitutionIDs[2])

	rec := doRequest(t, server, token, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeBody(t, rec)
	assert.Equal(t, "approved", first["status"])

	rec = doRequest(t, server, token, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeBody(t, rec)
	assert.Equal(t, "approved", second["status"])
	assert.Equal(t, first["version"], second["version"])
}

func TestApproveInstitutionNotFound(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodPost,
		"/api/v1/institutions/00000000-0000-0000-0000-0000000000ff/approve", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateInstitutionStaleVersion(t *testing.T) {
	server, token := testServer(t)

	id := storage.SeedInstitutionIDs[0]
	path := "/api/v1/institutions/" + id.String()

	update := map[string]interface{}{
		"version":        1,
		"name":           "서울모발클리닉",
		"category":       "clinic",
		"representative": "김민수",
		"phone":          "02-1111-2222",
		"seatLimit":      100,
	}

	rec := doRequest(t, server, token, http.MethodPut, path, update)
	require.Equal(t, http.StatusOK, rec.Code)

	// The same version again is now stale
	rec = doRequest(t, server, token, http.MethodPut, path, update)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSetInstitutionLicense(t *testing.T) {
	server, token := testServer(t)

	path := fmt.Sprintf("/api/v1/institutions/%s/license", storage.SeedInstitutionIDs[2])

	rec := doRequest(t, server, token, http.MethodPut, path, map[string]interface{}{
		"status": "trial",
		"expiry": "2026-03-15",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "trial", body["licenseStatus"])
	assert.Equal(t, "무료체험", body["licenseType"])
}

func TestSetInstitutionLicenseInvalidStatus(t *testing.T) {
	server, token := testServer(t)

	path := fmt.Sprintf("/api/v1/institutions/%s/license", storage.SeedInstitutionIDs[2])

	rec := doRequest(t, server, token, http.MethodPut, path, map[string]interface{}{
		"status": "suspended",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteInstitution(t *testing.T) {
	server, token := testServer(t)

	path := "/api/v1/institutions/" + storage.SeedInstitutionIDs[4].String()

	rec := doRequest(t, server, token, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, server, token, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMobileUserSeatLimit(t *testing.T) {
	server, token := testServer(t)

	// The fourth seed institution is at its seat limit (5/5)
	rec := doRequest(t, server, token, http.MethodPost, "/api/v1/mobile-users/", map[string]interface{}{
		"institutionId": storage.SeedInstitutionIDs[3].String(),
		"name":          "성춘향",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The first one has seats left
	rec = doRequest(t, server, token, http.MethodPost, "/api/v1/mobile-users/", map[string]interface{}{
		"institutionId": storage.SeedInstitutionIDs[0].String(),
		"name":          "성춘향",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealthEndpointIsPublic(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "", http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestLoginAndMe(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}

	store := storage.NewMemoryStore()
	hash, err := crypto.HashPassword("secret-password")
	require.NoError(t, err)
	require.NoError(t, storage.Seed(context.Background(), store, hash))

	server := NewRESTServer(cfg, store, notify.NewNotifier(store, nil, nil))

	rec := doRequest(t, server, "", http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "admin@hairscan.io",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	token := body["access_token"].(string)
	require.NotEmpty(t, token)

	rec = doRequest(t, server, token, http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody(t, rec)
	assert.Equal(t, "admin@hairscan.io", me["email"])

	// Wrong password is rejected
	rec = doRequest(t, server, "", http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    "admin@hairscan.io",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportInstitutionsReturnsXLSX(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodGet, "/api/v1/institutions/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}
