package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairscan/hairscan-admin/internal/storage"
)

func TestListEventsRejectsNegativePaging(t *testing.T) {
	server, token := testServer(t)

	rec := doRequest(t, server, token, http.MethodGet, "/api/v1/events/?offset=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, token, http.MethodGet, "/api/v1/events/?limit=-5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEventsAfterMutation(t *testing.T) {
	server, token := testServer(t)

	path := fmt.Sprintf("/api/v1/institutions/%s/approve", storage.SeedInstitutionIDs[2])
	rec := doRequest(t, server, token, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, token, http.MethodGet, "/api/v1/events/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.GreaterOrEqual(t, body["total"], float64(1))

	events := body["events"].([]interface{})
	require.NotEmpty(t, events)
	first := events[0].(map[string]interface{})
	assert.Equal(t, "INSTITUTION_APPROVED", first["type"])
}
