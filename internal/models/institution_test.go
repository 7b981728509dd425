package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseStatusLabel(t *testing.T) {
	tests := []struct {
		status LicenseStatus
		label  string
	}{
		{LicenseTrial, "무료체험"},
		{LicenseActive, "정식 라이선스"},
		{LicenseExpired, "정식 라이선스 (만료)"},
		{LicenseNone, "-"},
		{LicenseStatus("bogus"), "-"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, tt.status.Label(), "status %q", tt.status)
	}
}

func TestInstitutionMarshalJSONDerivesLicenseType(t *testing.T) {
	inst := Institution{
		Name:          "서울모발클리닉",
		LicenseStatus: LicenseTrial,
	}

	data, err := json.Marshal(inst)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "trial", decoded["licenseStatus"])
	assert.Equal(t, "무료체험", decoded["licenseType"])
}

func TestInstitutionMarshalJSONLabelTracksStatus(t *testing.T) {
	inst := Institution{Name: "x"}

	for _, status := range []LicenseStatus{LicenseNone, LicenseTrial, LicenseActive, LicenseExpired} {
		inst.LicenseStatus = status

		data, err := json.Marshal(inst)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, status.Label(), decoded["licenseType"])
	}
}

func TestInstitutionCategoryValid(t *testing.T) {
	assert.True(t, CategoryClinic.Valid())
	assert.True(t, CategoryHairSalon.Valid())
	assert.False(t, InstitutionCategory("spa").Valid())
	assert.False(t, InstitutionCategory("").Valid())
}

func TestLicenseStatusValid(t *testing.T) {
	assert.True(t, LicenseNone.Valid())
	assert.True(t, LicenseExpired.Valid())
	assert.False(t, LicenseStatus("suspended").Valid())
}
