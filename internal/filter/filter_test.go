package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairscan/hairscan-admin/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func sampleInstitutions() []*models.Institution {
	return []*models.Institution{
		{
			Name:             "서울모발클리닉",
			Category:         models.CategoryClinic,
			Representative:   "김민수",
			BusinessNumber:   "120-81-34567",
			Phone:            "02-1234-5678",
			Email:            "contact@seoulhair.kr",
			RegistrationDate: date(2025, time.January, 12),
		},
		{
			Name:             "한국대학교병원 피부과",
			Category:         models.CategoryUniversityHospital,
			Representative:   "이서연",
			BusinessNumber:   "214-82-11029",
			Phone:            "02-2072-0001",
			Email:            "derma@kuh.ac.kr",
			RegistrationDate: date(2025, time.February, 3),
		},
		{
			Name:             "모발과학연구소",
			Category:         models.CategoryResearchLab,
			Representative:   "박지훈",
			BusinessNumber:   "305-86-00921",
			RegistrationDate: date(2025, time.April, 21),
		},
	}
}

func TestInstitutionsEmptyCriteriaReturnsAllInOrder(t *testing.T) {
	list := sampleInstitutions()

	got := Institutions(list, Criteria{})

	require.Len(t, got, 3)
	for i := range list {
		assert.Same(t, list[i], got[i])
	}
}

func TestInstitutionsDateRangeInclusive(t *testing.T) {
	list := sampleInstitutions()

	got := Institutions(list, Criteria{
		RegisteredAfter:  datePtr(2025, time.January, 12),
		RegisteredBefore: datePtr(2025, time.February, 3),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "서울모발클리닉", got[0].Name)
	assert.Equal(t, "한국대학교병원 피부과", got[1].Name)
}

func TestInstitutionsLowerBoundOnly(t *testing.T) {
	list := sampleInstitutions()

	got := Institutions(list, Criteria{RegisteredAfter: datePtr(2025, time.February, 4)})

	require.Len(t, got, 1)
	assert.Equal(t, "모발과학연구소", got[0].Name)
}

func TestInstitutionsZeroDateExcludedWhenBounded(t *testing.T) {
	list := []*models.Institution{
		{Name: "no-date"},
		{Name: "dated", RegistrationDate: date(2025, time.March, 1)},
	}

	// Without bounds the undated record passes
	got := Institutions(list, Criteria{})
	assert.Len(t, got, 2)

	// With any bound set it is excluded
	got = Institutions(list, Criteria{RegisteredBefore: datePtr(2025, time.December, 31)})
	require.Len(t, got, 1)
	assert.Equal(t, "dated", got[0].Name)
}

func TestMatchesSearchNameCaseInsensitive(t *testing.T) {
	inst := &models.Institution{Name: "Seoul Hair Clinic"}

	assert.True(t, MatchesSearch(inst, "seoul"))
	assert.True(t, MatchesSearch(inst, "HAIR"))
	assert.False(t, MatchesSearch(inst, "busan"))
}

func TestMatchesSearchBusinessNumberSubstring(t *testing.T) {
	list := sampleInstitutions()

	got := Institutions(list, Criteria{Search: "81-34"})

	require.Len(t, got, 1)
	assert.Equal(t, "120-81-34567", got[0].BusinessNumber)
}

func TestMatchesSearchRepresentative(t *testing.T) {
	list := sampleInstitutions()

	got := Institutions(list, Criteria{Search: "이서연"})

	require.Len(t, got, 1)
	assert.Equal(t, "한국대학교병원 피부과", got[0].Name)
}

func TestMatchesSearchEmptyMatchesAll(t *testing.T) {
	for _, inst := range sampleInstitutions() {
		assert.True(t, MatchesSearch(inst, ""))
	}
}

func TestInstitutionsCombinedFilters(t *testing.T) {
	list := sampleInstitutions()

	got := Institutions(list, Criteria{
		RegisteredAfter: datePtr(2025, time.January, 1),
		Search:          "02-",
	})

	// Only the two Seoul records carry an 02 phone prefix
	require.Len(t, got, 2)
	assert.Equal(t, "서울모발클리닉", got[0].Name)
	assert.Equal(t, "한국대학교병원 피부과", got[1].Name)
}

func TestCriteriaEmpty(t *testing.T) {
	assert.True(t, Criteria{}.Empty())
	assert.False(t, Criteria{Search: "x"}.Empty())
	assert.False(t, Criteria{RegisteredAfter: datePtr(2025, time.January, 1)}.Empty())
}

func TestInstitutionsDoesNotMutateInput(t *testing.T) {
	list := sampleInstitutions()
	before := make([]*models.Institution, len(list))
	copy(before, list)

	Institutions(list, Criteria{Search: "클리닉"})

	for i := range list {
		assert.Same(t, before[i], list[i])
	}
}
