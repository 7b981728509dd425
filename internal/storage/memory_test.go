package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairscan/hairscan-admin/internal/filter"
	"github.com/hairscan/hairscan-admin/internal/models"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, Seed(context.Background(), store, "test-hash"))
	return store
}

func TestSeedCreatesFiveInstitutions(t *testing.T) {
	store := seededStore(t)

	insts, err := store.ListInstitutions(context.Background(), filter.Criteria{})
	require.NoError(t, err)
	require.Len(t, insts, 5)

	// Insertion order is preserved
	for i, id := range SeedInstitutionIDs {
		assert.Equal(t, id, insts[i].ID)
	}
}

func TestApproveInstitutionTransitionsPending(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	// The third seed record is pending
	id := SeedInstitutionIDs[2]
	before, err := store.GetInstitution(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.InstitutionPending, before.Status)

	approved, err := store.ApproveInstitution(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.InstitutionApproved, approved.Status)
	assert.Equal(t, before.Version+1, approved.Version)

	// Everything else is untouched
	assert.Equal(t, before.Name, approved.Name)
	assert.Equal(t, before.BusinessNumber, approved.BusinessNumber)
	assert.Equal(t, before.LicenseStatus, approved.LicenseStatus)
	assert.Equal(t, before.RegistrationDate, approved.RegistrationDate)

	// The other four records are unchanged
	insts, err := store.ListInstitutions(ctx, filter.Criteria{})
	require.NoError(t, err)
	for _, inst := range insts {
		if inst.ID == id {
			continue
		}
		orig, err := store.GetInstitution(ctx, inst.ID)
		require.NoError(t, err)
		assert.Equal(t, orig.Status, inst.Status)
	}
}

func TestApproveInstitutionIdempotent(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id := SeedInstitutionIDs[2]
	first, err := store.ApproveInstitution(ctx, id)
	require.NoError(t, err)

	second, err := store.ApproveInstitution(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, models.InstitutionApproved, second.Status)
	// A repeated approval does not bump the version again
	assert.Equal(t, first.Version, second.Version)
}

func TestApproveInstitutionNotFound(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	_, err := store.ApproveInstitution(ctx, uuid.New())
	assert.Equal(t, ErrNotFound, err)

	// The store is unchanged
	insts, err := store.ListInstitutions(ctx, filter.Criteria{})
	require.NoError(t, err)
	assert.Len(t, insts, 5)
}

func TestUpdateInstitutionVersionConflict(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id := SeedInstitutionIDs[0]
	a, err := store.GetInstitution(ctx, id)
	require.NoError(t, err)
	b, err := store.GetInstitution(ctx, id)
	require.NoError(t, err)

	a.Phone = "02-0000-0000"
	require.NoError(t, store.UpdateInstitution(ctx, a))

	// b still carries the old version
	b.Phone = "02-9999-9999"
	err = store.UpdateInstitution(ctx, b)
	assert.Equal(t, ErrConflict, err)

	// The first writer's change survived
	cur, err := store.GetInstitution(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "02-0000-0000", cur.Phone)
}

func TestUpdateInstitutionBumpsVersion(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	inst, err := store.GetInstitution(ctx, SeedInstitutionIDs[0])
	require.NoError(t, err)
	v := inst.Version

	inst.Name = "서울모발클리닉 본점"
	require.NoError(t, store.UpdateInstitution(ctx, inst))

	cur, err := store.GetInstitution(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, v+1, cur.Version)
	assert.Equal(t, "서울모발클리닉 본점", cur.Name)
}

func TestDeleteInstitution(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id := SeedInstitutionIDs[1]
	require.NoError(t, store.DeleteInstitution(ctx, id))

	_, err := store.GetInstitution(ctx, id)
	assert.Equal(t, ErrNotFound, err)

	insts, err := store.ListInstitutions(ctx, filter.Criteria{})
	require.NoError(t, err)
	assert.Len(t, insts, 4)

	// Deleting again reports not found and changes nothing
	assert.Equal(t, ErrNotFound, store.DeleteInstitution(ctx, id))
	insts, err = store.ListInstitutions(ctx, filter.Criteria{})
	require.NoError(t, err)
	assert.Len(t, insts, 4)
}

func TestCreateInstitutionDuplicateBusinessNumber(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	err := store.CreateInstitution(ctx, &models.Institution{
		Name:           "중복기관",
		Category:       models.CategoryClinic,
		Representative: "아무개",
		BusinessNumber: "120-81-34567",
	})
	assert.Equal(t, ErrDuplicateKey, err)
}

func TestListInstitutionsSearchBusinessNumber(t *testing.T) {
	store := seededStore(t)

	insts, err := store.ListInstitutions(context.Background(), filter.Criteria{Search: "305-86"})
	require.NoError(t, err)
	require.Len(t, insts, 1)
	assert.Equal(t, "모발과학연구소", insts[0].Name)
}

func TestListInstitutionsDateRange(t *testing.T) {
	store := seededStore(t)

	after := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)

	insts, err := store.ListInstitutions(context.Background(), filter.Criteria{
		RegisteredAfter:  &after,
		RegisteredBefore: &before,
	})
	require.NoError(t, err)
	require.Len(t, insts, 3)
	assert.Equal(t, "한국대학교병원 피부과", insts[0].Name)
	assert.Equal(t, "모발과학연구소", insts[1].Name)
	assert.Equal(t, "헤어라인살롱 압구정점", insts[2].Name)
}

func TestSetInstitutionLicense(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id := SeedInstitutionIDs[2]
	expiry := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	inst, err := store.SetInstitutionLicense(ctx, id, models.LicenseTrial, &expiry)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseTrial, inst.LicenseStatus)
	require.NotNil(t, inst.LicenseExpiry)
	assert.True(t, inst.LicenseExpiry.Equal(expiry))

	// Clearing the expiry works too
	inst, err = store.SetInstitutionLicense(ctx, id, models.LicenseNone, nil)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseNone, inst.LicenseStatus)
	assert.Nil(t, inst.LicenseExpiry)
}

func TestGetInstitutionReturnsCopy(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	id := SeedInstitutionIDs[0]
	a, err := store.GetInstitution(ctx, id)
	require.NoError(t, err)

	a.Name = "scribbled"
	if a.LicenseExpiry != nil {
		*a.LicenseExpiry = time.Time{}
	}

	b, err := store.GetInstitution(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "서울모발클리닉", b.Name)
	require.NotNil(t, b.LicenseExpiry)
	assert.False(t, b.LicenseExpiry.IsZero())
}

func TestMobileUserLifecycleMaintainsCounters(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	instID := SeedInstitutionIDs[0]
	before, err := store.GetInstitution(ctx, instID)
	require.NoError(t, err)

	user := &models.MobileUser{
		InstitutionID: instID,
		Name:          "이몽룡",
		Status:        models.MobileUserActive,
	}
	require.NoError(t, store.CreateMobileUser(ctx, user))

	after, err := store.GetInstitution(ctx, instID)
	require.NoError(t, err)
	assert.Equal(t, before.MobileUserCount+1, after.MobileUserCount)
	assert.Equal(t, before.UsersCount.Current+1, after.UsersCount.Current)

	require.NoError(t, store.DeleteMobileUser(ctx, user.ID))

	final, err := store.GetInstitution(ctx, instID)
	require.NoError(t, err)
	assert.Equal(t, before.MobileUserCount, final.MobileUserCount)
	assert.Equal(t, before.UsersCount.Current, final.UsersCount.Current)
}

func TestPaymentCounters(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	instID := SeedInstitutionIDs[0]
	before, err := store.GetInstitution(ctx, instID)
	require.NoError(t, err)

	payment := &models.Payment{
		InstitutionID: instID,
		Amount:        500000,
		Method:        "transfer",
		Status:        models.PaymentCompleted,
	}
	require.NoError(t, store.CreatePayment(ctx, payment))

	after, err := store.GetInstitution(ctx, instID)
	require.NoError(t, err)
	assert.Equal(t, before.PaymentCount+1, after.PaymentCount)

	require.NoError(t, store.DeletePayment(ctx, payment.ID))
	final, err := store.GetInstitution(ctx, instID)
	require.NoError(t, err)
	assert.Equal(t, before.PaymentCount, final.PaymentCount)
}

func TestGetNotFoundSentinels(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := store.GetInstitution(ctx, missing)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.GetLicense(ctx, missing)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.GetPayment(ctx, missing)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.GetMobileUser(ctx, missing)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.GetPhoto(ctx, missing)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.GetReport(ctx, missing)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.GetUser(ctx, missing)
	assert.Equal(t, ErrNotFound, err)
}

func TestListEventLogsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateEventLog(ctx, &models.EventLog{
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Type:        models.EventTypeInstitutionCreated,
			Level:       models.EventLevelInfo,
			Description: "e",
		}))
	}

	events, total, err := store.ListEventLogs(ctx, EventLogFilters{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 3)
	assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt))
	assert.True(t, events[1].CreatedAt.After(events[2].CreatedAt))

	// Pagination
	page, total, err := store.ListEventLogs(ctx, EventLogFilters{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, events[1].ID, page[0].ID)
}

func TestListEventLogsNegativeOffset(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateEventLog(ctx, &models.EventLog{
		Type: models.EventTypeInstitutionCreated, Level: models.EventLevelInfo,
	}))

	// A negative offset behaves like offset 0
	events, total, err := store.ListEventLogs(ctx, EventLogFilters{}, 10, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)
}

func TestListEventLogsFilterByType(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateEventLog(ctx, &models.EventLog{
		Type: models.EventTypeInstitutionApproved, Level: models.EventLevelInfo,
	}))
	require.NoError(t, store.CreateEventLog(ctx, &models.EventLog{
		Type: models.EventTypeLogin, Level: models.EventLevelInfo,
	}))

	wanted := models.EventTypeInstitutionApproved
	events, total, err := store.ListEventLogs(ctx, EventLogFilters{Type: &wanted}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, wanted, events[0].Type)
}

func TestUserEmailLookupCaseInsensitive(t *testing.T) {
	store := seededStore(t)

	user, err := store.GetUserByEmail(context.Background(), "ADMIN@hairscan.io")
	require.NoError(t, err)
	assert.Equal(t, SeedAdminID, user.ID)
}
