package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairscan/hairscan-admin/internal/models"
)

// Fixed IDs so the dev dashboard and the test suite address the same
// records across restarts.
var (
	SeedInstitutionIDs = []uuid.UUID{
		uuid.MustParse("11111111-0000-0000-0000-000000000001"),
		uuid.MustParse("11111111-0000-0000-0000-000000000002"),
		uuid.MustParse("11111111-0000-0000-0000-000000000003"),
		uuid.MustParse("11111111-0000-0000-0000-000000000004"),
		uuid.MustParse("11111111-0000-0000-0000-000000000005"),
	}

	SeedAdminID = uuid.MustParse("22222222-0000-0000-0000-000000000001")
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SeedInstitutions returns the five sample institutions used in
// development mode.
func SeedInstitutions() []*models.Institution {
	trialExpiry := date(2026, time.March, 15)
	activeExpiry := date(2026, time.December, 31)
	expiredAt := date(2025, time.June, 30)

	return []*models.Institution{
		{
			ID:               SeedInstitutionIDs[0],
			Name:             "서울모발클리닉",
			LegalName:        "의료법인 서울모발클리닉",
			Category:         models.CategoryClinic,
			Representative:   "김민수",
			BusinessNumber:   "120-81-34567",
			Address:          "서울특별시 강남구 테헤란로 152",
			PostalCode:       "06236",
			Phone:            "02-1234-5678",
			Email:            "contact@seoulhair.kr",
			RegistrationDate: date(2025, time.January, 12),
			Status:           models.InstitutionApproved,
			LicenseStatus:    models.LicenseActive,
			LicenseExpiry:    &activeExpiry,
			UsersCount:       models.SeatUsage{Current: 42, Limit: 100},
		},
		{
			ID:               SeedInstitutionIDs[1],
			Name:             "한국대학교병원 피부과",
			LegalName:        "한국대학교병원",
			Category:         models.CategoryUniversityHospital,
			Representative:   "이서연",
			BusinessNumber:   "214-82-11029",
			Address:          "서울특별시 종로구 대학로 101",
			PostalCode:       "03080",
			Phone:            "02-2072-0001",
			Email:            "derma@kuh.ac.kr",
			RegistrationDate: date(2025, time.February, 3),
			Status:           models.InstitutionApproved,
			LicenseStatus:    models.LicenseTrial,
			LicenseExpiry:    &trialExpiry,
			UsersCount:       models.SeatUsage{Current: 8, Limit: 20},
		},
		{
			ID:               SeedInstitutionIDs[2],
			Name:             "모발과학연구소",
			Category:         models.CategoryResearchLab,
			Representative:   "박지훈",
			BusinessNumber:   "305-86-00921",
			Address:          "대전광역시 유성구 대학로 291",
			PostalCode:       "34141",
			Phone:            "042-350-1234",
			Email:            "lab@hairsci.re.kr",
			RegistrationDate: date(2025, time.April, 21),
			Status:           models.InstitutionPending,
			LicenseStatus:    models.LicenseNone,
			UsersCount:       models.SeatUsage{Current: 0, Limit: 10},
		},
		{
			ID:               SeedInstitutionIDs[3],
			Name:             "헤어라인살롱 압구정점",
			Category:         models.CategoryHairSalon,
			Representative:   "최유진",
			BusinessNumber:   "211-10-55873",
			Address:          "서울특별시 강남구 압구정로 330",
			PostalCode:       "06015",
			Phone:            "02-543-9876",
			Email:            "apgujeong@hairline.co.kr",
			RegistrationDate: date(2025, time.May, 8),
			Status:           models.InstitutionApproved,
			LicenseStatus:    models.LicenseExpired,
			LicenseExpiry:    &expiredAt,
			UsersCount:       models.SeatUsage{Current: 5, Limit: 5},
		},
		{
			ID:               SeedInstitutionIDs[4],
			Name:             "부산두피케어센터",
			Category:         models.CategoryOther,
			Representative:   "정우성",
			BusinessNumber:   "602-45-78210",
			Address:          "부산광역시 해운대구 센텀중앙로 79",
			PostalCode:       "48058",
			Phone:            "051-731-4455",
			Email:            "care@busanscalp.kr",
			RegistrationDate: date(2025, time.July, 30),
			Status:           models.InstitutionPending,
			LicenseStatus:    models.LicenseNone,
			UsersCount:       models.SeatUsage{Current: 0, Limit: 10},
		},
	}
}

// Seed populates the store with sample data: an admin account, the five
// institutions above and a handful of child records for the first one.
func Seed(ctx context.Context, store Store, adminPasswordHash string) error {
	admin := &models.User{
		ID:           SeedAdminID,
		Email:        "admin@hairscan.io",
		Name:         "Administrator",
		PasswordHash: adminPasswordHash,
		IsAdmin:      true,
		IsActive:     true,
		Settings:     make(models.Variables),
	}
	if err := store.CreateUser(ctx, admin); err != nil && err != ErrDuplicateKey {
		return fmt.Errorf("seed admin: %w", err)
	}

	for _, inst := range SeedInstitutions() {
		if err := store.CreateInstitution(ctx, inst); err != nil {
			if err == ErrDuplicateKey {
				continue
			}
			return fmt.Errorf("seed institution %s: %w", inst.Name, err)
		}
	}

	first := SeedInstitutionIDs[0]
	expiry := date(2026, time.December, 31)

	lic := &models.License{
		InstitutionID: first,
		Status:        models.LicenseActive,
		Plan:          "standard-100",
		SeatLimit:     100,
		StartsAt:      date(2025, time.January, 12),
		ExpiresAt:     &expiry,
	}
	if err := store.CreateLicense(ctx, lic); err != nil {
		return fmt.Errorf("seed license: %w", err)
	}

	paidAt := date(2025, time.January, 12)
	payment := &models.Payment{
		InstitutionID: first,
		LicenseID:     &lic.ID,
		Amount:        1200000,
		Method:        "card",
		Status:        models.PaymentCompleted,
		PaidAt:        &paidAt,
		Description:   "연간 정식 라이선스",
	}
	if err := store.CreatePayment(ctx, payment); err != nil {
		return fmt.Errorf("seed payment: %w", err)
	}

	user := &models.MobileUser{
		InstitutionID: first,
		Name:          "홍길동",
		Phone:         "010-2345-6789",
		BirthYear:     1985,
		Gender:        "male",
		Status:        models.MobileUserActive,
	}
	if err := store.CreateMobileUser(ctx, user); err != nil {
		return fmt.Errorf("seed mobile user: %w", err)
	}

	photo := &models.Photo{
		InstitutionID: first,
		MobileUserID:  user.ID,
		URL:           "https://cdn.hairscan.io/photos/sample-crown.jpg",
		Filename:      "sample-crown.jpg",
		Region:        "crown",
		TakenAt:       date(2025, time.August, 1),
		Status:        models.PhotoAnalyzed,
	}
	if err := store.CreatePhoto(ctx, photo); err != nil {
		return fmt.Errorf("seed photo: %w", err)
	}

	issuedAt := date(2025, time.August, 2)
	report := &models.Report{
		InstitutionID: first,
		MobileUserID:  user.ID,
		PhotoID:       &photo.ID,
		Title:         "두피 진단 리포트",
		Summary:       "정수리 모발 밀도 감소 소견, 3개월 후 재촬영 권장",
		Stage:         3,
		Status:        models.ReportIssued,
		IssuedAt:      &issuedAt,
	}
	if err := store.CreateReport(ctx, report); err != nil {
		return fmt.Errorf("seed report: %w", err)
	}

	return nil
}
