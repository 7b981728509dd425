package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

// HandleExportInstitutions exports the filtered institution list as an
// xlsx file. It honors the same query parameters as the list endpoint.
func (s *RESTServer) HandleExportInstitutions(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	institutions, err := s.store.ListInstitutions(r.Context(), criteria)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"기관명",
		"구분",
		"대표자",
		"사업자등록번호",
		"연락처",
		"이메일",
		"등록일",
		"승인상태",
		"라이선스",
		"만료일",
		"사용자",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	row := 2
	for _, inst := range institutions {
		expiry := ""
		if inst.LicenseExpiry != nil {
			expiry = inst.LicenseExpiry.Format(dateLayout)
		}

		excelRow := []interface{}{
			inst.Name,
			string(inst.Category),
			inst.Representative,
			inst.BusinessNumber,
			inst.Phone,
			inst.Email,
			inst.RegistrationDate.Format(dateLayout),
			string(inst.Status),
			inst.LicenseStatus.Label(),
			expiry,
			fmt.Sprintf("%d/%d", inst.UsersCount.Current, inst.UsersCount.Limit),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to build export")
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to build export")
			return
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to write export")
		return
	}

	fileName := fmt.Sprintf("institutions_%s.xlsx", time.Now().Format("20060102_150405"))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
