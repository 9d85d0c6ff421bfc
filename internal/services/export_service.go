package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"motorent/internal/domain/models"
	"motorent/internal/utils"
)

// utf8BOM makes Excel open the export as UTF-8 instead of Shift_JIS.
const utf8BOM = "\ufeff"

var exportHeader = []string{
	"予約番号", "ステータス", "お客様", "メール", "電話番号",
	"店舗", "バイク", "開始日時", "終了日時", "料金", "備考", "作成日時",
}

// ExportService writes reservation listings for the vendor and admin dashboards.
type ExportService struct {
	Location *time.Location
}

func (s ExportService) WriteCSV(w io.Writer, list []models.Reservation) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range list {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.Status.Label(),
			csvCell(r.CustomerName),
			csvCell(r.CustomerEmail),
			csvCell(r.CustomerPhone),
			csvCell(r.VendorName),
			csvCell(r.BikeName),
			utils.FormatDisplay(r.StartDatetime, s.Location),
			utils.FormatDisplay(r.EndDatetime, s.Location),
			strconv.FormatInt(r.TotalPrice, 10),
			csvCell(r.Note),
			utils.FormatDisplay(r.CreatedAt, s.Location),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvCell quotes text that a spreadsheet would otherwise evaluate as a formula.
func csvCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

// ExportFilename names a dashboard export, e.g. reservations_2026-10-20.csv.
func (s ExportService) ExportFilename(now time.Time) string {
	return "reservations_" + utils.FormatDate(now, s.Location) + ".csv"
}
