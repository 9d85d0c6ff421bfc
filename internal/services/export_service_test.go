package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/domain/models"
)

func TestExportServiceWriteCSV(t *testing.T) {
	start := time.Date(2026, 10, 21, 1, 0, 0, 0, time.UTC)
	list := []models.Reservation{
		{ID: 5, Status: status.Confirmed, CustomerName: "山田, 太郎", StartDatetime: start, EndDatetime: start.Add(4 * time.Hour), TotalPrice: 6000, CreatedAt: start},
		{ID: 6, Status: status.NoShow, StartDatetime: start, EndDatetime: start.Add(2 * time.Hour), TotalPrice: 3000, Note: "line1\nline2"},
	}

	var buf bytes.Buffer
	if err := (ExportService{Location: jst}).WriteCSV(&buf, list); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatalf("export must start with a BOM")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "予約番号" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][1] != "予約確定" || records[1][2] != "山田, 太郎" || records[1][7] != "2026/10/21 10:00" {
		t.Fatalf("unexpected row %v", records[1])
	}
	if records[2][1] != "無断キャンセル" || records[2][10] != "line1\nline2" || records[2][11] != "" {
		t.Fatalf("unexpected row %v", records[2])
	}
}

func TestExportFilename(t *testing.T) {
	got := ExportService{Location: jst}.ExportFilename(time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC))
	if got != "reservations_2026-10-20.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestExportServiceNeutralisesFormulas(t *testing.T) {
	list := []models.Reservation{{
		ID:            1,
		Status:        status.Pending,
		CustomerName:  `=HYPERLINK("http://evil","x")`,
		CustomerPhone: "+819012345678",
		BikeName:      "@SUM(A1)",
		VendorName:    "-1+1",
		Note:          `+cmd|' /C calc'!A0`,
	}}

	var buf bytes.Buffer
	if err := (ExportService{Location: jst}).WriteCSV(&buf, list); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	row := records[1]
	want := map[int]string{
		2:  `'=HYPERLINK("http://evil","x")`,
		4:  "'+819012345678",
		5:  "'-1+1",
		6:  "'@SUM(A1)",
		10: `'+cmd|' /C calc'!A0`,
	}
	for i, v := range want {
		if row[i] != v {
			t.Fatalf("column %d = %q, want %q", i, row[i], v)
		}
	}
}

func TestCSVCell(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"山田 太郎":     "山田 太郎",
		"a=b":       "a=b",
		"\tSUM(A1)": "'\tSUM(A1)",
		"\r=1":      "'\r=1",
		"=1+1":      "'=1+1",
	}
	for in, want := range cases {
		if got := csvCell(in); got != want {
			t.Fatalf("csvCell(%q) = %q, want %q", in, got, want)
		}
	}
}
