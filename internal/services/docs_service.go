package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
	"motorent/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders reservation receipts as PDF.
type DocsService struct {
	Reservations ReservationService
	// FontPath points to a TTF with Japanese glyphs. Without it the receipt
	// falls back to the built-in Helvetica and English labels.
	FontPath  string
	Location  *time.Location
	RequestID string
	Loader    func(ctx context.Context, actor domain.Actor, id int64) (models.Reservation, error)
}

const msgReceiptNotCompleted = "領収書は利用完了後に発行できます"

type receiptLabels struct {
	Title, Number, Issued, Customer, Vendor, Bike, Status, Period, Total, Note string
}

var (
	receiptLabelsJA = receiptLabels{
		Title: "領収書", Number: "予約番号", Issued: "発行日", Customer: "お客様",
		Vendor: "店舗", Bike: "バイク", Status: "ステータス", Period: "利用期間", Total: "合計金額",
		Note: "本書はレンタル料金の領収を証するものです。",
	}
	receiptLabelsEN = receiptLabels{
		Title: "RECEIPT", Number: "Reservation", Issued: "Issued", Customer: "Customer",
		Vendor: "Shop", Bike: "Bike", Status: "Status", Period: "Period", Total: "Total",
		Note: "This document certifies receipt of the rental fee.",
	}
)

func (s DocsService) GenerateReceipt(ctx context.Context, actor domain.Actor, id int64) ([]byte, string, error) {
	res, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if res.Status != status.Completed {
		return nil, "", domain.ConflictError{Resource: "receipt", Msg: msgReceiptNotCompleted}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", fmt.Sprintf("reservation_id=%d", id))
	pdf, name, err := s.buildReceiptPDF(res, time.Now())
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render receipt", Err: err}
	}
	return pdf, name, nil
}

func (s DocsService) load(ctx context.Context, actor domain.Actor, id int64) (models.Reservation, error) {
	if s.Loader != nil {
		return s.Loader(ctx, actor, id)
	}
	return s.Reservations.Get(ctx, actor, id)
}

func (s DocsService) buildReceiptPDF(res models.Reservation, issued time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt #%d", res.ID), true)

	family := "Helvetica"
	labels := receiptLabelsEN
	text := pdf.UnicodeTranslatorFromDescriptor("")
	if s.FontPath != "" {
		pdf.AddUTF8Font("jp", "", s.FontPath)
		if pdf.Err() {
			return nil, "", pdf.Error()
		}
		family = "jp"
		labels = receiptLabelsJA
		text = func(v string) string { return v }
	}
	// UTF-8 fonts registered without a bold face
	bold := "B"
	if family == "jp" {
		bold = ""
	}

	pdf.AddPage()
	pdf.SetFont(family, bold, 18)
	pdf.Cell(0, 10, text(labels.Title))
	pdf.Ln(14)

	loc := s.Location
	pdf.SetFont(family, "", 12)
	rows := [][2]string{
		{labels.Number, fmt.Sprintf("#%d", res.ID)},
		{labels.Issued, utils.FormatDate(issued, loc)},
		{labels.Customer, safe(res.CustomerName, "-")},
		{labels.Vendor, safe(res.VendorName, "-")},
		{labels.Bike, safe(res.BikeName, "-")},
		{labels.Status, statusText(res, family == "jp")},
		{labels.Period, fmt.Sprintf("%s - %s", utils.FormatDisplay(res.StartDatetime, loc), utils.FormatDisplay(res.EndDatetime, loc))},
	}
	for _, r := range rows {
		pdf.CellFormat(40, 8, text(r[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, text(r[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont(family, bold, 14)
	pdf.CellFormat(40, 10, text(labels.Total), "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, text(utils.FormatYen(res.TotalPrice)), "T", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont(family, "", 10)
	pdf.MultiCell(0, 6, text(labels.Note), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("RECEIPT_%d_%s.pdf", res.ID, utils.FormatDate(res.StartDatetime, loc)), nil
}

func statusText(res models.Reservation, japanese bool) string {
	if japanese {
		return res.Status.Label()
	}
	return res.Status.String()
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
