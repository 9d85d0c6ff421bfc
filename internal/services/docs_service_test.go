package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
)

func TestDocsServiceGenerateReceipt(t *testing.T) {
	start := time.Date(2026, 10, 21, 1, 0, 0, 0, time.UTC)
	loader := func(_ context.Context, _ domain.Actor, id int64) (models.Reservation, error) {
		return models.Reservation{
			ID:            id,
			StartDatetime: start,
			EndDatetime:   start.Add(4 * time.Hour),
			Status:        status.Completed,
			TotalPrice:    6000,
			BikeName:      "CB400",
			CustomerName:  "山田 太郎",
			VendorName:    "Shibuya Moto",
		}, nil
	}

	svc := DocsService{Loader: loader, Location: jst}
	pdf, filename, err := svc.GenerateReceipt(context.Background(), customer7, 12)
	if err != nil {
		t.Fatalf("GenerateReceipt returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "RECEIPT_12_2026-10-21.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceMissingFont(t *testing.T) {
	loader := func(_ context.Context, _ domain.Actor, id int64) (models.Reservation, error) {
		return models.Reservation{ID: id, Status: status.Completed}, nil
	}
	svc := DocsService{Loader: loader, FontPath: "/nonexistent/font.ttf"}
	_, _, err := svc.GenerateReceipt(context.Background(), admin1, 1)
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error for unreadable font, got %v", err)
	}
}

func TestDocsServiceRefusesUnfinishedRentals(t *testing.T) {
	for _, st := range []status.Status{status.Pending, status.Confirmed, status.InUse, status.Cancelled, status.NoShow} {
		loader := func(_ context.Context, _ domain.Actor, id int64) (models.Reservation, error) {
			return models.Reservation{ID: id, Status: st}, nil
		}
		svc := DocsService{Loader: loader, Location: jst}
		pdf, _, err := svc.GenerateReceipt(context.Background(), customer7, 12)
		if !domain.IsConflict(err) {
			t.Fatalf("%s: expected conflict, got %v", st, err)
		}
		if pdf != nil {
			t.Fatalf("%s: no PDF expected", st)
		}
	}
}

func TestDocsServicePropagatesAccessErrors(t *testing.T) {
	loader := func(context.Context, domain.Actor, int64) (models.Reservation, error) {
		return models.Reservation{}, domain.ForbiddenError{}
	}
	svc := DocsService{Loader: loader}
	if _, _, err := svc.GenerateReceipt(context.Background(), customer7, 1); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSafe(t *testing.T) {
	if got := safe("  ", "-"); got != "-" {
		t.Fatalf("safe blank = %q", got)
	}
	if got := safe(" x ", "-"); !strings.EqualFold(got, "x") {
		t.Fatalf("safe trimmed = %q", got)
	}
}
