package models

import (
	"time"

	"motorent/internal/booking/status"
)

// Reservation is a single rental booking of one bike from one vendor.
type Reservation struct {
	ID            int64         `json:"id"`
	CustomerID    int64         `json:"customerId"`
	BikeID        int64         `json:"bikeId"`
	VendorID      int64         `json:"vendorId"`
	StartDatetime time.Time     `json:"startDatetime"`
	EndDatetime   time.Time     `json:"endDatetime"`
	Status        status.Status `json:"status"`
	TotalPrice    int64         `json:"totalPrice"`
	Note          string        `json:"note,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	// joined for listings, exports and receipts
	BikeName      string `json:"bikeName,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	VendorName    string `json:"vendorName,omitempty"`
}

// StatusEvent is one row of a reservation's status history.
type StatusEvent struct {
	ID            int64         `json:"id"`
	ReservationID int64         `json:"reservationId"`
	FromStatus    status.Status `json:"fromStatus,omitempty"`
	ToStatus      status.Status `json:"toStatus"`
	Actor         string        `json:"actor"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// ReservationFilter narrows reservation listings. Zero values mean "any".
type ReservationFilter struct {
	VendorID   int64
	CustomerID int64
	BikeID     int64
	Statuses   []status.Status
	From       time.Time
	To         time.Time
	Page       int
	PageSize   int
}

// StatusSummary is one row of the per-status dashboard report.
type StatusSummary struct {
	Status  status.Status `json:"status"`
	Label   string        `json:"label"`
	Count   int           `json:"count"`
	Revenue int64         `json:"revenue"`
}
